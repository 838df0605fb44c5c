package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"paymentplan/internal/schedule"
)

var (
	colorBorder = lipgloss.Color("#282726")
	colorText   = lipgloss.Color("#FFFCF0")
	colorAccent = lipgloss.Color("#3AA99F")
	colorMuted  = lipgloss.Color("#6F6E69")
	colorGreen  = lipgloss.Color("#879A39")
	colorOrange = lipgloss.Color("#DA702C")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	amountStyle = lipgloss.NewStyle().Foreground(colorGreen)
	lumpStyle   = lipgloss.NewStyle().Foreground(colorOrange)
)

// Table is a plain bordered text table.
type Table struct {
	Headers []string
	Rows    [][]string
	// RightAlign marks columns rendered flush right (amounts).
	RightAlign map[int]bool
}

func RenderTitle(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Render(titleStyle.Render(title))
}

func RenderTable(t Table) string {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var b strings.Builder
	b.WriteString(renderRow(t.Headers, widths, t.RightAlign, headerStyle))
	b.WriteString("\n")
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	b.WriteString(mutedStyle.Render(strings.Join(sep, "──")))
	for _, row := range t.Rows {
		b.WriteString("\n")
		b.WriteString(renderRow(row, widths, t.RightAlign, lipgloss.NewStyle()))
	}
	return b.String()
}

func renderRow(cells []string, widths []int, right map[int]bool, style lipgloss.Style) string {
	out := make([]string, len(widths))
	for i := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		if right[i] {
			out[i] = pad + style.Render(cell)
		} else {
			out[i] = style.Render(cell) + pad
		}
	}
	return strings.Join(out, "  ")
}

// RenderSchedule formats a calculated schedule for the terminal.
func RenderSchedule(res schedule.Result) string {
	t := Table{
		Headers:    []string{"#", "Due", "Description", "Type", "Amount", "Notes"},
		RightAlign: map[int]bool{0: true, 4: true},
	}
	for i, it := range res.Items {
		amount := it.Amount.StringFixed(schedule.Scale)
		if it.Currency != "" {
			amount += " " + it.Currency
		}
		if it.PaymentType == schedule.PaymentTypeBalloon {
			amount = lumpStyle.Render(amount)
		} else {
			amount = amountStyle.Render(amount)
		}
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", i),
			it.DueDate.String(),
			it.Description,
			string(it.PaymentType),
			amount,
			mutedStyle.Render(it.Notes),
		})
	}

	var b strings.Builder
	b.WriteString(RenderTable(t))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s %s\n", headerStyle.Render("Principal after down:"), res.PrincipalAfterDown.StringFixed(schedule.Scale)))
	b.WriteString(fmt.Sprintf("%s %s\n", headerStyle.Render("Total interest:      "), res.TotalInterest.StringFixed(schedule.Scale)))
	b.WriteString(fmt.Sprintf("%s %s", headerStyle.Render("Grand total:         "), res.GrandTotal.StringFixed(schedule.Scale)))
	return b.String()
}

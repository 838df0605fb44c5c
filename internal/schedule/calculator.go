package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places every emitted amount is rounded to.
const Scale int32 = 2

var hundred = decimal.NewFromInt(100)

// Calculate builds the payment plan for p.
//
// Rules:
// - Interest is flat: financed balance * rate/100 * installments, never compounded.
// - Interim payments reduce the financed balance and are emitted as declared.
// - Each installment is rounded on its own; the accumulated rounding delta is
//   applied to the last installment so the items sum to GrandTotal.
func Calculate(p Params) (Result, error) {
	if err := Validate(p); err != nil {
		return Result{}, err
	}

	principalAfterDown := decimal.Max(decimal.Zero, p.Principal.Sub(p.DownPaymentAmount))

	totalInterim := decimal.Zero
	for _, ip := range p.InterimPayments {
		totalInterim = totalInterim.Add(ip.Amount)
	}
	financed := decimal.Max(decimal.Zero, principalAfterDown.Sub(totalInterim))

	n := decimal.NewFromInt(int64(p.InstallmentCount))
	interest := decimal.Zero
	monthly := decimal.Zero
	if p.InstallmentCount > 0 {
		interest = financed.Mul(p.MonthlyInterestRate).Div(hundred).Mul(n)
		monthly = financed.Add(interest).Div(n).Round(Scale)
	}
	grandTotal := p.Principal.Add(interest).Round(Scale)

	items := make([]Item, 0, 1+p.InstallmentCount+len(p.InterimPayments))
	items = append(items, Item{
		Description: "Down Payment",
		PaymentType: PaymentTypeDownPayment,
		Amount:      p.DownPaymentAmount.Round(Scale),
		DueDate:     p.StartDate,
		Currency:    p.Currency,
	})

	var rateNote string
	if !p.MonthlyInterestRate.IsZero() {
		rateNote = fmt.Sprintf("Includes %s%% monthly interest", p.MonthlyInterestRate.String())
	}

	for i := 1; i <= p.InstallmentCount; i++ {
		due := p.StartDate.AddMonths(i)
		items = append(items, Item{
			Description: fmt.Sprintf("Installment %d", i),
			PaymentType: PaymentTypeInstallment,
			Amount:      monthly,
			DueDate:     due,
			Currency:    p.Currency,
			Notes:       rateNote,
		})
		for _, ip := range p.InterimPayments {
			if ip.Month != i {
				continue
			}
			items = append(items, Item{
				Description: fmt.Sprintf("Interim Payment (month %d)", i),
				PaymentType: PaymentTypeBalloon,
				Amount:      ip.Amount.Round(Scale),
				DueDate:     due,
				Currency:    p.Currency,
			})
		}
	}

	items, err := Reconcile(items, grandTotal)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Items:              items,
		TotalInterest:      interest.Round(Scale),
		GrandTotal:         grandTotal,
		PrincipalAfterDown: principalAfterDown,
	}, nil
}

// Reconcile returns a copy of items whose amounts sum to grandTotal. The
// difference goes to the last Installment item; down payment and interim
// amounts are never touched. Without an installment there is nothing to
// adjust and the copy is returned as is.
func Reconcile(items []Item, grandTotal decimal.Decimal) ([]Item, error) {
	out := make([]Item, len(items))
	copy(out, items)

	diff := grandTotal.Sub(Sum(out)).Round(Scale)
	if diff.IsZero() || len(out) < 2 {
		return out, nil
	}

	for i := len(out) - 1; i >= 0; i-- {
		if out[i].PaymentType != PaymentTypeInstallment {
			continue
		}
		adjusted := out[i].Amount.Add(diff).Round(Scale)
		if adjusted.IsNegative() {
			return nil, ArithmeticError{
				Message: fmt.Sprintf("rounding correction %s would make %s negative", diff.StringFixed(Scale), out[i].Description),
			}
		}
		out[i].Amount = adjusted
		out[i].Notes = joinNotes(out[i].Notes, fmt.Sprintf("Rounding adjustment %s", signed(diff)))
		return out, nil
	}
	return out, nil
}

func Sum(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return total
}

func joinNotes(a, b string) string {
	if a == "" {
		return b
	}
	return a + "; " + b
}

func signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.StringFixed(Scale)
	}
	return d.StringFixed(Scale)
}

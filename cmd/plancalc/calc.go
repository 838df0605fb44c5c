package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"paymentplan/internal/cli"
	"paymentplan/internal/schedule"
)

var (
	flagFile      string
	flagPrincipal string
	flagDown      string
	flagRate      string
	flagCount     int
	flagStart     string
	flagCurrency  string
	flagInterim   []string
	flagJSON      bool
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Calculate a payment schedule",
	Example: `  plancalc calc --file plan.toml
  plancalc calc --principal 100000 --down 20000 --rate 1.5 --installments 10 --start 2025-01-01 --currency TRY --interim 5=10000`,
	RunE: runCalc,
}

func init() {
	rootCmd.AddCommand(calcCmd)

	f := calcCmd.Flags()
	f.StringVarP(&flagFile, "file", "f", "", "TOML file with plan parameters (flags are ignored when set)")
	f.StringVar(&flagPrincipal, "principal", "0", "Total contracted price")
	f.StringVar(&flagDown, "down", "0", "Down payment amount")
	f.StringVar(&flagRate, "rate", "0", "Monthly simple interest rate, percent")
	f.IntVarP(&flagCount, "installments", "n", 0, "Number of monthly installments")
	f.StringVar(&flagStart, "start", "", "Start date (YYYY-MM-DD); first installment is due one month later")
	f.StringVar(&flagCurrency, "currency", "", "Currency tag copied onto every item")
	f.StringArrayVar(&flagInterim, "interim", nil, "Interim payment as MONTH=AMOUNT (repeatable)")
	f.BoolVar(&flagJSON, "json", false, "Print the result as JSON")
}

func runCalc(cmd *cobra.Command, _ []string) error {
	p, err := paramsFromFlags()
	if err != nil {
		return err
	}

	res, err := schedule.Calculate(p)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle(fmt.Sprintf("PAYMENT PLAN  %d installments", p.InstallmentCount)))
	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderSchedule(res))
	return nil
}

func paramsFromFlags() (schedule.Params, error) {
	if flagFile != "" {
		return cli.LoadParams(flagFile)
	}

	var p schedule.Params
	var err error
	if p.Principal, err = decimal.NewFromString(flagPrincipal); err != nil {
		return p, fmt.Errorf("--principal: %w", err)
	}
	if p.DownPaymentAmount, err = decimal.NewFromString(flagDown); err != nil {
		return p, fmt.Errorf("--down: %w", err)
	}
	if p.MonthlyInterestRate, err = decimal.NewFromString(flagRate); err != nil {
		return p, fmt.Errorf("--rate: %w", err)
	}
	if flagStart == "" {
		fmt.Fprintln(os.Stderr, "  --start not set, using today")
		flagStart = time.Now().Format("2006-01-02")
	}
	if p.StartDate, err = schedule.ParseDate(flagStart); err != nil {
		return p, fmt.Errorf("--start: %w", err)
	}
	p.InstallmentCount = flagCount
	p.Currency = flagCurrency

	for _, s := range flagInterim {
		ip, err := parseInterim(s)
		if err != nil {
			return p, err
		}
		p.InterimPayments = append(p.InterimPayments, ip)
	}
	return p, nil
}

func parseInterim(s string) (schedule.InterimPayment, error) {
	var month int
	var amount string
	if _, err := fmt.Sscanf(s, "%d=%s", &month, &amount); err != nil {
		return schedule.InterimPayment{}, fmt.Errorf("--interim %q: want MONTH=AMOUNT", s)
	}
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return schedule.InterimPayment{}, fmt.Errorf("--interim %q: %w", s, err)
	}
	return schedule.InterimPayment{Month: month, Amount: a}, nil
}

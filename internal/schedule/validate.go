package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ArithmeticError reports a schedule whose total cannot be reconciled without
// producing a negative installment. Validate rejects the inputs that lead there,
// so only sub-cent rounding of the declared amounts can still reach it.
type ArithmeticError struct {
	Message string
}

func (e ArithmeticError) Error() string {
	return "arithmetic: " + e.Message
}

// Validate rejects inputs the calculator cannot turn into a meaningful schedule.
// A down payment larger than the principal is accepted only when there are no
// installments; Calculate then clamps the financed balance at zero.
func Validate(p Params) error {
	if p.Principal.IsNegative() {
		return ValidationError{Code: "PRINCIPAL_INVALID", Message: "principal must be >= 0"}
	}
	if p.DownPaymentAmount.IsNegative() {
		return ValidationError{Code: "DOWN_PAYMENT_INVALID", Message: "down payment must be >= 0"}
	}
	if p.MonthlyInterestRate.IsNegative() {
		return ValidationError{Code: "INTEREST_RATE_INVALID", Message: "monthly interest rate must be >= 0"}
	}
	if p.InstallmentCount < 0 {
		return ValidationError{Code: "INSTALLMENT_COUNT_INVALID", Message: "installment count must be >= 0"}
	}
	if p.StartDate.IsZero() {
		return ValidationError{Code: "START_DATE_INVALID", Message: "start date is required"}
	}

	lumpSums := p.DownPaymentAmount
	for i, ip := range p.InterimPayments {
		if ip.Month < 1 || ip.Month > p.InstallmentCount {
			return ValidationError{
				Code:    "INTERIM_MONTH_OUT_OF_RANGE",
				Message: fmt.Sprintf("interim payment %d: month %d outside 1..%d", i+1, ip.Month, p.InstallmentCount),
			}
		}
		if ip.Amount.LessThan(decimal.Zero) {
			return ValidationError{
				Code:    "INTERIM_AMOUNT_INVALID",
				Message: fmt.Sprintf("interim payment %d: amount must be >= 0", i+1),
			}
		}
		lumpSums = lumpSums.Add(ip.Amount)
	}

	// Installments cannot go negative to absorb lump sums above the principal.
	if p.InstallmentCount > 0 && lumpSums.GreaterThan(p.Principal) {
		return ValidationError{
			Code:    "LUMP_SUMS_EXCEED_PRINCIPAL",
			Message: fmt.Sprintf("down payment plus interim payments %s exceed principal %s", lumpSums.String(), p.Principal.String()),
		}
	}
	return nil
}

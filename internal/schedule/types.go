package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type PaymentType string

// Only DownPayment, Installment and Balloon are produced by Calculate. The rest
// are accepted so downstream consumers can append their own items.
const (
	PaymentTypeDownPayment     PaymentType = "DownPayment"
	PaymentTypeInstallment     PaymentType = "Installment"
	PaymentTypeBalloon         PaymentType = "Balloon"
	PaymentTypeDeliveryPayment PaymentType = "DeliveryPayment"
	PaymentTypeInterimPayment  PaymentType = "InterimPayment"
	PaymentTypeOther           PaymentType = "Other"
)

func ParsePaymentType(s string) (PaymentType, error) {
	switch PaymentType(s) {
	case PaymentTypeDownPayment, PaymentTypeInstallment, PaymentTypeBalloon,
		PaymentTypeDeliveryPayment, PaymentTypeInterimPayment, PaymentTypeOther:
		return PaymentType(s), nil
	default:
		return "", fmt.Errorf("unknown payment type: %s", s)
	}
}

// InterimPayment is a lump sum due alongside installment Month (1-based).
type InterimPayment struct {
	Month  int             `json:"month" toml:"month"`
	Amount decimal.Decimal `json:"amount" toml:"amount"`
}

type Params struct {
	Principal           decimal.Decimal  `json:"principal" toml:"principal"`
	DownPaymentAmount   decimal.Decimal  `json:"downPaymentAmount" toml:"down_payment"`
	MonthlyInterestRate decimal.Decimal  `json:"monthlyInterestRate" toml:"monthly_interest_rate"`
	InstallmentCount    int              `json:"installmentCount" toml:"installments"`
	StartDate           Date             `json:"startDate" toml:"start_date"`
	Currency            string           `json:"currency" toml:"currency"`
	InterimPayments     []InterimPayment `json:"interimPayments" toml:"interim"`
}

type Item struct {
	Description string          `json:"description"`
	PaymentType PaymentType     `json:"paymentType"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     Date            `json:"dueDate"`
	Currency    string          `json:"currency"`
	Notes       string          `json:"notes,omitempty"`
}

type Result struct {
	Items         []Item          `json:"items"`
	TotalInterest decimal.Decimal `json:"totalInterest"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`

	// PrincipalAfterDown is kept unrounded; it is informational only.
	PrincipalAfterDown decimal.Decimal `json:"principalAfterDown"`
}

package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func baseParams() Params {
	return Params{
		Principal:           decimal.RequireFromString("100000"),
		DownPaymentAmount:   decimal.RequireFromString("20000"),
		MonthlyInterestRate: decimal.Zero,
		InstallmentCount:    10,
		StartDate:           NewDate(2025, time.January, 1),
		Currency:            "TRY",
	}
}

func mustCalculate(t *testing.T, p Params) Result {
	t.Helper()
	got, err := Calculate(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return got
}

func assertTotal(t *testing.T, res Result) {
	t.Helper()
	if sum := Sum(res.Items); !sum.Equal(res.GrandTotal) {
		t.Fatalf("items sum %s != grand total %s", sum, res.GrandTotal)
	}
}

func TestCalculate_NoInterest(t *testing.T) {
	res := mustCalculate(t, baseParams())

	if !res.TotalInterest.IsZero() {
		t.Fatalf("expected zero interest, got %s", res.TotalInterest)
	}
	if !res.GrandTotal.Equal(decimal.RequireFromString("100000")) {
		t.Fatalf("expected grand total 100000, got %s", res.GrandTotal)
	}
	if len(res.Items) != 11 {
		t.Fatalf("expected 11 items, got %d", len(res.Items))
	}

	down := res.Items[0]
	if down.PaymentType != PaymentTypeDownPayment || !down.Amount.Equal(decimal.NewFromInt(20000)) {
		t.Fatalf("unexpected down payment item: %+v", down)
	}
	if down.DueDate.String() != "2025-01-01" {
		t.Fatalf("down payment due %s, want 2025-01-01", down.DueDate)
	}

	for i, it := range res.Items[1:] {
		if it.PaymentType != PaymentTypeInstallment {
			t.Fatalf("item %d: expected installment, got %s", i+1, it.PaymentType)
		}
		if !it.Amount.Equal(decimal.NewFromInt(8000)) {
			t.Fatalf("item %d: expected 8000, got %s", i+1, it.Amount)
		}
		want := NewDate(2025, time.Month(2+i), 1).String()
		if it.DueDate.String() != want {
			t.Fatalf("item %d: due %s, want %s", i+1, it.DueDate, want)
		}
		if it.Notes != "" {
			t.Fatalf("item %d: expected no notes without interest, got %q", i+1, it.Notes)
		}
		if it.Currency != "TRY" {
			t.Fatalf("item %d: currency %q", i+1, it.Currency)
		}
	}
	if res.Items[10].DueDate.String() != "2025-11-01" {
		t.Fatalf("last installment due %s, want 2025-11-01", res.Items[10].DueDate)
	}
	assertTotal(t, res)
}

func TestCalculate_FlatInterest(t *testing.T) {
	p := baseParams()
	p.MonthlyInterestRate = decimal.RequireFromString("1.5")
	res := mustCalculate(t, p)

	if !res.TotalInterest.Equal(decimal.NewFromInt(12000)) {
		t.Fatalf("expected interest 12000, got %s", res.TotalInterest)
	}
	if !res.GrandTotal.Equal(decimal.NewFromInt(112000)) {
		t.Fatalf("expected grand total 112000, got %s", res.GrandTotal)
	}
	for _, it := range res.Items[1:] {
		if !it.Amount.Equal(decimal.NewFromInt(9200)) {
			t.Fatalf("%s: expected 9200, got %s", it.Description, it.Amount)
		}
		if it.Notes != "Includes 1.5% monthly interest" {
			t.Fatalf("%s: unexpected notes %q", it.Description, it.Notes)
		}
	}
	assertTotal(t, res)
}

func TestCalculate_InterimPaymentPlacedAfterItsInstallment(t *testing.T) {
	p := baseParams()
	p.InterimPayments = []InterimPayment{{Month: 5, Amount: decimal.NewFromInt(10000)}}
	res := mustCalculate(t, p)

	if len(res.Items) != 12 {
		t.Fatalf("expected 12 items, got %d", len(res.Items))
	}
	for _, it := range res.Items {
		if it.PaymentType == PaymentTypeInstallment && !it.Amount.Equal(decimal.NewFromInt(7000)) {
			t.Fatalf("%s: expected 7000, got %s", it.Description, it.Amount)
		}
	}

	inst5, balloon := res.Items[5], res.Items[6]
	if inst5.Description != "Installment 5" {
		t.Fatalf("expected Installment 5 at index 5, got %q", inst5.Description)
	}
	if balloon.PaymentType != PaymentTypeBalloon || !balloon.Amount.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("unexpected balloon item: %+v", balloon)
	}
	if balloon.Description != "Interim Payment (month 5)" {
		t.Fatalf("unexpected balloon description %q", balloon.Description)
	}
	if balloon.DueDate != inst5.DueDate {
		t.Fatalf("balloon due %s, installment due %s", balloon.DueDate, inst5.DueDate)
	}
	assertTotal(t, res)
}

func TestCalculate_InterimPaymentsKeepDeclarationOrder(t *testing.T) {
	p := baseParams()
	p.InstallmentCount = 3
	p.InterimPayments = []InterimPayment{
		{Month: 2, Amount: decimal.RequireFromString("300")},
		{Month: 1, Amount: decimal.RequireFromString("100")},
		{Month: 2, Amount: decimal.RequireFromString("200")},
	}
	res := mustCalculate(t, p)

	var got []string
	for _, it := range res.Items {
		if it.PaymentType == PaymentTypeBalloon {
			got = append(got, it.Amount.StringFixed(2))
		}
	}
	want := []string{"100.00", "300.00", "200.00"}
	if len(got) != len(want) {
		t.Fatalf("expected %d balloons, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("balloon order %v, want %v", got, want)
		}
	}
	if len(res.Items) != 1+3+3 {
		t.Fatalf("expected 7 items, got %d", len(res.Items))
	}
	assertTotal(t, res)
}

func TestCalculate_RoundingDeltaAppliedToLastInstallment(t *testing.T) {
	p := Params{
		Principal:        decimal.NewFromInt(100000),
		InstallmentCount: 3,
		StartDate:        NewDate(2025, time.January, 1),
		Currency:         "TRY",
	}
	res := mustCalculate(t, p)

	want := []string{"0.00", "33333.33", "33333.33", "33333.34"}
	for i, it := range res.Items {
		if it.Amount.StringFixed(2) != want[i] {
			t.Fatalf("item %d: got %s, want %s", i, it.Amount.StringFixed(2), want[i])
		}
	}
	if res.Items[3].Notes != "Rounding adjustment +0.01" {
		t.Fatalf("unexpected notes on adjusted installment: %q", res.Items[3].Notes)
	}
	if res.GrandTotal.StringFixed(2) != "100000.00" {
		t.Fatalf("grand total %s", res.GrandTotal)
	}
	assertTotal(t, res)
}

func TestCalculate_RoundingSkipsTrailingInterim(t *testing.T) {
	p := Params{
		Principal:        decimal.NewFromInt(1000),
		InstallmentCount: 3,
		StartDate:        NewDate(2025, time.March, 15),
		InterimPayments:  []InterimPayment{{Month: 3, Amount: decimal.NewFromInt(100)}},
	}
	res := mustCalculate(t, p)

	last := res.Items[len(res.Items)-1]
	if last.PaymentType != PaymentTypeBalloon || !last.Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("trailing interim must stay as declared, got %+v", last)
	}
	inst3 := res.Items[len(res.Items)-2]
	if inst3.Amount.StringFixed(2) != "300.00" {
		t.Fatalf("expected last installment 300.00, got %s", inst3.Amount.StringFixed(2))
	}
	if res.Items[1].Amount.StringFixed(2) != "300.00" {
		t.Fatalf("expected installment 300.00, got %s", res.Items[1].Amount.StringFixed(2))
	}
	assertTotal(t, res)

	p.Principal = decimal.NewFromInt(1101)
	res = mustCalculate(t, p)
	last = res.Items[len(res.Items)-1]
	if !last.Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("trailing interim changed to %s", last.Amount)
	}
	if got := res.Items[len(res.Items)-2].Amount.StringFixed(2); got != "333.66" {
		t.Fatalf("expected adjusted installment 333.66, got %s", got)
	}
	assertTotal(t, res)
}

func TestCalculate_ZeroInstallments(t *testing.T) {
	p := baseParams()
	p.InstallmentCount = 0
	p.MonthlyInterestRate = decimal.RequireFromString("2")
	res := mustCalculate(t, p)

	if len(res.Items) != 1 || res.Items[0].PaymentType != PaymentTypeDownPayment {
		t.Fatalf("expected only the down payment, got %+v", res.Items)
	}
	if !res.TotalInterest.IsZero() {
		t.Fatalf("expected zero interest, got %s", res.TotalInterest)
	}
	if !res.GrandTotal.Equal(p.Principal) {
		t.Fatalf("expected grand total %s, got %s", p.Principal, res.GrandTotal)
	}
}

func TestCalculate_ZeroInstallmentsRejectsInterim(t *testing.T) {
	p := baseParams()
	p.InstallmentCount = 0
	p.InterimPayments = []InterimPayment{{Month: 1, Amount: decimal.NewFromInt(10)}}

	_, err := Calculate(p)
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Code != "INTERIM_MONTH_OUT_OF_RANGE" {
		t.Fatalf("expected INTERIM_MONTH_OUT_OF_RANGE, got %v", err)
	}
}

func TestCalculate_DownPaymentAlwaysFirst(t *testing.T) {
	p := baseParams()
	p.DownPaymentAmount = decimal.Zero
	res := mustCalculate(t, p)

	if res.Items[0].PaymentType != PaymentTypeDownPayment {
		t.Fatalf("first item is %s", res.Items[0].PaymentType)
	}
	if !res.Items[0].Amount.IsZero() {
		t.Fatalf("expected zero down payment, got %s", res.Items[0].Amount)
	}
}

func TestCalculate_DownPaymentAbovePrincipalClampsFinancedBalance(t *testing.T) {
	p := baseParams()
	p.DownPaymentAmount = decimal.NewFromInt(150000)
	p.InstallmentCount = 0
	res := mustCalculate(t, p)

	if !res.PrincipalAfterDown.IsZero() {
		t.Fatalf("expected principal after down 0, got %s", res.PrincipalAfterDown)
	}
	if len(res.Items) != 1 || !res.Items[0].Amount.Equal(p.DownPaymentAmount) {
		t.Fatalf("expected only the down payment, got %+v", res.Items)
	}
}

func TestCalculate_LumpSumsAbovePrincipalRejected(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"down payment", Params{
			Principal:         decimal.NewFromInt(100),
			DownPaymentAmount: decimal.NewFromInt(150),
			InstallmentCount:  2,
			StartDate:         NewDate(2025, time.January, 1),
		}},
		{"interim payment", Params{
			Principal:        decimal.NewFromInt(1000),
			InstallmentCount: 2,
			StartDate:        NewDate(2025, time.January, 1),
			InterimPayments:  []InterimPayment{{Month: 1, Amount: decimal.NewFromInt(1500)}},
		}},
		{"down plus interim", Params{
			Principal:         decimal.NewFromInt(1000),
			DownPaymentAmount: decimal.NewFromInt(600),
			InstallmentCount:  4,
			StartDate:         NewDate(2025, time.January, 1),
			InterimPayments:   []InterimPayment{{Month: 2, Amount: decimal.RequireFromString("400.01")}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.params)
			var ve ValidationError
			if !errors.As(err, &ve) || ve.Code != "LUMP_SUMS_EXCEED_PRINCIPAL" {
				t.Fatalf("expected LUMP_SUMS_EXCEED_PRINCIPAL, got %v", err)
			}
		})
	}
}

func TestCalculate_LumpSumsEqualToPrincipal(t *testing.T) {
	p := Params{
		Principal:           decimal.NewFromInt(1000),
		DownPaymentAmount:   decimal.NewFromInt(600),
		MonthlyInterestRate: decimal.RequireFromString("2"),
		InstallmentCount:    3,
		StartDate:           NewDate(2025, time.January, 1),
		InterimPayments:     []InterimPayment{{Month: 2, Amount: decimal.NewFromInt(400)}},
	}
	res := mustCalculate(t, p)

	if !res.TotalInterest.IsZero() {
		t.Fatalf("expected zero interest, got %s", res.TotalInterest)
	}
	for _, it := range res.Items {
		if it.PaymentType == PaymentTypeInstallment && !it.Amount.IsZero() {
			t.Fatalf("expected zero installments, got %s for %s", it.Amount, it.Description)
		}
	}
	assertTotal(t, res)
}

func TestReconcile_RejectsNegativeInstallment(t *testing.T) {
	items := []Item{
		{Description: "Down Payment", PaymentType: PaymentTypeDownPayment, Amount: decimal.NewFromInt(150)},
		{Description: "Installment 1", PaymentType: PaymentTypeInstallment, Amount: decimal.Zero},
	}

	_, err := Reconcile(items, decimal.NewFromInt(100))
	var ae ArithmeticError
	if !errors.As(err, &ae) {
		t.Fatalf("expected arithmetic error, got %v", err)
	}
}

func TestCalculate_MonthEndRollsOver(t *testing.T) {
	p := Params{
		Principal:        decimal.NewFromInt(300),
		InstallmentCount: 3,
		StartDate:        NewDate(2025, time.January, 31),
	}
	res := mustCalculate(t, p)

	want := []string{"2025-01-31", "2025-03-03", "2025-03-31", "2025-05-01"}
	for i, it := range res.Items {
		if it.DueDate.String() != want[i] {
			t.Fatalf("item %d: due %s, want %s", i, it.DueDate, want[i])
		}
	}
}

func TestCalculate_ItemCountAndTotalAcrossInputs(t *testing.T) {
	cases := []struct {
		principal string
		down      string
		rate      string
		n         int
		interim   []InterimPayment
	}{
		{"1000", "0", "0", 7, nil},
		{"999.99", "10.01", "0.75", 12, nil},
		{"250000", "37500", "1.99", 36, []InterimPayment{{Month: 6, Amount: decimal.RequireFromString("12345.67")}, {Month: 36, Amount: decimal.RequireFromString("5000")}}},
		{"10", "0", "3.333", 9, []InterimPayment{{Month: 9, Amount: decimal.RequireFromString("1.11")}}},
		{"0", "0", "5", 4, nil},
	}

	for _, tc := range cases {
		p := Params{
			Principal:           decimal.RequireFromString(tc.principal),
			DownPaymentAmount:   decimal.RequireFromString(tc.down),
			MonthlyInterestRate: decimal.RequireFromString(tc.rate),
			InstallmentCount:    tc.n,
			StartDate:           NewDate(2024, time.February, 29),
			Currency:            "EUR",
			InterimPayments:     tc.interim,
		}
		res := mustCalculate(t, p)
		if len(res.Items) != 1+tc.n+len(tc.interim) {
			t.Fatalf("principal %s: expected %d items, got %d", tc.principal, 1+tc.n+len(tc.interim), len(res.Items))
		}
		if res.Items[0].PaymentType != PaymentTypeDownPayment {
			t.Fatalf("principal %s: first item %s", tc.principal, res.Items[0].PaymentType)
		}
		assertTotal(t, res)
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	p := baseParams()
	p.MonthlyInterestRate = decimal.RequireFromString("0.9")
	a := mustCalculate(t, p)
	b := mustCalculate(t, p)

	if len(a.Items) != len(b.Items) {
		t.Fatalf("item count differs")
	}
	for i := range a.Items {
		if !a.Items[i].Amount.Equal(b.Items[i].Amount) || a.Items[i].DueDate != b.Items[i].DueDate {
			t.Fatalf("item %d differs between runs", i)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		code   string
	}{
		{"negative principal", func(p *Params) { p.Principal = decimal.NewFromInt(-1) }, "PRINCIPAL_INVALID"},
		{"negative down payment", func(p *Params) { p.DownPaymentAmount = decimal.NewFromInt(-1) }, "DOWN_PAYMENT_INVALID"},
		{"negative rate", func(p *Params) { p.MonthlyInterestRate = decimal.RequireFromString("-0.1") }, "INTEREST_RATE_INVALID"},
		{"negative installment count", func(p *Params) { p.InstallmentCount = -1 }, "INSTALLMENT_COUNT_INVALID"},
		{"missing start date", func(p *Params) { p.StartDate = Date{} }, "START_DATE_INVALID"},
		{"interim month zero", func(p *Params) {
			p.InterimPayments = []InterimPayment{{Month: 0, Amount: decimal.NewFromInt(1)}}
		}, "INTERIM_MONTH_OUT_OF_RANGE"},
		{"interim month past last installment", func(p *Params) {
			p.InterimPayments = []InterimPayment{{Month: 11, Amount: decimal.NewFromInt(1)}}
		}, "INTERIM_MONTH_OUT_OF_RANGE"},
		{"negative interim amount", func(p *Params) {
			p.InterimPayments = []InterimPayment{{Month: 2, Amount: decimal.NewFromInt(-5)}}
		}, "INTERIM_AMOUNT_INVALID"},
		{"down payment above principal", func(p *Params) { p.DownPaymentAmount = decimal.NewFromInt(100001) }, "LUMP_SUMS_EXCEED_PRINCIPAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseParams()
			tt.mutate(&p)

			_, err := Calculate(p)
			var ve ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ve.Code != tt.code {
				t.Fatalf("expected code %s, got %s", tt.code, ve.Code)
			}
		})
	}
}

func TestReconcile_DoesNotMutateInput(t *testing.T) {
	items := []Item{
		{Description: "Down Payment", PaymentType: PaymentTypeDownPayment, Amount: decimal.Zero},
		{Description: "Installment 1", PaymentType: PaymentTypeInstallment, Amount: decimal.RequireFromString("49.99")},
		{Description: "Installment 2", PaymentType: PaymentTypeInstallment, Amount: decimal.RequireFromString("49.99")},
	}

	got, err := Reconcile(items, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[2].Amount.StringFixed(2) != "50.01" {
		t.Fatalf("expected 50.01, got %s", got[2].Amount.StringFixed(2))
	}
	if items[2].Amount.StringFixed(2) != "49.99" || items[2].Notes != "" {
		t.Fatalf("input slice was mutated: %+v", items[2])
	}
}

func TestReconcile_SingleItemUntouched(t *testing.T) {
	items := []Item{{PaymentType: PaymentTypeDownPayment, Amount: decimal.NewFromInt(5)}}
	got, err := Reconcile(items, decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got[0].Amount.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("single item must not be adjusted, got %s", got[0].Amount)
	}
}

func TestParsePaymentType(t *testing.T) {
	for _, s := range []string{"DownPayment", "Installment", "Balloon", "DeliveryPayment", "InterimPayment", "Other"} {
		if _, err := ParsePaymentType(s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
	if _, err := ParsePaymentType("Refund"); err == nil {
		t.Fatalf("expected error for unknown payment type")
	}
}

package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"paymentplan/internal/schedule"
)

type Plan struct {
	ID                  string          `json:"id"`
	TenantID            string          `json:"tenantId"`
	Reference           string          `json:"reference,omitempty"`
	Currency            string          `json:"currency"`
	Principal           decimal.Decimal `json:"principal"`
	DownPaymentAmount   decimal.Decimal `json:"downPaymentAmount"`
	MonthlyInterestRate decimal.Decimal `json:"monthlyInterestRate"`
	InstallmentCount    int             `json:"installmentCount"`
	StartDate           schedule.Date   `json:"startDate"`
	TotalInterest       decimal.Decimal `json:"totalInterest"`
	GrandTotal          decimal.Decimal `json:"grandTotal"`
	PrincipalAfterDown  decimal.Decimal `json:"principalAfterDown"`
	CreatedAt           time.Time       `json:"createdAt"`
	Items               []schedule.Item `json:"items,omitempty"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert stores the plan header and its items in tx and returns the plan id.
func Insert(ctx context.Context, tx pgx.Tx, tenantID, reference string, p schedule.Params, res schedule.Result) (string, error) {
	const qPlan = `
INSERT INTO payment_plans (
  tenant_id, reference, currency, principal, down_payment, monthly_interest_rate,
  installment_count, start_date, total_interest, grand_total, principal_after_down
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id
`
	var id string
	if err := tx.QueryRow(ctx, qPlan,
		tenantID, reference, p.Currency,
		p.Principal.String(), p.DownPaymentAmount.String(), p.MonthlyInterestRate.String(),
		p.InstallmentCount, p.StartDate.Time(),
		res.TotalInterest.String(), res.GrandTotal.String(), res.PrincipalAfterDown.String(),
	).Scan(&id); err != nil {
		return "", fmt.Errorf("insert plan: %w", err)
	}

	const qItem = `
INSERT INTO payment_plan_items (plan_id, sequence, description, payment_type, amount, due_date, currency, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
`
	b := &pgx.Batch{}
	for i, it := range res.Items {
		b.Queue(qItem, id, i, it.Description, string(it.PaymentType), it.Amount.StringFixed(schedule.Scale), it.DueDate.Time(), it.Currency, it.Notes)
	}
	if err := tx.SendBatch(ctx, b).Close(); err != nil {
		return "", fmt.Errorf("insert plan items: %w", err)
	}
	return id, nil
}

func (r *Repository) GetByID(ctx context.Context, tenantID, id string) (*Plan, error) {
	const q = `
SELECT id, tenant_id, reference, currency, principal::text, down_payment::text, monthly_interest_rate::text,
       installment_count, start_date::text, total_interest::text, grand_total::text, principal_after_down::text, created_at
FROM payment_plans
WHERE id = $1 AND tenant_id = $2
`
	p, err := scanPlan(r.db.QueryRow(ctx, q, id, tenantID))
	if err != nil {
		return nil, err
	}

	items, err := r.ListItems(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Items = items
	return p, nil
}

func (r *Repository) ListByTenant(ctx context.Context, tenantID string) ([]Plan, error) {
	const q = `
SELECT id, tenant_id, reference, currency, principal::text, down_payment::text, monthly_interest_rate::text,
       installment_count, start_date::text, total_interest::text, grand_total::text, principal_after_down::text, created_at
FROM payment_plans
WHERE tenant_id = $1
ORDER BY created_at DESC
`
	rows, err := r.db.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Plan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repository) ListItems(ctx context.Context, planID string) ([]schedule.Item, error) {
	const q = `
SELECT description, payment_type, amount::text, due_date::text, currency, COALESCE(notes, '')
FROM payment_plan_items
WHERE plan_id = $1
ORDER BY sequence ASC
`
	rows, err := r.db.Query(ctx, q, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []schedule.Item{}
	for rows.Next() {
		var it schedule.Item
		var paymentType, amount, due string
		if err := rows.Scan(&it.Description, &paymentType, &amount, &due, &it.Currency, &it.Notes); err != nil {
			return nil, err
		}
		if it.PaymentType, err = schedule.ParsePaymentType(paymentType); err != nil {
			return nil, err
		}
		if it.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("item amount: %w", err)
		}
		if it.DueDate, err = schedule.ParseDate(due); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func scanPlan(row pgx.Row) (*Plan, error) {
	var p Plan
	var principal, down, rate, start, interest, total, after string
	if err := row.Scan(
		&p.ID, &p.TenantID, &p.Reference, &p.Currency, &principal, &down, &rate,
		&p.InstallmentCount, &start, &interest, &total, &after, &p.CreatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&p.Principal, principal},
		{&p.DownPaymentAmount, down},
		{&p.MonthlyInterestRate, rate},
		{&p.TotalInterest, interest},
		{&p.GrandTotal, total},
		{&p.PrincipalAfterDown, after},
	} {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return nil, fmt.Errorf("plan %s: %w", p.ID, err)
		}
	}
	if p.StartDate, err = schedule.ParseDate(start); err != nil {
		return nil, err
	}
	return &p, nil
}

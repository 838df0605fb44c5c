package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"

	"paymentplan/pkg/db"
)

const (
	TypePlanCreated = "PLAN_CREATED"
)

type Event struct {
	ID         string `json:"id"`
	PlanID     string `json:"planId"`
	EventType  string `json:"eventType"`
	Summary    string `json:"summary"`
	Actor      string `json:"actor"`
	OccurredAt string `json:"occurredAt"`
	Data       any    `json:"data,omitempty"`
}

func Insert(ctx context.Context, tx pgx.Tx, planID, eventType, summary, actor string, occurredAt time.Time, data any) error {
	var s *string
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return err
		}
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO plan_events (plan_id, event_type, summary, actor, occurred_at, data)
VALUES ($1, $2, $3, $4, $5, CAST($6 AS jsonb))
`
	_, err := tx.Exec(ctx, q, planID, eventType, summary, actor, occurredAt, s)
	return err
}

func ListByPlan(ctx context.Context, q db.Querier, planID string) ([]Event, error) {
	const sql = `
SELECT id, plan_id, event_type, summary, actor, occurred_at::text, COALESCE(data, '{}'::jsonb)
FROM plan_events
WHERE plan_id = $1
ORDER BY occurred_at ASC, created_at ASC
`
	rows, err := q.Query(ctx, sql, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.PlanID, &e.EventType, &e.Summary, &e.Actor, &e.OccurredAt, &e.Data); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

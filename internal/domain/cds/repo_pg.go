package cds

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type feedbackRepoPG struct{ pool *pgxpool.Pool }

// NewFeedbackRepoPG returns a Postgres-backed feedback store, creating its
// table on first use.
func NewFeedbackRepoPG(ctx context.Context, pool *pgxpool.Pool) (FeedbackRepository, error) {
	r := &feedbackRepoPG{pool: pool}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *feedbackRepoPG) conn() queryable { return r.pool }

func (r *feedbackRepoPG) ensureSchema(ctx context.Context) error {
	_, err := r.conn().Exec(ctx, `
		CREATE TABLE IF NOT EXISTS card_feedback (
			id UUID PRIMARY KEY,
			service_id TEXT NOT NULL,
			card_uuid TEXT NOT NULL,
			outcome TEXT NOT NULL,
			override_reasons JSONB,
			outcome_timestamp TEXT,
			received_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

const feedbackCols = `id, service_id, card_uuid, outcome, override_reasons, outcome_timestamp, received_at`

func (r *feedbackRepoPG) scanFeedback(row pgx.Row) (*FeedbackRecord, error) {
	var (
		rec     FeedbackRecord
		reasons []byte
	)
	err := row.Scan(&rec.ID, &rec.ServiceID, &rec.CardUUID, &rec.Outcome, &reasons, &rec.OutcomeTimestamp, &rec.ReceivedAt)
	if err != nil {
		return nil, err
	}
	if len(reasons) > 0 {
		if err := json.Unmarshal(reasons, &rec.OverrideReasons); err != nil {
			return nil, err
		}
	}
	return &rec, nil
}

func (r *feedbackRepoPG) Record(ctx context.Context, serviceID string, fb *FeedbackRequest) error {
	reasons, err := json.Marshal(fb.OverrideReasons)
	if err != nil {
		return err
	}
	_, err = r.conn().Exec(ctx, `
		INSERT INTO card_feedback (id, service_id, card_uuid, outcome, override_reasons, outcome_timestamp)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		uuid.New(), serviceID, fb.Card, fb.Outcome, reasons, fb.OutcomeTimestamp)
	return err
}

func (r *feedbackRepoPG) ListByService(ctx context.Context, serviceID string, limit, offset int) ([]*FeedbackRecord, int, error) {
	var total int
	if err := r.conn().QueryRow(ctx, `SELECT COUNT(*) FROM card_feedback WHERE service_id = $1`, serviceID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn().Query(ctx, `
		SELECT `+feedbackCols+` FROM card_feedback
		WHERE service_id = $1 ORDER BY received_at DESC LIMIT $2 OFFSET $3`,
		serviceID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*FeedbackRecord
	for rows.Next() {
		rec, err := r.scanFeedback(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

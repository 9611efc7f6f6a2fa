package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Attempt is one payment verification attempt, success or not. Support works
// from this log when a shopper lands in the "contact support" error state.
type Attempt struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	PaymentID string    `json:"payment_id"`
	Outcome   string    `json:"outcome"` // success | error
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Record(ctx context.Context, a Attempt) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO payment_verifications(id, order_id, payment_id, outcome, message)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ID, a.OrderID, a.PaymentID, a.Outcome, a.Message)
	return err
}

func (r *Repo) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, payment_id, outcome, message, created_at
		FROM payment_verifications
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.OrderID, &a.PaymentID, &a.Outcome, &a.Message, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

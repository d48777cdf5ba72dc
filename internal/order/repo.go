package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo persists the audit trail of generated order requests.
type Repo struct{ DB *pgxpool.Pool }

// InsertRequest writes one order request and its items in a single
// transaction. Idempotent on event id: replayed events are a no-op.
func (r *Repo) InsertRequest(ctx context.Context, env Envelope, p OrderRequestedPayload) error {
	var existing string
	err := r.DB.QueryRow(ctx,
		`SELECT id FROM order_requests WHERE event_id=$1`, env.EventID).Scan(&existing)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	requestID := uuid.NewString()
	ct, err := tx.Exec(ctx, `
		INSERT INTO order_requests(id, event_id, session_id, vendor_name, vendor_contact,
		                           reference, total, total_items, occurred_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (event_id) DO NOTHING`,
		requestID, env.EventID, p.SessionID, p.VendorName, p.VendorContact,
		p.Reference, p.Total, p.TotalItems, env.OccurredAt,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		// lost the race to a concurrent worker
		return nil
	}

	for _, it := range p.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_request_items(request_id, product_id, product_name, qty, unit_price)
			VALUES ($1,$2,$3,$4,$5)`,
			requestID, it.ProductID, it.ProductName, it.Qty, it.UnitPrice,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

package repository

import (
	"context"
	"fmt"

	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// payoutRepository implements the PayoutRepository interface using PostgreSQL.
type payoutRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPayoutRepository creates a new PostgreSQL-backed payout repository.
func NewPayoutRepository(pool *pgxpool.Pool, logger zerolog.Logger) PayoutRepository {
	return &payoutRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "payout").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *payoutRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// ListEligibleMerchants returns merchants with delivered, successfully paid
// orders awaiting payout.
func (r *payoutRepository) ListEligibleMerchants(ctx context.Context) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT o.merchant_id
		FROM orders o
		JOIN payments p ON p.order_id = o.id AND p.status = $1
		WHERE o.status = $2 AND NOT o.paid_out
	`

	rows, err := r.pool.Query(ctx, query, model.PaymentSuccess, model.StatusDelivered)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query eligible merchants")
		return nil, fmt.Errorf("failed to query eligible merchants: %w", err)
	}
	defer rows.Close()

	var merchants []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan merchant id: %w", err)
		}
		merchants = append(merchants, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating eligible merchants: %w", err)
	}

	return merchants, nil
}

// LockEligibleOrders returns and row-locks the merchant's payable orders.
// The lock pins paid_out for the life of the transaction so a concurrent
// cycle (should the external lock ever fail open) still cannot double-credit.
func (r *payoutRepository) LockEligibleOrders(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE merchant_id = $1
			AND status = $2
			AND NOT paid_out
			AND EXISTS (
				SELECT 1 FROM payments p
				WHERE p.order_id = orders.id AND p.status = $3
			)
		ORDER BY order_date
		FOR UPDATE OF orders
	`

	rows, err := tx.Query(ctx, query, merchantID, model.StatusDelivered, model.PaymentSuccess)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("merchant_id", merchantID.String()).
			Msg("failed to lock eligible orders")
		return nil, fmt.Errorf("failed to lock eligible orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// MarkPaidOut flags the given orders as credited. The NOT paid_out guard
// makes retries after a crash a no-op for rows that already committed.
func (r *payoutRepository) MarkPaidOut(ctx context.Context, tx pgx.Tx, orderIDs []uuid.UUID) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}

	query := `
		UPDATE orders
		SET paid_out = true, updated_at = NOW()
		WHERE id = ANY($1) AND NOT paid_out
	`

	tag, err := tx.Exec(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(orderIDs)).Msg("failed to mark orders paid out")
		return 0, fmt.Errorf("failed to mark orders paid out: %w", err)
	}

	return tag.RowsAffected(), nil
}

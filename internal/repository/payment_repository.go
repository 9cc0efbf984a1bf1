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

const paymentColumns = `id, order_id, method, amount, currency, tx_ref, status, created_at, updated_at`

// paymentRepository implements the PaymentRepository interface using PostgreSQL.
type paymentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPaymentRepository creates a new PostgreSQL-backed payment repository.
func NewPaymentRepository(pool *pgxpool.Pool, logger zerolog.Logger) PaymentRepository {
	return &paymentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "payment").Logger(),
	}
}

// Create inserts a new payment.
func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	query := `
		INSERT INTO payments (id, order_id, method, amount, currency, tx_ref, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		payment.ID, payment.OrderID, payment.Method, payment.Amount,
		payment.Currency, payment.TxRef, payment.Status, payment.CreatedAt, payment.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("payment_id", payment.ID.String()).Msg("failed to create payment")
		return fmt.Errorf("failed to create payment: %w", err)
	}

	r.logger.Debug().
		Str("payment_id", payment.ID.String()).
		Str("order_id", payment.OrderID.String()).
		Msg("payment created")

	return nil
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(
		&p.ID, &p.OrderID, &p.Method, &p.Amount, &p.Currency,
		&p.TxRef, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID retrieves a payment by its ID.
func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("payment_id", id.String()).Msg("failed to query payment")
		return nil, fmt.Errorf("failed to query payment: %w", err)
	}

	return payment, nil
}

// GetByIDForUpdate retrieves and row-locks a payment within the transaction.
func (r *paymentRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`

	payment, err := scanPayment(tx.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("payment_id", id.String()).Msg("failed to lock payment")
		return nil, fmt.Errorf("failed to lock payment: %w", err)
	}

	return payment, nil
}

// GetSuccessfulByOrder returns the SUCCESS payment for an order.
func (r *paymentRepository) GetSuccessfulByOrder(ctx context.Context, orderID uuid.UUID) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 AND status = $2`

	payment, err := scanPayment(r.pool.QueryRow(ctx, query, orderID, model.PaymentSuccess))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query successful payment")
		return nil, fmt.Errorf("failed to query successful payment: %w", err)
	}

	return payment, nil
}

// GetActiveByOrder returns the most recent non-FAILED payment for an order.
func (r *paymentRepository) GetActiveByOrder(ctx context.Context, orderID uuid.UUID) (*model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE order_id = $1 AND status != $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	payment, err := scanPayment(r.pool.QueryRow(ctx, query, orderID, model.PaymentFailed))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query active payment")
		return nil, fmt.Errorf("failed to query active payment: %w", err)
	}

	return payment, nil
}

// UpdateStatus moves a payment from PENDING to a terminal status. Payments
// are immutable once terminal; the PENDING guard enforces that in the
// database regardless of caller behaviour.
func (r *paymentRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, to model.PaymentStatus) (bool, error) {
	query := `
		UPDATE payments
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := tx.Exec(ctx, query, id, model.PaymentPending, to)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("payment_id", id.String()).
			Str("to", string(to)).
			Msg("failed to update payment status")
		return false, fmt.Errorf("failed to update payment status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

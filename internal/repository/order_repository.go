package repository

import (
	"context"
	"fmt"
	"time"

	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `id, customer_id, merchant_id, merchant_product_id, quantity,
		total_price, status, coupon_id, paid_out, order_date, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Create inserts a new order within the provided transaction.
func (r *orderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, customer_id, merchant_id, merchant_product_id, quantity,
			total_price, status, coupon_id, paid_out, order_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.CustomerID, order.MerchantID, order.MerchantProductID,
		order.Quantity, order.TotalPrice, order.Status, order.CouponID,
		order.PaidOut, order.OrderDate, order.UpdatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.MerchantID, &o.MerchantProductID, &o.Quantity,
		&o.TotalPrice, &o.Status, &o.CouponID, &o.PaidOut, &o.OrderDate, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByID retrieves an order by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return order, nil
}

// GetByIDForUpdate retrieves and row-locks an order within the transaction.
func (r *orderRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	order, err := scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	return order, nil
}

// UpdateStatus moves an order between statuses as a compare-and-swap. The
// WHERE clause on the current status makes concurrent transitions race
// safely: only one writer observes rows affected.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to model.Status) (bool, error) {
	query := `
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := tx.Exec(ctx, query, id, from, to)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("failed to update order status")
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	updated := tag.RowsAffected() == 1
	if updated {
		r.logger.Debug().
			Str("order_id", id.String()).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("order status updated")
	}

	return updated, nil
}

// ListByMerchant returns a merchant's orders, newest first.
func (r *orderRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE merchant_id = $1
		ORDER BY order_date DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, merchantID, limit, offset)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("merchant_id", merchantID.String()).
			Msg("failed to query merchant orders")
		return nil, fmt.Errorf("failed to query merchant orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// ListExpiredPending returns orders stuck in PENDING since before the cutoff,
// row-locked for the reaper. SKIP LOCKED keeps concurrent reapers and
// in-flight payment confirmations from blocking each other.
func (r *orderRepository) ListExpiredPending(ctx context.Context, tx pgx.Tx, cutoff time.Time, limit int) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = $1 AND order_date < $2
		ORDER BY order_date
		LIMIT $3
		FOR UPDATE SKIP LOCKED
	`

	rows, err := tx.Query(ctx, query, model.StatusPending, cutoff, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query expired pending orders")
		return nil, fmt.Errorf("failed to query expired pending orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]model.Order, error) {
	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

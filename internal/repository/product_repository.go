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

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed merchant product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// GetByID retrieves a merchant product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.MerchantProduct, error) {
	query := `
		SELECT id, merchant_id, product_id, name, price, stock, created_at
		FROM merchant_products
		WHERE id = $1
	`

	var p model.MerchantProduct
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.MerchantID, &p.ProductID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id.String()).Msg("merchant product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query merchant product")
		return nil, fmt.Errorf("failed to query merchant product: %w", err)
	}

	return &p, nil
}

// DecrementStock atomically subtracts quantity from stock. The guard in the
// WHERE clause is the serialization point: two concurrent checkouts against
// the last unit race on rows affected, and exactly one wins.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error {
	query := `
		UPDATE merchant_products
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`

	tag, err := tx.Exec(ctx, query, id, quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", id.String()).
			Int("quantity", quantity).
			Msg("failed to decrement stock")
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("product_id", id.String()).
			Int("quantity", quantity).
			Msg("insufficient stock")
		return model.ErrInsufficientStock
	}

	return nil
}

// RestoreStock adds quantity back to stock.
func (r *productRepository) RestoreStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error {
	query := `
		UPDATE merchant_products
		SET stock = stock + $2
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, id, quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", id.String()).
			Int("quantity", quantity).
			Msg("failed to restore stock")
		return fmt.Errorf("failed to restore stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

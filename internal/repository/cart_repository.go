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

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// GetOrCreate returns the cart with the given ID, creating it lazily.
func (r *cartRepository) GetOrCreate(ctx context.Context, cartID uuid.UUID) (*model.Cart, error) {
	query := `
		INSERT INTO carts (id, created_at)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET id = carts.id
		RETURNING id, customer_id, created_at
	`

	var cart model.Cart
	err := r.pool.QueryRow(ctx, query, cartID, time.Now()).Scan(
		&cart.ID, &cart.CustomerID, &cart.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to get or create cart")
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}

	return &cart, nil
}

// AddItem inserts a line item, merging quantity with an existing line for
// the same merchant product.
func (r *cartRepository) AddItem(ctx context.Context, item *model.CartItem) error {
	query := `
		INSERT INTO cart_items (id, cart_id, merchant_product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, merchant_product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`

	_, err := r.pool.Exec(ctx, query, item.ID, item.CartID, item.MerchantProductID, item.Quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", item.CartID.String()).
			Str("product_id", item.MerchantProductID.String()).
			Msg("failed to add cart item")
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	r.logger.Debug().
		Str("cart_id", item.CartID.String()).
		Str("product_id", item.MerchantProductID.String()).
		Int("quantity", item.Quantity).
		Msg("cart item added")

	return nil
}

// GetItems returns all line items in a cart.
func (r *cartRepository) GetItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error) {
	query := `
		SELECT id, cart_id, merchant_product_id, quantity
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.MerchantProductID, &item.Quantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// Claim binds the cart to the customer. The guard on customer_id makes the
// claim idempotent for the owner while rejecting a cart some other customer
// already checked out from.
func (r *cartRepository) Claim(ctx context.Context, tx pgx.Tx, cartID, customerID uuid.UUID) error {
	query := `
		UPDATE carts
		SET customer_id = $2
		WHERE id = $1 AND (customer_id IS NULL OR customer_id = $2)
	`

	tag, err := tx.Exec(ctx, query, cartID, customerID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to claim cart")
		return fmt.Errorf("failed to claim cart: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("cart_id", cartID.String()).
			Str("customer_id", customerID.String()).
			Msg("cart claim rejected, cart owned by another customer")
		return model.ErrForbidden
	}

	return nil
}

// Delete removes the cart and its items within the transaction. Items
// cascade from the carts row.
func (r *cartRepository) Delete(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to delete cart")
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	return nil
}

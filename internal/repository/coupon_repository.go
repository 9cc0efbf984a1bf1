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

const couponColumns = `id, merchant_id, product_id, discount_percent, valid_from,
		valid_until, max_usage, max_users, usage_count, active, created_at`

// couponRepository implements the CouponRepository interface using PostgreSQL.
type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

// Create inserts a new coupon.
func (r *couponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	query := `
		INSERT INTO coupons (id, merchant_id, product_id, discount_percent, valid_from,
			valid_until, max_usage, max_users, usage_count, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		coupon.ID, coupon.MerchantID, coupon.ProductID, coupon.DiscountPercent,
		coupon.ValidFrom, coupon.ValidUntil, coupon.MaxUsage, coupon.MaxUsers,
		coupon.UsageCount, coupon.Active, coupon.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", coupon.ID.String()).Msg("failed to create coupon")
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	r.logger.Debug().Str("coupon_id", coupon.ID.String()).Msg("coupon created")

	return nil
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
		&c.ID, &c.MerchantID, &c.ProductID, &c.DiscountPercent, &c.ValidFrom,
		&c.ValidUntil, &c.MaxUsage, &c.MaxUsers, &c.UsageCount, &c.Active, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID retrieves a coupon by its ID.
func (r *couponRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	return coupon, nil
}

// Redeem atomically consumes one usage slot of the coupon for the customer.
// The row lock taken by FOR UPDATE serializes concurrent redemptions, so the
// limit checks and the counter bump observe a consistent row: redemptions can
// never jointly exceed max_usage or max_users.
func (r *couponRepository) Redeem(ctx context.Context, tx pgx.Tx, couponID, customerID uuid.UUID, now time.Time) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1 AND active FOR UPDATE`

	coupon, err := scanCoupon(tx.QueryRow(ctx, query, couponID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, model.ErrCouponNotFound
		}
		r.logger.Error().Err(err).Str("coupon_id", couponID.String()).Msg("failed to lock coupon")
		return nil, fmt.Errorf("failed to lock coupon: %w", err)
	}

	if now.Before(coupon.ValidFrom) || now.After(coupon.ValidUntil) {
		return nil, model.ErrCouponExpired
	}

	if coupon.UsageCount >= coupon.MaxUsage {
		return nil, model.ErrCouponExhausted
	}

	// The redemptions table carries one row per (coupon, customer) and is
	// the persisted distinct-user set.
	insertRedemption := `
		INSERT INTO coupon_redemptions (coupon_id, customer_id, first_redeemed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (coupon_id, customer_id) DO NOTHING
	`

	tag, err := tx.Exec(ctx, insertRedemption, couponID, customerID, now)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", couponID.String()).Msg("failed to record redemption")
		return nil, fmt.Errorf("failed to record redemption: %w", err)
	}

	if tag.RowsAffected() == 1 {
		// New customer for this coupon; enforce the distinct-user cap.
		var distinctUsers int
		countQuery := `SELECT COUNT(*) FROM coupon_redemptions WHERE coupon_id = $1`
		if err := tx.QueryRow(ctx, countQuery, couponID).Scan(&distinctUsers); err != nil {
			return nil, fmt.Errorf("failed to count coupon users: %w", err)
		}
		if distinctUsers > coupon.MaxUsers {
			return nil, model.ErrCouponUserLimit
		}
	}

	bump := `UPDATE coupons SET usage_count = usage_count + 1 WHERE id = $1`
	if _, err := tx.Exec(ctx, bump, couponID); err != nil {
		r.logger.Error().Err(err).Str("coupon_id", couponID.String()).Msg("failed to bump usage count")
		return nil, fmt.Errorf("failed to bump usage count: %w", err)
	}

	coupon.UsageCount++

	r.logger.Debug().
		Str("coupon_id", couponID.String()).
		Str("customer_id", customerID.String()).
		Int("usage_count", coupon.UsageCount).
		Msg("coupon redeemed")

	return coupon, nil
}

// Deactivate soft-deletes a merchant's coupon. Coupons are never hard-deleted
// once redeemed, so redemption history stays referentially intact.
func (r *couponRepository) Deactivate(ctx context.Context, merchantID, couponID uuid.UUID) (bool, error) {
	query := `
		UPDATE coupons
		SET active = false
		WHERE id = $1 AND merchant_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, couponID, merchantID)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", couponID.String()).Msg("failed to deactivate coupon")
		return false, fmt.Errorf("failed to deactivate coupon: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

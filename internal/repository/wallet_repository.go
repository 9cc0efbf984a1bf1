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

// walletRepository implements the WalletRepository interface using PostgreSQL.
type walletRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewWalletRepository creates a new PostgreSQL-backed wallet repository.
func NewWalletRepository(pool *pgxpool.Pool, logger zerolog.Logger) WalletRepository {
	return &walletRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "wallet").Logger(),
	}
}

// Credit adds amount to the merchant's wallet, creating the row on first
// credit. Runs inside the payout transaction so the credit commits together
// with the paid-out marks.
func (r *walletRepository) Credit(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, amount float64) error {
	query := `
		INSERT INTO wallets (merchant_id, balance, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (merchant_id)
		DO UPDATE SET balance = wallets.balance + EXCLUDED.balance, updated_at = NOW()
	`

	_, err := tx.Exec(ctx, query, merchantID, amount)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("merchant_id", merchantID.String()).
			Float64("amount", amount).
			Msg("failed to credit wallet")
		return fmt.Errorf("failed to credit wallet: %w", err)
	}

	r.logger.Debug().
		Str("merchant_id", merchantID.String()).
		Float64("amount", amount).
		Msg("wallet credited")

	return nil
}

// GetByMerchant retrieves a merchant's wallet.
func (r *walletRepository) GetByMerchant(ctx context.Context, merchantID uuid.UUID) (*model.Wallet, error) {
	query := `SELECT merchant_id, balance, updated_at FROM wallets WHERE merchant_id = $1`

	var w model.Wallet
	err := r.pool.QueryRow(ctx, query, merchantID).Scan(&w.MerchantID, &w.Balance, &w.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			// No credits yet; report an empty wallet rather than absence.
			return &model.Wallet{MerchantID: merchantID}, nil
		}
		r.logger.Error().Err(err).Str("merchant_id", merchantID.String()).Msg("failed to query wallet")
		return nil, fmt.Errorf("failed to query wallet: %w", err)
	}

	return &w, nil
}

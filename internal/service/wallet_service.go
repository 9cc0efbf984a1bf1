package service

import (
	"context"

	"bazaar/internal/model"
	"bazaar/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// walletService implements WalletService.
type walletService struct {
	walletRepo repository.WalletRepository
	logger     zerolog.Logger
}

// NewWalletService creates a new wallet service.
func NewWalletService(walletRepo repository.WalletRepository, logger zerolog.Logger) WalletService {
	return &walletService{
		walletRepo: walletRepo,
		logger:     logger.With().Str("service", "wallet").Logger(),
	}
}

// GetWallet returns the merchant's wallet balance.
func (s *walletService) GetWallet(ctx context.Context, merchantID uuid.UUID) (*model.Wallet, error) {
	return s.walletRepo.GetByMerchant(ctx, merchantID)
}

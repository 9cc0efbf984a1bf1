package service

import (
	"context"
	"fmt"
	"time"

	"bazaar/internal/model"
	"bazaar/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// couponService implements CouponService.
type couponService struct {
	couponRepo  repository.CouponRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCouponService creates a new coupon service.
func NewCouponService(
	couponRepo repository.CouponRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CouponService {
	return &couponService{
		couponRepo:  couponRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "coupon").Logger(),
	}
}

// Create creates a coupon for a merchant's product listing.
func (s *couponService) Create(ctx context.Context, merchantID, productID uuid.UUID, req *model.CouponRequest) (*model.Coupon, error) {
	if req == nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, "coupon request is required")
	}
	if req.Discount <= 0 || req.Discount > 100 {
		return nil, model.NewDomainError(model.ErrCodeValidation, "discount must be between 0 and 100 percent")
	}
	if !req.ValidFrom.Before(req.ValidUntil) {
		return nil, model.NewDomainError(model.ErrCodeValidation, "validFrom must be before validUntil")
	}
	if req.MaxUsage <= 0 {
		return nil, model.NewDomainError(model.ErrCodeValidation, "maxUsage must be positive")
	}
	if req.MaxUsers <= 0 {
		return nil, model.NewDomainError(model.ErrCodeValidation, "maxUsers must be positive")
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil || product.MerchantID != merchantID {
		return nil, model.ErrProductNotFound
	}

	coupon := &model.Coupon{
		ID:              uuid.New(),
		MerchantID:      merchantID,
		ProductID:       productID,
		DiscountPercent: req.Discount,
		ValidFrom:       req.ValidFrom,
		ValidUntil:      req.ValidUntil,
		MaxUsage:        req.MaxUsage,
		MaxUsers:        req.MaxUsers,
		Active:          true,
		CreatedAt:       time.Now(),
	}

	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("coupon_id", coupon.ID.String()).
		Str("merchant_id", merchantID.String()).
		Float64("discount", req.Discount).
		Msg("coupon created")

	return coupon, nil
}

// Delete soft-deletes a merchant's coupon. Repeated deletes succeed; a
// coupon never owned by the merchant reports not found.
func (s *couponService) Delete(ctx context.Context, merchantID, couponID uuid.UUID) error {
	found, err := s.couponRepo.Deactivate(ctx, merchantID, couponID)
	if err != nil {
		return err
	}
	if !found {
		return model.ErrCouponNotFound
	}

	s.logger.Info().
		Str("coupon_id", couponID.String()).
		Str("merchant_id", merchantID.String()).
		Msg("coupon deactivated")

	return nil
}

package service

import (
	"context"
	"fmt"

	"bazaar/internal/model"
	"bazaar/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// AddItem adds a line to the cart, creating the cart lazily on first add.
// Stock is not reserved here; it is checked and decremented at checkout.
func (s *cartService) AddItem(ctx context.Context, cartID uuid.UUID, req *model.CartItemRequest) (*model.CartItem, error) {
	if req == nil || req.ProductID == "" {
		return nil, model.NewDomainError(model.ErrCodeValidation, "productId is required")
	}
	if req.Quantity < 1 {
		return nil, model.NewDomainError(model.ErrCodeValidation, "quantity must be at least 1")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, "invalid product ID format")
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	if _, err := s.cartRepo.GetOrCreate(ctx, cartID); err != nil {
		return nil, err
	}

	item := &model.CartItem{
		ID:                uuid.New(),
		CartID:            cartID,
		MerchantProductID: productID,
		Quantity:          req.Quantity,
	}

	if err := s.cartRepo.AddItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("cart_id", cartID.String()).
		Str("product_id", productID.String()).
		Int("quantity", req.Quantity).
		Msg("item added to cart")

	return item, nil
}

// GetCart returns the cart contents.
func (s *cartService) GetCart(ctx context.Context, cartID uuid.UUID) (*model.CartResponse, error) {
	items, err := s.cartRepo.GetItems(ctx, cartID)
	if err != nil {
		return nil, err
	}

	return &model.CartResponse{
		ID:    cartID,
		Items: items,
	}, nil
}

package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"bazaar/internal/model"
	"bazaar/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	couponRepo  repository.CouponRepository
	cartRepo    repository.CartRepository
	paymentRepo repository.PaymentRepository
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	cartRepo repository.CartRepository,
	paymentRepo repository.PaymentRepository,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		cartRepo:    cartRepo,
		paymentRepo: paymentRepo,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// roundToCents keeps stored totals at two decimal places.
func roundToCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Checkout converts the customer's cart into one order per line item. Coupon
// redemption, stock decrements and order inserts run in a single transaction:
// either every line commits or none does, and concurrent checkouts can never
// drive stock negative or a coupon past its limits.
func (s *orderService) Checkout(ctx context.Context, customerID, cartID uuid.UUID, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	if req == nil || req.PaymentMethod == "" || req.Currency == "" {
		return nil, model.NewDomainError(model.ErrCodeValidation, "paymentMethod and currency are required")
	}

	items, err := s.cartRepo.GetItems(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, model.ErrCartEmpty
	}

	var couponID *uuid.UUID
	if req.CouponID != "" {
		parsed, err := uuid.Parse(req.CouponID)
		if err != nil {
			return nil, model.NewDomainError(model.ErrCodeValidation, "invalid coupon ID format")
		}
		couponID = &parsed
	}

	// Resolve products up front so validation failures surface before any
	// locks are taken.
	products := make(map[uuid.UUID]*model.MerchantProduct, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, model.NewDomainError(model.ErrCodeValidation, "quantity must be at least 1")
		}
		product, err := s.productRepo.GetByID(ctx, item.MerchantProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to load product: %w", err)
		}
		if product == nil {
			return nil, model.ErrProductNotFound
		}
		products[item.MerchantProductID] = product
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	// A cart may have been built anonymously; bind it to the paying
	// customer before the lines are converted. A cart another customer
	// already owns cannot be checked out.
	if err = s.cartRepo.Claim(ctx, tx, cartID, customerID); err != nil {
		return nil, err
	}

	var coupon *model.Coupon
	if couponID != nil {
		coupon, err = s.couponRepo.Redeem(ctx, tx, *couponID, customerID, time.Now())
		if err != nil {
			s.logger.Warn().
				Str("coupon_id", couponID.String()).
				Err(err).
				Msg("coupon redemption failed")
			return nil, err
		}
	}

	now := time.Now()
	orders := make([]model.Order, 0, len(items))
	for _, item := range items {
		product := products[item.MerchantProductID]

		if err = s.productRepo.DecrementStock(ctx, tx, product.ID, item.Quantity); err != nil {
			return nil, err
		}

		total := product.Price * float64(item.Quantity)
		var appliedCoupon *uuid.UUID
		if coupon != nil && coupon.ProductID == product.ID && coupon.MerchantID == product.MerchantID {
			total *= coupon.DiscountFactor()
			c := coupon.ID
			appliedCoupon = &c
		}

		order := model.Order{
			ID:                uuid.New(),
			CustomerID:        customerID,
			MerchantID:        product.MerchantID,
			MerchantProductID: product.ID,
			Quantity:          item.Quantity,
			TotalPrice:        roundToCents(total),
			Status:            model.StatusPending,
			CouponID:          appliedCoupon,
			PaidOut:           false,
			OrderDate:         now,
			UpdatedAt:         now,
		}

		if err = s.orderRepo.Create(ctx, tx, &order); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if err = s.cartRepo.Delete(ctx, tx, cartID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to commit checkout transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Record payment intents after commit; a failure here leaves the
	// orders intact for an explicit /payments/initiate retry.
	orderIDs := make([]uuid.UUID, len(orders))
	for i, order := range orders {
		orderIDs[i] = order.ID
		payment := model.Payment{
			ID:        uuid.New(),
			OrderID:   order.ID,
			Method:    req.PaymentMethod,
			Amount:    order.TotalPrice,
			Currency:  req.Currency,
			Status:    model.PaymentPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if perr := s.paymentRepo.Create(ctx, &payment); perr != nil {
			s.logger.Error().
				Err(perr).
				Str("order_id", order.ID.String()).
				Msg("failed to record payment intent")
		}
	}

	s.logger.Info().
		Str("customer_id", customerID.String()).
		Int("order_count", len(orders)).
		Msg("checkout completed")

	return &model.CheckoutResponse{
		OrderID:       orders[0].ID,
		OrderIDs:      orderIDs,
		PaymentStatus: string(model.PaymentPending),
		Message:       "checkout completed, awaiting payment confirmation",
	}, nil
}

// MerchantTransition applies a merchant-driven fulfilment move. Repeating a
// transition into the state already held is a no-op success, so duplicate
// deliveries of the same instruction are harmless.
func (s *orderService) MerchantTransition(ctx context.Context, merchantID, orderID uuid.UUID, target model.Status) (*model.Order, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to transition order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	if order.MerchantID != merchantID {
		err = model.ErrForbidden
		return nil, err
	}

	if order.Status == target {
		// Already there; acknowledge without touching the row.
		if err = tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to transition order: %w", err)
		}
		return order, nil
	}

	if !order.Status.MerchantCanTransition(target) {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("from", string(order.Status)).
			Str("to", string(target)).
			Msg("illegal merchant transition")
		if order.Status.CanTransition(target) {
			// Legal in the graph but reserved for system actors.
			err = model.ErrForbidden
		} else {
			err = model.ErrInvalidTransition
		}
		return nil, err
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, tx, orderID, order.Status, target)
	if err != nil {
		return nil, err
	}
	if !updated {
		err = model.ErrInvalidTransition
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to transition order: %w", err)
	}

	order.Status = target

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("status", string(target)).
		Msg("order transitioned")

	return order, nil
}

// GetByID retrieves an order by its ID.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// ListMerchantOrders returns a merchant's orders, newest first.
func (s *orderService) ListMerchantOrders(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]model.Order, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.orderRepo.ListByMerchant(ctx, merchantID, limit, offset)
}

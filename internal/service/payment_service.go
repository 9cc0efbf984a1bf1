package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"bazaar/internal/cache"
	"bazaar/internal/model"
	"bazaar/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// paymentService implements PaymentService.
type paymentService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	idem        cache.IdempotencyStore
	logger      zerolog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	idem cache.IdempotencyStore,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		idem:        idem,
		logger:      logger.With().Str("service", "payment").Logger(),
	}
}

// Initiate records a payment intent for an order. The amount must equal the
// order total at initiation time; partial payments are rejected outright.
func (s *paymentService) Initiate(ctx context.Context, orderID uuid.UUID, method string, amount float64, currency, txRef string) (*model.Payment, error) {
	if method == "" || currency == "" {
		return nil, model.NewDomainError(model.ErrCodeValidation, "method and currency are required")
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if math.Abs(amount-order.TotalPrice) > 0.005 {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Float64("amount", amount).
			Float64("total_price", order.TotalPrice).
			Msg("payment amount mismatch")
		return nil, model.ErrAmountMismatch
	}

	// One live payment per order. Checkout records an intent already, so a
	// re-initiate hands that intent back instead of minting a sibling; a
	// settled order cannot be paid twice.
	existing, err := s.paymentRepo.GetActiveByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status == model.PaymentSuccess {
			return nil, model.ErrPaymentAlreadySettled
		}
		s.logger.Debug().
			Str("payment_id", existing.ID.String()).
			Str("order_id", orderID.String()).
			Msg("returning open payment intent")
		return existing, nil
	}

	now := time.Now()
	payment := &model.Payment{
		ID:        uuid.New(),
		OrderID:   orderID,
		Method:    method,
		Amount:    order.TotalPrice,
		Currency:  currency,
		TxRef:     txRef,
		Status:    model.PaymentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("payment_id", payment.ID.String()).
		Str("order_id", orderID.String()).
		Msg("payment initiated")

	return payment, nil
}

// Confirm applies a gateway outcome. Webhook deliveries repeat and arrive
// out of order, so confirmation is idempotent keyed by (paymentID, outcome):
// a repeat of the settled outcome is acknowledged as a no-op, while a
// conflicting outcome after settlement is rejected. The payment flip and the
// order transition commit in one transaction.
func (s *paymentService) Confirm(ctx context.Context, paymentID uuid.UUID, outcome model.PaymentStatus) (*model.Payment, error) {
	if outcome != model.PaymentSuccess && outcome != model.PaymentFailed {
		return nil, model.NewDomainError(model.ErrCodeValidation, "outcome must be SUCCESS or FAILED")
	}

	// Fast path: this exact notification was already applied. The redis
	// mark is advisory; the PENDING guard below stays authoritative.
	idemKey := paymentID.String() + ":" + string(outcome)
	if seen, err := s.idem.Seen(ctx, "payment-confirm", idemKey); err == nil && seen {
		s.logger.Debug().Str("payment_id", paymentID.String()).Msg("duplicate confirmation skipped")
		return s.paymentRepo.GetByID(ctx, paymentID)
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	payment, err := s.paymentRepo.GetByIDForUpdate(ctx, tx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		err = model.ErrPaymentNotFound
		return nil, err
	}

	if payment.Status == outcome {
		// Duplicate delivery of the settled outcome.
		if err = tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to confirm payment: %w", err)
		}
		_, _ = s.idem.MarkOnce(ctx, "payment-confirm", idemKey)
		return payment, nil
	}

	if payment.Status.Terminal() {
		err = model.ErrPaymentAlreadySettled
		return nil, err
	}

	updated, err := s.paymentRepo.UpdateStatus(ctx, tx, paymentID, outcome)
	if err != nil {
		return nil, err
	}
	if !updated {
		err = model.ErrPaymentAlreadySettled
		return nil, err
	}

	order, err := s.orderRepo.GetByIDForUpdate(ctx, tx, payment.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	switch outcome {
	case model.PaymentSuccess:
		if order.Status == model.StatusPending {
			if _, err = s.orderRepo.UpdateStatus(ctx, tx, order.ID, model.StatusPending, model.StatusPaid); err != nil {
				return nil, err
			}
		} else if order.Status != model.StatusPaid {
			// The order left PENDING by another path, e.g. the reaper
			// cancelled it before the gateway settled.
			s.logger.Warn().
				Str("order_id", order.ID.String()).
				Str("status", string(order.Status)).
				Msg("payment succeeded for order no longer pending")
			err = model.ErrInvalidTransition
			return nil, err
		}

	case model.PaymentFailed:
		if order.Status == model.StatusPending {
			if _, err = s.orderRepo.UpdateStatus(ctx, tx, order.ID, model.StatusPending, model.StatusCancelled); err != nil {
				return nil, err
			}
			if err = s.productRepo.RestoreStock(ctx, tx, order.MerchantProductID, order.Quantity); err != nil {
				return nil, err
			}
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}

	_, _ = s.idem.MarkOnce(ctx, "payment-confirm", idemKey)

	payment.Status = outcome

	s.logger.Info().
		Str("payment_id", paymentID.String()).
		Str("order_id", payment.OrderID.String()).
		Str("outcome", string(outcome)).
		Msg("payment confirmed")

	return payment, nil
}

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

// refundService implements RefundService.
type refundService struct {
	refundRepo  repository.RefundRepository
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	logger      zerolog.Logger
}

// NewRefundService creates a new refund service.
func NewRefundService(
	refundRepo repository.RefundRepository,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	logger zerolog.Logger,
) RefundService {
	return &refundService{
		refundRepo:  refundRepo,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		logger:      logger.With().Str("service", "refund").Logger(),
	}
}

// SubmitRefund files a refund request against a customer's order. The order
// must be in paid custody (PAID, PROCESSING, SHIPPED or DELIVERED) and not
// yet settled to the merchant; at most one open request may exist per order.
func (s *refundService) SubmitRefund(ctx context.Context, customerID, orderID uuid.UUID, req *model.SubmitRefundRequest) (*model.RefundRequest, error) {
	if req == nil || req.Reason == "" {
		return nil, model.NewDomainError(model.ErrCodeValidation, "reason is required")
	}
	if req.AccountNumber == "" || req.BankName == "" || req.AccountName == "" {
		return nil, model.NewDomainError(model.ErrCodeValidation, "bank details are required")
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if order.CustomerID != customerID {
		return nil, model.ErrForbidden
	}
	if !order.Refundable() {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("status", string(order.Status)).
			Bool("paid_out", order.PaidOut).
			Msg("refund requested for non-refundable order")
		return nil, model.ErrOrderNotRefundable
	}

	now := time.Now()
	refund := &model.RefundRequest{
		ID:            uuid.New(),
		OrderID:       orderID,
		CustomerID:    customerID,
		Reason:        req.Reason,
		AccountNumber: req.AccountNumber,
		BankName:      req.BankName,
		AccountName:   req.AccountName,
		Status:        model.RefundPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.refundRepo.CreateRefund(ctx, refund); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("refund_id", refund.ID.String()).
		Str("order_id", orderID.String()).
		Msg("refund request submitted")

	return refund, nil
}

// ResolveRefund applies a decision to a pending refund request. APPROVED
// moves the order to REFUNDED and the request to its terminal REFUNDED state
// in one transaction, then records the reverse payment; REJECTED closes the
// request without touching the order.
func (s *refundService) ResolveRefund(ctx context.Context, requestID uuid.UUID, decision model.RefundStatus) (*model.RefundRequest, error) {
	if decision != model.RefundApproved && decision != model.RefundRejected {
		return nil, model.NewDomainError(model.ErrCodeValidation, "decision must be APPROVED or REJECTED")
	}

	refund, err := s.refundRepo.GetRefundByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if refund == nil {
		return nil, model.ErrRefundNotFound
	}
	if refund.Status != model.RefundPending {
		return nil, model.ErrRefundAlreadyResolved
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve refund: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if decision == model.RefundRejected {
		updated, uerr := s.refundRepo.UpdateRefundStatus(ctx, tx, requestID, model.RefundRejected)
		if uerr != nil {
			err = uerr
			return nil, err
		}
		if !updated {
			err = model.ErrRefundAlreadyResolved
			return nil, err
		}
		if err = tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to resolve refund: %w", err)
		}
		refund.Status = model.RefundRejected
		s.logger.Info().Str("refund_id", requestID.String()).Msg("refund rejected")
		return refund, nil
	}

	order, err := s.orderRepo.GetByIDForUpdate(ctx, tx, refund.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}
	if order.PaidOut {
		// The payout cycle settled this order after the request was
		// filed; the merchant already holds the money.
		err = model.ErrOrderNotRefundable
		return nil, err
	}

	if order.Status != model.StatusRefunded {
		if !order.Status.CanTransition(model.StatusRefunded) {
			err = model.ErrInvalidTransition
			return nil, err
		}
		if _, err = s.orderRepo.UpdateStatus(ctx, tx, order.ID, order.Status, model.StatusRefunded); err != nil {
			return nil, err
		}
	}

	updated, err := s.refundRepo.UpdateRefundStatus(ctx, tx, requestID, model.RefundRefunded)
	if err != nil {
		return nil, err
	}
	if !updated {
		err = model.ErrRefundAlreadyResolved
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to resolve refund: %w", err)
	}

	// Audit record of the money moving back. Best effort: the refund has
	// committed either way, and the record can be reconstructed from it.
	now := time.Now()
	reverse := &model.Payment{
		ID:        uuid.New(),
		OrderID:   order.ID,
		Method:    "REFUND",
		Amount:    -order.TotalPrice,
		Currency:  "",
		TxRef:     "refund:" + requestID.String(),
		Status:    model.PaymentSuccess,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if original, perr := s.paymentRepo.GetSuccessfulByOrder(ctx, order.ID); perr == nil && original != nil {
		reverse.Currency = original.Currency
	}
	if perr := s.paymentRepo.Create(ctx, reverse); perr != nil {
		s.logger.Error().Err(perr).Str("order_id", order.ID.String()).Msg("failed to record reverse payment")
	}

	refund.Status = model.RefundRefunded

	s.logger.Info().
		Str("refund_id", requestID.String()).
		Str("order_id", order.ID.String()).
		Msg("refund approved and order refunded")

	return refund, nil
}

// SubmitComplaint files a complaint against a customer's order.
func (s *refundService) SubmitComplaint(ctx context.Context, customerID, orderID uuid.UUID, req *model.SubmitComplaintRequest) (*model.Complaint, error) {
	if req == nil || req.Title == "" || req.Description == "" {
		return nil, model.NewDomainError(model.ErrCodeValidation, "title and description are required")
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if order.CustomerID != customerID {
		return nil, model.ErrForbidden
	}

	complaint := &model.Complaint{
		ID:          uuid.New(),
		OrderID:     orderID,
		CustomerID:  customerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      model.ComplaintPending,
		CreatedAt:   time.Now(),
	}

	if err := s.refundRepo.CreateComplaint(ctx, complaint); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("complaint_id", complaint.ID.String()).
		Str("order_id", orderID.String()).
		Msg("complaint submitted")

	return complaint, nil
}

// ListComplaints returns the complaints on a customer's order.
func (s *refundService) ListComplaints(ctx context.Context, customerID, orderID uuid.UUID) ([]model.Complaint, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if order.CustomerID != customerID {
		return nil, model.ErrForbidden
	}

	return s.refundRepo.ListComplaintsByOrder(ctx, orderID)
}

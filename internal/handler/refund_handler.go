package handler

import (
	"encoding/json"
	"net/http"

	"bazaar/internal/middleware"
	"bazaar/internal/model"
	"bazaar/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RefundHandler handles customer post-order HTTP requests: order reads,
// refunds and complaints, plus the merchant-side refund resolution.
type RefundHandler struct {
	refundService service.RefundService
	orderService  service.OrderService
	logger        zerolog.Logger
}

// NewRefundHandler creates a new refund handler.
func NewRefundHandler(refundService service.RefundService, orderService service.OrderService, logger zerolog.Logger) *RefundHandler {
	return &RefundHandler{
		refundService: refundService,
		orderService:  orderService,
		logger:        logger.With().Str("handler", "refund").Logger(),
	}
}

func orderIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(r.PathValue("orderId"))
	if err != nil {
		writeValidationError(w, model.ErrCodeValidation, "invalid order ID format")
		return uuid.Nil, false
	}
	return orderID, true
}

// GetOrder handles GET /customers/orders/{orderId}.
func (h *RefundHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	orderID, ok := orderIDFromPath(w, r)
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(r.Context(), orderID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	if order == nil {
		writeError(w, model.ErrOrderNotFound, h.logger)
		return
	}
	if order.CustomerID != p.ID {
		writeError(w, model.ErrForbidden, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// SubmitRefund handles POST /customers/orders/{orderId}/refund.
func (h *RefundHandler) SubmitRefund(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	orderID, ok := orderIDFromPath(w, r)
	if !ok {
		return
	}

	var req model.SubmitRefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	refund, err := h.refundService.SubmitRefund(r.Context(), p.ID, orderID, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, refund)
}

// ResolveRefund handles PUT /refunds/{requestId}. Only merchants may
// resolve refund requests.
func (h *RefundHandler) ResolveRefund(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if p.Role != middleware.RoleMerchant {
		writeError(w, model.ErrForbidden, h.logger)
		return
	}

	requestID, err := uuid.Parse(r.PathValue("requestId"))
	if err != nil {
		writeValidationError(w, model.ErrCodeValidation, "invalid refund request ID format")
		return
	}

	var req model.ResolveRefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	refund, err := h.refundService.ResolveRefund(r.Context(), requestID, model.RefundStatus(req.Decision))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, refund)
}

// SubmitComplaint handles POST /customers/orders/{orderId}/complaint.
func (h *RefundHandler) SubmitComplaint(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	orderID, ok := orderIDFromPath(w, r)
	if !ok {
		return
	}

	var req model.SubmitComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	complaint, err := h.refundService.SubmitComplaint(r.Context(), p.ID, orderID, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, complaint)
}

// ListComplaints handles GET /customers/orders/{orderId}/complaints.
func (h *RefundHandler) ListComplaints(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	orderID, ok := orderIDFromPath(w, r)
	if !ok {
		return
	}

	complaints, err := h.refundService.ListComplaints(r.Context(), p.ID, orderID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, complaints)
}

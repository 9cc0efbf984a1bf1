package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"bazaar/internal/model"
	"bazaar/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentHandler handles payment-related HTTP requests.
type PaymentHandler struct {
	paymentService service.PaymentService
	refundService  service.RefundService
	logger         zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(paymentService service.PaymentService, refundService service.RefundService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		refundService:  refundService,
		logger:         logger.With().Str("handler", "payment").Logger(),
	}
}

// Initiate handles POST /payments/initiate requests with form parameters.
func (h *PaymentHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	if _, ok := principal(w, r); !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		writeValidationError(w, model.ErrCodeValidation, "invalid form body")
		return
	}

	orderID, err := uuid.Parse(r.PostFormValue("orderId"))
	if err != nil {
		writeValidationError(w, model.ErrCodeValidation, "invalid order ID format")
		return
	}

	amount, err := strconv.ParseFloat(r.PostFormValue("amount"), 64)
	if err != nil {
		writeValidationError(w, model.ErrCodeValidation, "invalid amount")
		return
	}

	payment, err := h.paymentService.Initiate(
		r.Context(),
		orderID,
		r.PostFormValue("method"),
		amount,
		r.PostFormValue("currency"),
		r.PostFormValue("txRef"),
	)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, payment)
}

// Confirm handles POST /payments/confirm webhook notifications. Gateways
// retry deliveries, so repeated identical outcomes are acknowledged as
// no-ops.
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req model.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	paymentID, err := uuid.Parse(req.PaymentID)
	if err != nil {
		writeValidationError(w, model.ErrCodeValidation, "invalid payment ID format")
		return
	}

	payment, err := h.paymentService.Confirm(r.Context(), paymentID, model.PaymentStatus(req.Outcome))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, payment)
}

// Refund handles POST /payments/refund/{orderId} requests by delegating to
// the refund workflow, which enforces order status eligibility.
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(r.PathValue("orderId"))
	if err != nil {
		writeValidationError(w, model.ErrCodeValidation, "invalid order ID format")
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

	writeJSON(w, http.StatusOK, refund)
}

package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"bazaar/internal/middleware"
	"bazaar/internal/model"
	"bazaar/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MerchantHandler handles merchant-facing HTTP requests: coupon management,
// order fulfilment and wallet reads.
type MerchantHandler struct {
	couponService service.CouponService
	orderService  service.OrderService
	walletService service.WalletService
	logger        zerolog.Logger
}

// NewMerchantHandler creates a new merchant handler.
func NewMerchantHandler(
	couponService service.CouponService,
	orderService service.OrderService,
	walletService service.WalletService,
	logger zerolog.Logger,
) *MerchantHandler {
	return &MerchantHandler{
		couponService: couponService,
		orderService:  orderService,
		walletService: walletService,
		logger:        logger.With().Str("handler", "merchant").Logger(),
	}
}

// merchantFromPath authenticates the principal as the merchant named in the
// path, writing the error response when the check fails.
func (h *MerchantHandler) merchantFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	p, ok := principal(w, r)
	if !ok {
		return uuid.Nil, false
	}

	merchantID, err := uuid.Parse(r.PathValue("merchantId"))
	if err != nil {
		writeValidationError(w, model.ErrCodeValidation, "invalid merchant ID format")
		return uuid.Nil, false
	}

	if p.Role != middleware.RoleMerchant || p.ID != merchantID {
		writeError(w, model.ErrForbidden, h.logger)
		return uuid.Nil, false
	}

	return merchantID, true
}

// CreateCoupon handles POST /merchants/{merchantId}/products/{productId}/coupons.
func (h *MerchantHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchantFromPath(w, r)
	if !ok {
		return
	}

	productID, err := uuid.Parse(r.PathValue("productId"))
	if err != nil {
		writeValidationError(w, model.ErrCodeValidation, "invalid product ID format")
		return
	}

	var req model.CouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	coupon, err := h.couponService.Create(r.Context(), merchantID, productID, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, model.CouponResponse{CouponID: coupon.ID})
}

// DeleteCoupon handles DELETE /merchants/{merchantId}/products/coupons/{couponId}.
func (h *MerchantHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchantFromPath(w, r)
	if !ok {
		return
	}

	couponID, err := uuid.Parse(r.PathValue("couponId"))
	if err != nil {
		writeValidationError(w, model.ErrCodeValidation, "invalid coupon ID format")
		return
	}

	if err := h.couponService.Delete(r.Context(), merchantID, couponID); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// UpdateOrderStatus handles PUT /merchants/{merchantId}/orders/{orderId}/status.
func (h *MerchantHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchantFromPath(w, r)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(r.PathValue("orderId"))
	if err != nil {
		writeValidationError(w, model.ErrCodeValidation, "invalid order ID format")
		return
	}

	var req model.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	target, valid := model.ParseStatus(req.Status)
	if !valid {
		writeValidationError(w, model.ErrCodeValidation, "unknown order status")
		return
	}

	order, err := h.orderService.MerchantTransition(r.Context(), merchantID, orderID, target)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// MarkDelivered handles PATCH /merchants/{merchantId}/orders/{orderId}/delivered.
func (h *MerchantHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchantFromPath(w, r)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(r.PathValue("orderId"))
	if err != nil {
		writeValidationError(w, model.ErrCodeValidation, "invalid order ID format")
		return
	}

	order, err := h.orderService.MerchantTransition(r.Context(), merchantID, orderID, model.StatusDelivered)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// ListOrders handles GET /merchants/{merchantId}/orders.
func (h *MerchantHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchantFromPath(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	orders, err := h.orderService.ListMerchantOrders(r.Context(), merchantID, limit, offset)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetWallet handles GET /merchants/{merchantId}/wallet.
func (h *MerchantHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := h.merchantFromPath(w, r)
	if !ok {
		return
	}

	wallet, err := h.walletService.GetWallet(r.Context(), merchantID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, wallet)
}

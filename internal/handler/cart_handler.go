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

// cartIDHeader carries the anonymous cart identifier between requests. The
// server issues one on the first add when the client has none yet.
const cartIDHeader = "X-Cart-ID"

// CartHandler handles cart-related HTTP requests.
type CartHandler struct {
	cartService  service.CartService
	orderService service.OrderService
	logger       zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(cartService service.CartService, orderService service.OrderService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		cartService:  cartService,
		orderService: orderService,
		logger:       logger.With().Str("handler", "cart").Logger(),
	}
}

// cartID resolves the cart identifier from the request header, minting a
// fresh one when allowed.
func cartID(r *http.Request, mintIfAbsent bool) (uuid.UUID, bool) {
	raw := r.Header.Get(cartIDHeader)
	if raw == "" {
		if mintIfAbsent {
			return uuid.New(), true
		}
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// AddItem handles POST /customers/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	if _, ok := principal(w, r); !ok {
		return
	}

	id, ok := cartID(r, true)
	if !ok {
		writeValidationError(w, model.ErrCodeValidation, "invalid cart ID")
		return
	}

	var req model.CartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	item, err := h.cartService.AddItem(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.Header().Set(cartIDHeader, id.String())
	writeJSON(w, http.StatusCreated, model.CartItemRequest{
		ProductID: item.MerchantProductID.String(),
		Quantity:  item.Quantity,
	})
}

// GetCart handles GET /customers/cart requests.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	if _, ok := principal(w, r); !ok {
		return
	}

	id, ok := cartID(r, false)
	if !ok {
		writeValidationError(w, model.ErrCodeValidation, "cart ID header is required")
		return
	}

	cart, err := h.cartService.GetCart(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// Checkout handles POST /customers/cart/checkout requests. The anonymous
// cart merges with the authenticated customer here.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if p.Role != middleware.RoleCustomer {
		writeError(w, model.ErrForbidden, h.logger)
		return
	}

	id, ok := cartID(r, false)
	if !ok {
		writeValidationError(w, model.ErrCodeValidation, "cart ID header is required")
		return
	}

	var req model.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	resp, err := h.orderService.Checkout(r.Context(), p.ID, id, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

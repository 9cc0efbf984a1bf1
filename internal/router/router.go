package router

import (
	"net/http"

	"bazaar/internal/cache"
	"bazaar/internal/handler"
	"bazaar/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	cartHandler *handler.CartHandler,
	paymentHandler *handler.PaymentHandler,
	refundHandler *handler.RefundHandler,
	merchantHandler *handler.MerchantHandler,
	authHandler *handler.AuthHandler,
	jwtSecret string,
	blacklist cache.TokenBlacklist,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Session
	mux.HandleFunc("POST /auth/logout", authHandler.Logout)

	// Cart and checkout
	mux.HandleFunc("POST /customers/cart/items", cartHandler.AddItem)
	mux.HandleFunc("GET /customers/cart", cartHandler.GetCart)
	mux.HandleFunc("POST /customers/cart/checkout", cartHandler.Checkout)

	// Customer orders, refunds and complaints
	mux.HandleFunc("GET /customers/orders/{orderId}", refundHandler.GetOrder)
	mux.HandleFunc("POST /customers/orders/{orderId}/refund", refundHandler.SubmitRefund)
	mux.HandleFunc("POST /customers/orders/{orderId}/complaint", refundHandler.SubmitComplaint)
	mux.HandleFunc("GET /customers/orders/{orderId}/complaints", refundHandler.ListComplaints)

	// Payments
	mux.HandleFunc("POST /payments/initiate", paymentHandler.Initiate)
	mux.HandleFunc("POST /payments/confirm", paymentHandler.Confirm)
	mux.HandleFunc("POST /payments/refund/{orderId}", paymentHandler.Refund)

	// Refund resolution
	mux.HandleFunc("PUT /refunds/{requestId}", refundHandler.ResolveRefund)

	// Merchant surface
	mux.HandleFunc("POST /merchants/{merchantId}/products/{productId}/coupons", merchantHandler.CreateCoupon)
	mux.HandleFunc("DELETE /merchants/{merchantId}/products/coupons/{couponId}", merchantHandler.DeleteCoupon)
	mux.HandleFunc("PUT /merchants/{merchantId}/orders/{orderId}/status", merchantHandler.UpdateOrderStatus)
	mux.HandleFunc("PATCH /merchants/{merchantId}/orders/{orderId}/delivered", merchantHandler.MarkDelivered)
	mux.HandleFunc("GET /merchants/{merchantId}/orders", merchantHandler.ListOrders)
	mux.HandleFunc("GET /merchants/{merchantId}/wallet", merchantHandler.GetWallet)

	// Apply middleware in order: Recovery -> Logging -> CORS -> BearerAuth
	var h http.Handler = mux
	h = middleware.BearerAuth(jwtSecret, blacklist, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}

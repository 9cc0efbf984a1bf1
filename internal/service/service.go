package service

import (
	"context"

	"bazaar/internal/model"

	"github.com/google/uuid"
)

// CartService defines operations for the per-session cart store.
type CartService interface {
	// AddItem adds a line to the cart, creating the cart lazily.
	AddItem(ctx context.Context, cartID uuid.UUID, req *model.CartItemRequest) (*model.CartItem, error)

	// GetCart returns the cart contents.
	GetCart(ctx context.Context, cartID uuid.UUID) (*model.CartResponse, error)
}

// CouponService defines the coupon eligibility engine.
type CouponService interface {
	// Create creates a coupon for a merchant's product.
	Create(ctx context.Context, merchantID, productID uuid.UUID, req *model.CouponRequest) (*model.Coupon, error)

	// Delete soft-deletes a merchant's coupon; idempotent.
	Delete(ctx context.Context, merchantID, couponID uuid.UUID) error
}

// OrderService owns the order state machine.
type OrderService interface {
	// Checkout converts the customer's cart into orders, redeeming the
	// optional coupon, decrementing stock and initiating payment.
	Checkout(ctx context.Context, customerID, cartID uuid.UUID, req *model.CheckoutRequest) (*model.CheckoutResponse, error)

	// MerchantTransition applies a merchant-driven fulfilment move
	// (PAID→PROCESSING→SHIPPED→DELIVERED).
	MerchantTransition(ctx context.Context, merchantID, orderID uuid.UUID, target model.Status) (*model.Order, error)

	// GetByID retrieves an order.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListMerchantOrders returns a merchant's orders, newest first.
	ListMerchantOrders(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]model.Order, error)
}

// PaymentService defines the payment adapter.
type PaymentService interface {
	// Initiate records a payment intent for an order.
	Initiate(ctx context.Context, orderID uuid.UUID, method string, amount float64, currency, txRef string) (*model.Payment, error)

	// Confirm applies a gateway outcome: SUCCESS drives PENDING→PAID,
	// FAILED drives PENDING→CANCELLED and restores stock. Idempotent for
	// repeated identical outcomes.
	Confirm(ctx context.Context, paymentID uuid.UUID, outcome model.PaymentStatus) (*model.Payment, error)
}

// RefundService defines the refund/complaint workflow.
type RefundService interface {
	// SubmitRefund files a refund request against a customer's order.
	SubmitRefund(ctx context.Context, customerID, orderID uuid.UUID, req *model.SubmitRefundRequest) (*model.RefundRequest, error)

	// ResolveRefund applies a decision: APPROVED moves the order to
	// REFUNDED and issues a reverse payment; REJECTED is terminal.
	ResolveRefund(ctx context.Context, requestID uuid.UUID, decision model.RefundStatus) (*model.RefundRequest, error)

	// SubmitComplaint files a complaint against a customer's order.
	SubmitComplaint(ctx context.Context, customerID, orderID uuid.UUID, req *model.SubmitComplaintRequest) (*model.Complaint, error)

	// ListComplaints returns the complaints on a customer's order.
	ListComplaints(ctx context.Context, customerID, orderID uuid.UUID) ([]model.Complaint, error)
}

// WalletService exposes merchant wallet reads; credits happen only inside
// the payout scheduler.
type WalletService interface {
	// GetWallet returns the merchant's wallet balance.
	GetWallet(ctx context.Context, merchantID uuid.UUID) (*model.Wallet, error)
}

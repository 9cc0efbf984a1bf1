package repository

import (
	"context"
	"time"

	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// GetOrCreate returns the cart with the given ID, creating it lazily
	// when it does not exist yet.
	GetOrCreate(ctx context.Context, cartID uuid.UUID) (*model.Cart, error)

	// AddItem inserts a line item, merging quantity with an existing line
	// for the same merchant product.
	AddItem(ctx context.Context, item *model.CartItem) error

	// GetItems returns all line items in a cart.
	GetItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error)

	// Claim binds the cart to the customer within the transaction. An
	// anonymous cart is taken over; a cart already owned by the same
	// customer is a no-op. Returns ErrForbidden when the cart belongs to
	// a different customer.
	Claim(ctx context.Context, tx pgx.Tx, cartID, customerID uuid.UUID) error

	// Delete removes the cart and its items within the transaction.
	Delete(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error
}

// ProductRepository defines the interface for merchant product data access.
type ProductRepository interface {
	// GetByID retrieves a merchant product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.MerchantProduct, error)

	// DecrementStock atomically subtracts quantity from stock within the
	// transaction. Returns model.ErrInsufficientStock when the remaining
	// stock does not cover the quantity; stock never goes negative.
	DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error

	// RestoreStock adds quantity back to stock within the transaction,
	// used on payment failure and pending-order expiry.
	RestoreStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a new order within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetByID retrieves an order by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetByIDForUpdate retrieves and row-locks an order within the
	// transaction. Returns nil when absent.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// UpdateStatus moves an order from one status to another as a
	// compare-and-swap. Reports whether a row was updated; false means
	// the order was not in the expected status.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to model.Status) (bool, error)

	// ListByMerchant returns a merchant's orders, newest first.
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]model.Order, error)

	// ListExpiredPending returns orders stuck in PENDING since before the
	// cutoff, row-locked within the transaction for the reaper to cancel.
	ListExpiredPending(ctx context.Context, tx pgx.Tx, cutoff time.Time, limit int) ([]model.Order, error)
}

// CouponRepository defines the interface for coupon data access operations.
type CouponRepository interface {
	// Create inserts a new coupon.
	Create(ctx context.Context, coupon *model.Coupon) error

	// GetByID retrieves a coupon by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)

	// Redeem atomically consumes one usage slot of the coupon for the
	// customer within the transaction: it row-locks the coupon, enforces
	// the validity window and both usage limits, records the redemption
	// and bumps the usage counter. Returns the coupon as redeemed.
	Redeem(ctx context.Context, tx pgx.Tx, couponID, customerID uuid.UUID, now time.Time) (*model.Coupon, error)

	// Deactivate soft-deletes a merchant's coupon. Reports whether the
	// coupon existed for that merchant; repeated calls are a no-op.
	Deactivate(ctx context.Context, merchantID, couponID uuid.UUID) (bool, error)
}

// PaymentRepository defines the interface for payment data access operations.
type PaymentRepository interface {
	// Create inserts a new payment in PENDING status.
	Create(ctx context.Context, payment *model.Payment) error

	// GetByID retrieves a payment by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)

	// GetByIDForUpdate retrieves and row-locks a payment within the
	// transaction. Returns nil when absent.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Payment, error)

	// GetSuccessfulByOrder returns the SUCCESS payment for an order, or
	// nil when none exists.
	GetSuccessfulByOrder(ctx context.Context, orderID uuid.UUID) (*model.Payment, error)

	// GetActiveByOrder returns the most recent PENDING or SUCCESS payment
	// for an order, or nil when every payment has FAILED or none exists.
	GetActiveByOrder(ctx context.Context, orderID uuid.UUID) (*model.Payment, error)

	// UpdateStatus moves a payment from PENDING to a terminal status
	// within the transaction. Reports whether a row was updated.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, to model.PaymentStatus) (bool, error)
}

// RefundRepository defines the interface for refund and complaint data access.
type RefundRepository interface {
	// CreateRefund inserts a new refund request. Returns
	// model.ErrRefundAlreadyPending when a non-terminal request already
	// exists for the order.
	CreateRefund(ctx context.Context, req *model.RefundRequest) error

	// GetRefundByID retrieves a refund request. Returns nil when absent.
	GetRefundByID(ctx context.Context, id uuid.UUID) (*model.RefundRequest, error)

	// UpdateRefundStatus moves a refund request from PENDING to the given
	// status within the transaction. Reports whether a row was updated.
	UpdateRefundStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, to model.RefundStatus) (bool, error)

	// CreateComplaint inserts a new complaint.
	CreateComplaint(ctx context.Context, complaint *model.Complaint) error

	// ListComplaintsByOrder returns all complaints filed against an order.
	ListComplaintsByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Complaint, error)
}

// WalletRepository defines the interface for merchant wallet data access.
type WalletRepository interface {
	// Credit adds amount to the merchant's wallet within the transaction,
	// creating the wallet row on first credit.
	Credit(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, amount float64) error

	// GetByMerchant retrieves a merchant's wallet. Returns a zero-balance
	// wallet when no credits have happened yet.
	GetByMerchant(ctx context.Context, merchantID uuid.UUID) (*model.Wallet, error)
}

// PayoutRepository defines the batch queries used by the payout scheduler.
type PayoutRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// ListEligibleMerchants returns the merchants that currently have
	// delivered, successfully paid orders awaiting payout.
	ListEligibleMerchants(ctx context.Context) ([]uuid.UUID, error)

	// LockEligibleOrders returns and row-locks the merchant's delivered,
	// not yet paid-out orders whose payment settled SUCCESS.
	LockEligibleOrders(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID) ([]model.Order, error)

	// MarkPaidOut flags the given orders as credited within the
	// transaction. Orders already flagged are skipped; returns the number
	// of rows actually updated.
	MarkPaidOut(ctx context.Context, tx pgx.Tx, orderIDs []uuid.UUID) (int64, error)
}

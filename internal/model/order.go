package model

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusPaid       Status = "PAID"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

// statusTransitions is the authoritative transition graph. An order status
// may only move to one of the listed successors; CANCELLED and REFUNDED
// have no successors and are terminal.
var statusTransitions = map[Status][]Status{
	StatusPending:    {StatusPaid, StatusCancelled},
	StatusPaid:       {StatusProcessing, StatusShipped, StatusRefunded},
	StatusProcessing: {StatusShipped, StatusRefunded},
	StatusShipped:    {StatusDelivered, StatusRefunded},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// merchantTransitions are the fulfilment moves a merchant may drive directly.
// Payment outcomes and refund approvals are system transitions and are never
// accepted from the merchant surface.
var merchantTransitions = map[Status]map[Status]bool{
	StatusPaid:       {StatusProcessing: true, StatusShipped: true},
	StatusProcessing: {StatusShipped: true},
	StatusShipped:    {StatusDelivered: true},
}

// ParseStatus converts a raw string into a Status, reporting whether the
// value names a known status.
func ParseStatus(s string) (Status, bool) {
	status := Status(s)
	_, ok := statusTransitions[status]
	return status, ok
}

// CanTransition reports whether moving from this status to target is legal.
func (s Status) CanTransition(target Status) bool {
	for _, next := range statusTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// MerchantCanTransition reports whether a merchant may drive this move.
func (s Status) MerchantCanTransition(target Status) bool {
	return merchantTransitions[s][target]
}

// IsTerminal reports whether the status has no legal successors.
func (s Status) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// Refundable reports whether money has been captured for an order in this
// status, making it a valid target for a refund request.
func (s Status) Refundable() bool {
	switch s {
	case StatusPaid, StatusProcessing, StatusShipped, StatusDelivered:
		return true
	}
	return false
}

// Order represents a customer order for a single merchant product line.
// It is mutated only through the defined status transitions.
type Order struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	CustomerID        uuid.UUID  `json:"customerId" db:"customer_id"`
	MerchantID        uuid.UUID  `json:"merchantId" db:"merchant_id"`
	MerchantProductID uuid.UUID  `json:"merchantProductId" db:"merchant_product_id"`
	Quantity          int        `json:"quantity" db:"quantity"`
	TotalPrice        float64    `json:"totalPrice" db:"total_price"`
	Status            Status     `json:"status" db:"status"`
	CouponID          *uuid.UUID `json:"couponId,omitempty" db:"coupon_id"`
	PaidOut           bool       `json:"paidOut" db:"paid_out"`
	OrderDate         time.Time  `json:"orderDate" db:"order_date"`
	UpdatedAt         time.Time  `json:"updatedAt" db:"updated_at"`
}

// Refundable reports whether a refund request may be filed against the
// order. Once the payout scheduler has credited the merchant the money has
// left the platform, so a paid-out order is no longer refundable even
// though its status stays DELIVERED.
func (o *Order) Refundable() bool {
	return o.Status.Refundable() && !o.PaidOut
}

// CheckoutRequest represents the request payload for cart checkout.
type CheckoutRequest struct {
	PaymentMethod string `json:"paymentMethod"`
	Currency      string `json:"currency"`
	CouponID      string `json:"couponId,omitempty"`
}

// CheckoutResponse represents the response payload for a checkout. The cart
// converts to one order per line item; OrderID carries the first order,
// OrderIDs the full set.
type CheckoutResponse struct {
	OrderID       uuid.UUID   `json:"orderId"`
	OrderIDs      []uuid.UUID `json:"orderIds"`
	PaymentStatus string      `json:"paymentStatus"`
	Message       string      `json:"message"`
}

// StatusUpdateRequest represents a merchant-driven status change.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

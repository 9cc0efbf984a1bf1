package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the settlement state of a payment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Terminal reports whether the payment can no longer change outcome.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentSuccess || s == PaymentFailed
}

// Payment records a payment intent and its outcome for an order. The amount
// equals the order total at initiation time; the record is immutable once it
// reaches SUCCESS or FAILED.
type Payment struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	OrderID   uuid.UUID     `json:"orderId" db:"order_id"`
	Method    string        `json:"method" db:"method"`
	Amount    float64       `json:"amount" db:"amount"`
	Currency  string        `json:"currency" db:"currency"`
	TxRef     string        `json:"txRef" db:"tx_ref"`
	Status    PaymentStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" db:"updated_at"`
}

// ConfirmRequest represents a payment gateway webhook notification.
// Deliveries may repeat or arrive out of order; confirmation is idempotent
// keyed by (paymentId, outcome).
type ConfirmRequest struct {
	PaymentID string `json:"paymentId"`
	Outcome   string `json:"outcome"`
}

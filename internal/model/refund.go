package model

import (
	"time"

	"github.com/google/uuid"
)

// RefundStatus represents the state of a refund request.
type RefundStatus string

const (
	RefundPending  RefundStatus = "PENDING"
	RefundApproved RefundStatus = "APPROVED"
	RefundRejected RefundStatus = "REJECTED"
	RefundRefunded RefundStatus = "REFUNDED"
)

// Terminal reports whether the refund request can no longer be resolved.
func (s RefundStatus) Terminal() bool {
	return s == RefundRejected || s == RefundRefunded
}

// RefundRequest is a customer-initiated request to reverse a paid order.
// At most one non-terminal request exists per order.
type RefundRequest struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	OrderID       uuid.UUID    `json:"orderId" db:"order_id"`
	CustomerID    uuid.UUID    `json:"customerId" db:"customer_id"`
	Reason        string       `json:"reason" db:"reason"`
	AccountNumber string       `json:"accountNumber" db:"account_number"`
	BankName      string       `json:"bankName" db:"bank_name"`
	AccountName   string       `json:"accountName" db:"account_name"`
	Status        RefundStatus `json:"status" db:"status"`
	CreatedAt     time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time    `json:"updatedAt" db:"updated_at"`
}

// SubmitRefundRequest represents the request payload for a refund.
type SubmitRefundRequest struct {
	Reason        string  `json:"reason"`
	Amount        float64 `json:"amount"`
	AccountNumber string  `json:"accountNumber"`
	BankName      string  `json:"bankName"`
	AccountName   string  `json:"accountName"`
}

// ResolveRefundRequest represents a merchant/admin refund decision.
type ResolveRefundRequest struct {
	Decision string `json:"decision"` // "APPROVED" or "REJECTED"
}

// ComplaintStatus represents the state of a complaint.
type ComplaintStatus string

const (
	ComplaintPending  ComplaintStatus = "PENDING"
	ComplaintResolved ComplaintStatus = "RESOLVED"
	ComplaintRejected ComplaintStatus = "REJECTED"
)

// Complaint is a customer-filed issue against an order.
type Complaint struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"orderId" db:"order_id"`
	CustomerID  uuid.UUID       `json:"customerId" db:"customer_id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Category    string          `json:"category" db:"category"`
	Status      ComplaintStatus `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// SubmitComplaintRequest represents the request payload for a complaint.
type SubmitComplaintRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds a merchant's accumulated payout balance. It is credited only
// by the payout scheduler; order and payment flows never touch it directly.
type Wallet struct {
	MerchantID uuid.UUID `json:"merchantId" db:"merchant_id"`
	Balance    float64   `json:"balance" db:"balance"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

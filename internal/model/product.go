package model

import (
	"time"

	"github.com/google/uuid"
)

// MerchantProduct represents a merchant's listing of a catalogue product
// with its price and available stock. Stock is decremented atomically when
// an order is created and never drops below zero.
type MerchantProduct struct {
	ID         uuid.UUID `json:"id" db:"id"`
	MerchantID uuid.UUID `json:"merchantId" db:"merchant_id"`
	ProductID  uuid.UUID `json:"productId" db:"product_id"`
	Name       string    `json:"name" db:"name"`
	Price      float64   `json:"price" db:"price"`
	Stock      int       `json:"stock" db:"stock"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

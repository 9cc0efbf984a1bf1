package model

import (
	"time"

	"github.com/google/uuid"
)

// Cart holds per-session line items. A cart is created lazily on the first
// add and may start anonymous; it merges with the authenticated customer at
// checkout and is deleted once the checkout succeeds.
type Cart struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	CustomerID *uuid.UUID `json:"customerId,omitempty" db:"customer_id"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
}

// CartItem represents a single line in a cart.
type CartItem struct {
	ID                uuid.UUID `json:"-" db:"id"`
	CartID            uuid.UUID `json:"-" db:"cart_id"`
	MerchantProductID uuid.UUID `json:"productId" db:"merchant_product_id"`
	Quantity          int       `json:"quantity" db:"quantity"`
}

// CartItemRequest represents the request payload for adding a cart item.
type CartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CartResponse represents the response payload for cart contents.
type CartResponse struct {
	ID    uuid.UUID  `json:"id"`
	Items []CartItem `json:"items"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Coupon represents a merchant-created discount with time-window and usage
// constraints. UsageCount never exceeds MaxUsage and the set of distinct
// redeeming customers never exceeds MaxUsers; both limits are enforced under
// a row lock at redemption time. Coupons with redemptions are soft-deleted
// (Active=false) to preserve referential history.
type Coupon struct {
	ID              uuid.UUID `json:"id" db:"id"`
	MerchantID      uuid.UUID `json:"merchantId" db:"merchant_id"`
	ProductID       uuid.UUID `json:"productId" db:"product_id"`
	DiscountPercent float64   `json:"discountPercent" db:"discount_percent"`
	ValidFrom       time.Time `json:"validFrom" db:"valid_from"`
	ValidUntil      time.Time `json:"validUntil" db:"valid_until"`
	MaxUsage        int       `json:"maxUsage" db:"max_usage"`
	MaxUsers        int       `json:"maxUsers" db:"max_users"`
	UsageCount      int       `json:"usageCount" db:"usage_count"`
	Active          bool      `json:"active" db:"active"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// DiscountFactor returns the multiplier applied to the order total.
func (c *Coupon) DiscountFactor() float64 {
	return 1 - c.DiscountPercent/100
}

// CouponRequest represents the request payload for creating a coupon.
type CouponRequest struct {
	Discount   float64   `json:"discount"`
	ValidFrom  time.Time `json:"validFrom"`
	ValidUntil time.Time `json:"validUntil"`
	MaxUsage   int       `json:"maxUsage"`
	MaxUsers   int       `json:"maxUsers"`
}

// CouponResponse represents the response payload for a created coupon.
type CouponResponse struct {
	CouponID uuid.UUID `json:"couponId"`
}

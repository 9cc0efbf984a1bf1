package model

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON            = "INVALID_JSON"
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeOrderNotFound          = "ORDER_NOT_FOUND"
	ErrCodeProductNotFound        = "PRODUCT_NOT_FOUND"
	ErrCodeCouponNotFound         = "COUPON_NOT_FOUND"
	ErrCodePaymentNotFound        = "PAYMENT_NOT_FOUND"
	ErrCodeRefundNotFound         = "REFUND_NOT_FOUND"
	ErrCodeCartEmpty              = "CART_EMPTY"
	ErrCodeCouponExpired          = "COUPON_EXPIRED"
	ErrCodeCouponExhausted        = "COUPON_EXHAUSTED"
	ErrCodeCouponUserLimit        = "COUPON_USER_LIMIT_REACHED"
	ErrCodeInsufficientStock      = "INSUFFICIENT_STOCK"
	ErrCodeInvalidTransition      = "INVALID_STATE_TRANSITION"
	ErrCodeAmountMismatch         = "AMOUNT_MISMATCH"
	ErrCodePaymentAlreadySettled  = "PAYMENT_ALREADY_SETTLED"
	ErrCodeOrderNotRefundable     = "ORDER_NOT_REFUNDABLE"
	ErrCodeRefundAlreadyPending   = "REFUND_ALREADY_PENDING"
	ErrCodeRefundAlreadyResolved  = "REFUND_ALREADY_RESOLVED"
	ErrCodeUnauthorised           = "UNAUTHORIZED"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeInternalError          = "INTERNAL_ERROR"
)

// DomainError is a typed business-rule failure. Services return these;
// the handler layer maps each code to a fixed HTTP status.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrOrderNotFound         = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrProductNotFound       = NewDomainError(ErrCodeProductNotFound, "Merchant product not found")
	ErrCouponNotFound        = NewDomainError(ErrCodeCouponNotFound, "Coupon not found")
	ErrPaymentNotFound       = NewDomainError(ErrCodePaymentNotFound, "Payment not found")
	ErrRefundNotFound        = NewDomainError(ErrCodeRefundNotFound, "Refund request not found")
	ErrCartEmpty             = NewDomainError(ErrCodeCartEmpty, "Cart is empty")
	ErrCouponExpired         = NewDomainError(ErrCodeCouponExpired, "Coupon is outside its validity window")
	ErrCouponExhausted       = NewDomainError(ErrCodeCouponExhausted, "Coupon usage limit reached")
	ErrCouponUserLimit       = NewDomainError(ErrCodeCouponUserLimit, "Coupon distinct user limit reached")
	ErrInsufficientStock     = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock for requested quantity")
	ErrInvalidTransition     = NewDomainError(ErrCodeInvalidTransition, "Illegal order status transition")
	ErrAmountMismatch        = NewDomainError(ErrCodeAmountMismatch, "Payment amount does not match order total")
	ErrPaymentAlreadySettled = NewDomainError(ErrCodePaymentAlreadySettled, "Payment already settled with a different outcome")
	ErrOrderNotRefundable    = NewDomainError(ErrCodeOrderNotRefundable, "Order is not in a refundable status")
	ErrRefundAlreadyPending  = NewDomainError(ErrCodeRefundAlreadyPending, "A refund request is already pending for this order")
	ErrRefundAlreadyResolved = NewDomainError(ErrCodeRefundAlreadyResolved, "Refund request has already been resolved")
	ErrForbidden             = NewDomainError(ErrCodeForbidden, "Actor is not permitted to perform this action")
)

// ErrorResponse represents a standardised error response body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"

	"bazaar/internal/middleware"
	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCartService is a mock implementation of service.CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) AddItem(ctx context.Context, cartID uuid.UUID, req *model.CartItemRequest) (*model.CartItem, error) {
	args := m.Called(ctx, cartID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartItem), args.Error(1)
}

func (m *MockCartService) GetCart(ctx context.Context, cartID uuid.UUID) (*model.CartResponse, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, customerID, cartID uuid.UUID, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	args := m.Called(ctx, customerID, cartID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutResponse), args.Error(1)
}

func (m *MockOrderService) MerchantTransition(ctx context.Context, merchantID, orderID uuid.UUID, target model.Status) (*model.Order, error) {
	args := m.Called(ctx, merchantID, orderID, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListMerchantOrders(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]model.Order, error) {
	args := m.Called(ctx, merchantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

// MockCouponService is a mock implementation of service.CouponService.
type MockCouponService struct {
	mock.Mock
}

func (m *MockCouponService) Create(ctx context.Context, merchantID, productID uuid.UUID, req *model.CouponRequest) (*model.Coupon, error) {
	args := m.Called(ctx, merchantID, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponService) Delete(ctx context.Context, merchantID, couponID uuid.UUID) error {
	args := m.Called(ctx, merchantID, couponID)
	return args.Error(0)
}

// MockPaymentService is a mock implementation of service.PaymentService.
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Initiate(ctx context.Context, orderID uuid.UUID, method string, amount float64, currency, txRef string) (*model.Payment, error) {
	args := m.Called(ctx, orderID, method, amount, currency, txRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentService) Confirm(ctx context.Context, paymentID uuid.UUID, outcome model.PaymentStatus) (*model.Payment, error) {
	args := m.Called(ctx, paymentID, outcome)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

// MockRefundService is a mock implementation of service.RefundService.
type MockRefundService struct {
	mock.Mock
}

func (m *MockRefundService) SubmitRefund(ctx context.Context, customerID, orderID uuid.UUID, req *model.SubmitRefundRequest) (*model.RefundRequest, error) {
	args := m.Called(ctx, customerID, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefundRequest), args.Error(1)
}

func (m *MockRefundService) ResolveRefund(ctx context.Context, requestID uuid.UUID, decision model.RefundStatus) (*model.RefundRequest, error) {
	args := m.Called(ctx, requestID, decision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefundRequest), args.Error(1)
}

func (m *MockRefundService) SubmitComplaint(ctx context.Context, customerID, orderID uuid.UUID, req *model.SubmitComplaintRequest) (*model.Complaint, error) {
	args := m.Called(ctx, customerID, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Complaint), args.Error(1)
}

func (m *MockRefundService) ListComplaints(ctx context.Context, customerID, orderID uuid.UUID) ([]model.Complaint, error) {
	args := m.Called(ctx, customerID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Complaint), args.Error(1)
}

// MockWalletService is a mock implementation of service.WalletService.
type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) GetWallet(ctx context.Context, merchantID uuid.UUID) (*model.Wallet, error) {
	args := m.Called(ctx, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Wallet), args.Error(1)
}

// asPrincipal attaches an authenticated principal to the request.
func asPrincipal(r *http.Request, id uuid.UUID, role middleware.Role) *http.Request {
	ctx := middleware.WithPrincipal(r.Context(), middleware.Principal{ID: id, Role: role})
	return r.WithContext(ctx)
}

// doRequest runs the handler with PathValue wiring via a throwaway mux.
func doRequest(pattern string, h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	return w
}

package payout

import (
	"context"
	"testing"
	"time"

	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPayoutRepository is a mock implementation of repository.PayoutRepository.
type MockPayoutRepository struct {
	mock.Mock
}

func (m *MockPayoutRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPayoutRepository) ListEligibleMerchants(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockPayoutRepository) LockEligibleOrders(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID) ([]model.Order, error) {
	args := m.Called(ctx, tx, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockPayoutRepository) MarkPaidOut(ctx context.Context, tx pgx.Tx, orderIDs []uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, orderIDs)
	return args.Get(0).(int64), args.Error(1)
}

// MockWalletRepository is a mock implementation of repository.WalletRepository.
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Credit(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, amount float64) error {
	args := m.Called(ctx, tx, merchantID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) GetByMerchant(ctx context.Context, merchantID uuid.UUID) (*model.Wallet, error) {
	args := m.Called(ctx, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Wallet), args.Error(1)
}

// MockOrderRepository is a mock implementation of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to model.Status) (bool, error) {
	args := m.Called(ctx, tx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]model.Order, error) {
	args := m.Called(ctx, merchantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListExpiredPending(ctx context.Context, tx pgx.Tx, cutoff time.Time, limit int) ([]model.Order, error) {
	args := m.Called(ctx, tx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

// MockProductRepository is a mock implementation of repository.ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.MerchantProduct, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MerchantProduct), args.Error(1)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error {
	args := m.Called(ctx, tx, id, quantity)
	return args.Error(0)
}

func (m *MockProductRepository) RestoreStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error {
	args := m.Called(ctx, tx, id, quantity)
	return args.Error(0)
}

// MockCycleLock is a mock implementation of cache.CycleLock.
type MockCycleLock struct {
	mock.Mock
}

func (m *MockCycleLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, name, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCycleLock) Release(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

// memorySink captures cycle reports in memory.
type memorySink struct {
	reports []*CycleReport
}

func (s *memorySink) Write(ctx context.Context, report *CycleReport) error {
	s.reports = append(s.reports, report)
	return nil
}

func testConfig() Config {
	return Config{
		Interval:   time.Hour,
		FeePercent: 10,
		LockTTL:    time.Minute,
		PendingTTL: 24 * time.Hour,
	}
}

func newSchedulerForTest(
	payoutRepo *MockPayoutRepository,
	walletRepo *MockWalletRepository,
	orderRepo *MockOrderRepository,
	productRepo *MockProductRepository,
	lock *MockCycleLock,
	sink ReportSink,
) *Scheduler {
	return NewScheduler(testConfig(), payoutRepo, walletRepo, orderRepo, productRepo, lock, sink, zerolog.Nop())
}

func TestScheduler_RunPayoutCycle_CreditsNet(t *testing.T) {
	ctx := context.Background()

	merchantID := uuid.New()
	orders := []model.Order{
		{ID: uuid.New(), MerchantID: merchantID, TotalPrice: 60.00, Status: model.StatusDelivered},
		{ID: uuid.New(), MerchantID: merchantID, TotalPrice: 40.00, Status: model.StatusDelivered},
	}

	mockPayoutRepo := new(MockPayoutRepository)
	mockWalletRepo := new(MockWalletRepository)
	mockLock := new(MockCycleLock)
	mockTx := new(MockTx)
	sink := &memorySink{}

	scheduler := newSchedulerForTest(mockPayoutRepo, mockWalletRepo, new(MockOrderRepository), new(MockProductRepository), mockLock, sink)

	mockLock.On("Acquire", ctx, "payout-cycle", time.Minute).Return(true, nil)
	mockLock.On("Release", ctx, "payout-cycle").Return(nil)
	mockPayoutRepo.On("ListEligibleMerchants", ctx).Return([]uuid.UUID{merchantID}, nil)
	mockPayoutRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockPayoutRepo.On("LockEligibleOrders", ctx, mockTx, merchantID).Return(orders, nil)
	mockPayoutRepo.On("MarkPaidOut", ctx, mockTx, mock.AnythingOfType("[]uuid.UUID")).Return(int64(2), nil)
	// Gross 100.00, 10% fee, net 90.00.
	mockWalletRepo.On("Credit", ctx, mockTx, merchantID, 90.00).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	err := scheduler.RunPayoutCycle(ctx)

	require.NoError(t, err)
	require.Len(t, sink.reports, 1)
	require.Len(t, sink.reports[0].Settlements, 1)

	settlement := sink.reports[0].Settlements[0]
	assert.Equal(t, merchantID, settlement.MerchantID)
	assert.InDelta(t, 100.00, settlement.Gross, 0.001)
	assert.InDelta(t, 10.00, settlement.Fee, 0.001)
	assert.InDelta(t, 90.00, settlement.Net, 0.001)

	mockPayoutRepo.AssertExpectations(t)
	mockWalletRepo.AssertExpectations(t)
	mockLock.AssertExpectations(t)
	mockTx.AssertExpectations(t)
}

func TestScheduler_RunPayoutCycle_LockHeldElsewhere(t *testing.T) {
	ctx := context.Background()

	mockPayoutRepo := new(MockPayoutRepository)
	mockLock := new(MockCycleLock)

	scheduler := newSchedulerForTest(mockPayoutRepo, new(MockWalletRepository), new(MockOrderRepository), new(MockProductRepository), mockLock, &memorySink{})

	mockLock.On("Acquire", ctx, "payout-cycle", time.Minute).Return(false, nil)

	err := scheduler.RunPayoutCycle(ctx)

	require.NoError(t, err)
	mockPayoutRepo.AssertNotCalled(t, "ListEligibleMerchants")
	mockLock.AssertNotCalled(t, "Release")
}

func TestScheduler_RunPayoutCycle_NothingEligibleIsNoOp(t *testing.T) {
	ctx := context.Background()

	merchantID := uuid.New()

	mockPayoutRepo := new(MockPayoutRepository)
	mockWalletRepo := new(MockWalletRepository)
	mockLock := new(MockCycleLock)
	mockTx := new(MockTx)
	sink := &memorySink{}

	scheduler := newSchedulerForTest(mockPayoutRepo, mockWalletRepo, new(MockOrderRepository), new(MockProductRepository), mockLock, sink)

	mockLock.On("Acquire", ctx, "payout-cycle", time.Minute).Return(true, nil)
	mockLock.On("Release", ctx, "payout-cycle").Return(nil)
	mockPayoutRepo.On("ListEligibleMerchants", ctx).Return([]uuid.UUID{merchantID}, nil)
	mockPayoutRepo.On("BeginTx", ctx).Return(mockTx, nil)
	// A concurrent cycle already credited everything.
	mockPayoutRepo.On("LockEligibleOrders", ctx, mockTx, merchantID).Return([]model.Order{}, nil)
	mockTx.On("Rollback", ctx).Return(nil)

	err := scheduler.RunPayoutCycle(ctx)

	require.NoError(t, err)
	assert.Empty(t, sink.reports)
	mockWalletRepo.AssertNotCalled(t, "Credit")
	mockPayoutRepo.AssertNotCalled(t, "MarkPaidOut")
}

func TestScheduler_RunPayoutCycle_GuardMismatchAborts(t *testing.T) {
	ctx := context.Background()

	merchantID := uuid.New()
	orders := []model.Order{
		{ID: uuid.New(), MerchantID: merchantID, TotalPrice: 30.00, Status: model.StatusDelivered},
		{ID: uuid.New(), MerchantID: merchantID, TotalPrice: 70.00, Status: model.StatusDelivered},
	}

	mockPayoutRepo := new(MockPayoutRepository)
	mockWalletRepo := new(MockWalletRepository)
	mockLock := new(MockCycleLock)
	mockTx := new(MockTx)
	sink := &memorySink{}

	scheduler := newSchedulerForTest(mockPayoutRepo, mockWalletRepo, new(MockOrderRepository), new(MockProductRepository), mockLock, sink)

	mockLock.On("Acquire", ctx, "payout-cycle", time.Minute).Return(true, nil)
	mockLock.On("Release", ctx, "payout-cycle").Return(nil)
	mockPayoutRepo.On("ListEligibleMerchants", ctx).Return([]uuid.UUID{merchantID}, nil)
	mockPayoutRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockPayoutRepo.On("LockEligibleOrders", ctx, mockTx, merchantID).Return(orders, nil)
	// One row was already flagged paid out; the settlement must abort
	// rather than credit a partial amount.
	mockPayoutRepo.On("MarkPaidOut", ctx, mockTx, mock.AnythingOfType("[]uuid.UUID")).Return(int64(1), nil)
	mockTx.On("Rollback", ctx).Return(nil)

	err := scheduler.RunPayoutCycle(ctx)

	require.NoError(t, err)
	assert.Empty(t, sink.reports)
	assert.True(t, mockTx.rolledBack)
	mockWalletRepo.AssertNotCalled(t, "Credit")
}

func TestScheduler_RunReaperCycle_CancelsExpired(t *testing.T) {
	ctx := context.Background()

	productID := uuid.New()
	stale := []model.Order{
		{ID: uuid.New(), Status: model.StatusPending, MerchantProductID: productID, Quantity: 2},
	}

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	mockLock := new(MockCycleLock)
	mockTx := new(MockTx)

	scheduler := newSchedulerForTest(new(MockPayoutRepository), new(MockWalletRepository), mockOrderRepo, mockProductRepo, mockLock, &memorySink{})

	mockLock.On("Acquire", ctx, "pending-reaper", time.Minute).Return(true, nil)
	mockLock.On("Release", ctx, "pending-reaper").Return(nil)
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("ListExpiredPending", ctx, mockTx, mock.AnythingOfType("time.Time"), 500).Return(stale, nil)
	mockOrderRepo.On("UpdateStatus", ctx, mockTx, stale[0].ID, model.StatusPending, model.StatusCancelled).Return(true, nil)
	mockProductRepo.On("RestoreStock", ctx, mockTx, productID, 2).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	err := scheduler.RunReaperCycle(ctx)

	require.NoError(t, err)
	mockOrderRepo.AssertExpectations(t)
	mockProductRepo.AssertExpectations(t)
	mockTx.AssertExpectations(t)
}

func TestScheduler_RunReaperCycle_SkipsRacedOrders(t *testing.T) {
	ctx := context.Background()

	productID := uuid.New()
	stale := []model.Order{
		{ID: uuid.New(), Status: model.StatusPending, MerchantProductID: productID, Quantity: 1},
	}

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	mockLock := new(MockCycleLock)
	mockTx := new(MockTx)

	scheduler := newSchedulerForTest(new(MockPayoutRepository), new(MockWalletRepository), mockOrderRepo, mockProductRepo, mockLock, &memorySink{})

	mockLock.On("Acquire", ctx, "pending-reaper", time.Minute).Return(true, nil)
	mockLock.On("Release", ctx, "pending-reaper").Return(nil)
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("ListExpiredPending", ctx, mockTx, mock.AnythingOfType("time.Time"), 500).Return(stale, nil)
	// The order left PENDING between the list and the update; its stock
	// must not be restored twice.
	mockOrderRepo.On("UpdateStatus", ctx, mockTx, stale[0].ID, model.StatusPending, model.StatusCancelled).Return(false, nil)
	mockTx.On("Commit", ctx).Return(nil)

	err := scheduler.RunReaperCycle(ctx)

	require.NoError(t, err)
	mockProductRepo.AssertNotCalled(t, "RestoreStock")
}

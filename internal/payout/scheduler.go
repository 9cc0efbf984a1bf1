package payout

import (
	"context"
	"fmt"
	"time"

	"bazaar/internal/cache"
	"bazaar/internal/model"
	"bazaar/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	payoutLockName = "payout-cycle"
	reaperLockName = "pending-reaper"

	// reaperBatchSize bounds how many stale orders one reaper pass
	// cancels, so a large backlog cannot hold row locks for long.
	reaperBatchSize = 500
)

// Config holds scheduler settings.
type Config struct {
	Interval   time.Duration
	FeePercent float64
	LockTTL    time.Duration
	PendingTTL time.Duration
}

// Scheduler runs the periodic payout sweep and the pending-order reaper.
// Each cycle takes a cross-instance lock; an instance that loses the race
// skips the cycle instead of blocking.
type Scheduler struct {
	cfg         Config
	payoutRepo  repository.PayoutRepository
	walletRepo  repository.WalletRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	lock        cache.CycleLock
	sink        ReportSink
	logger      zerolog.Logger
}

// NewScheduler creates a payout scheduler.
func NewScheduler(
	cfg Config,
	payoutRepo repository.PayoutRepository,
	walletRepo repository.WalletRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	lock cache.CycleLock,
	sink ReportSink,
	logger zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		cfg:         cfg,
		payoutRepo:  payoutRepo,
		walletRepo:  walletRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		lock:        lock,
		sink:        sink,
		logger:      logger.With().Str("component", "payout-scheduler").Logger(),
	}
}

// Run blocks, firing a payout cycle and a reaper pass every interval until
// the context is cancelled. Failures are logged and retried implicitly by
// the next tick.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Info().
		Dur("interval", s.cfg.Interval).
		Float64("fee_percent", s.cfg.FeePercent).
		Msg("payout scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("payout scheduler stopped")
			return
		case <-ticker.C:
			if err := s.RunPayoutCycle(ctx); err != nil {
				s.logger.Error().Err(err).Msg("payout cycle failed")
			}
			if err := s.RunReaperCycle(ctx); err != nil {
				s.logger.Error().Err(err).Msg("reaper cycle failed")
			}
		}
	}
}

// RunPayoutCycle sweeps all merchants with delivered, successfully paid,
// not yet credited orders and credits their wallets. The credit and the
// paid-out marks commit in one transaction per merchant, so a crash mid-batch
// can never double-credit: re-running skips every order already marked.
func (s *Scheduler) RunPayoutCycle(ctx context.Context) error {
	acquired, err := s.lock.Acquire(ctx, payoutLockName, s.cfg.LockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire payout lock: %w", err)
	}
	if !acquired {
		s.logger.Info().Msg("payout lock held elsewhere, skipping cycle")
		return nil
	}
	defer func() {
		if err := s.lock.Release(ctx, payoutLockName); err != nil {
			s.logger.Warn().Err(err).Msg("failed to release payout lock")
		}
	}()

	merchants, err := s.payoutRepo.ListEligibleMerchants(ctx)
	if err != nil {
		return err
	}

	report := &CycleReport{
		CycleID: uuid.New(),
		RanAt:   time.Now(),
	}

	for _, merchantID := range merchants {
		settlement, err := s.settleMerchant(ctx, merchantID)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("merchant_id", merchantID.String()).
				Msg("merchant settlement failed, continuing with next merchant")
			continue
		}
		if settlement != nil {
			report.Settlements = append(report.Settlements, *settlement)
		}
	}

	s.logger.Info().
		Int("merchants", len(merchants)).
		Int("settled", len(report.Settlements)).
		Msg("payout cycle completed")

	if len(report.Settlements) > 0 && s.sink != nil {
		if err := s.sink.Write(ctx, report); err != nil {
			// The credits have committed; the report is an archive only.
			s.logger.Error().Err(err).Msg("failed to archive cycle report")
		}
	}

	return nil
}

// settleMerchant credits one merchant for all eligible orders in a single
// transaction.
func (s *Scheduler) settleMerchant(ctx context.Context, merchantID uuid.UUID) (settlement *Settlement, err error) {
	tx, err := s.payoutRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback settlement transaction")
			}
		}
	}()

	orders, err := s.payoutRepo.LockEligibleOrders(ctx, tx, merchantID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		// Another cycle got here first; nothing to do.
		_ = tx.Rollback(ctx)
		return nil, nil
	}

	var gross float64
	orderIDs := make([]uuid.UUID, len(orders))
	for i, order := range orders {
		gross += order.TotalPrice
		orderIDs[i] = order.ID
	}

	fee := gross * s.cfg.FeePercent / 100
	net := gross - fee

	marked, err := s.payoutRepo.MarkPaidOut(ctx, tx, orderIDs)
	if err != nil {
		return nil, err
	}
	if marked != int64(len(orderIDs)) {
		// The guard filtered already-credited rows; abort and let the
		// next cycle see a consistent view.
		err = fmt.Errorf("expected to mark %d orders paid out, marked %d", len(orderIDs), marked)
		return nil, err
	}

	if err = s.walletRepo.Credit(ctx, tx, merchantID, net); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	s.logger.Info().
		Str("merchant_id", merchantID.String()).
		Int("orders", len(orderIDs)).
		Float64("gross", gross).
		Float64("net", net).
		Msg("merchant settled")

	return &Settlement{
		MerchantID: merchantID,
		OrderIDs:   orderIDs,
		Gross:      gross,
		Fee:        fee,
		Net:        net,
	}, nil
}

// RunReaperCycle cancels orders stuck in PENDING longer than the configured
// TTL and restores their stock. Payment never confirmed for these orders, so
// cancellation is the PENDING→CANCELLED transition the state machine already
// allows.
func (s *Scheduler) RunReaperCycle(ctx context.Context) error {
	acquired, err := s.lock.Acquire(ctx, reaperLockName, s.cfg.LockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire reaper lock: %w", err)
	}
	if !acquired {
		s.logger.Info().Msg("reaper lock held elsewhere, skipping cycle")
		return nil
	}
	defer func() {
		if err := s.lock.Release(ctx, reaperLockName); err != nil {
			s.logger.Warn().Err(err).Msg("failed to release reaper lock")
		}
	}()

	cutoff := time.Now().Add(-s.cfg.PendingTTL)

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback reaper transaction")
			}
		}
	}()

	stale, err := s.orderRepo.ListExpiredPending(ctx, tx, cutoff, reaperBatchSize)
	if err != nil {
		return err
	}

	cancelled := 0
	for _, order := range stale {
		updated, uerr := s.orderRepo.UpdateStatus(ctx, tx, order.ID, model.StatusPending, model.StatusCancelled)
		if uerr != nil {
			err = uerr
			return err
		}
		if !updated {
			continue
		}
		if err = s.productRepo.RestoreStock(ctx, tx, order.MerchantProductID, order.Quantity); err != nil {
			return err
		}
		cancelled++
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reaper transaction: %w", err)
	}

	if cancelled > 0 {
		s.logger.Info().
			Int("cancelled", cancelled).
			Time("cutoff", cutoff).
			Msg("expired pending orders cancelled")
	}

	return nil
}

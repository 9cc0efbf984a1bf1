package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bazaar/internal/cache"
	"bazaar/internal/config"
	"bazaar/internal/database"
	"bazaar/internal/handler"
	"bazaar/internal/payout"
	"bazaar/internal/repository"
	"bazaar/internal/router"
	"bazaar/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting bazaar API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize redis client
	rdb, err := database.NewRedisClient(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer rdb.Close()

	// Initialize repositories
	cartRepo := repository.NewCartRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	paymentRepo := repository.NewPaymentRepository(pool, logger)
	refundRepo := repository.NewRefundRepository(pool, logger)
	walletRepo := repository.NewWalletRepository(pool, logger)
	payoutRepo := repository.NewPayoutRepository(pool, logger)

	// Initialize redis-backed stores
	idemStore := cache.NewRedisIdempotencyStore(rdb, 24*time.Hour)
	cycleLock := cache.NewRedisCycleLock(rdb)
	blacklist := cache.NewRedisTokenBlacklist(rdb)

	// Initialize services
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, couponRepo, cartRepo, paymentRepo, logger)
	couponService := service.NewCouponService(couponRepo, productRepo, logger)
	paymentService := service.NewPaymentService(paymentRepo, orderRepo, productRepo, idemStore, logger)
	refundService := service.NewRefundService(refundRepo, orderRepo, paymentRepo, logger)
	walletService := service.NewWalletService(walletRepo, logger)

	// Initialize settlement report sink with S3 and local fallback
	var sink payout.ReportSink
	if cfg.S3.Enabled {
		s3Sink, err := payout.NewS3Sink(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 report sink, falling back to local file system")
			sink = payout.NewFileSink("settlements", logger)
		} else {
			sink = s3Sink
		}
	} else {
		sink = payout.NewFileSink("settlements", logger)
		logger.Info().Msg("using local file system for settlement reports (S3 disabled)")
	}

	// Start payout scheduler and pending-order reaper
	scheduler := payout.NewScheduler(
		payout.Config{
			Interval:   cfg.Payout.Interval,
			FeePercent: cfg.Payout.FeePercent,
			LockTTL:    cfg.Payout.LockTTL,
			PendingTTL: cfg.Order.PendingTTL,
		},
		payoutRepo,
		walletRepo,
		orderRepo,
		productRepo,
		cycleLock,
		sink,
		logger,
	)
	go scheduler.Run(ctx)

	// Initialize HTTP handlers
	cartHandler := handler.NewCartHandler(cartService, orderService, logger)
	paymentHandler := handler.NewPaymentHandler(paymentService, refundService, logger)
	refundHandler := handler.NewRefundHandler(refundService, orderService, logger)
	merchantHandler := handler.NewMerchantHandler(couponService, orderService, walletService, logger)
	authHandler := handler.NewAuthHandler(blacklist, logger)

	// Initialize router
	mux := router.New(
		cartHandler,
		paymentHandler,
		refundHandler,
		merchantHandler,
		authHandler,
		cfg.Auth.JWTSecret,
		blacklist,
		logger,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Stop the payout scheduler alongside the HTTP server
		cancel()

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

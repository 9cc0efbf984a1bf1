package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bazaar/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS merchant_products (
			id UUID PRIMARY KEY,
			merchant_id UUID NOT NULL,
			product_id UUID NOT NULL,
			name VARCHAR(255) NOT NULL,
			price DECIMAL(10, 2) NOT NULL,
			stock INTEGER NOT NULL CHECK (stock >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS coupons (
			id UUID PRIMARY KEY,
			merchant_id UUID NOT NULL,
			product_id UUID NOT NULL,
			discount_percent DECIMAL(5, 2) NOT NULL,
			valid_from TIMESTAMPTZ NOT NULL,
			valid_until TIMESTAMPTZ NOT NULL,
			max_usage INTEGER NOT NULL,
			max_users INTEGER NOT NULL,
			usage_count INTEGER NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS coupon_redemptions (
			coupon_id UUID NOT NULL REFERENCES coupons(id),
			customer_id UUID NOT NULL,
			first_redeemed_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (coupon_id, customer_id)
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			customer_id UUID NOT NULL,
			merchant_id UUID NOT NULL,
			merchant_product_id UUID NOT NULL REFERENCES merchant_products(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			total_price DECIMAL(10, 2) NOT NULL,
			status VARCHAR(20) NOT NULL,
			coupon_id UUID REFERENCES coupons(id),
			paid_out BOOLEAN NOT NULL DEFAULT FALSE,
			order_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_orders_merchant_id ON orders(merchant_id);
		CREATE INDEX IF NOT EXISTS idx_orders_status_order_date ON orders(status, order_date);

		CREATE TABLE IF NOT EXISTS payments (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id),
			method VARCHAR(50) NOT NULL,
			amount DECIMAL(10, 2) NOT NULL,
			currency VARCHAR(3) NOT NULL,
			tx_ref VARCHAR(255),
			status VARCHAR(20) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_payments_order_id ON payments(order_id);

		CREATE TABLE IF NOT EXISTS refund_requests (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id),
			customer_id UUID NOT NULL,
			reason TEXT NOT NULL,
			account_number VARCHAR(50) NOT NULL,
			bank_name VARCHAR(255) NOT NULL,
			account_name VARCHAR(255) NOT NULL,
			status VARCHAR(20) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE UNIQUE INDEX IF NOT EXISTS uq_refund_requests_pending
			ON refund_requests(order_id) WHERE status = 'PENDING';

		CREATE TABLE IF NOT EXISTS complaints (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id),
			customer_id UUID NOT NULL,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			category VARCHAR(50) NOT NULL,
			status VARCHAR(20) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS carts (
			id UUID PRIMARY KEY,
			customer_id UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS cart_items (
			id UUID PRIMARY KEY,
			cart_id UUID NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
			merchant_product_id UUID NOT NULL REFERENCES merchant_products(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			UNIQUE (cart_id, merchant_product_id)
		);

		CREATE TABLE IF NOT EXISTS wallets (
			merchant_id UUID PRIMARY KEY,
			balance DECIMAL(12, 2) NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedProduct inserts a merchant product and returns it.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, merchantID uuid.UUID, price float64, stock int) *model.MerchantProduct {
	t.Helper()

	product := &model.MerchantProduct{
		ID:         uuid.New(),
		MerchantID: merchantID,
		ProductID:  uuid.New(),
		Name:       "Test Product",
		Price:      price,
		Stock:      stock,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO merchant_products (id, merchant_id, product_id, name, price, stock)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		product.ID, product.MerchantID, product.ProductID, product.Name, product.Price, product.Stock,
	)
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	return product
}

// SeedOrder inserts an order in the given status and returns it.
func SeedOrder(t *testing.T, pool *pgxpool.Pool, product *model.MerchantProduct, customerID uuid.UUID, status model.Status) *model.Order {
	t.Helper()

	order := &model.Order{
		ID:                uuid.New(),
		CustomerID:        customerID,
		MerchantID:        product.MerchantID,
		MerchantProductID: product.ID,
		Quantity:          1,
		TotalPrice:        product.Price,
		Status:            status,
		OrderDate:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO orders (id, customer_id, merchant_id, merchant_product_id, quantity,
			total_price, status, paid_out, order_date, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8, $9)`,
		order.ID, order.CustomerID, order.MerchantID, order.MerchantProductID,
		order.Quantity, order.TotalPrice, order.Status, order.OrderDate, order.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}

	return order
}

// SeedSuccessfulPayment inserts a SUCCESS payment for the order.
func SeedSuccessfulPayment(t *testing.T, pool *pgxpool.Pool, order *model.Order) *model.Payment {
	t.Helper()

	payment := &model.Payment{
		ID:        uuid.New(),
		OrderID:   order.ID,
		Method:    "CARD",
		Amount:    order.TotalPrice,
		Currency:  "USD",
		TxRef:     "tx-" + order.ID.String()[:8],
		Status:    model.PaymentSuccess,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO payments (id, order_id, method, amount, currency, tx_ref, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		payment.ID, payment.OrderID, payment.Method, payment.Amount,
		payment.Currency, payment.TxRef, payment.Status, payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to seed payment: %v", err)
	}

	return payment
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"cart_items", "carts", "complaints", "refund_requests", "payments",
		"coupon_redemptions", "orders", "coupons", "wallets", "merchant_products",
	}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

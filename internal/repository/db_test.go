package repository

import (
	"context"
	"testing"
	"time"

	"cafe-kiosk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer and returns a connection pool.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	})

	return pool
}

// createSchema creates the necessary database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS profiles (
			user_id UUID PRIMARY KEY,
			points INT NOT NULL DEFAULT 0 CHECK (points >= 0),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS branches (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			user_id UUID,
			branch_id UUID NOT NULL,
			status TEXT NOT NULL,
			total_cents BIGINT NOT NULL CHECK (total_cents >= 0),
			points_redeemed INT NOT NULL DEFAULT 0 CHECK (points_redeemed >= 0),
			points_awarded INT NOT NULL DEFAULT 0 CHECK (points_awarded >= 0),
			version INT NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
		CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC);
		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id),
			product_id TEXT NOT NULL,
			quantity INT NOT NULL CHECK (quantity > 0),
			unit_price_cents BIGINT NOT NULL CHECK (unit_price_cents >= 0),
			subtotal_cents BIGINT NOT NULL CHECK (subtotal_cents >= 0)
		);
		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
	`

	_, err := pool.Exec(ctx, schema)
	require.NoError(t, err)
}

// seedProfile inserts a profile with the given balance.
func seedProfile(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, points int) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO profiles (user_id, points) VALUES ($1, $2)`, userID, points)
	require.NoError(t, err)
}

// newTestOrder builds an order struct ready for CreateOrder.
func newTestOrder(code string, userID *uuid.UUID, status model.Status, totalCents int64) *model.Order {
	now := time.Now()
	return &model.Order{
		ID:         uuid.New(),
		Code:       code,
		UserID:     userID,
		BranchID:   uuid.New(),
		Status:     status,
		TotalCents: totalCents,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"cafe-kiosk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `id, code, user_id, branch_id, status, total_cents, points_redeemed, points_awarded, version, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts an order and its line items within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order, items []model.LineItem) error {
	query := `
		INSERT INTO orders (id, code, user_id, branch_id, status, total_cents, points_redeemed, points_awarded, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.Code, order.UserID, order.BranchID, order.Status,
		order.TotalCents, order.PointsRedeemed, order.PointsAwarded,
		order.Version, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "orders_code_key" {
			r.logger.Warn().Str("code", order.Code).Msg("order code collision")
			return ErrDuplicateCode
		}
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price_cents, subtotal_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(itemQuery, item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPriceCents, item.SubtotalCents)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID).
				Msg("failed to create line item")
			return fmt.Errorf("failed to create line item: %w", err)
		}
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("code", order.Code).
		Int("item_count", len(items)).
		Msg("order created")

	return nil
}

// GetByCode retrieves an order and its items by the human-readable code.
func (r *orderRepository) GetByCode(ctx context.Context, code string) (*model.Order, []model.LineItem, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE code = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("code", code).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.queryItems(ctx, r.pool, order.ID)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// GetByCodeForUpdate retrieves and row-locks an order by code.
func (r *orderRepository) GetByCodeForUpdate(ctx context.Context, tx pgx.Tx, code string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE code = $1 FOR UPDATE`

	order, err := scanOrder(tx.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	return order, nil
}

// GetItems retrieves the line items of an order within the transaction.
func (r *orderRepository) GetItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.LineItem, error) {
	return r.queryItems(ctx, tx, orderID)
}

// UpdateStatus sets the order's status and awarded points, guarded by version.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.Status, pointsAwarded, expectedVersion int) error {
	query := `
		UPDATE orders
		SET status = $2, points_awarded = $3, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $4
	`

	ct, err := tx.Exec(ctx, query, orderID, status, pointsAwarded, expectedVersion)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("status", string(status)).
			Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if ct.RowsAffected() != 1 {
		r.logger.Warn().
			Str("order_id", orderID.String()).
			Int("expected_version", expectedVersion).
			Msg("order version mismatch")
		return model.ErrConcurrentModification
	}

	return nil
}

// ListActive retrieves orders still in progress, newest first.
func (r *orderRepository) ListActive(ctx context.Context, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status IN ('pendiente', 'preparando', 'listo')
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query active orders")
		return nil, fmt.Errorf("failed to query active orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *orderRepository) queryItems(ctx context.Context, q querier, orderID uuid.UUID) ([]model.LineItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price_cents, subtotal_cents
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query line items")
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	var items []model.LineItem
	for rows.Next() {
		var item model.LineItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPriceCents, &item.SubtotalCents)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan line item row")
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating line item rows")
		return nil, fmt.Errorf("error iterating line items: %w", err)
	}

	return items, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var order model.Order
	err := row.Scan(
		&order.ID, &order.Code, &order.UserID, &order.BranchID, &order.Status,
		&order.TotalCents, &order.PointsRedeemed, &order.PointsAwarded,
		&order.Version, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

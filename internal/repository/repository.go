package repository

import (
	"context"
	"errors"

	"cafe-kiosk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateCode is returned when an order insert collides on the unique
// order code. The caller regenerates the code and retries.
var ErrDuplicateCode = errors.New("order code already exists")

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts an order and its line items within the provided
	// transaction. Returns ErrDuplicateCode on an order-code collision.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order, items []model.LineItem) error

	// GetByCode retrieves an order and its items by the human-readable code.
	// Returns (nil, nil, nil) when no order matches.
	GetByCode(ctx context.Context, code string) (*model.Order, []model.LineItem, error)

	// GetByCodeForUpdate retrieves an order by code within the transaction,
	// locking the row for the duration of the transaction. Returns
	// (nil, nil) when no order matches.
	GetByCodeForUpdate(ctx context.Context, tx pgx.Tx, code string) (*model.Order, error)

	// GetItems retrieves the line items of an order within the transaction.
	GetItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.LineItem, error)

	// UpdateStatus sets the order's status and awarded points, guarded by
	// the expected version. Returns model.ErrConcurrentModification when
	// the version no longer matches.
	UpdateStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.Status, pointsAwarded, expectedVersion int) error

	// ListActive retrieves orders still in progress (pendiente, preparando,
	// listo), newest first, for the register board.
	ListActive(ctx context.Context, limit int) ([]model.Order, error)
}

// ProfileRepository defines the interface for loyalty ledger access.
type ProfileRepository interface {
	// Get retrieves a profile by user id. Returns (nil, nil) when the user
	// has no profile yet.
	Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error)

	// Debit subtracts points within the transaction. The update is guarded
	// so the balance cannot go negative; returns
	// model.ErrInsufficientBalance when the guard rejects it.
	Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, points int) error

	// Credit adds points within the transaction, creating the profile row
	// if it does not exist yet.
	Credit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, points int) error
}

// IsRetryableTxError reports whether the error is a Postgres serialization
// or deadlock failure worth retrying in a fresh transaction.
func IsRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

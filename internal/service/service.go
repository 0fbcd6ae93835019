package service

import (
	"context"

	"cafe-kiosk/internal/model"

	"github.com/google/uuid"
)

// OrderService defines the order lifecycle operations exposed to the HTTP
// layer.
type OrderService interface {
	// Checkout prices the cart, applies point redemption and creates the
	// order with its line items in a single transaction.
	Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.OrderResponse, error)

	// Transition applies a staff status change to the order identified by
	// its code. Moving into pagado settles loyalty points exactly once.
	Transition(ctx context.Context, code string, target model.Status) (*model.OrderResponse, error)

	// GetByCode retrieves an order and its items by the human-readable code.
	GetByCode(ctx context.Context, code string) (*model.OrderResponse, error)

	// ListActive retrieves the in-progress orders for the register board,
	// newest first.
	ListActive(ctx context.Context, limit int) ([]model.Order, error)
}

// ProfileService exposes the loyalty ledger to the HTTP layer.
type ProfileService interface {
	// Points returns the current point balance; users without a profile
	// simply have zero points.
	Points(ctx context.Context, userID uuid.UUID) (int, error)
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an order. The state names follow the
// labels used on the register and the customer-facing screens.
type Status string

const (
	StatusPendiente  Status = "pendiente"
	StatusPreparando Status = "preparando"
	StatusListo      Status = "listo"
	StatusPagado     Status = "pagado"
	StatusRecogido   Status = "recogido"
	StatusCancelado  Status = "cancelado"
)

var validNext = map[Status]map[Status]bool{
	StatusPendiente:  {StatusPreparando: true, StatusPagado: true, StatusCancelado: true},
	StatusPreparando: {StatusListo: true, StatusPagado: true, StatusCancelado: true},
	StatusListo:      {StatusPagado: true, StatusCancelado: true},
	StatusPagado:     {StatusRecogido: true},
	StatusRecogido:   {},
	StatusCancelado:  {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s Status) IsTerminal() bool {
	return len(validNext[s]) == 0
}

// ParseStatus validates a status string coming from the outside.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPendiente, StatusPreparando, StatusListo, StatusPagado, StatusRecogido, StatusCancelado:
		return Status(s), nil
	}
	return "", ErrInvalidTransition
}

// Order represents a pickup or kiosk order.
type Order struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Code           string     `json:"code" db:"code"`
	UserID         *uuid.UUID `json:"userId,omitempty" db:"user_id"`
	BranchID       uuid.UUID  `json:"branchId" db:"branch_id"`
	Status         Status     `json:"status" db:"status"`
	TotalCents     int64      `json:"totalCents" db:"total_cents"`
	PointsRedeemed int        `json:"pointsRedeemed" db:"points_redeemed"`
	PointsAwarded  int        `json:"pointsAwarded" db:"points_awarded"`
	Version        int        `json:"version" db:"version"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}

// LineItem is a single product line on an order. The unit price is a
// snapshot taken at checkout; line items never change after creation.
type LineItem struct {
	ID             uuid.UUID `json:"-" db:"id"`
	OrderID        uuid.UUID `json:"-" db:"order_id"`
	ProductID      string    `json:"productId" db:"product_id"`
	Quantity       int       `json:"quantity" db:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents" db:"unit_price_cents"`
	SubtotalCents  int64     `json:"subtotalCents" db:"subtotal_cents"`
}

// LineRequest is a single item in a checkout request.
type LineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CheckoutRequest is the payload for creating an order.
type CheckoutRequest struct {
	UserID          *uuid.UUID    `json:"userId,omitempty"`
	BranchID        uuid.UUID     `json:"branchId"`
	RequestedPoints int           `json:"requestedPoints"`
	Items           []LineRequest `json:"items"`
}

// TransitionRequest is the payload for a staff status change.
type TransitionRequest struct {
	Target string `json:"target"`
}

// OrderResponse is the order plus its line items.
type OrderResponse struct {
	Order *Order     `json:"order"`
	Items []LineItem `json:"items"`
}

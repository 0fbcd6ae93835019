package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds a customer's loyalty point balance. The balance is only
// ever changed through debit and credit operations and never goes negative.
type Profile struct {
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Points    int       `json:"points" db:"points"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Branch is a physical service location an order is fulfilled from.
type Branch struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
}

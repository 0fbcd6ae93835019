package model

import "time"

// Product is a catalog entry as seen by the order subsystem. The catalog
// store owns products; from here they are read-only.
type Product struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	PriceCents    int64             `json:"priceCents"`
	BonusPoints   int               `json:"bonusPoints"` // loyalty points per unit sold
	Active        bool              `json:"active"`
	CategoryID    string            `json:"categoryId,omitempty"`
	SubcategoryID string            `json:"subcategoryId,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"` // attribute-definition id -> value
	UpdatedAt     time.Time         `json:"updatedAt,omitempty"`
}

package service

import (
	"context"

	"cafe-kiosk/internal/model"
)

// Loyalty accrual: five points per full 30.00 spent, plus the per-unit
// bonus each product carries in the catalog.
const (
	basePointsBandCents = 3000
	basePointsPerBand   = 5
)

// settlementPoints computes the points an order earns when it is paid.
// Products that can no longer be resolved in the catalog contribute zero
// bonus instead of failing the settlement; the catalog lives in a separate
// store and may lag or be briefly unavailable.
func (s *orderService) settlementPoints(ctx context.Context, order *model.Order, items []model.LineItem) int {
	base := int(order.TotalCents/basePointsBandCents) * basePointsPerBand

	bonus := 0
	for _, item := range items {
		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("order_code", order.Code).
				Str("product_id", item.ProductID).
				Msg("product unresolvable during settlement, no bonus for line")
			continue
		}
		bonus += product.BonusPoints * item.Quantity
	}

	return base + bonus
}

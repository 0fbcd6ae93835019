package service

import (
	"context"

	"cafe-kiosk/internal/catalog"
	"cafe-kiosk/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PointValueCents is the redemption value of a single loyalty point.
const PointValueCents = 50

// PricedCart is the result of pricing a checkout request against the
// catalog: line items with unit prices snapshotted, plus the cart subtotal.
type PricedCart struct {
	Items         []model.LineItem
	SubtotalCents int64
}

// Pricer resolves cart requests against the catalog.
type Pricer struct {
	catalog catalog.Gateway
	logger  zerolog.Logger
}

// NewPricer creates a pricing engine over the given catalog gateway.
func NewPricer(gateway catalog.Gateway, logger zerolog.Logger) *Pricer {
	return &Pricer{
		catalog: gateway,
		logger:  logger.With().Str("component", "pricer").Logger(),
	}
}

// PriceCart looks up every requested product and snapshots its price.
// Any unresolvable, inactive or zero-quantity line fails the whole cart.
func (p *Pricer) PriceCart(ctx context.Context, lines []model.LineRequest) (*PricedCart, error) {
	items := make([]model.LineItem, 0, len(lines))
	var subtotal int64

	for i, line := range lines {
		if line.Quantity <= 0 {
			p.logger.Warn().
				Int("line", i).
				Str("product_id", line.ProductID).
				Int("quantity", line.Quantity).
				Msg("invalid quantity")
			return nil, model.ErrInvalidQuantity
		}

		product, err := p.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			p.logger.Warn().
				Err(err).
				Str("product_id", line.ProductID).
				Msg("product lookup failed")
			return nil, err
		}

		if !product.Active {
			p.logger.Warn().
				Str("product_id", line.ProductID).
				Msg("product is inactive")
			return nil, model.ErrInactiveProduct
		}

		itemSubtotal := product.PriceCents * int64(line.Quantity)
		items = append(items, model.LineItem{
			ID:             uuid.New(),
			ProductID:      line.ProductID,
			Quantity:       line.Quantity,
			UnitPriceCents: product.PriceCents,
			SubtotalCents:  itemSubtotal,
		})
		subtotal += itemSubtotal
	}

	return &PricedCart{Items: items, SubtotalCents: subtotal}, nil
}

// ApplyRedemption clamps the requested points against the balance and the
// cart subtotal, and returns the payable total plus the points actually
// redeemed. Over-requests are silently clamped down, never rejected.
func ApplyRedemption(subtotalCents int64, balance, requested int) (totalCents int64, redeemed int) {
	if requested < 0 {
		requested = 0
	}
	if balance < 0 {
		balance = 0
	}

	maxRedeemable := subtotalCents / PointValueCents
	if int64(balance) < maxRedeemable {
		maxRedeemable = int64(balance)
	}

	r := int64(requested)
	if r > maxRedeemable {
		r = maxRedeemable
	}

	return subtotalCents - r*PointValueCents, int(r)
}

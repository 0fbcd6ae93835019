package catalog

import "cafe-kiosk/internal/model"

func productFixture(id string, priceCents int64, bonus int, active bool) model.Product {
	return model.Product{
		ID:          id,
		Name:        id,
		PriceCents:  priceCents,
		BonusPoints: bonus,
		Active:      active,
	}
}

package catalog

import "fmt"

// Product hashes live under catalog:product:{id}. Field names mirror the
// feed format so the importer can write them without remapping.
const keyProduct = "catalog:product:%s"

const (
	fieldName          = "name"
	fieldPriceCents    = "price_cents"
	fieldBonusPoints   = "bonus_points"
	fieldActive        = "active"
	fieldCategoryID    = "category_id"
	fieldSubcategoryID = "subcategory_id"
	fieldAttributes    = "attributes"
	fieldUpdatedAt     = "updated_at"
)

func productKey(id string) string {
	return fmt.Sprintf(keyProduct, id)
}

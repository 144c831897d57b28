package model

import "github.com/shopspring/decimal"

// CartLine is one rentable dumpster size in the cart. UnitPrice and
// AvailableQuantity travel with the line because the cart is owned by the
// client session, not by the catalog.
type CartLine struct {
	CatalogItemID     int64           `json:"catalog_item_id"`
	Name              string          `json:"name"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Quantity          int             `json:"quantity"`
	AvailableQuantity int             `json:"available_quantity"`
}

// CartState is returned from the store after every mutation. ItemCount and
// Total are recomputed synchronously, never cached.
type CartState struct {
	Lines     []CartLine      `json:"lines"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

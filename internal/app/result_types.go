package app

import (
	"parts-inventory/internal/core"

	"github.com/shopspring/decimal"
)

// PartResult is returned by single-part operations.
type PartResult struct {
	Part      core.Part
	Available int
}

// PartListResult is returned by ListParts.
type PartListResult struct {
	Parts []core.Part
}

// ReservationResult is returned by Reserve.
type ReservationResult struct {
	Reservation *core.Reservation
	Part        core.Part
}

// StockRow is one line of the stock overview.
type StockRow struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	OnHand    int    `json:"onHand"`
	Reserved  int    `json:"reserved"`
	Available int    `json:"available"`
	MinStock  int    `json:"minStock"`
	OnOrder   int    `json:"onOrder"`
	Needed    int    `json:"needed"`
	Supplier  string `json:"supplier"`
}

// StockOverviewResult is returned by StockOverview.
type StockOverviewResult struct {
	Rows []StockRow
}

// SuggestionsResult is returned by SuggestReorder.
type SuggestionsResult struct {
	SafetyStock int
	Suggestions []core.Suggestion
	Total       decimal.Decimal
}

// PurchaseOrderResult is returned by single-order operations.
type PurchaseOrderResult struct {
	Order      *core.PurchaseOrder
	GrandTotal decimal.Decimal
}

// PurchaseOrdersResult is returned by order list operations.
type PurchaseOrdersResult struct {
	Orders []core.PurchaseOrder
}

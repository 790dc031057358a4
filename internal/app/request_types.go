package app

import (
	"github.com/shopspring/decimal"
)

// CreatePartRequest is the input for creating a new part.
type CreatePartRequest struct {
	SKU      string
	Name     string
	Unit     string
	OnHand   int
	MinStock int
	LastCost decimal.Decimal
	Supplier string
	MOQ      *int
	PackSize *int
}

// UpdatePartRequest edits a part. Nil fields are left unchanged.
type UpdatePartRequest struct {
	SKU      string
	Name     *string
	Unit     *string
	MinStock *int
	LastCost *decimal.Decimal
	Supplier *string
	MOQ      *int
	PackSize *int
}

// MovementRequest is the input for reserve, consume and release.
type MovementRequest struct {
	JobRef string
	SKU    string
	Qty    int
}

// ReceiveRequest is the input for a manual goods receipt.
type ReceiveRequest struct {
	SKU      string
	Qty      int
	UnitCost *decimal.Decimal // nil keeps the part's last cost
	Supplier string           // blank keeps the part's supplier
}

// AdjustRequest is the input for a stock count correction.
type AdjustRequest struct {
	SKU    string
	Delta  int
	Reason string
}

// CreateDraftsRequest is the input for turning reorder suggestions into DRAFT orders.
type CreateDraftsRequest struct {
	SafetyStock *int
	CreatedDate string // YYYY-MM-DD, defaults to today
}

// CreatePurchaseOrderRequest is the input for creating a new purchase order.
type CreatePurchaseOrderRequest struct {
	Supplier    string
	CreatedDate string // YYYY-MM-DD, defaults to today
	Lines       []POLineInput
}

// POLineInput is a single line within a CreatePurchaseOrderRequest.
type POLineInput struct {
	SKU      string
	Qty      int
	UnitCost *decimal.Decimal // nil uses the part's last cost
}

// UpdatePOLineRequest changes one line of an order.
type UpdatePOLineRequest struct {
	OrderID  string
	Index    int
	Qty      int
	UnitCost decimal.Decimal
}

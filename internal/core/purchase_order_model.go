package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// POStatus is the lifecycle state of a purchase order.
type POStatus string

const (
	POStatusDraft    POStatus = "DRAFT"
	POStatusPlaced   POStatus = "PLACED"
	POStatusReceived POStatus = "RECEIVED"
	POStatusCanceled POStatus = "CANCELED"
)

// IsTerminal reports whether no further edits or transitions are allowed.
func (s POStatus) IsTerminal() bool {
	return s == POStatusReceived || s == POStatusCanceled
}

// Valid reports whether s is a known status.
func (s POStatus) Valid() bool {
	switch s {
	case POStatusDraft, POStatusPlaced, POStatusReceived, POStatusCanceled:
		return true
	}
	return false
}

// poTransitions lists the permitted status changes:
//
//	DRAFT -> PLACED -> RECEIVED
//	DRAFT -> RECEIVED (goods bought over the counter)
//	DRAFT -> CANCELED, PLACED -> CANCELED
var poTransitions = map[POStatus][]POStatus{
	POStatusDraft:  {POStatusPlaced, POStatusReceived, POStatusCanceled},
	POStatusPlaced: {POStatusReceived, POStatusCanceled},
}

// CanTransition reports whether from -> to is a permitted status change.
func CanTransition(from, to POStatus) bool {
	for _, s := range poTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// PurchaseOrder is a purchase request to one supplier.
type PurchaseOrder struct {
	OrderID     string              `json:"orderId"`
	Supplier    string              `json:"supplier"`
	CreatedDate string              `json:"createdDate" jsonschema:"format=date"`
	Status      POStatus            `json:"status" jsonschema:"enum=DRAFT,enum=PLACED,enum=RECEIVED,enum=CANCELED"`
	Lines       []PurchaseOrderLine `json:"lines"`
}

// PurchaseOrderLine is a single ordered SKU.
type PurchaseOrderLine struct {
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Qty      int             `json:"qty" jsonschema:"minimum=1"`
	UnitCost decimal.Decimal `json:"unitCost"`
}

// LineTotal is Qty x UnitCost.
func (l PurchaseOrderLine) LineTotal() decimal.Decimal {
	return l.UnitCost.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// GrandTotal is the sum of all line totals.
func (po PurchaseOrder) GrandTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range po.Lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

func (l PurchaseOrderLine) validate() error {
	if l.SKU == "" {
		return invalidArgf("line sku is required")
	}
	if l.Qty <= 0 {
		return invalidArgf("line %s: qty must be > 0, got %d", l.SKU, l.Qty)
	}
	if l.UnitCost.IsNegative() {
		return invalidArgf("line %s: unit cost cannot be negative, got %s", l.SKU, l.UnitCost)
	}
	return nil
}

// PurchaseOrderStore is durable keyed storage of purchase orders (OrderID -> PurchaseOrder).
type PurchaseOrderStore interface {
	// FindAll returns every order. Unreadable data is logged and treated as empty.
	FindAll(ctx context.Context) ([]PurchaseOrder, error)
	// FindByID returns the order with the given id or ErrNotFound.
	FindByID(ctx context.Context, orderID string) (PurchaseOrder, error)
	// Upsert inserts the order or replaces the record with the same id.
	Upsert(ctx context.Context, po PurchaseOrder) error
	// Delete removes the order or returns ErrNotFound.
	Delete(ctx context.Context, orderID string) error
	// Update runs fn over the full collection while holding the store lock and
	// persists the result. If fn fails nothing is written.
	Update(ctx context.Context, fn func(orders []PurchaseOrder) ([]PurchaseOrder, error)) error
}

// LineInput describes a line to add to an order.
type LineInput struct {
	SKU      string
	Qty      int
	UnitCost *decimal.Decimal // nil means the part's LastCost
}

// PurchaseOrderService runs the purchase order lifecycle.
type PurchaseOrderService interface {
	// CreateDraft creates a DRAFT order for supplier holding lines, which may be
	// empty. createdDate defaults to today.
	CreateDraft(ctx context.Context, supplier, createdDate string, lines ...LineInput) (*PurchaseOrder, error)
	// CreateDraftsFromSuggestions creates one DRAFT per distinct supplier holding
	// that supplier's suggestions as lines.
	CreateDraftsFromSuggestions(ctx context.Context, suggestions []Suggestion, createdDate string) ([]PurchaseOrder, error)
	// AddLine appends a line to a non-terminal order.
	AddLine(ctx context.Context, orderID string, input LineInput) (*PurchaseOrder, error)
	// UpdateLine changes quantity and unit cost of the line at index.
	UpdateLine(ctx context.Context, orderID string, index, qty int, unitCost decimal.Decimal) (*PurchaseOrder, error)
	// RemoveLine deletes the line at index.
	RemoveLine(ctx context.Context, orderID string, index int) (*PurchaseOrder, error)
	// UpdateStatus moves the order to status. Moving to RECEIVED books every
	// line into stock before the new status is persisted.
	UpdateStatus(ctx context.Context, orderID string, status POStatus) (*PurchaseOrder, error)
	// ReceivePO is UpdateStatus(orderID, POStatusReceived).
	ReceivePO(ctx context.Context, orderID string) (*PurchaseOrder, error)
	// GetPO returns an order by id.
	GetPO(ctx context.Context, orderID string) (*PurchaseOrder, error)
	// ListPOs returns orders sorted by created date then id; an empty status returns all.
	ListPOs(ctx context.Context, status POStatus) ([]PurchaseOrder, error)
}

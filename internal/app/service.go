package app

import (
	"context"
)

// ApplicationService is the single interface all adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println and no display logic of any kind.
type ApplicationService interface {
	// ListParts returns every part sorted by SKU.
	ListParts(ctx context.Context) (*PartListResult, error)

	// GetPart returns a part by SKU (case-insensitive).
	GetPart(ctx context.Context, sku string) (*PartResult, error)

	// CreatePart adds a new part record.
	CreatePart(ctx context.Context, req CreatePartRequest) (*PartResult, error)

	// UpdatePart edits the descriptive and reorder attributes of a part.
	// Stock quantities change only through the movement operations.
	UpdatePart(ctx context.Context, req UpdatePartRequest) (*PartResult, error)

	// DeletePart removes a part that has nothing reserved.
	DeletePart(ctx context.Context, sku string) error

	// Reserve earmarks stock for a job.
	Reserve(ctx context.Context, req MovementRequest) (*ReservationResult, error)

	// Consume books reserved stock as used by a job.
	Consume(ctx context.Context, req MovementRequest) (*PartResult, error)

	// Release returns reserved stock to the available pool.
	Release(ctx context.Context, req MovementRequest) (*PartResult, error)

	// Receive books goods-in outside of a purchase order.
	Receive(ctx context.Context, req ReceiveRequest) (*PartResult, error)

	// Adjust corrects on-hand stock after a count.
	Adjust(ctx context.Context, req AdjustRequest) (*PartResult, error)

	// StockOverview returns per-part balances including quantities already on order.
	StockOverview(ctx context.Context) (*StockOverviewResult, error)

	// SuggestReorder computes reorder suggestions. A nil safetyStock uses the configured default.
	SuggestReorder(ctx context.Context, safetyStock *int) (*SuggestionsResult, error)

	// CreateDraftsFromSuggestions computes suggestions and saves one DRAFT order per supplier.
	CreateDraftsFromSuggestions(ctx context.Context, req CreateDraftsRequest) (*PurchaseOrdersResult, error)

	// ListPurchaseOrders returns orders, optionally filtered by status.
	ListPurchaseOrders(ctx context.Context, status string) (*PurchaseOrdersResult, error)

	// GetPurchaseOrder returns a single order by id.
	GetPurchaseOrder(ctx context.Context, orderID string) (*PurchaseOrderResult, error)

	// CreatePurchaseOrder creates a DRAFT order, optionally with initial lines.
	CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResult, error)

	// AddPurchaseOrderLine appends a line to a non-finalized order.
	AddPurchaseOrderLine(ctx context.Context, orderID string, line POLineInput) (*PurchaseOrderResult, error)

	// UpdatePurchaseOrderLine changes the quantity and cost of a line.
	UpdatePurchaseOrderLine(ctx context.Context, req UpdatePOLineRequest) (*PurchaseOrderResult, error)

	// RemovePurchaseOrderLine deletes a line by index.
	RemovePurchaseOrderLine(ctx context.Context, orderID string, index int) (*PurchaseOrderResult, error)

	// UpdatePurchaseOrderStatus moves an order through its lifecycle. Moving to
	// RECEIVED books every line into stock.
	UpdatePurchaseOrderStatus(ctx context.Context, orderID, status string) (*PurchaseOrderResult, error)

	// ImportDrafts loads legacy per-supplier draft files from dir.
	ImportDrafts(ctx context.Context, dir string) (int, error)

	// RestoreDemoSeed re-creates any demo part that is missing. Existing parts are untouched.
	RestoreDemoSeed(ctx context.Context) (int, error)
}

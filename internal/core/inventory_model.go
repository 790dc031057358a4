package core

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Part is a stock-keeping unit held in the shop.
// Reserved never exceeds OnHand after a successful operation.
type Part struct {
	SKU      string          `json:"sku" jsonschema_description:"Stock-keeping unit, unique case-insensitively"`
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	OnHand   int             `json:"onHand" jsonschema:"minimum=0"`
	Reserved int             `json:"reserved" jsonschema:"minimum=0" jsonschema_description:"Earmarked for jobs, never more than onHand"`
	MinStock int             `json:"minStock" jsonschema:"minimum=0" jsonschema_description:"Reorder trigger level"`
	LastCost decimal.Decimal `json:"lastCost" jsonschema_description:"Most recent unit purchase cost as a decimal string"`
	Supplier string          `json:"supplier"`
	MOQ      *int            `json:"moq,omitempty" jsonschema:"minimum=1"`      // minimum order quantity; nil means 1
	PackSize *int            `json:"packSize,omitempty" jsonschema:"minimum=1"` // units per purchasable pack; nil means 1
}

// Available is the quantity free to promise to new jobs: max(0, OnHand - Reserved).
func (p Part) Available() int {
	return max(0, p.OnHand-p.Reserved)
}

// EffectiveMOQ returns the minimum order quantity, defaulting to 1.
func (p Part) EffectiveMOQ() int {
	if p.MOQ == nil {
		return 1
	}
	return max(1, *p.MOQ)
}

// EffectivePackSize returns the pack size, defaulting to 1.
func (p Part) EffectivePackSize() int {
	if p.PackSize == nil {
		return 1
	}
	return max(1, *p.PackSize)
}

// Validate checks the field constraints of a part record.
func (p Part) Validate() error {
	if strings.TrimSpace(p.SKU) == "" {
		return invalidArgf("sku is required")
	}
	if p.OnHand < 0 {
		return invalidArgf("part %s: onHand cannot be negative, got %d", p.SKU, p.OnHand)
	}
	if p.Reserved < 0 {
		return invalidArgf("part %s: reserved cannot be negative, got %d", p.SKU, p.Reserved)
	}
	if p.Reserved > p.OnHand {
		return invalidArgf("part %s: reserved %d exceeds onHand %d", p.SKU, p.Reserved, p.OnHand)
	}
	if p.MinStock < 0 {
		return invalidArgf("part %s: minStock cannot be negative, got %d", p.SKU, p.MinStock)
	}
	if p.LastCost.IsNegative() {
		return invalidArgf("part %s: lastCost cannot be negative, got %s", p.SKU, p.LastCost)
	}
	if p.MOQ != nil && *p.MOQ < 1 {
		return invalidArgf("part %s: moq must be at least 1, got %d", p.SKU, *p.MOQ)
	}
	if p.PackSize != nil && *p.PackSize < 1 {
		return invalidArgf("part %s: packSize must be at least 1, got %d", p.SKU, *p.PackSize)
	}
	return nil
}

// ReservationStatus is the state of a reservation record.
type ReservationStatus string

const (
	ReservationReserved ReservationStatus = "RESERVED"
	ReservationConsumed ReservationStatus = "CONSUMED"
	ReservationReleased ReservationStatus = "RELEASED"
)

// Reservation is returned by Reserve. It is not persisted.
type Reservation struct {
	ID        string
	JobRef    string
	SKU       string
	Qty       int
	Status    ReservationStatus
	CreatedAt time.Time
}

// PartDetails carries the editable, non-stock attributes of a part.
// Nil fields are left unchanged.
type PartDetails struct {
	Name     *string
	Unit     *string
	MinStock *int
	LastCost *decimal.Decimal
	Supplier *string
	MOQ      *int
	PackSize *int
}

// PartStore is durable keyed storage of parts (SKU -> Part).
// Every call reads the whole collection; writes persist the whole collection.
type PartStore interface {
	// FindAll returns every part. Unreadable data is logged and treated as empty.
	FindAll(ctx context.Context) ([]Part, error)
	// FindBySKU returns the part with the given SKU or ErrNotFound.
	FindBySKU(ctx context.Context, sku string) (Part, error)
	// Upsert inserts the part or replaces the record with the same SKU.
	Upsert(ctx context.Context, part Part) error
	// Delete removes the part with the given SKU or returns ErrNotFound.
	Delete(ctx context.Context, sku string) error
	// Update runs fn over the full collection while holding the store lock and
	// persists the result. If fn fails nothing is written.
	Update(ctx context.Context, fn func(parts []Part) ([]Part, error)) error
}

// InventoryService enforces the stock movement rules against the part store.
// It is the single writer of OnHand and Reserved.
type InventoryService interface {
	// Reserve earmarks qty units of sku for jobRef. Requires Available >= qty.
	Reserve(ctx context.Context, jobRef, sku string, qty int) (*Reservation, error)
	// Consume removes qty reserved units from the shop (parts physically used).
	Consume(ctx context.Context, jobRef, sku string, qty int) error
	// Release returns qty reserved units to the available pool.
	Release(ctx context.Context, jobRef, sku string, qty int) error
	// Receive books qty units into stock. A non-nil unitCost becomes LastCost and a
	// non-blank supplier becomes the part's supplier.
	Receive(ctx context.Context, sku string, qty int, unitCost *decimal.Decimal, supplier string) error
	// Adjust corrects OnHand by delta after a stock count.
	Adjust(ctx context.Context, sku string, delta int, reason string) error
	// ReceiveBatch books several receipts atomically: all of them or none.
	ReceiveBatch(ctx context.Context, supplier string, receipts []Receipt) error
	// UndoReceiveBatch reverses the quantities booked by ReceiveBatch.
	UndoReceiveBatch(ctx context.Context, receipts []Receipt) error

	// ListParts returns all parts sorted by SKU.
	ListParts(ctx context.Context) ([]Part, error)
	// GetPart returns a part by SKU.
	GetPart(ctx context.Context, sku string) (Part, error)
	// CreatePart adds a new part. A duplicate SKU fails with ErrInvalidState.
	CreatePart(ctx context.Context, part Part) (Part, error)
	// UpdatePartDetails edits the non-stock attributes of a part.
	UpdatePartDetails(ctx context.Context, sku string, details PartDetails) (Part, error)
	// DeletePart removes a part that has nothing reserved.
	DeletePart(ctx context.Context, sku string) error
}

package core

import (
	"context"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Receipt is one goods-in line of a batch receive.
type Receipt struct {
	SKU      string
	Qty      int
	UnitCost *decimal.Decimal
}

type inventoryService struct {
	parts PartStore
	now   func() time.Time
}

// NewInventoryService constructs the stock movement service over a part store.
func NewInventoryService(parts PartStore) InventoryService {
	return &inventoryService{parts: parts, now: time.Now}
}

// ── Stock movements ───────────────────────────────────────────────────────────

// Reserve earmarks qty units of sku for jobRef.
func (s *inventoryService) Reserve(ctx context.Context, jobRef, sku string, qty int) (*Reservation, error) {
	if err := validateMovement(sku, qty); err != nil {
		return nil, err
	}
	if strings.TrimSpace(jobRef) == "" {
		return nil, invalidArgf("job reference is required")
	}

	p, err := s.mutate(ctx, sku, func(p *Part) error {
		if avail := p.Available(); avail < qty {
			return &InsufficientStockError{SKU: p.SKU, Requested: qty, Available: avail, What: "available"}
		}
		p.Reserved += qty
		return nil
	})
	if err != nil {
		return nil, err
	}

	logMovement("reserve", p, log.Fields{"job": jobRef, "qty": qty})
	return &Reservation{
		ID:        uuid.NewString(),
		JobRef:    jobRef,
		SKU:       p.SKU,
		Qty:       qty,
		Status:    ReservationReserved,
		CreatedAt: s.now(),
	}, nil
}

// Consume removes qty reserved units from the shop: reserved and onHand both drop by qty.
func (s *inventoryService) Consume(ctx context.Context, jobRef, sku string, qty int) error {
	if err := validateMovement(sku, qty); err != nil {
		return err
	}
	if strings.TrimSpace(jobRef) == "" {
		return invalidArgf("job reference is required")
	}

	p, err := s.mutate(ctx, sku, func(p *Part) error {
		if p.Reserved < qty {
			return &InsufficientStockError{SKU: p.SKU, Requested: qty, Available: p.Reserved, What: "reserved"}
		}
		if p.OnHand < qty {
			return &InsufficientStockError{SKU: p.SKU, Requested: qty, Available: p.OnHand, What: "on hand"}
		}
		p.Reserved -= qty
		p.OnHand -= qty
		return nil
	})
	if err != nil {
		return err
	}

	logMovement("consume", p, log.Fields{"job": jobRef, "qty": qty})
	return nil
}

// Release cancels qty reserved units, returning them to the available pool.
func (s *inventoryService) Release(ctx context.Context, jobRef, sku string, qty int) error {
	if err := validateMovement(sku, qty); err != nil {
		return err
	}
	if strings.TrimSpace(jobRef) == "" {
		return invalidArgf("job reference is required")
	}

	p, err := s.mutate(ctx, sku, func(p *Part) error {
		if p.Reserved < qty {
			return &InsufficientStockError{SKU: p.SKU, Requested: qty, Available: p.Reserved, What: "reserved"}
		}
		p.Reserved -= qty
		return nil
	})
	if err != nil {
		return err
	}

	logMovement("release", p, log.Fields{"job": jobRef, "qty": qty})
	return nil
}

// Receive books qty units of goods-in.
func (s *inventoryService) Receive(ctx context.Context, sku string, qty int, unitCost *decimal.Decimal, supplier string) error {
	if err := validateMovement(sku, qty); err != nil {
		return err
	}
	if unitCost != nil && unitCost.IsNegative() {
		return invalidArgf("unit cost cannot be negative, got %s", unitCost)
	}

	p, err := s.mutate(ctx, sku, func(p *Part) error {
		return applyReceipt(p, qty, unitCost, supplier)
	})
	if err != nil {
		return err
	}

	logMovement("receive", p, log.Fields{"qty": qty, "supplier": supplier})
	return nil
}

// Adjust corrects onHand by delta. The result may not go below zero or below
// the quantity currently reserved.
func (s *inventoryService) Adjust(ctx context.Context, sku string, delta int, reason string) error {
	if strings.TrimSpace(sku) == "" {
		return invalidArgf("sku is required")
	}
	if delta == 0 {
		return invalidArgf("adjust delta must be non-zero")
	}

	p, err := s.mutate(ctx, sku, func(p *Part) error {
		if delta > 0 && p.OnHand > math.MaxInt-delta {
			return invalidArgf("adjust %s by %d overflows onHand %d", p.SKU, delta, p.OnHand)
		}
		next := p.OnHand + delta
		if next < 0 {
			return invalidStatef("adjust %s by %d would make onHand negative (%d)", p.SKU, delta, next)
		}
		if next < p.Reserved {
			return invalidStatef("adjust %s by %d would leave onHand %d below reserved %d", p.SKU, delta, next, p.Reserved)
		}
		p.OnHand = next
		return nil
	})
	if err != nil {
		return err
	}

	logMovement("adjust", p, log.Fields{"delta": delta, "reason": reason})
	return nil
}

// ReceiveBatch books several receipts in one read-modify-write cycle. Every
// receipt is validated and every SKU resolved before anything changes.
func (s *inventoryService) ReceiveBatch(ctx context.Context, supplier string, receipts []Receipt) error {
	for _, r := range receipts {
		if err := validateMovement(r.SKU, r.Qty); err != nil {
			return err
		}
		if r.UnitCost != nil && r.UnitCost.IsNegative() {
			return invalidArgf("%s: unit cost cannot be negative, got %s", r.SKU, r.UnitCost)
		}
	}

	err := s.parts.Update(ctx, func(parts []Part) ([]Part, error) {
		idx, err := resolveAll(parts, receipts)
		if err != nil {
			return nil, err
		}
		for i, r := range receipts {
			if err := applyReceipt(&parts[idx[i]], r.Qty, r.UnitCost, supplier); err != nil {
				return nil, err
			}
		}
		return parts, nil
	})
	if err != nil {
		return err
	}

	for _, r := range receipts {
		log.WithFields(log.Fields{"sku": r.SKU, "qty": r.Qty, "supplier": supplier}).Info("stock receive")
	}
	return nil
}

// UndoReceiveBatch takes back the quantities of a previous ReceiveBatch.
// Cost and supplier changes are not reverted.
func (s *inventoryService) UndoReceiveBatch(ctx context.Context, receipts []Receipt) error {
	return s.parts.Update(ctx, func(parts []Part) ([]Part, error) {
		idx, err := resolveAll(parts, receipts)
		if err != nil {
			return nil, err
		}
		for i, r := range receipts {
			p := &parts[idx[i]]
			if p.OnHand-r.Qty < p.Reserved {
				return nil, invalidStatef("cannot undo receipt of %d %s: onHand %d, reserved %d", r.Qty, p.SKU, p.OnHand, p.Reserved)
			}
			p.OnHand -= r.Qty
		}
		return parts, nil
	})
}

// ── Part maintenance ──────────────────────────────────────────────────────────

func (s *inventoryService) ListParts(ctx context.Context) ([]Part, error) {
	parts, err := s.parts.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(parts, func(a, b Part) int { return strings.Compare(a.SKU, b.SKU) })
	return parts, nil
}

func (s *inventoryService) GetPart(ctx context.Context, sku string) (Part, error) {
	if strings.TrimSpace(sku) == "" {
		return Part{}, invalidArgf("sku is required")
	}
	return s.parts.FindBySKU(ctx, sku)
}

func (s *inventoryService) CreatePart(ctx context.Context, part Part) (Part, error) {
	part.SKU = strings.TrimSpace(part.SKU)
	part.Name = strings.TrimSpace(part.Name)
	if part.Name == "" {
		return Part{}, invalidArgf("part name is required")
	}
	if err := part.Validate(); err != nil {
		return Part{}, err
	}

	err := s.parts.Update(ctx, func(parts []Part) ([]Part, error) {
		for _, p := range parts {
			if sameKey(p.SKU, part.SKU) {
				return nil, invalidStatef("part %s already exists", p.SKU)
			}
		}
		return append(parts, part), nil
	})
	if err != nil {
		return Part{}, err
	}
	log.WithFields(log.Fields{"sku": part.SKU, "onHand": part.OnHand}).Info("part created")
	return part, nil
}

func (s *inventoryService) UpdatePartDetails(ctx context.Context, sku string, d PartDetails) (Part, error) {
	if strings.TrimSpace(sku) == "" {
		return Part{}, invalidArgf("sku is required")
	}
	return s.mutate(ctx, sku, func(p *Part) error {
		next := *p
		if d.Name != nil {
			if strings.TrimSpace(*d.Name) == "" {
				return invalidArgf("part name cannot be blank")
			}
			next.Name = strings.TrimSpace(*d.Name)
		}
		if d.Unit != nil {
			next.Unit = *d.Unit
		}
		if d.MinStock != nil {
			next.MinStock = *d.MinStock
		}
		if d.LastCost != nil {
			next.LastCost = *d.LastCost
		}
		if d.Supplier != nil {
			next.Supplier = strings.TrimSpace(*d.Supplier)
		}
		if d.MOQ != nil {
			next.MOQ = d.MOQ
		}
		if d.PackSize != nil {
			next.PackSize = d.PackSize
		}
		if err := next.Validate(); err != nil {
			return err
		}
		*p = next
		return nil
	})
}

func (s *inventoryService) DeletePart(ctx context.Context, sku string) error {
	if strings.TrimSpace(sku) == "" {
		return invalidArgf("sku is required")
	}
	err := s.parts.Update(ctx, func(parts []Part) ([]Part, error) {
		for i, p := range parts {
			if !sameKey(p.SKU, sku) {
				continue
			}
			if p.Reserved > 0 {
				return nil, invalidStatef("part %s has %d reserved and cannot be deleted", p.SKU, p.Reserved)
			}
			return append(parts[:i], parts[i+1:]...), nil
		}
		return nil, notFoundf("part %q", sku)
	})
	if err != nil {
		return err
	}
	log.WithField("sku", sku).Info("part deleted")
	return nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

// mutate applies fn to the part matching sku inside one store read-modify-write
// cycle and returns the updated record.
func (s *inventoryService) mutate(ctx context.Context, sku string, fn func(p *Part) error) (Part, error) {
	var out Part
	err := s.parts.Update(ctx, func(parts []Part) ([]Part, error) {
		for i := range parts {
			if !sameKey(parts[i].SKU, sku) {
				continue
			}
			if err := fn(&parts[i]); err != nil {
				return nil, err
			}
			out = parts[i]
			return parts, nil
		}
		return nil, notFoundf("part %q", sku)
	})
	return out, err
}

func validateMovement(sku string, qty int) error {
	if strings.TrimSpace(sku) == "" {
		return invalidArgf("sku is required")
	}
	if qty <= 0 {
		return invalidArgf("qty must be > 0, got %d", qty)
	}
	return nil
}

func applyReceipt(p *Part, qty int, unitCost *decimal.Decimal, supplier string) error {
	if p.OnHand > math.MaxInt-qty {
		return invalidArgf("receiving %d %s overflows onHand %d", qty, p.SKU, p.OnHand)
	}
	p.OnHand += qty
	if unitCost != nil {
		p.LastCost = *unitCost
	}
	if s := strings.TrimSpace(supplier); s != "" {
		p.Supplier = s
	}
	return nil
}

// resolveAll maps each receipt to the index of its part, failing on the first unknown SKU.
func resolveAll(parts []Part, receipts []Receipt) ([]int, error) {
	idx := make([]int, len(receipts))
	for i, r := range receipts {
		idx[i] = -1
		for j := range parts {
			if sameKey(parts[j].SKU, r.SKU) {
				idx[i] = j
				break
			}
		}
		if idx[i] < 0 {
			return nil, notFoundf("part %q", r.SKU)
		}
	}
	return idx, nil
}

func logMovement(op string, p Part, fields log.Fields) {
	fields["sku"] = p.SKU
	fields["onHand"] = p.OnHand
	fields["reserved"] = p.Reserved
	log.WithFields(fields).Info("stock " + op)
}

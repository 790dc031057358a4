package core

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type purchaseOrderService struct {
	orders PurchaseOrderStore
	parts  PartStore
	inv    InventoryService
	now    func() time.Time
}

// NewPurchaseOrderService constructs the purchase order lifecycle. Receiving an
// order books its lines through inv; parts is consulted to resolve line SKUs.
func NewPurchaseOrderService(orders PurchaseOrderStore, parts PartStore, inv InventoryService) PurchaseOrderService {
	return &purchaseOrderService{orders: orders, parts: parts, inv: inv, now: time.Now}
}

// CreateDraft creates a DRAFT order in one store write.
func (s *purchaseOrderService) CreateDraft(ctx context.Context, supplier, createdDate string, lines ...LineInput) (*PurchaseOrder, error) {
	supplier = strings.TrimSpace(supplier)
	if supplier == "" {
		return nil, invalidArgf("supplier is required")
	}
	date, err := s.resolveDate(createdDate)
	if err != nil {
		return nil, err
	}

	po := PurchaseOrder{
		OrderID:     uuid.NewString(),
		Supplier:    supplier,
		CreatedDate: date,
		Status:      POStatusDraft,
		Lines:       make([]PurchaseOrderLine, 0, len(lines)),
	}
	for _, in := range lines {
		line, err := s.resolveLine(ctx, in)
		if err != nil {
			return nil, err
		}
		po.Lines = append(po.Lines, line)
	}
	if err := s.orders.Upsert(ctx, po); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"order_id": po.OrderID, "supplier": supplier, "lines": len(po.Lines)}).Info("purchase order draft created")
	return &po, nil
}

// CreateDraftsFromSuggestions writes one DRAFT per supplier in a single store cycle.
func (s *purchaseOrderService) CreateDraftsFromSuggestions(ctx context.Context, suggestions []Suggestion, createdDate string) ([]PurchaseOrder, error) {
	date, err := s.resolveDate(createdDate)
	if err != nil {
		return nil, err
	}
	suppliers, groups := GroupBySupplier(suggestions)

	drafts := make([]PurchaseOrder, 0, len(suppliers))
	for _, supplier := range suppliers {
		po := PurchaseOrder{
			OrderID:     uuid.NewString(),
			Supplier:    supplier,
			CreatedDate: date,
			Status:      POStatusDraft,
		}
		for _, sg := range groups[supplier] {
			line := PurchaseOrderLine{SKU: sg.SKU, Name: sg.Name, Qty: sg.SuggestedQty, UnitCost: sg.UnitCost}
			if err := line.validate(); err != nil {
				return nil, err
			}
			po.Lines = append(po.Lines, line)
		}
		drafts = append(drafts, po)
	}
	if len(drafts) == 0 {
		return drafts, nil
	}

	err = s.orders.Update(ctx, func(orders []PurchaseOrder) ([]PurchaseOrder, error) {
		return append(orders, drafts...), nil
	})
	if err != nil {
		return nil, err
	}
	for _, po := range drafts {
		log.WithFields(log.Fields{
			"order_id": po.OrderID,
			"supplier": po.Supplier,
			"lines":    len(po.Lines),
			"total":    po.GrandTotal().StringFixed(2),
		}).Info("purchase order draft created from suggestions")
	}
	return drafts, nil
}

// AddLine appends a line for an existing part.
func (s *purchaseOrderService) AddLine(ctx context.Context, orderID string, input LineInput) (*PurchaseOrder, error) {
	line, err := s.resolveLine(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.edit(ctx, orderID, func(po *PurchaseOrder) error {
		po.Lines = append(po.Lines, line)
		return nil
	})
}

func (s *purchaseOrderService) UpdateLine(ctx context.Context, orderID string, index, qty int, unitCost decimal.Decimal) (*PurchaseOrder, error) {
	return s.edit(ctx, orderID, func(po *PurchaseOrder) error {
		if index < 0 || index >= len(po.Lines) {
			return invalidArgf("purchase order %s has no line %d", po.OrderID, index)
		}
		line := po.Lines[index]
		line.Qty = qty
		line.UnitCost = unitCost
		if err := line.validate(); err != nil {
			return err
		}
		po.Lines[index] = line
		return nil
	})
}

func (s *purchaseOrderService) RemoveLine(ctx context.Context, orderID string, index int) (*PurchaseOrder, error) {
	return s.edit(ctx, orderID, func(po *PurchaseOrder) error {
		if index < 0 || index >= len(po.Lines) {
			return invalidArgf("purchase order %s has no line %d", po.OrderID, index)
		}
		po.Lines = slices.Delete(po.Lines, index, index+1)
		return nil
	})
}

// UpdateStatus applies one state machine step. For RECEIVED every line is booked
// into stock in one part store cycle while the order store is held; the order is
// then persisted. If that write fails the stock receipt is reversed.
func (s *purchaseOrderService) UpdateStatus(ctx context.Context, orderID string, to POStatus) (*PurchaseOrder, error) {
	if !to.Valid() {
		return nil, invalidArgf("unknown purchase order status %q", to)
	}

	var (
		out      PurchaseOrder
		from     POStatus
		receipts []Receipt
	)
	err := s.orders.Update(ctx, func(orders []PurchaseOrder) ([]PurchaseOrder, error) {
		i := indexOfOrder(orders, orderID)
		if i < 0 {
			return nil, notFoundf("purchase order %q", orderID)
		}
		po := &orders[i]
		from = po.Status

		switch {
		case from.IsTerminal():
			return nil, invalidStatef("purchase order %s is %s: cannot modify a finalized PO", po.OrderID, from)
		case from == to:
			return nil, invalidStatef("purchase order %s is already %s", po.OrderID, to)
		case !CanTransition(from, to):
			return nil, invalidStatef("purchase order %s cannot move from %s to %s", po.OrderID, from, to)
		case to == POStatusPlaced && len(po.Lines) == 0:
			return nil, invalidStatef("purchase order %s has no lines to place", po.OrderID)
		}

		if to == POStatusReceived {
			rs := make([]Receipt, 0, len(po.Lines))
			for _, l := range po.Lines {
				cost := l.UnitCost
				rs = append(rs, Receipt{SKU: l.SKU, Qty: l.Qty, UnitCost: &cost})
			}
			supplier := po.Supplier
			if supplier == UnknownSupplier {
				supplier = ""
			}
			if err := s.inv.ReceiveBatch(ctx, supplier, rs); err != nil {
				return nil, err
			}
			receipts = rs
		}

		po.Status = to
		out = cloneOrder(*po)
		return orders, nil
	})
	if err != nil {
		if receipts != nil {
			s.reverseReceipt(ctx, orderID, receipts, err)
		}
		return nil, err
	}

	log.WithFields(log.Fields{"order_id": out.OrderID, "from": from, "to": to}).Info("purchase order status changed")
	return &out, nil
}

func (s *purchaseOrderService) ReceivePO(ctx context.Context, orderID string) (*PurchaseOrder, error) {
	return s.UpdateStatus(ctx, orderID, POStatusReceived)
}

func (s *purchaseOrderService) GetPO(ctx context.Context, orderID string) (*PurchaseOrder, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, invalidArgf("order id is required")
	}
	po, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func (s *purchaseOrderService) ListPOs(ctx context.Context, status POStatus) ([]PurchaseOrder, error) {
	if status != "" && !status.Valid() {
		return nil, invalidArgf("unknown purchase order status %q", status)
	}
	all, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PurchaseOrder, 0, len(all))
	for _, po := range all {
		if status == "" || po.Status == status {
			out = append(out, po)
		}
	}
	slices.SortFunc(out, func(a, b PurchaseOrder) int {
		if c := strings.Compare(a.CreatedDate, b.CreatedDate); c != 0 {
			return c
		}
		return strings.Compare(a.OrderID, b.OrderID)
	})
	return out, nil
}

// edit runs fn on a non-terminal order inside one store cycle.
func (s *purchaseOrderService) edit(ctx context.Context, orderID string, fn func(po *PurchaseOrder) error) (*PurchaseOrder, error) {
	var out PurchaseOrder
	err := s.orders.Update(ctx, func(orders []PurchaseOrder) ([]PurchaseOrder, error) {
		i := indexOfOrder(orders, orderID)
		if i < 0 {
			return nil, notFoundf("purchase order %q", orderID)
		}
		po := &orders[i]
		if po.Status.IsTerminal() {
			return nil, invalidStatef("purchase order %s is %s: cannot modify a finalized PO", po.OrderID, po.Status)
		}
		if err := fn(po); err != nil {
			return nil, err
		}
		out = cloneOrder(*po)
		return orders, nil
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"order_id": out.OrderID, "lines": len(out.Lines)}).Debug("purchase order edited")
	return &out, nil
}

func (s *purchaseOrderService) reverseReceipt(ctx context.Context, orderID string, receipts []Receipt, cause error) {
	fields := log.Fields{"order_id": orderID, "lines": len(receipts), "cause": cause}
	if err := s.inv.UndoReceiveBatch(context.WithoutCancel(ctx), receipts); err != nil {
		fields["error"] = err
		log.WithFields(fields).Error("order write failed and stock receipt could not be reversed")
		return
	}
	log.WithFields(fields).Error("order write failed, stock receipt reversed")
}

// resolveLine builds an order line for an existing part. A nil unit cost takes
// the part's last cost.
func (s *purchaseOrderService) resolveLine(ctx context.Context, in LineInput) (PurchaseOrderLine, error) {
	if strings.TrimSpace(in.SKU) == "" {
		return PurchaseOrderLine{}, invalidArgf("sku is required")
	}
	part, err := s.parts.FindBySKU(ctx, in.SKU)
	if err != nil {
		return PurchaseOrderLine{}, err
	}
	line := PurchaseOrderLine{SKU: part.SKU, Name: part.Name, Qty: in.Qty, UnitCost: part.LastCost}
	if in.UnitCost != nil {
		line.UnitCost = *in.UnitCost
	}
	if err := line.validate(); err != nil {
		return PurchaseOrderLine{}, err
	}
	return line, nil
}

func (s *purchaseOrderService) resolveDate(createdDate string) (string, error) {
	createdDate = strings.TrimSpace(createdDate)
	if createdDate == "" {
		return s.now().Format(time.DateOnly), nil
	}
	if _, err := time.Parse(time.DateOnly, createdDate); err != nil {
		return "", invalidArgf("created date %q must be YYYY-MM-DD", createdDate)
	}
	return createdDate, nil
}

func indexOfOrder(orders []PurchaseOrder, orderID string) int {
	for i := range orders {
		if sameKey(orders[i].OrderID, orderID) {
			return i
		}
	}
	return -1
}

func cloneOrder(po PurchaseOrder) PurchaseOrder {
	po.Lines = slices.Clone(po.Lines)
	if po.Lines == nil {
		po.Lines = []PurchaseOrderLine{}
	}
	return po
}

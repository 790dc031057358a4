package app

import (
	"context"
	"fmt"
	"strings"

	"parts-inventory/internal/core"

	log "github.com/sirupsen/logrus"
)

type appService struct {
	parts              core.PartStore
	orders             core.PurchaseOrderStore
	inventoryService   core.InventoryService
	purchaseOrders     core.PurchaseOrderService
	defaultSafetyStock int
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	parts core.PartStore,
	orders core.PurchaseOrderStore,
	inventoryService core.InventoryService,
	purchaseOrders core.PurchaseOrderService,
	defaultSafetyStock int,
) ApplicationService {
	return &appService{
		parts:              parts,
		orders:             orders,
		inventoryService:   inventoryService,
		purchaseOrders:     purchaseOrders,
		defaultSafetyStock: defaultSafetyStock,
	}
}

// ── Parts ─────────────────────────────────────────────────────────────────────

func (s *appService) ListParts(ctx context.Context) (*PartListResult, error) {
	parts, err := s.inventoryService.ListParts(ctx)
	if err != nil {
		return nil, err
	}
	return &PartListResult{Parts: parts}, nil
}

func (s *appService) GetPart(ctx context.Context, sku string) (*PartResult, error) {
	p, err := s.inventoryService.GetPart(ctx, sku)
	if err != nil {
		return nil, err
	}
	return partResult(p), nil
}

func (s *appService) CreatePart(ctx context.Context, req CreatePartRequest) (*PartResult, error) {
	p, err := s.inventoryService.CreatePart(ctx, core.Part{
		SKU:      req.SKU,
		Name:     req.Name,
		Unit:     req.Unit,
		OnHand:   req.OnHand,
		MinStock: req.MinStock,
		LastCost: req.LastCost,
		Supplier: strings.TrimSpace(req.Supplier),
		MOQ:      req.MOQ,
		PackSize: req.PackSize,
	})
	if err != nil {
		return nil, err
	}
	return partResult(p), nil
}

func (s *appService) UpdatePart(ctx context.Context, req UpdatePartRequest) (*PartResult, error) {
	p, err := s.inventoryService.UpdatePartDetails(ctx, req.SKU, core.PartDetails{
		Name:     req.Name,
		Unit:     req.Unit,
		MinStock: req.MinStock,
		LastCost: req.LastCost,
		Supplier: req.Supplier,
		MOQ:      req.MOQ,
		PackSize: req.PackSize,
	})
	if err != nil {
		return nil, err
	}
	return partResult(p), nil
}

func (s *appService) DeletePart(ctx context.Context, sku string) error {
	return s.inventoryService.DeletePart(ctx, sku)
}

// ── Stock movements ───────────────────────────────────────────────────────────

func (s *appService) Reserve(ctx context.Context, req MovementRequest) (*ReservationResult, error) {
	res, err := s.inventoryService.Reserve(ctx, req.JobRef, req.SKU, req.Qty)
	if err != nil {
		return nil, err
	}
	p, err := s.inventoryService.GetPart(ctx, req.SKU)
	if err != nil {
		return nil, err
	}
	return &ReservationResult{Reservation: res, Part: p}, nil
}

func (s *appService) Consume(ctx context.Context, req MovementRequest) (*PartResult, error) {
	if err := s.inventoryService.Consume(ctx, req.JobRef, req.SKU, req.Qty); err != nil {
		return nil, err
	}
	return s.GetPart(ctx, req.SKU)
}

func (s *appService) Release(ctx context.Context, req MovementRequest) (*PartResult, error) {
	if err := s.inventoryService.Release(ctx, req.JobRef, req.SKU, req.Qty); err != nil {
		return nil, err
	}
	return s.GetPart(ctx, req.SKU)
}

func (s *appService) Receive(ctx context.Context, req ReceiveRequest) (*PartResult, error) {
	if err := s.inventoryService.Receive(ctx, req.SKU, req.Qty, req.UnitCost, req.Supplier); err != nil {
		return nil, err
	}
	return s.GetPart(ctx, req.SKU)
}

func (s *appService) Adjust(ctx context.Context, req AdjustRequest) (*PartResult, error) {
	if err := s.inventoryService.Adjust(ctx, req.SKU, req.Delta, req.Reason); err != nil {
		return nil, err
	}
	return s.GetPart(ctx, req.SKU)
}

// ── Reorder ───────────────────────────────────────────────────────────────────

func (s *appService) SuggestReorder(ctx context.Context, safetyStock *int) (*SuggestionsResult, error) {
	safety, err := s.safetyStock(safetyStock)
	if err != nil {
		return nil, err
	}
	parts, err := s.parts.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	suggestions := core.BuildSuggestions(parts, safety)
	return &SuggestionsResult{
		SafetyStock: safety,
		Suggestions: suggestions,
		Total:       core.SuggestionsTotal(suggestions),
	}, nil
}

func (s *appService) CreateDraftsFromSuggestions(ctx context.Context, req CreateDraftsRequest) (*PurchaseOrdersResult, error) {
	sr, err := s.SuggestReorder(ctx, req.SafetyStock)
	if err != nil {
		return nil, err
	}
	drafts, err := s.purchaseOrders.CreateDraftsFromSuggestions(ctx, sr.Suggestions, req.CreatedDate)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrdersResult{Orders: drafts}, nil
}

func (s *appService) safetyStock(override *int) (int, error) {
	if override == nil {
		return s.defaultSafetyStock, nil
	}
	if *override < 0 {
		return 0, fmt.Errorf("%w: safety stock cannot be negative, got %d", core.ErrInvalidArgument, *override)
	}
	return *override, nil
}

// ── Purchase orders ───────────────────────────────────────────────────────────

func (s *appService) ListPurchaseOrders(ctx context.Context, status string) (*PurchaseOrdersResult, error) {
	var st core.POStatus
	if strings.TrimSpace(status) != "" {
		parsed, err := ParseStatus(status)
		if err != nil {
			return nil, err
		}
		st = parsed
	}
	orders, err := s.purchaseOrders.ListPOs(ctx, st)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrdersResult{Orders: orders}, nil
}

func (s *appService) GetPurchaseOrder(ctx context.Context, orderID string) (*PurchaseOrderResult, error) {
	return orderResult(s.purchaseOrders.GetPO(ctx, orderID))
}

func (s *appService) CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResult, error) {
	lines := make([]core.LineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.LineInput{SKU: l.SKU, Qty: l.Qty, UnitCost: l.UnitCost}
	}
	return orderResult(s.purchaseOrders.CreateDraft(ctx, req.Supplier, req.CreatedDate, lines...))
}

func (s *appService) AddPurchaseOrderLine(ctx context.Context, orderID string, line POLineInput) (*PurchaseOrderResult, error) {
	return orderResult(s.purchaseOrders.AddLine(ctx, orderID, core.LineInput{
		SKU:      line.SKU,
		Qty:      line.Qty,
		UnitCost: line.UnitCost,
	}))
}

func (s *appService) UpdatePurchaseOrderLine(ctx context.Context, req UpdatePOLineRequest) (*PurchaseOrderResult, error) {
	return orderResult(s.purchaseOrders.UpdateLine(ctx, req.OrderID, req.Index, req.Qty, req.UnitCost))
}

func (s *appService) RemovePurchaseOrderLine(ctx context.Context, orderID string, index int) (*PurchaseOrderResult, error) {
	return orderResult(s.purchaseOrders.RemoveLine(ctx, orderID, index))
}

func (s *appService) UpdatePurchaseOrderStatus(ctx context.Context, orderID, status string) (*PurchaseOrderResult, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return orderResult(s.purchaseOrders.UpdateStatus(ctx, orderID, st))
}

func (s *appService) ImportDrafts(ctx context.Context, dir string) (int, error) {
	return core.ImportDrafts(ctx, s.orders, s.parts, dir)
}

func (s *appService) RestoreDemoSeed(ctx context.Context) (int, error) {
	var restored []string
	err := s.parts.Update(ctx, func(parts []core.Part) ([]core.Part, error) {
		have := make(map[string]bool, len(parts))
		for _, p := range parts {
			have[strings.ToLower(p.SKU)] = true
		}
		for _, p := range core.DemoSeed() {
			if have[strings.ToLower(p.SKU)] {
				continue
			}
			parts = append(parts, p)
			restored = append(restored, p.SKU)
		}
		return parts, nil
	})
	if err != nil {
		return 0, err
	}
	log.WithField("skus", restored).Info("demo seed restored")
	return len(restored), nil
}

// ParseStatus accepts a status name in any case; CANCELLED is read as CANCELED.
func ParseStatus(s string) (core.POStatus, error) {
	st := core.POStatus(strings.ToUpper(strings.TrimSpace(s)))
	if st == "CANCELLED" {
		st = core.POStatusCanceled
	}
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown purchase order status %q", core.ErrInvalidArgument, s)
	}
	return st, nil
}

func partResult(p core.Part) *PartResult {
	return &PartResult{Part: p, Available: p.Available()}
}

func orderResult(po *core.PurchaseOrder, err error) (*PurchaseOrderResult, error) {
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: po, GrandTotal: po.GrandTotal()}, nil
}

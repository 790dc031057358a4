package app

import (
	"context"
	"slices"
	"strings"

	"parts-inventory/internal/core"
)

// StockOverview lists every part with the quantity already on open orders.
// onOrder counts lines of DRAFT and PLACED orders; needed is what is still
// missing to reach minStock once those orders arrive. Rows are ordered by
// needed (largest first) and then SKU.
func (s *appService) StockOverview(ctx context.Context) (*StockOverviewResult, error) {
	parts, err := s.inventoryService.ListParts(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return &StockOverviewResult{Rows: buildStockRows(parts, orders)}, nil
}

func buildStockRows(parts []core.Part, orders []core.PurchaseOrder) []StockRow {
	onOrder := make(map[string]int)
	for _, po := range orders {
		if po.Status != core.POStatusDraft && po.Status != core.POStatusPlaced {
			continue
		}
		for _, l := range po.Lines {
			onOrder[strings.ToLower(strings.TrimSpace(l.SKU))] += l.Qty
		}
	}

	rows := make([]StockRow, 0, len(parts))
	for _, p := range parts {
		ordered := onOrder[strings.ToLower(p.SKU)]
		rows = append(rows, StockRow{
			SKU:       p.SKU,
			Name:      p.Name,
			Unit:      p.Unit,
			OnHand:    p.OnHand,
			Reserved:  p.Reserved,
			Available: p.Available(),
			MinStock:  p.MinStock,
			OnOrder:   ordered,
			Needed:    max(0, p.MinStock-(p.OnHand+ordered-p.Reserved)),
			Supplier:  p.Supplier,
		})
	}
	slices.SortFunc(rows, func(a, b StockRow) int {
		if a.Needed != b.Needed {
			return b.Needed - a.Needed
		}
		return strings.Compare(a.SKU, b.SKU)
	})
	return rows
}

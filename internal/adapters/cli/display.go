package cli

import (
	"fmt"
	"io"
	"strings"

	"parts-inventory/internal/app"
	"parts-inventory/internal/core"
)

func rule(w io.Writer, ch string, n int) {
	fmt.Fprintln(w, strings.Repeat(ch, n))
}

func printParts(w io.Writer, parts []core.Part) {
	fmt.Fprintln(w)
	rule(w, "=", 92)
	fmt.Fprintf(w, "  PARTS (%d)\n", len(parts))
	rule(w, "=", 92)
	if len(parts) == 0 {
		fmt.Fprintln(w, "  No parts found.")
		rule(w, "=", 92)
		return
	}
	fmt.Fprintf(w, "  %-14s %-24s %-6s %7s %8s %7s %5s %10s  %s\n",
		"SKU", "NAME", "UNIT", "ON HAND", "RESERVED", "AVAIL", "MIN", "LAST COST", "SUPPLIER")
	rule(w, "-", 92)
	for _, p := range parts {
		fmt.Fprintf(w, "  %-14s %-24s %-6s %7d %8d %7d %5d %10s  %s\n",
			p.SKU, truncate(p.Name, 24), truncate(p.Unit, 6), p.OnHand, p.Reserved, p.Available(),
			p.MinStock, p.LastCost.StringFixed(2), p.Supplier)
	}
	rule(w, "=", 92)
}

func printPart(w io.Writer, r *app.PartResult) {
	p := r.Part
	fmt.Fprintf(w, "SKU:       %s\n", p.SKU)
	fmt.Fprintf(w, "NAME:      %s\n", p.Name)
	fmt.Fprintf(w, "UNIT:      %s\n", p.Unit)
	fmt.Fprintf(w, "ON HAND:   %d\n", p.OnHand)
	fmt.Fprintf(w, "RESERVED:  %d\n", p.Reserved)
	fmt.Fprintf(w, "AVAILABLE: %d\n", r.Available)
	fmt.Fprintf(w, "MIN STOCK: %d\n", p.MinStock)
	fmt.Fprintf(w, "LAST COST: %s\n", p.LastCost.StringFixed(2))
	fmt.Fprintf(w, "SUPPLIER:  %s\n", p.Supplier)
	fmt.Fprintf(w, "MOQ/PACK:  %d / %d\n", p.EffectiveMOQ(), p.EffectivePackSize())
}

func printStock(w io.Writer, rows []app.StockRow) {
	fmt.Fprintln(w)
	rule(w, "=", 80)
	fmt.Fprintln(w, "  STOCK OVERVIEW")
	rule(w, "=", 80)
	fmt.Fprintf(w, "  %-14s %-24s %7s %8s %7s %5s %8s %6s\n",
		"SKU", "NAME", "ON HAND", "RESERVED", "AVAIL", "MIN", "ON ORDER", "NEEDED")
	rule(w, "-", 80)
	for _, r := range rows {
		fmt.Fprintf(w, "  %-14s %-24s %7d %8d %7d %5d %8d %6d\n",
			r.SKU, truncate(r.Name, 24), r.OnHand, r.Reserved, r.Available, r.MinStock, r.OnOrder, r.Needed)
	}
	rule(w, "=", 80)
}

func printSuggestions(w io.Writer, r *app.SuggestionsResult) {
	fmt.Fprintln(w)
	rule(w, "=", 96)
	fmt.Fprintf(w, "  REORDER SUGGESTIONS (safety stock %d)\n", r.SafetyStock)
	rule(w, "=", 96)
	if len(r.Suggestions) == 0 {
		fmt.Fprintln(w, "  Nothing to reorder.")
		rule(w, "=", 96)
		return
	}
	fmt.Fprintf(w, "  %-12s %-14s %-20s %5s %5s %4s %5s %6s %10s %11s\n",
		"SUPPLIER", "SKU", "NAME", "AVAIL", "MIN", "MOQ", "PACK", "QTY", "UNIT COST", "SUBTOTAL")
	rule(w, "-", 96)
	for _, s := range r.Suggestions {
		fmt.Fprintf(w, "  %-12s %-14s %-20s %5d %5d %4d %5d %6d %10s %11s\n",
			truncate(s.Supplier, 12), s.SKU, truncate(s.Name, 20), s.Available, s.MinStock,
			s.MOQ, s.PackSize, s.SuggestedQty, s.UnitCost.StringFixed(2), s.SubTotal.StringFixed(2))
	}
	rule(w, "-", 96)
	fmt.Fprintf(w, "  %-83s %11s\n", "TOTAL", r.Total.StringFixed(2))
	rule(w, "=", 96)
}

func printOrders(w io.Writer, orders []core.PurchaseOrder) {
	fmt.Fprintln(w)
	rule(w, "=", 84)
	fmt.Fprintf(w, "  PURCHASE ORDERS (%d)\n", len(orders))
	rule(w, "=", 84)
	if len(orders) == 0 {
		fmt.Fprintln(w, "  No purchase orders found.")
		rule(w, "=", 84)
		return
	}
	fmt.Fprintf(w, "  %-36s %-14s %-10s %-9s %5s %12s\n", "ID", "SUPPLIER", "DATE", "STATUS", "LINES", "TOTAL")
	rule(w, "-", 84)
	for _, po := range orders {
		fmt.Fprintf(w, "  %-36s %-14s %-10s %-9s %5d %12s\n",
			po.OrderID, truncate(po.Supplier, 14), po.CreatedDate, po.Status, len(po.Lines), po.GrandTotal().StringFixed(2))
	}
	rule(w, "=", 84)
}

func printOrder(w io.Writer, po *core.PurchaseOrder) {
	fmt.Fprintf(w, "\nORDER:    %s\n", po.OrderID)
	fmt.Fprintf(w, "SUPPLIER: %s\n", po.Supplier)
	fmt.Fprintf(w, "DATE:     %s\n", po.CreatedDate)
	fmt.Fprintf(w, "STATUS:   %s\n", po.Status)
	fmt.Fprintln(w, "LINES:")
	for i, l := range po.Lines {
		fmt.Fprintf(w, "  [%d] %-14s %-24s %6d x %10s = %12s\n",
			i, l.SKU, truncate(l.Name, 24), l.Qty, l.UnitCost.StringFixed(2), l.LineTotal().StringFixed(2))
	}
	fmt.Fprintf(w, "TOTAL:    %s\n", po.GrandTotal().StringFixed(2))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}

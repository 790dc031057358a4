package core

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// UnknownSupplier groups suggestions for parts that have no supplier on record.
const UnknownSupplier = "UNKNOWN"

// Suggestion is one advisory reorder line. It is computed, never persisted.
type Suggestion struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Supplier     string          `json:"supplier"`
	Available    int             `json:"available"`
	MinStock     int             `json:"minStock"`
	MOQ          int             `json:"moq"`
	PackSize     int             `json:"packSize"`
	SuggestedQty int             `json:"suggestedQty"`
	UnitCost     decimal.Decimal `json:"unitCost"`
	SubTotal     decimal.Decimal `json:"subTotal"`
	Reason       string          `json:"reason"`
}

// BuildSuggestions computes reorder suggestions for every part below its minimum.
// It reads nothing but its arguments. The result is ordered by (supplier, sku).
// A negative safety stock counts as zero; callers reject it before getting here.
func BuildSuggestions(parts []Part, safetyStock int) []Suggestion {
	safetyStock = max(0, safetyStock)
	out := make([]Suggestion, 0)
	for _, p := range parts {
		if s, ok := suggest(p, safetyStock); ok {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b Suggestion) int {
		if c := strings.Compare(a.Supplier, b.Supplier); c != 0 {
			return c
		}
		return strings.Compare(a.SKU, b.SKU)
	})
	return out
}

func suggest(p Part, safetyStock int) (Suggestion, bool) {
	available := p.Available()
	minStock := max(0, p.MinStock)
	if available >= minStock {
		return Suggestion{}, false
	}

	target := max(addSat(minStock, minStock), addSat(minStock, safetyStock))
	deficit := max(0, target-available)
	moq := p.EffectiveMOQ()
	pack := p.EffectivePackSize()
	qty := roundUpToPack(max(deficit, moq), pack)

	cost := p.LastCost
	if cost.IsNegative() {
		cost = decimal.Zero
	}
	supplier := strings.TrimSpace(p.Supplier)
	if supplier == "" {
		supplier = UnknownSupplier
	}

	return Suggestion{
		SKU:          p.SKU,
		Name:         p.Name,
		Unit:         p.Unit,
		Supplier:     supplier,
		Available:    available,
		MinStock:     minStock,
		MOQ:          moq,
		PackSize:     pack,
		SuggestedQty: qty,
		UnitCost:     cost,
		SubTotal:     cost.Mul(decimal.NewFromInt(int64(qty))).Round(2),
		Reason:       fmt.Sprintf("Available(%d) < Min(%d), target=%d", available, minStock, target),
	}, true
}

func roundUpToPack(qty, pack int) int {
	if pack <= 1 {
		return qty
	}
	if qty > math.MaxInt-pack+1 {
		return math.MaxInt / pack * pack
	}
	return (qty + pack - 1) / pack * pack
}

// addSat adds two non-negative ints, clamping at math.MaxInt.
func addSat(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// GroupBySupplier splits suggestions into per-supplier slices, preserving order.
// The returned supplier list is sorted.
func GroupBySupplier(suggestions []Suggestion) ([]string, map[string][]Suggestion) {
	groups := make(map[string][]Suggestion)
	var suppliers []string
	for _, s := range suggestions {
		if _, ok := groups[s.Supplier]; !ok {
			suppliers = append(suppliers, s.Supplier)
		}
		groups[s.Supplier] = append(groups[s.Supplier], s)
	}
	slices.Sort(suppliers)
	return suppliers, groups
}

// SuggestionsTotal sums the subtotals.
func SuggestionsTotal(suggestions []Suggestion) decimal.Decimal {
	total := decimal.Zero
	for _, s := range suggestions {
		total = total.Add(s.SubTotal)
	}
	return total
}

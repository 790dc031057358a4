package core_test

import (
	"math"
	"testing"

	"parts-inventory/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSuggestions_Quantities(t *testing.T) {
	tests := []struct {
		name     string
		part     core.Part
		safety   int
		wantQty  int
		wantNone bool
	}{
		{
			name:    "deficit already a pack multiple",
			part:    core.Part{SKU: "P1", OnHand: 5, MinStock: 10, MOQ: intPtr(1), PackSize: intPtr(5)},
			safety:  0,
			wantQty: 15,
		},
		{
			name:    "moq dominates then pack rounding",
			part:    core.Part{SKU: "P2", OnHand: 8, MinStock: 10, MOQ: intPtr(12), PackSize: intPtr(5)},
			safety:  2,
			wantQty: 15,
		},
		{
			name:    "safety stock raises target",
			part:    core.Part{SKU: "P3", OnHand: 2, MinStock: 4},
			safety:  10,
			wantQty: 12,
		},
		{
			name:    "reserved reduces available",
			part:    core.Part{SKU: "P4", OnHand: 10, Reserved: 8, MinStock: 5},
			safety:  0,
			wantQty: 8,
		},
		{
			name:     "at minimum is not suggested",
			part:     core.Part{SKU: "P5", OnHand: 10, MinStock: 10, MOQ: intPtr(50), PackSize: intPtr(12)},
			wantNone: true,
		},
		{
			name:     "above minimum is not suggested",
			part:     core.Part{SKU: "P6", OnHand: 20, Reserved: 5, MinStock: 10, PackSize: intPtr(7)},
			wantNone: true,
		},
		{
			name:     "zero minimum never reorders",
			part:     core.Part{SKU: "P7", OnHand: 0, MinStock: 0},
			wantNone: true,
		},
		{
			name:    "negative safety is treated as zero",
			part:    core.Part{SKU: "P8", OnHand: 1, MinStock: 3},
			safety:  -5,
			wantQty: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.BuildSuggestions([]core.Part{tt.part}, tt.safety)
			if tt.wantNone {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantQty, got[0].SuggestedQty)
			assert.GreaterOrEqual(t, got[0].SuggestedQty, got[0].MOQ)
			assert.Zero(t, got[0].SuggestedQty%got[0].PackSize)
		})
	}
}

func TestBuildSuggestions_OrderingAndCosts(t *testing.T) {
	parts := []core.Part{
		{SKU: "Z-1", Name: "Zed", OnHand: 0, MinStock: 2, LastCost: decimal.RequireFromString("10.125"), Supplier: "B-Shop"},
		{SKU: "A-2", Name: "Ay", OnHand: 0, MinStock: 1, LastCost: decimal.NewFromInt(5), Supplier: "B-Shop"},
		{SKU: "M-3", Name: "Em", OnHand: 1, MinStock: 2, LastCost: decimal.NewFromInt(3), Supplier: "A-Supply"},
		{SKU: "N-4", Name: "En", OnHand: 0, MinStock: 1, LastCost: decimal.NewFromInt(7)},
		{SKU: "OK-5", Name: "Fine", OnHand: 9, MinStock: 1, Supplier: "A-Supply"},
	}

	got := core.BuildSuggestions(parts, 0)
	require.Len(t, got, 4)

	var order []string
	for _, s := range got {
		order = append(order, s.Supplier+"/"+s.SKU)
	}
	assert.Equal(t, []string{"A-Supply/M-3", "B-Shop/A-2", "B-Shop/Z-1", core.UnknownSupplier + "/N-4"}, order)

	// Z-1: target 4, qty 4, 4 x 10.125 = 40.50
	z := got[2]
	assert.Equal(t, 4, z.SuggestedQty)
	assert.Equal(t, "40.5", z.SubTotal.String())
	assert.Equal(t, "Available(0) < Min(2), target=4", z.Reason)

	// M-3: 3 x 3 = 9, A-2: 2 x 5 = 10, Z-1: 40.50, N-4: 2 x 7 = 14
	assert.True(t, core.SuggestionsTotal(got).Equal(decimal.RequireFromString("73.5")))

	suppliers, groups := core.GroupBySupplier(got)
	assert.Equal(t, []string{"A-Supply", "B-Shop", core.UnknownSupplier}, suppliers)
	assert.Len(t, groups["B-Shop"], 2)
}

func TestBuildSuggestions_Empty(t *testing.T) {
	got := core.BuildSuggestions(nil, 3)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBuildSuggestions_HugeMinStockSaturates(t *testing.T) {
	huge := math.MaxInt/2 + 1
	parts := []core.Part{
		{SKU: "BOLT", MinStock: huge, LastCost: decimal.Zero},
		{SKU: "NUT", MinStock: huge, PackSize: intPtr(4), LastCost: decimal.Zero},
	}

	got := core.BuildSuggestions(parts, math.MaxInt)
	require.Len(t, got, 2)
	assert.Equal(t, math.MaxInt, got[0].SuggestedQty)
	assert.Equal(t, math.MaxInt/4*4, got[1].SuggestedQty)
	for _, s := range got {
		assert.GreaterOrEqual(t, s.SuggestedQty, huge, s.SKU)
	}
}

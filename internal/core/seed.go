package core

import "github.com/shopspring/decimal"

// DemoSeed returns the sample parts written to an empty store when demo seeding is on.
func DemoSeed() []Part {
	return []Part{
		{
			SKU: "OIL-10W40", Name: "Engine oil 10W40", Unit: "litre",
			OnHand: 12, Reserved: 2, MinStock: 8,
			LastCost: decimal.NewFromInt(180), Supplier: "A-Supply",
		},
		{
			SKU: "BRK-PAD-FR", Name: "Front brake pads", Unit: "set",
			OnHand: 5, Reserved: 1, MinStock: 3,
			LastCost: decimal.NewFromInt(450), Supplier: "B-Shop",
		},
		{
			SKU: "AIR-FLT", Name: "Air filter", Unit: "piece",
			OnHand: 3, Reserved: 0, MinStock: 5,
			LastCost: decimal.NewFromInt(220), Supplier: "A-Supply",
		},
	}
}

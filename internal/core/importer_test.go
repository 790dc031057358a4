package core_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"parts-inventory/internal/core"
	"parts-inventory/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDraft(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestImportDrafts(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	writeDraft(t, filepath.Join(dir, "a-supply.json"), `{
		"supplier": "A-Supply",
		"createdDate": "2024-03-01",
		"items": [
			{"sku": "AIR-FLT", "quantity": 10, "unitCost": "220"},
			{"sku": "", "qty": 1},
			{"sku": "OIL-10W40", "qty": 0}
		]
	}`)
	writeDraft(t, filepath.Join(dir, "placed", "b-shop.json"), `{
		"supplier": "B-Shop",
		"createdDate": "2024-03-02",
		"items": [{"sku": "BRK-PAD-FR", "name": "Pads", "qty": 4, "unitCost": 450}]
	}`)
	writeDraft(t, filepath.Join(dir, "cancelled", "old.json"), `{
		"items": [{"sku": "OIL-10W40", "quantity": 2}]
	}`)
	writeDraft(t, filepath.Join(dir, "received", "empty.json"), `{"supplier": "X", "items": []}`)
	writeDraft(t, filepath.Join(dir, "broken.json"), `{`)
	writeDraft(t, filepath.Join(dir, "notes.txt"), `ignored`)

	partsBackend := storage.NewMemoryBackend()
	parts := core.NewPartStore(partsBackend, core.DemoSeed())
	orders := core.NewPurchaseOrderStore(storage.NewMemoryBackend())
	before := mustGet(t, parts, "AIR-FLT").OnHand

	n, err := core.ImportDrafts(ctx, orders, parts, dir)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err := orders.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	bySupplier := make(map[string]core.PurchaseOrder)
	for _, po := range all {
		bySupplier[po.Supplier] = po
	}

	a := bySupplier["A-Supply"]
	assert.Equal(t, core.POStatusDraft, a.Status)
	assert.Equal(t, "2024-03-01", a.CreatedDate)
	require.Len(t, a.Lines, 1, "invalid lines are skipped")
	assert.Equal(t, "Air filter", a.Lines[0].Name, "missing names come from the part store")
	assert.True(t, a.Lines[0].UnitCost.Equal(decimal.NewFromInt(220)))

	b := bySupplier["B-Shop"]
	assert.Equal(t, core.POStatusPlaced, b.Status)
	assert.Equal(t, "Pads", b.Lines[0].Name)

	unknown := bySupplier[core.UnknownSupplier]
	assert.Equal(t, core.POStatusCanceled, unknown.Status)
	assert.True(t, unknown.Lines[0].UnitCost.IsZero())

	assert.Equal(t, before, mustGet(t, parts, "AIR-FLT").OnHand, "importing has no stock effect")

	t.Run("second import adds nothing", func(t *testing.T) {
		n, err := core.ImportDrafts(ctx, orders, parts, dir)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := core.ImportDrafts(ctx, orders, parts, filepath.Join(dir, "nope"))
		assert.True(t, errors.Is(err, core.ErrNotFound))
	})
}

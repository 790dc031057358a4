package core

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// draftFile is the legacy per-supplier draft document.
type draftFile struct {
	Supplier    string      `json:"supplier"`
	CreatedDate string      `json:"createdDate"`
	Items       []draftItem `json:"items"`
}

type draftItem struct {
	SKU      string           `json:"sku"`
	Name     string           `json:"name"`
	Quantity *int             `json:"quantity"`
	Qty      *int             `json:"qty"`
	UnitCost *decimal.Decimal `json:"unitCost"`
}

// draftDirs maps the legacy sub directories to the status their files are imported with.
var draftDirs = []struct {
	sub    string
	status POStatus
}{
	{"", POStatusDraft},
	{"placed", POStatusPlaced},
	{"received", POStatusReceived},
	{"cancelled", POStatusCanceled},
}

// ImportDrafts loads legacy draft files from dir and its placed, received and
// cancelled sub directories into orders. Each file becomes one order whose id is
// derived from the file path, so importing twice adds nothing. Imported orders
// have no stock effect. Returns the number of orders added.
func ImportDrafts(ctx context.Context, orders PurchaseOrderStore, parts PartStore, dir string) (int, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return 0, notFoundf("draft directory %q", dir)
	}

	var names map[string]string
	if all, err := parts.FindAll(ctx); err == nil {
		names = make(map[string]string, len(all))
		for _, p := range all {
			names[strings.ToLower(p.SKU)] = p.Name
		}
	}

	var found []PurchaseOrder
	for _, d := range draftDirs {
		pos, err := scanDraftDir(filepath.Join(dir, d.sub), d.status, names)
		if err != nil {
			return 0, err
		}
		found = append(found, pos...)
	}
	if len(found) == 0 {
		return 0, nil
	}

	imported := 0
	err = orders.Update(ctx, func(existing []PurchaseOrder) ([]PurchaseOrder, error) {
		for _, po := range found {
			if indexOfOrder(existing, po.OrderID) >= 0 {
				continue
			}
			existing = append(existing, po)
			imported++
		}
		return existing, nil
	})
	if err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{"dir": dir, "imported": imported, "found": len(found)}).Info("legacy drafts imported")
	return imported, nil
}

func scanDraftDir(dir string, status POStatus, names map[string]string) ([]PurchaseOrder, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []PurchaseOrder
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		po, ok, err := readDraftFile(path, status, names)
		if err != nil {
			log.WithFields(log.Fields{"file": path, "error": err}).Warn("skipping unreadable draft file")
			continue
		}
		if ok {
			out = append(out, po)
		}
	}
	return out, nil
}

func readDraftFile(path string, status POStatus, names map[string]string) (PurchaseOrder, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PurchaseOrder{}, false, err
	}
	var f draftFile
	if err := json.Unmarshal(data, &f); err != nil {
		return PurchaseOrder{}, false, err
	}

	var lines []PurchaseOrderLine
	for _, it := range f.Items {
		line := PurchaseOrderLine{SKU: strings.TrimSpace(it.SKU), Name: it.Name, UnitCost: decimal.Zero}
		switch {
		case it.Quantity != nil:
			line.Qty = *it.Quantity
		case it.Qty != nil:
			line.Qty = *it.Qty
		}
		if it.UnitCost != nil {
			line.UnitCost = *it.UnitCost
		}
		if line.Name == "" {
			line.Name = names[strings.ToLower(line.SKU)]
		}
		if err := line.validate(); err != nil {
			log.WithFields(log.Fields{"file": path, "sku": line.SKU, "error": err}).Warn("skipping draft line")
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return PurchaseOrder{}, false, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	supplier := strings.TrimSpace(f.Supplier)
	if supplier == "" {
		supplier = UnknownSupplier
	}
	created := strings.TrimSpace(f.CreatedDate)
	if _, err := time.Parse(time.DateOnly, created); err != nil {
		created = time.Now().Format(time.DateOnly)
	}

	return PurchaseOrder{
		OrderID:     uuid.NewMD5(uuid.NameSpaceURL, []byte(abs)).String(),
		Supplier:    supplier,
		CreatedDate: created,
		Status:      status,
		Lines:       slices.Clip(lines),
	}, true, nil
}

// Package storage persists named collections of JSON records.
//
// A collection is always read and written whole. Backends must treat a missing
// collection as "not found" rather than an error, and must never leave a
// collection half-written after a crash.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Collection names used by the inventory core.
const (
	CollectionParts          = "parts"
	CollectionPurchaseOrders = "purchase_orders"
)

// ErrCorrupt is returned when a stored collection cannot be decoded.
var ErrCorrupt = errors.New("corrupt collection")

// Backend stores raw collection documents.
type Backend interface {
	// Load returns the stored document. found is false when the collection has never been saved.
	Load(ctx context.Context, collection string) (data []byte, found bool, err error)
	// Save atomically replaces the stored document.
	Save(ctx context.Context, collection string, data []byte) error
}

// LoadAll decodes a collection stored as a JSON array. An absent or empty
// collection yields an empty slice with found reporting whether it existed.
func LoadAll[T any](ctx context.Context, b Backend, collection string) (items []T, found bool, err error) {
	data, found, err := b.Load(ctx, collection)
	if err != nil {
		return nil, false, errors.Wrapf(err, "load %s", collection)
	}
	items = []T{}
	if !found || len(bytes.TrimSpace(data)) == 0 {
		return items, found, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, true, errors.Wrapf(ErrCorrupt, "%s: %v", collection, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, true, nil
}

// SaveAll encodes items as an indented JSON array and saves it.
func SaveAll[T any](ctx context.Context, b Backend, collection string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", collection)
	}
	if err := b.Save(ctx, collection, data); err != nil {
		return errors.Wrapf(err, "save %s", collection)
	}
	return nil
}

func validateName(collection string) error {
	if collection == "" || strings.ContainsAny(collection, `/\.`) {
		return errors.Errorf("invalid collection name %q", collection)
	}
	return nil
}

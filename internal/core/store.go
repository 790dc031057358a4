package core

import (
	"context"
	"strings"
	"sync"

	"parts-inventory/internal/storage"

	log "github.com/sirupsen/logrus"
)

// collection is the read-modify-persist engine shared by the part and purchase
// order stores. One mutex guards the whole collection: every read and every
// read-modify-write cycle runs under it.
type collection[T any] struct {
	mu      sync.Mutex
	backend storage.Backend
	name    string
	key     func(T) string
	seed    []T
}

// load reads the collection, writing the seed first if it has never been saved.
// Must be called with mu held.
func (c *collection[T]) load(ctx context.Context) ([]T, error) {
	items, found, err := storage.LoadAll[T](ctx, c.backend, c.name)
	if err != nil {
		return nil, err
	}
	if found {
		return items, nil
	}
	items = append([]T{}, c.seed...)
	if err := storage.SaveAll(ctx, c.backend, c.name, items); err != nil {
		log.WithFields(log.Fields{"collection": c.name, "error": err}).Warn("could not initialise collection")
	} else {
		log.WithFields(log.Fields{"collection": c.name, "records": len(items)}).Info("initialised collection")
	}
	return items, nil
}

// readAll is the fail-open read path: unreadable data is logged and reported as empty.
func (c *collection[T]) readAll(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.WithFields(log.Fields{"collection": c.name, "error": err}).
			Warn("collection unreadable, treating as empty")
		return []T{}, nil
	}
	return items, nil
}

// find returns the record whose key matches k case-insensitively.
func (c *collection[T]) find(ctx context.Context, k string) (T, bool, error) {
	var zero T
	items, err := c.readAll(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, it := range items {
		if sameKey(c.key(it), k) {
			return it, true, nil
		}
	}
	return zero, false, nil
}

// update is the fail-closed write path. A read error aborts without writing so an
// unreadable collection is never replaced by a partial one.
func (c *collection[T]) update(ctx context.Context, fn func([]T) ([]T, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return persistenceErr("read "+c.name, err)
	}
	next, err := fn(items)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(next))
	for _, it := range next {
		k := strings.ToLower(strings.TrimSpace(c.key(it)))
		if _, dup := seen[k]; dup {
			return invalidStatef("%s: duplicate key %q", c.name, c.key(it))
		}
		seen[k] = struct{}{}
	}
	if err := storage.SaveAll(ctx, c.backend, c.name, next); err != nil {
		return persistenceErr("write "+c.name, err)
	}
	return nil
}

func (c *collection[T]) upsert(ctx context.Context, item T) error {
	return c.update(ctx, func(items []T) ([]T, error) {
		for i := range items {
			if sameKey(c.key(items[i]), c.key(item)) {
				items[i] = item
				return items, nil
			}
		}
		return append(items, item), nil
	})
}

func (c *collection[T]) delete(ctx context.Context, k string) error {
	return c.update(ctx, func(items []T) ([]T, error) {
		for i := range items {
			if sameKey(c.key(items[i]), k) {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, notFoundf("%s %q", c.name, k)
	})
}

func sameKey(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ── Part store ────────────────────────────────────────────────────────────────

type partStore struct {
	c *collection[Part]
}

// NewPartStore constructs a PartStore over backend. seed is written when the
// parts collection does not exist yet; pass nil to start empty.
func NewPartStore(backend storage.Backend, seed []Part) PartStore {
	return &partStore{c: &collection[Part]{
		backend: backend,
		name:    storage.CollectionParts,
		key:     func(p Part) string { return p.SKU },
		seed:    seed,
	}}
}

func (s *partStore) FindAll(ctx context.Context) ([]Part, error) {
	return s.c.readAll(ctx)
}

func (s *partStore) FindBySKU(ctx context.Context, sku string) (Part, error) {
	p, ok, err := s.c.find(ctx, sku)
	if err != nil {
		return Part{}, err
	}
	if !ok {
		return Part{}, notFoundf("part %q", sku)
	}
	return p, nil
}

func (s *partStore) Upsert(ctx context.Context, part Part) error {
	part.SKU = strings.TrimSpace(part.SKU)
	if err := part.Validate(); err != nil {
		return err
	}
	return s.c.upsert(ctx, part)
}

func (s *partStore) Delete(ctx context.Context, sku string) error {
	return s.c.delete(ctx, sku)
}

func (s *partStore) Update(ctx context.Context, fn func(parts []Part) ([]Part, error)) error {
	return s.c.update(ctx, fn)
}

// ── Purchase order store ──────────────────────────────────────────────────────

type purchaseOrderStore struct {
	c *collection[PurchaseOrder]
}

// NewPurchaseOrderStore constructs a PurchaseOrderStore over backend.
func NewPurchaseOrderStore(backend storage.Backend) PurchaseOrderStore {
	return &purchaseOrderStore{c: &collection[PurchaseOrder]{
		backend: backend,
		name:    storage.CollectionPurchaseOrders,
		key:     func(po PurchaseOrder) string { return po.OrderID },
	}}
}

func (s *purchaseOrderStore) FindAll(ctx context.Context) ([]PurchaseOrder, error) {
	return s.c.readAll(ctx)
}

func (s *purchaseOrderStore) FindByID(ctx context.Context, orderID string) (PurchaseOrder, error) {
	po, ok, err := s.c.find(ctx, orderID)
	if err != nil {
		return PurchaseOrder{}, err
	}
	if !ok {
		return PurchaseOrder{}, notFoundf("purchase order %q", orderID)
	}
	return po, nil
}

func (s *purchaseOrderStore) Upsert(ctx context.Context, po PurchaseOrder) error {
	if strings.TrimSpace(po.OrderID) == "" {
		return invalidArgf("orderId is required")
	}
	if !po.Status.Valid() {
		return invalidArgf("purchase order %s: unknown status %q", po.OrderID, po.Status)
	}
	return s.c.upsert(ctx, po)
}

func (s *purchaseOrderStore) Delete(ctx context.Context, orderID string) error {
	return s.c.delete(ctx, orderID)
}

func (s *purchaseOrderStore) Update(ctx context.Context, fn func(orders []PurchaseOrder) ([]PurchaseOrder, error)) error {
	return s.c.update(ctx, fn)
}

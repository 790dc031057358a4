package app

import (
	"context"
	"fmt"

	"parts-inventory/internal/config"
	"parts-inventory/internal/core"
	"parts-inventory/internal/db"
	"parts-inventory/internal/storage"

	log "github.com/sirupsen/logrus"
)

// Open builds the storage backend selected by cfg and wires the stores and
// services over it. The returned close function releases the backend.
func Open(ctx context.Context, cfg *config.Config) (ApplicationService, func(), error) {
	backend, closeFn, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	var seed []core.Part
	if cfg.SeedDemo {
		seed = core.DemoSeed()
	}
	svc := New(backend, seed, cfg.SafetyStock)

	log.WithFields(log.Fields{"backend": cfg.Backend, "seed_demo": cfg.SeedDemo}).Info("inventory ready")
	return svc, closeFn, nil
}

// New wires stores and services over backend. seed is written to an empty parts collection.
func New(backend storage.Backend, seed []core.Part, safetyStock int) ApplicationService {
	parts := core.NewPartStore(backend, seed)
	orders := core.NewPurchaseOrderStore(backend)
	inventoryService := core.NewInventoryService(parts)
	purchaseOrders := core.NewPurchaseOrderService(orders, parts, inventoryService)
	return NewAppService(parts, orders, inventoryService, purchaseOrders, safetyStock)
}

func openBackend(ctx context.Context, cfg *config.Config) (storage.Backend, func(), error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return storage.NewMemoryBackend(), func() {}, nil

	case config.BackendPostgres:
		if cfg.Migrate {
			if err := storage.Migrate(cfg.DatabaseURL); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		return storage.NewPostgresBackend(pool), pool.Close, nil

	default:
		return storage.NewFileBackend(cfg.DataDir), func() {}, nil
	}
}

package storage

import (
	"context"
	"sync"
)

// MemoryBackend keeps collections in process memory. Failures can be injected
// to exercise the stores' error paths.
type MemoryBackend struct {
	mu      sync.Mutex
	data    map[string][]byte
	loadErr error
	saveErr error
	saves   int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Load(ctx context.Context, collection string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	data, ok := m.data[collection]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (m *MemoryBackend) Save(ctx context.Context, collection string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[collection] = append([]byte(nil), data...)
	m.saves++
	return nil
}

// Put stores a raw document, bypassing encoding. Used to plant corrupt data.
func (m *MemoryBackend) Put(collection string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[collection] = append([]byte(nil), data...)
}

// Raw returns the stored document for collection.
func (m *MemoryBackend) Raw(collection string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[collection]
	return append([]byte(nil), data...), ok
}

// FailLoads makes every Load return err until called again with nil.
func (m *MemoryBackend) FailLoads(err error) {
	m.mu.Lock()
	m.loadErr = err
	m.mu.Unlock()
}

// FailSaves makes every Save return err until called again with nil.
func (m *MemoryBackend) FailSaves(err error) {
	m.mu.Lock()
	m.saveErr = err
	m.mu.Unlock()
}

// Saves counts successful saves.
func (m *MemoryBackend) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

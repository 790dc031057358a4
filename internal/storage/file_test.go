package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"parts-inventory/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

func TestFileBackend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	b := storage.NewFileBackend(dir)

	items, found, err := storage.LoadAll[record](ctx, b, "parts")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	want := []record{{ID: "a", Qty: 1}, {ID: "b", Qty: 2}}
	require.NoError(t, storage.SaveAll(ctx, b, "parts", want))

	got, found, err := storage.LoadAll[record](ctx, b, "parts")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files may be left behind")
	assert.Equal(t, "parts.json", entries[0].Name())
}

func TestFileBackend_EmptyAndCorrupt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b := storage.NewFileBackend(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.json"), []byte("  \n"), 0o644))
	items, found, err := storage.LoadAll[record](ctx, b, "empty")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, items)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`[{"id":`), 0o644))
	_, _, err = storage.LoadAll[record](ctx, b, "bad")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrCorrupt))
}

func TestFileBackend_RejectsPathLikeNames(t *testing.T) {
	ctx := context.Background()
	b := storage.NewFileBackend(t.TempDir())

	for _, name := range []string{"", "../escape", "a/b", "x.y"} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, b.Save(ctx, name, []byte("[]")))
			_, _, err := b.Load(ctx, name)
			assert.Error(t, err)
		})
	}
}

func TestFileBackend_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := storage.NewFileBackend(t.TempDir())

	assert.ErrorIs(t, b.Save(ctx, "parts", []byte("[]")), context.Canceled)
	_, _, err := b.Load(ctx, "parts")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryBackend_FailureInjection(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend()
	boom := errors.New("boom")

	require.NoError(t, storage.SaveAll(ctx, b, "parts", []record{{ID: "a"}}))
	assert.Equal(t, 1, b.Saves())

	b.FailSaves(boom)
	err := storage.SaveAll(ctx, b, "parts", []record{{ID: "b"}})
	assert.ErrorIs(t, err, boom)
	raw, ok := b.Raw("parts")
	require.True(t, ok)
	assert.Contains(t, string(raw), `"a"`)

	b.FailLoads(boom)
	_, _, err = storage.LoadAll[record](ctx, b, "parts")
	assert.ErrorIs(t, err, boom)
}

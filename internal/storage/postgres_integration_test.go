package storage

import (
	"context"
	"os"
	"testing"

	"parts-inventory/internal/db"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@localhost:5432/parts":   "pgx5://u:p@localhost:5432/parts",
		"postgresql://u:p@localhost:5432/parts": "pgx5://u:p@localhost:5432/parts",
		"pgx5://already":                        "pgx5://already",
	}
	for in, want := range tests {
		assert.Equal(t, want, migrateURL(in))
	}
}

func setupPostgresBackend(t *testing.T) *PostgresBackend {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres backend test")
	}

	if err := Migrate(dbURL); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, "DELETE FROM collections WHERE name LIKE 'test_%'"); err != nil {
		t.Fatalf("failed to clean collections: %v", err)
	}
	return NewPostgresBackend(pool)
}

func TestPostgresBackend_RoundTrip(t *testing.T) {
	b := setupPostgresBackend(t)
	ctx := context.Background()

	type row struct {
		SKU string `json:"sku"`
		Qty int    `json:"qty"`
	}

	_, found, err := LoadAll[row](ctx, b, "test_parts")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SaveAll(ctx, b, "test_parts", []row{{SKU: "A", Qty: 1}}))
	require.NoError(t, SaveAll(ctx, b, "test_parts", []row{{SKU: "A", Qty: 2}, {SKU: "B", Qty: 3}}))

	got, found, err := LoadAll[row](ctx, b, "test_parts")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []row{{SKU: "A", Qty: 2}, {SKU: "B", Qty: 3}}, got)

	require.NoError(t, Migrate(os.Getenv("TEST_DATABASE_URL")), "re-running migrations is a no-op")
}

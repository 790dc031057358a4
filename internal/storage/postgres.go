package storage

import (
	"context"
	"strings"

	"parts-inventory/migrations"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// PostgresBackend stores each collection as one jsonb row in the collections table.
// A save is a single INSERT ... ON CONFLICT statement, so it is atomic on its own.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend constructs a backend over pool. Run Migrate first.
func NewPostgresBackend(pool *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{pool: pool}
}

func (b *PostgresBackend) Load(ctx context.Context, collection string) ([]byte, bool, error) {
	if err := validateName(collection); err != nil {
		return nil, false, err
	}
	var body []byte
	err := b.pool.QueryRow(ctx,
		"SELECT body FROM collections WHERE name = $1", collection,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "select collection %s", collection)
	}
	return body, true, nil
}

func (b *PostgresBackend) Save(ctx context.Context, collection string, data []byte) error {
	if err := validateName(collection); err != nil {
		return err
	}
	_, err := b.pool.Exec(ctx, `
		INSERT INTO collections (name, body, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`,
		collection, data,
	)
	if err != nil {
		return errors.Wrapf(err, "upsert collection %s", collection)
	}
	return nil
}

// Migrate applies the embedded schema migrations to the database at databaseURL.
// An up-to-date schema is not an error.
func Migrate(databaseURL string) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return errors.Wrap(err, "open embedded migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(databaseURL))
	if err != nil {
		return errors.Wrap(err, "init migrate")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}

// migrateURL rewrites a postgres:// URL to the pgx5:// scheme golang-migrate's pgx driver expects.
func migrateURL(databaseURL string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}

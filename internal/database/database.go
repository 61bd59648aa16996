package database

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrations embed.FS

func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}
	return pool, nil
}

// Schema is the archive schema state after migrating.
type Schema struct {
	Version uint
	Dirty   bool
}

// Migrate applies every pending archive migration and reports the
// resulting schema version.
func Migrate(url string) (schema Schema, err error) {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return schema, fmt.Errorf("unable to create migrations iofs: %w", err)
	}
	migrator, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		return schema, fmt.Errorf("unable to create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := migrator.Close()
		if err == nil {
			err = errors.Join(srcErr, dbErr)
		}
	}()

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return schema, fmt.Errorf("failed to migrate database: %w", err)
	}
	version, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return schema, fmt.Errorf("failed to check migration version: %w", err)
	}
	return Schema{Version: version, Dirty: dirty}, nil
}

func ConnectAndMigrate(ctx context.Context, url string) (*pgxpool.Pool, Schema, error) {
	schema, err := Migrate(url)
	if err != nil {
		return nil, schema, err
	}
	pool, err := Connect(ctx, url)
	if err != nil {
		return nil, schema, err
	}
	return pool, schema, nil
}

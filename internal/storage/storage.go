// Package storage opens the local database, applies embedded migrations and
// wires the concrete repositories.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/medtrack/internal/migrations"
	"github.com/dmitrijs2005/medtrack/internal/repositories/collections"
	"github.com/dmitrijs2005/medtrack/internal/repositories/metadata"
)

// Repositories bundles the repositories backed by one database handle.
type Repositories struct {
	Collections collections.Repository
	Metadata    metadata.Repository
	DB          *sql.DB
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the sqlite database at dsn,
// migrates it to the current schema and returns ready repositories.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Repositories{
		Collections: collections.NewSQLiteRepository(db),
		Metadata:    metadata.NewSQLiteRepository(db),
		DB:          db,
	}, nil
}

// Close releases the underlying database handle.
func (r *Repositories) Close() error {
	return r.DB.Close()
}

// Package storage opens the local database and brings its schema up to date
// with the embedded goose migrations.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/geokeeper/internal/common"
	"github.com/dmitrijs2005/geokeeper/internal/dbx"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// driverName maps a dialect onto its registered database/sql driver.
func driverName(d dbx.Dialect) (string, error) {
	switch d {
	case dbx.DialectSQLite:
		return "sqlite", nil
	case dbx.DialectPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrUnknownDriver, d)
	}
}

func gooseDialect(d dbx.Dialect) goose.Dialect {
	if d == dbx.DialectPostgres {
		return goose.DialectPostgres
	}
	return goose.DialectSQLite3
}

// RunMigrations applies every pending migration for dialect. Re-running is a no-op.
func RunMigrations(ctx context.Context, db *sql.DB, dialect dbx.Dialect) error {
	fsys, err := fs.Sub(Migrations, "migrations/"+string(dialect))
	if err != nil {
		return fmt.Errorf("migrations for %s: %w", dialect, err)
	}

	provider, err := goose.NewProvider(gooseDialect(dialect), db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Open connects to the database described by dialect/dsn and migrates it.
func Open(ctx context.Context, dialect dbx.Dialect, dsn string) (*sql.DB, error) {
	driver, err := driverName(dialect)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if dialect == dbx.DialectSQLite {
		// modernc serialises writers per connection; one connection keeps
		// ":memory:" databases shared and avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := RunMigrations(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

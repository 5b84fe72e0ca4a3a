// Package sqlstore persists the model registry through sqlx. PostgreSQL
// (lib/pq) and SQLite (go-sqlite3) are both supported.
package sqlstore

import (
	"context"
	"fmt"
	"log"

	"aquacheck/internal/errors"
	"aquacheck/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the registry database and applies migrations.
func Open(ctx context.Context, driver, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, url)
	if err != nil {
		return nil, errors.DatabaseError(fmt.Sprintf("failed to connect to %s database", driver), err)
	}

	if driver == "sqlite3" {
		// A single connection keeps in-memory databases coherent.
		db.SetMaxOpenConns(1)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "%s database migration failed", driver)
	}

	log.Printf("[Registry] Connected to %s registry database", driver)
	return db, nil
}

package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"aquacheck/domain/core"
	"aquacheck/internal/errors"
	"aquacheck/ports"

	"github.com/jmoiron/sqlx"
)

// ModelRegistry implements ports.ModelRegistry on sqlx
type ModelRegistry struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ ports.ModelRegistry = (*ModelRegistry)(nil)

// NewModelRegistry creates a registry over an open, migrated database
func NewModelRegistry(db *sqlx.DB) *ModelRegistry {
	return &ModelRegistry{
		db:  db,
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

const selectColumns = `digest, path, kind, n_trees, size_bytes, load_count, first_loaded_at, last_loaded_at`

// RecordLoad inserts the artifact or bumps its load count
func (r *ModelRegistry) RecordLoad(ctx context.Context, info ports.ModelInfo) (*ports.ModelRecord, error) {
	if info.Digest.IsEmpty() {
		return nil, errors.InvalidInput("model digest is required")
	}

	now := r.now()
	query := r.db.Rebind(`
		INSERT INTO model_artifacts (digest, path, kind, n_trees, size_bytes, load_count, first_loaded_at, last_loaded_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT (digest) DO UPDATE SET
			load_count = model_artifacts.load_count + 1,
			path = excluded.path,
			last_loaded_at = excluded.last_loaded_at
	`)
	if _, err := r.db.ExecContext(ctx, query,
		info.Digest, info.Path, info.Kind, info.NTrees, info.SizeBytes, now, now); err != nil {
		return nil, errors.DatabaseError("failed to record model load", err)
	}

	return r.Get(ctx, info.Digest)
}

// Get returns the record for a digest
func (r *ModelRegistry) Get(ctx context.Context, digest core.Hash) (*ports.ModelRecord, error) {
	var record ports.ModelRecord
	err := r.db.GetContext(ctx, &record, r.db.Rebind(`
		SELECT `+selectColumns+`
		FROM model_artifacts
		WHERE digest = ?
	`), digest)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: model %s", core.ErrNotFound, digest.Short())
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to read model record", err)
	}
	return &record, nil
}

// List returns records ordered by most recent load
func (r *ModelRegistry) List(ctx context.Context, limit int) ([]ports.ModelRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	records := []ports.ModelRecord{}
	err := r.db.SelectContext(ctx, &records, r.db.Rebind(`
		SELECT `+selectColumns+`
		FROM model_artifacts
		ORDER BY last_loaded_at DESC, digest
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, errors.DatabaseError("failed to list model records", err)
	}
	return records, nil
}

package ports

import (
	"context"
	"time"

	"aquacheck/domain/core"
)

// ModelRecord is the registry entry for one classifier artifact
type ModelRecord struct {
	Digest      core.Hash `db:"digest" json:"digest"`
	Path        string    `db:"path" json:"path"`
	Kind        string    `db:"kind" json:"kind"`
	NTrees      int       `db:"n_trees" json:"n_trees"`
	SizeBytes   int64     `db:"size_bytes" json:"size_bytes"`
	LoadCount   int       `db:"load_count" json:"load_count"`
	FirstLoaded time.Time `db:"first_loaded_at" json:"first_loaded_at"`
	LastLoaded  time.Time `db:"last_loaded_at" json:"last_loaded_at"`
}

// ModelRegistry keeps an audit trail of which classifier artifacts the
// service has served. It never stores submissions.
type ModelRegistry interface {
	// RecordLoad inserts the artifact or bumps its load count.
	RecordLoad(ctx context.Context, info ModelInfo) (*ModelRecord, error)

	// Get returns the record for a digest, or core.ErrNotFound.
	Get(ctx context.Context, digest core.Hash) (*ModelRecord, error)

	// List returns records ordered by most recent load.
	List(ctx context.Context, limit int) ([]ModelRecord, error)
}

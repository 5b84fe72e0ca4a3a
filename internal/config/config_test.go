package config

import (
	"testing"

	"aquacheck/domain/water"
	"aquacheck/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MODEL_PATH", "models/potability.json")
	t.Setenv("INPUT_POLICY", "")
	t.Setenv("PORT", "")
	t.Setenv("GIN_MODE", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("BATCH_CONCURRENCY", "")
	t.Setenv("THEME", "")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "models/potability.json", cfg.Model.Path)
	assert.Equal(t, water.PolicyClamp, cfg.Input.Policy)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.Equal(t, "ocean", cfg.UI.Theme)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoadRequiresModelPath(t *testing.T) {
	t.Setenv("MODEL_PATH", "")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	assert.Contains(t, err.Error(), "MODEL_PATH")
}

func TestLoadRejectPolicyAndDatabase(t *testing.T) {
	t.Setenv("MODEL_PATH", "m.msgpack")
	t.Setenv("INPUT_POLICY", "reject")
	t.Setenv("DATABASE_URL", "file:registry.db")
	t.Setenv("DATABASE_DRIVER", "sqlite3")
	t.Setenv("BATCH_CONCURRENCY", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, water.PolicyReject, cfg.Input.Policy)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 8, cfg.Batch.Concurrency)
}

func TestLoadInvalidValues(t *testing.T) {
	t.Setenv("MODEL_PATH", "m.json")

	t.Setenv("INPUT_POLICY", "ignore")
	_, err := Load()
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	t.Setenv("INPUT_POLICY", "clamp")
	t.Setenv("BATCH_CONCURRENCY", "0")
	_, err = Load()
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	t.Setenv("BATCH_CONCURRENCY", "2")
	t.Setenv("DATABASE_DRIVER", "mysql")
	_, err = Load()
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("GIN_MODE", "verbose")
	_, err = Load()
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

package container

import (
	"context"
	"fmt"
	"net/http"

	"aquacheck/adapters/api"
	"aquacheck/adapters/model"
	"aquacheck/adapters/sqlstore"
	"aquacheck/app"
	"aquacheck/domain/water"
	"aquacheck/internal"
	"aquacheck/internal/config"
	"aquacheck/internal/interpret"
	"aquacheck/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB       *sqlx.DB
	Registry ports.ModelRegistry

	// Domain components
	Schema     *water.Schema
	Engine     *interpret.Engine
	Classifier ports.Classifier

	// Services
	Analysis *app.AnalysisService
	Batch    *app.BatchService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
		Schema: water.NewSchema(cfg.Input.Policy),
		Engine: interpret.NewEngine(),
	}
	c.initServices()
	return c, nil
}

// InitWithDatabase opens the model registry when DATABASE_URL is set. It is a
// no-op otherwise.
func (c *Container) InitWithDatabase(ctx context.Context) error {
	if !c.Config.Database.Enabled() {
		c.Logger.Info("no DATABASE_URL configured, model registry disabled")
		return nil
	}

	db, err := sqlstore.Open(ctx, c.Config.Database.Driver, c.Config.Database.URL)
	if err != nil {
		return err
	}
	c.DB = db
	c.Registry = sqlstore.NewModelRegistry(db)
	return nil
}

// LoadModel loads the classifier artifact once and rebuilds the services
// around it. The load is recorded in the registry when one is configured.
func (c *Container) LoadModel(ctx context.Context) error {
	handle, err := model.Load(c.Config.Model.Path)
	if err != nil {
		return err
	}
	c.UseClassifier(handle)

	if c.Registry != nil {
		record, err := c.Registry.RecordLoad(ctx, handle.Info())
		if err != nil {
			c.Logger.Warn("failed to record model load: %v", err)
		} else {
			c.Logger.Info("model %s loaded %d time(s) since %s",
				record.Digest.Short(), record.LoadCount, record.FirstLoaded.Format("2006-01-02"))
		}
	}
	return nil
}

// UseClassifier swaps in an already constructed classifier
func (c *Container) UseClassifier(classifier ports.Classifier) {
	c.Classifier = classifier
	c.initServices()
}

func (c *Container) initServices() {
	c.Analysis = app.NewAnalysisService(c.Schema, c.Classifier, c.Engine, c.Logger)
	c.Batch = app.NewBatchService(c.Analysis, c.Config.Batch.Concurrency, c.Logger)
}

// APIHandler returns the JSON API router
func (c *Container) APIHandler() http.Handler {
	return api.NewHandler(c.Analysis, c.Batch, c.Registry, c.Logger).Routes()
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

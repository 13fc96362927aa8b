package container

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"moodlens/adapters/excel"
	"moodlens/adapters/model"
	"moodlens/adapters/sqlstore"
	"moodlens/app"
	"moodlens/domain/core"
	"moodlens/domain/dataset"
	"moodlens/internal"
	"moodlens/internal/config"
	"moodlens/internal/errors"
	"moodlens/internal/metrics"
	"moodlens/internal/persona"
	"moodlens/internal/prediction"
	"moodlens/ports"
)

// MetricsNamespace prefixes every exported metric
const MetricsNamespace = "moodlens"

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Log    *internal.Logger

	// Infrastructure
	DB      *sqlx.DB
	Metrics *metrics.Collector

	// Sources, chosen by configuration
	Records  ports.RecordSource
	Profiles ports.ProfileSource

	// Immutable state, built once by Load
	Dataset *dataset.Dataset
	Catalog *persona.Catalog
	Models  *prediction.Registry
	Service *app.Service
}

// New creates a new dependency injection container. It opens the database
// when the data source is sql but reads nothing yet.
func New(ctx context.Context, cfg *config.Config, log *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if log == nil {
		log = internal.NewNopLogger()
	}
	c := &Container{
		Config:  cfg,
		Log:     log,
		Metrics: metrics.NewCollector(MetricsNamespace),
	}

	switch cfg.Data.Source {
	case "sql":
		db, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		c.DB = db
		c.Records = sqlstore.NewRecordStore(db, log)
		c.Profiles = sqlstore.NewProfileStore(db, log)
	default:
		c.Records = excel.NewRecordFile(cfg.Data.File, log)
		if cfg.Data.ProfilesFile != "" {
			c.Profiles = excel.NewProfileFile(cfg.Data.ProfilesFile, log)
		}
	}
	return c, nil
}

// Load reads the dataset, cluster profiles and models concurrently and wires
// the service. Any failure aborts startup.
func (c *Container) Load(ctx context.Context) error {
	start := time.Now()
	var (
		ds       *dataset.Dataset
		profiles []persona.Profile
		details  []persona.Details
		models   []prediction.Model
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := c.Records.LoadRecords(gctx)
		if err != nil {
			return err
		}
		if ds, err = dataset.New(rows, c.sourceName()); err != nil {
			return errors.LoadFailed("dataset", err)
		}
		return nil
	})
	g.Go(func() error {
		if c.Profiles == nil {
			return nil
		}
		var err error
		if profiles, err = c.Profiles.LoadProfiles(gctx); err != nil {
			return err
		}
		details, err = loadDetails(c.Config.Data.PersonaDetailsFile)
		return err
	})
	g.Go(func() error {
		if c.Config.Models.ManifestFile == "" {
			return nil
		}
		var err error
		models, err = model.LoadManifest(c.Config.Models.ManifestFile, model.Options{
			Timeout: c.Config.Models.Timeout,
			Log:     c.Log,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	catalog, err := persona.NewCatalog(profiles, details)
	if err != nil {
		return errors.LoadFailed("cluster profiles", err)
	}
	registry, err := prediction.NewRegistry(models...)
	if err != nil {
		return errors.LoadFailed("models", err)
	}

	c.Dataset = ds
	c.Catalog = catalog
	c.Models = registry
	c.Service = app.NewService(c.Dataset, catalog, registry, c.Metrics, c.Log)

	meta := c.Dataset.Metadata()
	c.Log.Info("[Container] Loaded %d records (%s to %s), %d personas, %d models in %s (fingerprint %s)",
		meta.RecordCount, meta.FirstDate, meta.LastDate, catalog.Len(), len(registry.List()),
		time.Since(start).Round(time.Millisecond), core.Hash(meta.Fingerprint).Short())
	return nil
}

func (c *Container) sourceName() string {
	if c.Config.Data.Source == "sql" {
		return "sql:" + c.Config.Database.Driver
	}
	return c.Config.Data.File
}

func loadDetails(path string) ([]persona.Details, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.LoadFailed("persona details", err)
	}
	defer f.Close()
	details, err := persona.LoadDetails(f)
	if err != nil {
		return nil, errors.LoadFailed("persona details", err)
	}
	return details, nil
}

// Close releases the database connection if one was opened
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

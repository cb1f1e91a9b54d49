package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/pennybook/pennybook/internal/config"
	"github.com/pennybook/pennybook/internal/database"
	"github.com/pennybook/pennybook/internal/event_bus"
	"github.com/pennybook/pennybook/internal/kvstore"
	"github.com/pennybook/pennybook/internal/utils"
	"github.com/pennybook/pennybook/pkg/export"
	"github.com/pennybook/pennybook/pkg/export/sheets"
	"github.com/pennybook/pennybook/pkg/tracker"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock utils.Clock
	Bus   *event_bus.EventBus

	KV             kvstore.Store
	TrackerStore   *tracker.Store
	TrackerSession *tracker.Session
	TrackerHandler *tracker.Handler

	Exporter      *export.Exporter
	CsvRenderer   *export.CsvRendererImpl
	SheetsWriter  sheets.ExpenseWriter
	ExportHandler *export.Handler
}

// BuildDependencies opens the configured storage backend and wires all
// services and handlers.
func BuildDependencies(ctx context.Context, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}
	deps.Clock = &utils.SystemClock{}
	deps.Bus = event_bus.NewEventBus()

	kv, err := openStorage(cfg.Storage)
	if err != nil {
		return nil, err
	}
	deps.KV = kv

	deps.TrackerStore = tracker.NewStore(kv, deps.Clock)
	deps.TrackerSession, err = tracker.NewSession(ctx, deps.TrackerStore, deps.Bus, deps.Clock)
	if err != nil {
		return nil, fmt.Errorf("failed to bind current period: %w", err)
	}
	deps.TrackerHandler = tracker.NewHandler(deps.TrackerSession)

	deps.Exporter = export.NewExporter(deps.TrackerStore, deps.Clock)
	deps.CsvRenderer = export.NewCsvRenderer()
	if cfg.Sheets.Enabled {
		writer, err := sheets.NewGoogleClient(ctx, cfg.Sheets)
		if err != nil {
			return nil, fmt.Errorf("failed to configure sheets backup: %w", err)
		}
		deps.SheetsWriter = writer
	}
	deps.ExportHandler = export.NewHandler(deps.TrackerSession, deps.Exporter, deps.CsvRenderer, deps.SheetsWriter)

	return deps, nil
}

func openStorage(cfg config.Storage) (kvstore.Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		db, err := database.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := database.MigrateSQLite(db); err != nil {
			return nil, err
		}
		log.Infof("Using sqlite storage at %s", cfg.Path)
		return kvstore.NewSQLiteStore(db), nil
	case "postgres":
		if err := database.MigratePostgres(cfg.Postgres); err != nil {
			return nil, err
		}
		pool, err := database.OpenPostgres(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		log.Infof("Using postgres storage at %s:%d", cfg.Postgres.Host, cfg.Postgres.Port)
		return kvstore.NewPostgresStore(pool), nil
	case "memory":
		log.Warn("Using in-memory storage, data will not survive a restart")
		return kvstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

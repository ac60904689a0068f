package app

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/Black-And-White-Club/club-cms/app/eventbus"
	"github.com/Black-And-White-Club/club-cms/app/modules/asset"
	"github.com/Black-And-White-Club/club-cms/app/modules/content"
	"github.com/Black-And-White-Club/club-cms/app/shared/observability"
	"github.com/Black-And-White-Club/club-cms/config"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// App holds the shared infrastructure and the modules built on it.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router
	HTTPRouter    chi.Router

	ContentModule *content.Module
	AssetModule   *asset.Module

	wg sync.WaitGroup
}

// NewApp connects to Postgres and the event bus and builds every module.
func NewApp(ctx context.Context, cfg *config.Config, obs observability.Observability) (*App, error) {
	logger := obs.Logger

	db := NewDB(cfg.Postgres.DSN)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	bus, err := eventbus.New(ctx, cfg.NATS.URL, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		bus.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}

	app := &App{
		Config:        cfg,
		Observability: obs,
		DB:            db,
		EventBus:      bus,
		Router:        router,
		HTTPRouter:    NewHTTPRouter(obs),
	}

	if err := app.initializeModules(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// NewDB opens a bun handle over pgdriver.
func NewDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func (app *App) initializeModules(ctx context.Context) error {
	contentModule, err := content.NewContentModule(ctx, app.Config, app.Observability, app.EventBus, app.Router, app.HTTPRouter, app.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize content module: %w", err)
	}
	app.ContentModule = contentModule

	assetModule, err := asset.NewAssetModule(ctx, app.Config, app.Observability, app.EventBus, app.HTTPRouter, app.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize asset module: %w", err)
	}
	app.AssetModule = assetModule
	return nil
}

// Run starts the modules, the message router and the HTTP servers, and blocks until ctx ends.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	app.wg.Add(2)
	go app.ContentModule.Run(ctx, &app.wg)
	go app.AssetModule.Run(ctx, &app.wg)

	routerErr := make(chan error, 1)
	go func() {
		routerErr <- app.Router.Run(ctx)
	}()
	select {
	case <-app.Router.Running():
	case err := <-routerErr:
		return fmt.Errorf("message router stopped: %w", err)
	}
	logger.InfoContext(ctx, "Message router running")

	return app.Serve(ctx)
}

// Close stops the modules and releases shared connections.
func (app *App) Close() {
	logger := app.Observability.Logger

	if app.ContentModule != nil {
		if err := app.ContentModule.Close(); err != nil {
			logger.Error("Error closing content module", "error", err)
		}
	}
	if app.AssetModule != nil {
		if err := app.AssetModule.Close(); err != nil {
			logger.Error("Error closing asset module", "error", err)
		}
	}

	done := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		logger.Warn("Timed out waiting for modules to stop")
	}

	if app.Router != nil {
		if err := app.Router.Close(); err != nil {
			logger.Error("Error closing message router", "error", err)
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			logger.Error("Error closing event bus", "error", err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			logger.Error("Error closing database", "error", err)
		}
	}
}

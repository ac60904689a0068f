package asset

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Black-And-White-Club/club-cms/app/eventbus"
	assetservice "github.com/Black-And-White-Club/club-cms/app/modules/asset/application"
	assetevents "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/events"
	assethandlers "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/handlers"
	assetqueue "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/queue"
	assetdb "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/repositories"
	assetstorage "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/storage"
	"github.com/Black-And-White-Club/club-cms/app/shared/httpmiddleware"
	sharedmetrics "github.com/Black-And-White-Club/club-cms/app/shared/metrics"
	"github.com/Black-And-White-Club/club-cms/app/shared/observability"
	"github.com/Black-And-White-Club/club-cms/config"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"golang.org/x/time/rate"
)

// Module represents the asset module.
type Module struct {
	AssetService  assetservice.Service
	QueueService  *assetqueue.Service
	config        *config.Config
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewAssetModule wires image storage, the delete queue and the HTTP API.
func NewAssetModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	eventBus eventbus.EventBus,
	httpRouter chi.Router,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "asset.NewAssetModule called")

	var metrics sharedmetrics.OperationMetrics = sharedmetrics.NewNoop()
	if obs.Registry != nil {
		m, err := sharedmetrics.NewPrometheusMetrics(obs.Registry, "asset")
		if err != nil {
			return nil, fmt.Errorf("failed to register asset metrics: %w", err)
		}
		metrics = m
	}

	store, err := assetstorage.NewFilesystem(cfg.Storage.MediaRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to open media root: %w", err)
	}

	var queue *assetqueue.Service
	var scheduler assetservice.RowDeleteScheduler
	if cfg.Queue.Enabled {
		queue, err = assetqueue.NewService(ctx, db, logger, cfg.Postgres.DSN, metrics, cfg.Queue.ReconcileInterval)
		if err != nil {
			return nil, fmt.Errorf("failed to create asset queue service: %w", err)
		}
		scheduler = queue
	} else {
		logger.WarnContext(ctx, "Asset queue disabled, failed row deletes wait for a manual reconcile")
	}

	assetdb.RegisterModels(db)
	repo := assetdb.NewRepository(db)
	notifier := assetevents.NewBusNotifier(eventBus, logger)
	service := assetservice.NewAssetService(repo, store, scheduler, notifier, logger, metrics, obs.Tracer, db, assetservice.Config{
		ArchiveRoot: cfg.Storage.ArchiveRoot,
	})
	if queue != nil {
		queue.Bind(service)
	}

	if httpRouter != nil {
		handlers := assethandlers.NewAssetHandlers(service, logger, cfg.HTTP.MaxUploadBytes)
		limiter := httpmiddleware.NewIPRateLimiter(rate.Limit(cfg.HTTP.UploadRateLimit), cfg.HTTP.UploadBurst)
		httpRouter.Route("/api/assets", func(r chi.Router) {
			r.Use(httpmiddleware.CORS(cfg.HTTP.AllowedOrigins))
			r.Mount("/", assethandlers.Routes(handlers, httpmiddleware.RateLimit(limiter)))
		})
	}

	return &Module{
		AssetService:  service,
		QueueService:  queue,
		config:        cfg,
		observability: obs,
	}, nil
}

// Run starts the asset module and its queue workers.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting asset module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.QueueService != nil {
		// Close stops the queue gracefully, so it must outlive ctx.
		if err := m.QueueService.Start(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "Failed to start asset queue service", "error", err)
		}
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Asset module goroutine stopped")
}

// Close stops the asset module.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping asset module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.QueueService != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.QueueService.Stop(ctx); err != nil {
			logger.Error("Failed to stop asset queue service", "error", err)
			return err
		}
	}

	logger.Info("Asset module stopped")
	return nil
}

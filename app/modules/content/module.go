package content

import (
	"context"
	"fmt"
	"sync"

	"github.com/Black-And-White-Club/club-cms/app/eventbus"
	contentservice "github.com/Black-And-White-Club/club-cms/app/modules/content/application"
	contentevents "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/events"
	contenthandlers "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/handlers"
	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	contentrouter "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/router"
	"github.com/Black-And-White-Club/club-cms/app/shared/httpmiddleware"
	sharedmetrics "github.com/Black-And-White-Club/club-cms/app/shared/metrics"
	"github.com/Black-And-White-Club/club-cms/app/shared/observability"
	"github.com/Black-And-White-Club/club-cms/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the content module.
type Module struct {
	ContentService contentservice.Service
	ContentRouter  *contentrouter.ContentRouter
	config         *config.Config
	cancelFunc     context.CancelFunc
	observability  observability.Observability
}

// NewContentModule wires the content service, its HTTP API and the audit subscriber.
func NewContentModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	httpRouter chi.Router,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "content.NewContentModule called")

	var metrics sharedmetrics.OperationMetrics = sharedmetrics.NewNoop()
	if obs.Registry != nil {
		m, err := sharedmetrics.NewPrometheusMetrics(obs.Registry, "content")
		if err != nil {
			return nil, fmt.Errorf("failed to register content metrics: %w", err)
		}
		metrics = m
	}

	repo := contentdb.NewRepository(db)
	notifier := contentevents.NewBusNotifier(eventBus, logger)
	service := contentservice.NewContentService(repo, logger, metrics, obs.Tracer, db, notifier)

	handlers := contenthandlers.NewContentHandlers(service, logger, cfg.HTTP.MaxUploadBytes)

	contentRouter := contentrouter.NewContentRouter(logger, router, eventBus, obs.Registry)
	if err := contentRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure content router: %w", err)
	}

	if httpRouter != nil {
		httpRouter.Route("/api/content", func(r chi.Router) {
			r.Use(httpmiddleware.CORS(cfg.HTTP.AllowedOrigins))
			r.Mount("/", contenthandlers.Routes(handlers))
		})
	}

	return &Module{
		ContentService: service,
		ContentRouter:  contentRouter,
		config:         cfg,
		observability:  obs,
	}, nil
}

// Run starts the content module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting content module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Content module goroutine stopped")
}

// Close stops the content module.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping content module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	logger.Info("Content module stopped")
	return nil
}

package contentrouter

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/club-cms/app/eventbus"
	contenthandlers "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/handlers"
	"github.com/Black-And-White-Club/club-cms/app/shared/observability"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// AuditHandlerName is the watermill handler that writes content_audit_log.
const AuditHandlerName = "content.audit." + eventbus.ContentChangedV1

// ContentRouter registers the content module's event consumers.
type ContentRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	registry   *prometheus.Registry
}

// NewContentRouter creates a new instance of the router. registry may be nil.
func NewContentRouter(logger *slog.Logger, router *message.Router, subscriber message.Subscriber, registry *prometheus.Registry) *ContentRouter {
	return &ContentRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		registry:   registry,
	}
}

// Configure adds middleware and registers the handlers.
func (r *ContentRouter) Configure(ctx context.Context, handlers contenthandlers.Handlers) error {
	if r.registry != nil {
		r.logger.InfoContext(ctx, "Adding Prometheus router metrics middleware for content")
		builder := metrics.NewPrometheusMetricsBuilder(r.registry, "club_cms", "content")
		builder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.Recoverer,
		correlationContext,
	)

	r.Router.AddNoPublisherHandler(
		AuditHandlerName,
		eventbus.ContentChangedV1,
		r.subscriber,
		handlers.HandleContentChanged,
	)
	r.logger.InfoContext(ctx, "Registered content event handlers", slog.String("topic", eventbus.ContentChangedV1))
	return nil
}

// correlationContext carries the message correlation id into the handler context.
func correlationContext(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		if id := middleware.MessageCorrelationID(msg); id != "" {
			msg.SetContext(observability.WithCorrelationID(msg.Context(), id))
		}
		return h(msg)
	}
}

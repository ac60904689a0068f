package contentservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	sharedmetrics "github.com/Black-And-White-Club/club-cms/app/shared/metrics"
	"github.com/Black-And-White-Club/club-cms/app/shared/observability"
	"github.com/Black-And-White-Club/club-cms/app/shared/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "ContentService"

// ContentService implements the Service interface.
type ContentService struct {
	repo     contentdb.Repository
	logger   *slog.Logger
	metrics  sharedmetrics.OperationMetrics
	tracer   trace.Tracer
	db       *bun.DB
	engine   *OrderingEngine
	events   *dispatcher
	notifier Notifier
}

// NewContentService creates a new ContentService. Domain events are delivered to the
// association cascade first and the render cascade second.
func NewContentService(
	repo contentdb.Repository,
	logger *slog.Logger,
	metrics sharedmetrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	notifier Notifier,
) *ContentService {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	engine := NewOrderingEngine(repo)
	return &ContentService{
		repo:     repo,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		db:       db,
		engine:   engine,
		notifier: notifier,
		events: newDispatcher(logger,
			NewAssociationChangeCascade(repo, engine),
			NewRenderDependencyCascade(repo),
		),
	}
}

// notify publishes a change after commit. Publication failures are logged, the change stands.
func (s *ContentService) notify(ctx context.Context, change ChangeNotice) {
	if err := s.notifier.NotifyChange(ctx, change); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish content change",
			observability.CorrelationAttr(ctx),
			slog.String("action", change.Action),
			slog.String("subject", change.Subject),
			slog.Any("error", err),
		)
	}
}

// unwrapResult turns a finished operation into the (value, error) pair returned to callers.
func unwrapResult[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	if result.Success == nil {
		return zero, nil
	}
	return *result.Success, nil
}

// failure classifies err as a domain failure result or an infrastructure error.
func failure[S any](err error) (results.OperationResult[S, error], error) {
	if isDomainFailure(err) {
		return results.FailureResult[S, error](err), nil
	}
	return results.OperationResult[S, error]{}, err
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *ContentService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	s.logger.InfoContext(ctx, "Operation triggered",
		observability.CorrelationAttr(ctx),
		slog.String("operation", operationName),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				observability.CorrelationAttr(ctx),
				slog.String("identifier", identifier),
				slog.Any("error", err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			observability.CorrelationAttr(ctx),
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.Any("error", wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			observability.CorrelationAttr(ctx),
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			observability.CorrelationAttr(ctx),
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}

	return result, nil
}

// errRollback aborts the transaction of an operation that produced a domain failure.
var errRollback = errors.New("rollback on failure result")

// runInTx runs the operation in a transaction. A failure result rolls the transaction
// back, and a unique violation raised at commit becomes ErrConcurrentOrderConflict.
func runInTx[S any](
	s *ContentService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, error], error),
) (results.OperationResult[S, error], error) {

	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, error]

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		if txErr == nil && result.IsFailure() {
			return errRollback
		}
		return txErr
	})

	switch {
	case errors.Is(err, errRollback):
		return result, nil
	case contentdb.IsOrderConflict(err):
		return results.FailureResult[S, error](ErrConcurrentOrderConflict), nil
	}
	return result, err
}

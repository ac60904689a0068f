package assetservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	assetdb "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/repositories"
	sharedmetrics "github.com/Black-And-White-Club/club-cms/app/shared/metrics"
	"github.com/Black-And-White-Club/club-cms/app/shared/observability"
	"github.com/Black-And-White-Club/club-cms/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "AssetService"

// Config holds the asset service settings.
type Config struct {
	// ArchiveRoot is the key prefix deleted images are moved under.
	ArchiveRoot string
	// Now is the clock used for archive dates. Defaults to time.Now.
	Now func() time.Time
}

// AssetService implements the Service interface.
type AssetService struct {
	repo        assetdb.Repository
	store       Store
	scheduler   RowDeleteScheduler
	notifier    Notifier
	logger      *slog.Logger
	metrics     sharedmetrics.OperationMetrics
	tracer      trace.Tracer
	db          *bun.DB
	archiveRoot string
	now         func() time.Time
}

func NewAssetService(
	repo assetdb.Repository,
	store Store,
	scheduler RowDeleteScheduler,
	notifier Notifier,
	logger *slog.Logger,
	metrics sharedmetrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	cfg Config,
) *AssetService {
	if logger == nil {
		logger = slog.Default()
	}
	if scheduler == nil {
		scheduler = disabledScheduler{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if cfg.ArchiveRoot == "" {
		cfg.ArchiveRoot = "archive"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &AssetService{
		repo:        repo,
		store:       store,
		scheduler:   scheduler,
		notifier:    notifier,
		logger:      logger,
		metrics:     metrics,
		tracer:      tracer,
		db:          db,
		archiveRoot: cfg.ArchiveRoot,
		now:         cfg.Now,
	}
}

var _ Service = (*AssetService)(nil)

type disabledScheduler struct{}

func (disabledScheduler) ScheduleRowDelete(context.Context, uuid.UUID) error {
	return errors.New("row delete queue is disabled")
}

type noopNotifier struct{}

func (noopNotifier) ImageCreated(context.Context, *assetdb.Image) error          { return nil }
func (noopNotifier) ImageArchived(context.Context, *assetdb.ArchivedImage) error { return nil }

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

func failure[S any](err error) (results.OperationResult[S, error], error) {
	if isDomainFailure(err) {
		return results.FailureResult[S, error](err), nil
	}
	return results.OperationResult[S, error]{}, err
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *AssetService,
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
	} else {
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

var errRollback = errors.New("rollback on failure result")

// runInTx runs fn in a transaction that is rolled back on a failure result.
func runInTx[S any](
	s *AssetService,
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
	if errors.Is(err, errRollback) {
		return result, nil
	}
	return result, err
}

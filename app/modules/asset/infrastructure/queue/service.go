package assetqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sharedmetrics "github.com/Black-And-White-Club/club-cms/app/shared/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"
)

const metricsService = "river"

// QueueService interface defines the contract for asset job operations
type QueueService interface {
	// ScheduleRowDelete queues the row delete of an archived image
	ScheduleRowDelete(ctx context.Context, imageID uuid.UUID) error
	// PendingJobs lists asset jobs that have not finished
	PendingJobs(ctx context.Context) ([]JobInfo, error)
	// HealthCheck verifies the queue service is healthy
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service runs the asset jobs on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	ref     *targetRef
	logger  *slog.Logger
	db      *bun.DB
	metrics sharedmetrics.OperationMetrics
}

// NewService creates a River client for the asset queue. A positive reconcileInterval
// registers a periodic reconcile job that also runs on start.
func NewService(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, dsn string, metrics sharedmetrics.OperationMetrics, reconcileInterval time.Duration) (*Service, error) {
	ctxLogger := logger.With(
		slog.String("operation", "new_asset_queue_service"),
		slog.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", metricsService)

	ctxLogger.Info("Initializing asset queue service")

	// River requires pgx, not database/sql
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		ctxLogger.Error("Failed to parse DSN for River", slog.Any("error", err))
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		ctxLogger.Error("Failed to create pgx pool for River", slog.Any("error", err))
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", slog.Any("error", err))
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	ref := &targetRef{}
	workers := river.NewWorkers()
	river.AddWorker(workers, NewRowDeleteWorker(ref, ctxLogger))
	river.AddWorker(workers, NewReconcileWorker(ref, ctxLogger))

	var periodic []*river.PeriodicJob
	if reconcileInterval > 0 {
		periodic = append(periodic, river.NewPeriodicJob(
			river.PeriodicInterval(reconcileInterval),
			func() (river.JobArgs, *river.InsertOpts) {
				return ReconcileArchiveJob{}, &river.InsertOpts{Queue: queueName}
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		))
	}

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Logger: ctxLogger,
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			queueName:          {MaxWorkers: 5},
		},
		Workers:      workers,
		PeriodicJobs: periodic,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", slog.Any("error", err))
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", metricsService)
	metrics.RecordOperationDuration(ctx, "initialize_service", metricsService, time.Since(start))

	ctxLogger.Info("Asset queue service initialized successfully")
	return &Service{
		client:  riverClient,
		pool:    pool,
		ref:     ref,
		logger:  ctxLogger,
		db:      bunDB,
		metrics: metrics,
	}, nil
}

// Bind sets the service the workers call. It must be called before Start.
func (s *Service) Bind(target Target) {
	s.ref.target = target
}

// Start starts the River queue service
func (s *Service) Start(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "start_service", metricsService)

	s.logger.Info("Starting asset queue service")

	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", slog.Any("error", err))
		s.metrics.RecordOperationFailure(ctx, "start_service", metricsService)
		return fmt.Errorf("failed to start River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "start_service", metricsService)
	s.metrics.RecordOperationDuration(ctx, "start_service", metricsService, time.Since(start))

	s.logger.Info("Asset queue service started successfully")
	return nil
}

// Stop stops the River client and closes its pool.
func (s *Service) Stop(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "stop_service", metricsService)

	s.logger.Info("Stopping asset queue service")

	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", slog.Any("error", err))
		s.metrics.RecordOperationFailure(ctx, "stop_service", metricsService)
		return fmt.Errorf("failed to stop River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "stop_service", metricsService)
	s.metrics.RecordOperationDuration(ctx, "stop_service", metricsService, time.Since(start))

	s.logger.Info("Asset queue service stopped successfully")
	return nil
}

// ScheduleRowDelete queues the row delete of an archived image. Repeated calls for
// the same image collapse into one job.
func (s *Service) ScheduleRowDelete(ctx context.Context, imageID uuid.UUID) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "schedule_row_delete", metricsService)

	ctxLogger := s.logger.With(
		slog.String("image_id", imageID.String()),
		slog.String("operation", "schedule_row_delete"),
	)

	res, err := s.client.Insert(ctx, ImageRowDeleteJob{ImageID: imageID}, &river.InsertOpts{
		Queue: queueName,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		ctxLogger.Error("Failed to schedule row delete job", slog.Any("error", err))
		s.metrics.RecordOperationFailure(ctx, "schedule_row_delete", metricsService)
		return fmt.Errorf("failed to schedule row delete job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "schedule_row_delete", metricsService)
	s.metrics.RecordOperationDuration(ctx, "schedule_row_delete", metricsService, time.Since(start))

	ctxLogger.Info("Row delete job scheduled",
		slog.Int64("job_id", res.Job.ID),
		slog.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return nil
}

// PendingJobs lists asset jobs that have not completed, oldest first.
func (s *Service) PendingJobs(ctx context.Context) ([]JobInfo, error) {
	type riverJobRow struct {
		ID          int64          `bun:"id"`
		Kind        string         `bun:"kind"`
		State       string         `bun:"state"`
		Args        map[string]any `bun:"args"`
		ScheduledAt *time.Time     `bun:"scheduled_at"`
		Attempt     int16          `bun:"attempt"`
		MaxAttempts int16          `bun:"max_attempts"`
	}

	var rows []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state", "args", "scheduled_at", "attempt", "max_attempts").
		Where("kind IN (?)", bun.In([]string{ImageRowDeleteJob{}.Kind(), ReconcileArchiveJob{}.Kind()})).
		Where("state NOT IN (?)", bun.In([]string{"completed", "cancelled", "discarded"})).
		Order("scheduled_at ASC NULLS LAST").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset jobs: %w", err)
	}

	out := make([]JobInfo, len(rows))
	for i, row := range rows {
		info := JobInfo{
			ID:          row.ID,
			Kind:        row.Kind,
			State:       row.State,
			Attempt:     int(row.Attempt),
			MaxAttempts: int(row.MaxAttempts),
		}
		if id, ok := row.Args["image_id"].(string); ok {
			info.ImageID = id
		}
		if row.ScheduledAt != nil {
			info.ScheduledAt = row.ScheduledAt.Format(time.RFC3339)
		}
		out[i] = info
	}
	return out, nil
}

// HealthCheck verifies the queue service is healthy
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client is nil")
	}
	if err := s.pool.Ping(ctx); err != nil {
		s.logger.Error("Queue service health check failed", slog.Any("error", err))
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}

package assetqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	assetservice "github.com/Black-And-White-Club/club-cms/app/modules/asset/application"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// Target is the part of the asset service the workers drive.
type Target interface {
	CompleteRowDelete(ctx context.Context, id uuid.UUID) error
	ReconcileArchive(ctx context.Context) (*assetservice.ReconcileReport, error)
}

// targetRef lets the workers be registered before the asset service exists.
type targetRef struct {
	target Target
}

func (r *targetRef) get() (Target, error) {
	if r.target == nil {
		return nil, errors.New("asset queue has no bound service")
	}
	return r.target, nil
}

// RowDeleteWorker finishes image deletes whose row delete failed.
type RowDeleteWorker struct {
	river.WorkerDefaults[ImageRowDeleteJob]
	ref    *targetRef
	logger *slog.Logger
}

func NewRowDeleteWorker(ref *targetRef, logger *slog.Logger) *RowDeleteWorker {
	return &RowDeleteWorker{ref: ref, logger: logger}
}

func (w *RowDeleteWorker) Work(ctx context.Context, job *river.Job[ImageRowDeleteJob]) error {
	logger := w.logger.With(
		slog.String("image_id", job.Args.ImageID.String()),
		slog.Int64("job_id", job.ID),
		slog.Int("attempt", job.Attempt),
	)

	target, err := w.ref.get()
	if err != nil {
		return err
	}

	err = target.CompleteRowDelete(ctx, job.Args.ImageID)
	switch {
	case errors.Is(err, assetservice.ErrNotArchived):
		// The file is still live, so the delete has to be started again by a user.
		logger.WarnContext(ctx, "Cancelling row delete for image that was never archived", slog.Any("error", err))
		return river.JobCancel(err)
	case err != nil:
		logger.ErrorContext(ctx, "Row delete attempt failed", slog.Any("error", err))
		return fmt.Errorf("failed to complete row delete: %w", err)
	}

	logger.InfoContext(ctx, "Image row delete completed")
	return nil
}

// ReconcileWorker runs a reconcile pass.
type ReconcileWorker struct {
	river.WorkerDefaults[ReconcileArchiveJob]
	ref    *targetRef
	logger *slog.Logger
}

func NewReconcileWorker(ref *targetRef, logger *slog.Logger) *ReconcileWorker {
	return &ReconcileWorker{ref: ref, logger: logger}
}

func (w *ReconcileWorker) Work(ctx context.Context, job *river.Job[ReconcileArchiveJob]) error {
	target, err := w.ref.get()
	if err != nil {
		return err
	}

	report, err := target.ReconcileArchive(ctx)
	if err != nil {
		return fmt.Errorf("failed to reconcile image archive: %w", err)
	}

	level := slog.LevelInfo
	if report.Duplicated > 0 || report.MissingFile > 0 {
		level = slog.LevelWarn
	}
	w.logger.Log(ctx, level, "Image archive reconciled",
		slog.Int("scanned", report.Scanned),
		slog.Int("completed", report.Completed),
		slog.Int("not_moved", report.NotMoved),
		slog.Int("missing_file", report.MissingFile),
		slog.Int("duplicated", report.Duplicated),
	)
	return nil
}

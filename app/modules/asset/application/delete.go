package assetservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	assetdb "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/repositories"
	"github.com/Black-And-White-Club/club-cms/app/shared/observability"
	"github.com/Black-And-White-Club/club-cms/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DeleteImage archives the image file and then deletes the row. A file that cannot be
// moved keeps the row. A row delete that fails after the move is retried by the queue;
// the file is never moved back.
func (s *AssetService) DeleteImage(ctx context.Context, id uuid.UUID) (*DeleteResult, error) {
	return unwrapResult(withTelemetry(s, ctx, "DeleteImage", id.String(), func(ctx context.Context) (results.OperationResult[*DeleteResult, error], error) {
		return s.archiveImage(ctx, id)
	}))
}

// BulkDelete checks that every id exists before touching any file, then archives each
// image on its own. Per-item failures are reported, completed items stay deleted.
func (s *AssetService) BulkDelete(ctx context.Context, ids []uuid.UUID) (*BulkDeleteReport, error) {
	ids = dedupe(ids)
	return unwrapResult(withTelemetry(s, ctx, "BulkDelete", fmt.Sprintf("%d images", len(ids)), func(ctx context.Context) (results.OperationResult[*BulkDeleteReport, error], error) {
		if len(ids) == 0 {
			return failure[*BulkDeleteReport](ErrNoImages)
		}
		missing, err := s.repo.MissingImages(ctx, nil, ids)
		if err != nil {
			return results.OperationResult[*BulkDeleteReport, error]{}, err
		}
		if len(missing) > 0 {
			return failure[*BulkDeleteReport](&NotFoundError{IDs: missing})
		}

		report := &BulkDeleteReport{Items: make([]BulkItemResult, 0, len(ids))}
		for _, id := range ids {
			item := BulkItemResult{ImageID: id}
			res, err := s.archiveImage(ctx, id)
			switch {
			case err != nil:
				item.Status = BulkItemFailed
				item.Error = err.Error()
			case res.IsFailure():
				item.Status = BulkItemFailed
				item.Error = (*res.Failure).Error()
			default:
				out := *res.Success
				item.ArchivePath = out.ArchivePath
				item.Status = BulkItemArchived
				if out.RowDeletePending {
					item.Status = BulkItemRowDeletePending
				}
			}
			report.Items = append(report.Items, item)
		}
		return results.SuccessResult[*BulkDeleteReport, error](report), nil
	}))
}

// archiveImage runs the delete saga for one image: mark the row, move the file, delete the row.
func (s *AssetService) archiveImage(ctx context.Context, id uuid.UUID) (results.OperationResult[*DeleteResult, error], error) {
	img, err := s.repo.GetImage(ctx, nil, id)
	if err != nil {
		return failure[*DeleteResult](err)
	}

	now := s.now()
	live := livePathOf(img)
	dst := ArchivePath(s.archiveRoot, img.ID, img.Extension, now)

	liveExists, err := s.store.Exists(ctx, live)
	if err != nil {
		return results.OperationResult[*DeleteResult, error]{}, err
	}
	if !liveExists && img.ArchivePath != nil {
		// An earlier attempt already moved the file.
		dst = *img.ArchivePath
	}
	if err := s.repo.MarkArchiveRequested(ctx, nil, id, dst, now); err != nil {
		return failure[*DeleteResult](err)
	}

	result := &DeleteResult{ImageID: id, ArchivePath: dst}
	if liveExists {
		if err := s.store.Move(ctx, live, dst); err != nil {
			s.restoreLive(ctx, id)
			return failure[*DeleteResult](&FileMoveFailure{ImageID: id, From: live, To: dst, Err: err})
		}
	} else {
		archived, err := s.store.Exists(ctx, dst)
		if err != nil {
			return results.OperationResult[*DeleteResult, error]{}, err
		}
		if !archived {
			result.FileWasMissing = true
			s.logger.WarnContext(ctx, "Image file already absent, deleting row only",
				observability.CorrelationAttr(ctx),
				slog.String("image_id", id.String()),
				slog.String("live_path", live),
			)
		}
	}

	if err := s.finishArchive(ctx, img, dst); err != nil {
		if errors.Is(err, assetdb.ErrNotFound) {
			// Finished concurrently by the queue or a reconcile pass.
			return results.SuccessResult[*DeleteResult, error](result), nil
		}
		s.logger.WarnContext(ctx, "Row delete failed after archiving, scheduling retry",
			observability.CorrelationAttr(ctx),
			slog.String("image_id", id.String()),
			slog.Any("error", err),
		)
		if schedErr := s.scheduler.ScheduleRowDelete(ctx, id); schedErr != nil {
			return results.OperationResult[*DeleteResult, error]{}, fmt.Errorf("image %s archived but row delete failed (%v) and could not be scheduled: %w", id, err, schedErr)
		}
		result.RowDeletePending = true
	}
	return results.SuccessResult[*DeleteResult, error](result), nil
}

// restoreLive drops the archive marker of an image whose file never left the live store.
func (s *AssetService) restoreLive(ctx context.Context, id uuid.UUID) {
	if err := s.repo.ClearArchiveRequested(ctx, nil, id); err != nil && !errors.Is(err, assetdb.ErrNotFound) {
		s.logger.ErrorContext(ctx, "Failed to clear archive marker, image stays hidden until reconcile",
			observability.CorrelationAttr(ctx),
			slog.String("image_id", id.String()),
			slog.Any("error", err),
		)
	}
}

// finishArchive records the archive entry and deletes the row in one transaction.
func (s *AssetService) finishArchive(ctx context.Context, img *assetdb.Image, archivePath string) error {
	entry := &assetdb.ArchivedImage{
		ImageID:     img.ID,
		Category:    img.Category,
		Extension:   img.Extension,
		ArchivePath: archivePath,
		ArchivedAt:  s.now(),
	}
	_, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[struct{}, error], error) {
		if err := s.repo.InsertArchivedImage(ctx, db, entry); err != nil {
			return results.OperationResult[struct{}, error]{}, err
		}
		if err := s.repo.DeleteImage(ctx, db, img.ID); err != nil {
			return results.OperationResult[struct{}, error]{}, err
		}
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	})
	if err != nil {
		return err
	}

	if err := s.notifier.ImageArchived(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish image archived",
			observability.CorrelationAttr(ctx),
			slog.String("image_id", img.ID.String()),
			slog.Any("error", err),
		)
	}
	return nil
}

// CompleteRowDelete finishes a delete whose file was archived but whose row survived.
// It refuses while the live file is still in place.
func (s *AssetService) CompleteRowDelete(ctx context.Context, id uuid.UUID) error {
	_, err := unwrapResult(withTelemetry(s, ctx, "CompleteRowDelete", id.String(), func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		img, err := s.repo.GetImage(ctx, nil, id)
		if errors.Is(err, assetdb.ErrNotFound) {
			return results.SuccessResult[struct{}, error](struct{}{}), nil
		}
		if err != nil {
			return results.OperationResult[struct{}, error]{}, err
		}
		if img.ArchivePath == nil {
			return results.OperationResult[struct{}, error]{}, fmt.Errorf("%w: image %s has no delete in progress", ErrNotArchived, id)
		}
		liveExists, err := s.store.Exists(ctx, livePathOf(img))
		if err != nil {
			return results.OperationResult[struct{}, error]{}, err
		}
		if liveExists {
			return results.OperationResult[struct{}, error]{}, fmt.Errorf("%w: %s", ErrNotArchived, livePathOf(img))
		}
		if err := s.finishArchive(ctx, img, *img.ArchivePath); err != nil && !errors.Is(err, assetdb.ErrNotFound) {
			return results.OperationResult[struct{}, error]{}, err
		}
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	}))
	return err
}

// ReconcileArchive completes deletes that stopped between the file move and the row delete.
func (s *AssetService) ReconcileArchive(ctx context.Context) (*ReconcileReport, error) {
	return unwrapResult(withTelemetry(s, ctx, "ReconcileArchive", "", func(ctx context.Context) (results.OperationResult[*ReconcileReport, error], error) {
		pending, err := s.repo.ListArchiveRequested(ctx, nil)
		if err != nil {
			return results.OperationResult[*ReconcileReport, error]{}, err
		}

		report := &ReconcileReport{Scanned: len(pending)}
		for _, img := range pending {
			live, err := s.store.Exists(ctx, livePathOf(img))
			if err != nil {
				return results.OperationResult[*ReconcileReport, error]{}, err
			}
			archived, err := s.store.Exists(ctx, *img.ArchivePath)
			if err != nil {
				return results.OperationResult[*ReconcileReport, error]{}, err
			}

			switch {
			case live && archived:
				report.Duplicated++
				s.logger.ErrorContext(ctx, "Image has both a live and an archived file",
					slog.String("image_id", img.ID.String()),
					slog.String("archive_path", *img.ArchivePath),
				)
			case live:
				s.restoreLive(ctx, img.ID)
				report.NotMoved++
			default:
				if err := s.finishArchive(ctx, img, *img.ArchivePath); err != nil && !errors.Is(err, assetdb.ErrNotFound) {
					s.logger.ErrorContext(ctx, "Failed to complete archived image delete",
						slog.String("image_id", img.ID.String()),
						slog.Any("error", err),
					)
					continue
				}
				report.Completed++
				if !archived {
					report.MissingFile++
				}
			}
		}
		return results.SuccessResult[*ReconcileReport, error](report), nil
	}))
}

// ListArchived returns the images archived at or after since, oldest first.
func (s *AssetService) ListArchived(ctx context.Context, since time.Time) ([]*assetdb.ArchivedImage, error) {
	return unwrapResult(withTelemetry(s, ctx, "ListArchived", since.Format(time.RFC3339), func(ctx context.Context) (results.OperationResult[[]*assetdb.ArchivedImage, error], error) {
		entries, err := s.repo.ListArchivedSince(ctx, nil, since)
		if err != nil {
			return results.OperationResult[[]*assetdb.ArchivedImage, error]{}, err
		}
		return results.SuccessResult[[]*assetdb.ArchivedImage, error](entries), nil
	}))
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package assetservice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	assetdb "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/repositories"
	"github.com/Black-And-White-Club/club-cms/app/shared/observability"
	"github.com/Black-And-White-Club/club-cms/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateImage stores a new image. The row is inserted first to fix the id, the file is
// written last. A failed write rolls the row back and a failed commit removes the file.
func (s *AssetService) CreateImage(ctx context.Context, input CreateImageInput) (*assetdb.Image, error) {
	var written string

	createTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*assetdb.Image, error], error) {
		if !input.Category.Valid() {
			return failure[*assetdb.Image](fmt.Errorf("%w: %q", ErrInvalidCategory, input.Category))
		}
		ext, ok := ExtensionFor(input.Filename, input.ContentType)
		if !ok {
			return failure[*assetdb.Image](fmt.Errorf("%w: %q", ErrInvalidExtension, input.Filename))
		}
		if input.Body == nil {
			return failure[*assetdb.Image](ErrEmptyUpload)
		}

		img := &assetdb.Image{
			ID:           uuid.New(),
			Category:     input.Category,
			Extension:    ext,
			ContentType:  ContentTypeFor(ext),
			OriginalName: filepath.Base(input.Filename),
		}
		if err := s.repo.InsertImage(ctx, db, img); err != nil {
			return results.OperationResult[*assetdb.Image, error]{}, err
		}

		tags, err := s.repo.UpsertTags(ctx, db, input.Tags)
		if err != nil {
			return results.OperationResult[*assetdb.Image, error]{}, err
		}
		if err := s.repo.LinkTags(ctx, db, img.ID, tags); err != nil {
			return results.OperationResult[*assetdb.Image, error]{}, err
		}
		img.Tags = tags

		key := livePathOf(img)
		n, err := s.store.Write(ctx, key, input.Body)
		if err != nil {
			return results.OperationResult[*assetdb.Image, error]{}, fmt.Errorf("failed to store image file: %w", err)
		}
		written = key
		if n == 0 {
			s.discard(ctx, key)
			written = ""
			return failure[*assetdb.Image](ErrEmptyUpload)
		}

		img.SizeBytes = n
		if err := s.repo.SetImageSize(ctx, db, img.ID, n); err != nil {
			return results.OperationResult[*assetdb.Image, error]{}, err
		}
		return results.SuccessResult[*assetdb.Image, error](img), nil
	}

	img, err := unwrapResult(withTelemetry(s, ctx, "CreateImage", string(input.Category), func(ctx context.Context) (results.OperationResult[*assetdb.Image, error], error) {
		return runInTx(s, ctx, createTx)
	}))
	if err != nil {
		if written != "" {
			s.discard(ctx, written)
		}
		return nil, err
	}

	if err := s.notifier.ImageCreated(ctx, img); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish image created",
			observability.CorrelationAttr(ctx),
			slog.String("image_id", img.ID.String()),
			slog.Any("error", err),
		)
	}
	return img, nil
}

func (s *AssetService) discard(ctx context.Context, key string) {
	if err := s.store.Remove(ctx, key); err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove orphaned image file",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}

func (s *AssetService) GetImage(ctx context.Context, id uuid.UUID) (*assetdb.Image, error) {
	return unwrapResult(withTelemetry(s, ctx, "GetImage", id.String(), func(ctx context.Context) (results.OperationResult[*assetdb.Image, error], error) {
		img, err := s.repo.GetImage(ctx, nil, id)
		if err != nil {
			return failure[*assetdb.Image](err)
		}
		return results.SuccessResult[*assetdb.Image, error](img), nil
	}))
}

// ListImages returns live images, newest first.
func (s *AssetService) ListImages(ctx context.Context, filter assetdb.ImageFilter) ([]*assetdb.Image, error) {
	return unwrapResult(withTelemetry(s, ctx, "ListImages", string(filter.Category), func(ctx context.Context) (results.OperationResult[[]*assetdb.Image, error], error) {
		if filter.Category != "" && !filter.Category.Valid() {
			return failure[[]*assetdb.Image](fmt.Errorf("%w: %q", ErrInvalidCategory, filter.Category))
		}
		images, err := s.repo.ListImages(ctx, nil, filter)
		if err != nil {
			return results.OperationResult[[]*assetdb.Image, error]{}, err
		}
		return results.SuccessResult[[]*assetdb.Image, error](images), nil
	}))
}

// OpenImage returns the image and a reader over its live file. The caller closes the reader.
func (s *AssetService) OpenImage(ctx context.Context, id uuid.UUID) (*assetdb.Image, io.ReadCloser, error) {
	img, err := s.GetImage(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if img.ArchivePath != nil {
		return nil, nil, &NotFoundError{IDs: []uuid.UUID{id}}
	}
	rc, err := s.store.Open(ctx, livePathOf(img))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open image %s: %w", id, err)
	}
	return img, rc, nil
}

package assetservice

import (
	"context"
	"io"
	"time"

	assetdb "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/repositories"
	"github.com/google/uuid"
)

// Service defines the interface for image operations.
type Service interface {
	CreateImage(ctx context.Context, input CreateImageInput) (*assetdb.Image, error)
	GetImage(ctx context.Context, id uuid.UUID) (*assetdb.Image, error)
	ListImages(ctx context.Context, filter assetdb.ImageFilter) ([]*assetdb.Image, error)
	OpenImage(ctx context.Context, id uuid.UUID) (*assetdb.Image, io.ReadCloser, error)

	DeleteImage(ctx context.Context, id uuid.UUID) (*DeleteResult, error)
	BulkDelete(ctx context.Context, ids []uuid.UUID) (*BulkDeleteReport, error)
	CompleteRowDelete(ctx context.Context, id uuid.UUID) error
	ReconcileArchive(ctx context.Context) (*ReconcileReport, error)
	ListArchived(ctx context.Context, since time.Time) ([]*assetdb.ArchivedImage, error)
}

// Store holds image bytes under slash separated keys.
type Store interface {
	Write(ctx context.Context, key string, r io.Reader) (int64, error)
	Move(ctx context.Context, srcKey, dstKey string) error
	Exists(ctx context.Context, key string) (bool, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// RowDeleteScheduler retries the row delete of an image whose file is already archived.
type RowDeleteScheduler interface {
	ScheduleRowDelete(ctx context.Context, imageID uuid.UUID) error
}

// Notifier announces committed image changes.
type Notifier interface {
	ImageCreated(ctx context.Context, img *assetdb.Image) error
	ImageArchived(ctx context.Context, entry *assetdb.ArchivedImage) error
}

type CreateImageInput struct {
	Category    assetdb.Category
	Filename    string
	ContentType string
	Tags        []string
	Body        io.Reader
}

// DeleteResult describes a finished or partially finished delete.
type DeleteResult struct {
	ImageID     uuid.UUID `json:"image_id"`
	ArchivePath string    `json:"archive_path"`
	// FileWasMissing is set when there was no live file to move.
	FileWasMissing bool `json:"file_was_missing,omitempty"`
	// RowDeletePending is set when the file is archived and the row delete was handed to the queue.
	RowDeletePending bool `json:"row_delete_pending,omitempty"`
}

type BulkItemStatus string

const (
	BulkItemArchived         BulkItemStatus = "archived"
	BulkItemRowDeletePending BulkItemStatus = "row_delete_pending"
	BulkItemFailed           BulkItemStatus = "failed"
)

type BulkItemResult struct {
	ImageID     uuid.UUID      `json:"image_id"`
	Status      BulkItemStatus `json:"status"`
	ArchivePath string         `json:"archive_path,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// BulkDeleteReport has one entry per requested id, in request order.
type BulkDeleteReport struct {
	Items []BulkItemResult `json:"items"`
}

func (r *BulkDeleteReport) Failed() int {
	n := 0
	for _, item := range r.Items {
		if item.Status == BulkItemFailed {
			n++
		}
	}
	return n
}

// ReconcileReport counts what a reconcile pass found among images with a started delete.
type ReconcileReport struct {
	Scanned   int `json:"scanned"`
	Completed int `json:"completed"`
	// NotMoved images still had their live file; their marker is cleared so they are served again.
	NotMoved int `json:"not_moved"`
	// MissingFile counts completed images that had no file in either location.
	MissingFile int `json:"missing_file"`
	// Duplicated images have both files.
	Duplicated int `json:"duplicated"`
}

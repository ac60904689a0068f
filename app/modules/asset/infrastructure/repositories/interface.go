package assetdb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository persists image metadata. Every method accepts an optional bun.IDB so
// callers can run it inside a transaction.
type Repository interface {
	InsertImage(ctx context.Context, db bun.IDB, img *Image) error
	GetImage(ctx context.Context, db bun.IDB, id uuid.UUID) (*Image, error)
	ListImages(ctx context.Context, db bun.IDB, filter ImageFilter) ([]*Image, error)
	// MissingImages returns the ids that have no image row.
	MissingImages(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]uuid.UUID, error)
	SetImageSize(ctx context.Context, db bun.IDB, id uuid.UUID, size int64) error
	DeleteImage(ctx context.Context, db bun.IDB, id uuid.UUID) error

	UpsertTags(ctx context.Context, db bun.IDB, names []string) ([]*Tag, error)
	LinkTags(ctx context.Context, db bun.IDB, imageID uuid.UUID, tags []*Tag) error

	MarkArchiveRequested(ctx context.Context, db bun.IDB, id uuid.UUID, archivePath string, at time.Time) error
	// ClearArchiveRequested drops the archive marker so the image is live again.
	ClearArchiveRequested(ctx context.Context, db bun.IDB, id uuid.UUID) error
	ListArchiveRequested(ctx context.Context, db bun.IDB) ([]*Image, error)
	InsertArchivedImage(ctx context.Context, db bun.IDB, entry *ArchivedImage) error
	ListArchivedSince(ctx context.Context, db bun.IDB, since time.Time) ([]*ArchivedImage, error)
}

// ImageFilter narrows ListImages. Zero values match everything.
type ImageFilter struct {
	Category Category
	Tag      string
}

package assetdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) InsertImage(ctx context.Context, db bun.IDB, img *Image) error {
	db = r.resolveDB(db)
	if img.ID == uuid.Nil {
		img.ID = uuid.New()
	}
	if _, err := db.NewInsert().Model(img).ExcludeColumn("archive_path", "archive_requested_at").Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert image: %w", err)
	}
	return nil
}

func (r *Impl) GetImage(ctx context.Context, db bun.IDB, id uuid.UUID) (*Image, error) {
	db = r.resolveDB(db)
	img := &Image{ID: id}
	err := db.NewSelect().
		Model(img).
		Relation("Tags", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("tg.name ASC")
		}).
		WherePK().
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get image %s: %w", id, err)
	}
	return img, nil
}

func (r *Impl) ListImages(ctx context.Context, db bun.IDB, filter ImageFilter) ([]*Image, error) {
	db = r.resolveDB(db)
	var images []*Image
	q := db.NewSelect().
		Model(&images).
		Relation("Tags").
		Where("img.archive_path IS NULL").
		Order("img.created_at DESC")
	if filter.Category != "" {
		q = q.Where("img.category = ?", filter.Category)
	}
	if filter.Tag != "" {
		q = q.Where("EXISTS (SELECT 1 FROM image_tags AS it JOIN tags AS t ON t.id = it.tag_id WHERE it.image_id = img.id AND t.name = ?)", normalizeTag(filter.Tag))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}

func (r *Impl) MissingImages(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]uuid.UUID, error) {
	db = r.resolveDB(db)
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uuid.UUID
	err := db.NewSelect().
		Model((*Image)(nil)).
		Column("id").
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx, &found)
	if err != nil {
		return nil, fmt.Errorf("failed to check image ids: %w", err)
	}
	var missing []uuid.UUID
	for _, id := range ids {
		if !slices.Contains(found, id) && !slices.Contains(missing, id) {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *Impl) SetImageSize(ctx context.Context, db bun.IDB, id uuid.UUID, size int64) error {
	db = r.resolveDB(db)
	_, err := db.NewUpdate().
		Model((*Image)(nil)).
		Set("size_bytes = ?", size).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set size of image %s: %w", id, err)
	}
	return nil
}

func (r *Impl) DeleteImage(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	res, err := db.NewDelete().Model((*Image)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete image %s: %w", id, err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeTag(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// UpsertTags returns one tag per distinct non-empty name, creating the missing ones.
func (r *Impl) UpsertTags(ctx context.Context, db bun.IDB, names []string) ([]*Tag, error) {
	db = r.resolveDB(db)
	var tags []*Tag
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = normalizeTag(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		tags = append(tags, &Tag{ID: uuid.New(), Name: n})
	}
	if len(tags) == 0 {
		return nil, nil
	}
	// DO UPDATE so RETURNING yields the existing id on conflict.
	_, err := db.NewInsert().
		Model(&tags).
		On("CONFLICT (name) DO UPDATE").
		Set("name = EXCLUDED.name").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert tags: %w", err)
	}
	return tags, nil
}

func (r *Impl) LinkTags(ctx context.Context, db bun.IDB, imageID uuid.UUID, tags []*Tag) error {
	db = r.resolveDB(db)
	if len(tags) == 0 {
		return nil
	}
	links := make([]*ImageTag, 0, len(tags))
	for _, t := range tags {
		links = append(links, &ImageTag{ImageID: imageID, TagID: t.ID})
	}
	if _, err := db.NewInsert().Model(&links).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
		return fmt.Errorf("failed to link tags to image %s: %w", imageID, err)
	}
	return nil
}

func (r *Impl) MarkArchiveRequested(ctx context.Context, db bun.IDB, id uuid.UUID, archivePath string, at time.Time) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Image)(nil)).
		Set("archive_path = ?", archivePath).
		Set("archive_requested_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark image %s for archive: %w", id, err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) ClearArchiveRequested(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Image)(nil)).
		Set("archive_path = NULL").
		Set("archive_requested_at = NULL").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear archive marker of image %s: %w", id, err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) ListArchiveRequested(ctx context.Context, db bun.IDB) ([]*Image, error) {
	db = r.resolveDB(db)
	var images []*Image
	err := db.NewSelect().
		Model(&images).
		Where("img.archive_path IS NOT NULL").
		Order("img.archive_requested_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list images pending archive: %w", err)
	}
	return images, nil
}

func (r *Impl) InsertArchivedImage(ctx context.Context, db bun.IDB, entry *ArchivedImage) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(entry).
		On("CONFLICT (image_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record archived image %s: %w", entry.ImageID, err)
	}
	return nil
}

func (r *Impl) ListArchivedSince(ctx context.Context, db bun.IDB, since time.Time) ([]*ArchivedImage, error) {
	db = r.resolveDB(db)
	var entries []*ArchivedImage
	err := db.NewSelect().
		Model(&entries).
		Where("ia.archived_at >= ?", since).
		Order("ia.archived_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived images: %w", err)
	}
	return entries, nil
}

package assetservice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"sort"
	"time"

	assetdb "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Repository
// ------------------------

type FakeAssetRepo struct {
	trace    []string
	images   map[uuid.UUID]*assetdb.Image
	tags     map[string]*assetdb.Tag
	links    map[uuid.UUID][]uuid.UUID
	archived map[uuid.UUID]*assetdb.ArchivedImage

	InsertImageFunc func(ctx context.Context, db bun.IDB, img *assetdb.Image) error
	DeleteImageFunc func(ctx context.Context, db bun.IDB, id uuid.UUID) error
}

func NewFakeAssetRepo() *FakeAssetRepo {
	return &FakeAssetRepo{
		images:   make(map[uuid.UUID]*assetdb.Image),
		tags:     make(map[string]*assetdb.Tag),
		links:    make(map[uuid.UUID][]uuid.UUID),
		archived: make(map[uuid.UUID]*assetdb.ArchivedImage),
	}
}

func (f *FakeAssetRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeAssetRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeAssetRepo) put(img *assetdb.Image) {
	cp := *img
	f.images[img.ID] = &cp
}

func (f *FakeAssetRepo) InsertImage(ctx context.Context, db bun.IDB, img *assetdb.Image) error {
	f.record("InsertImage")
	if f.InsertImageFunc != nil {
		return f.InsertImageFunc(ctx, db, img)
	}
	f.put(img)
	return nil
}

func (f *FakeAssetRepo) GetImage(ctx context.Context, db bun.IDB, id uuid.UUID) (*assetdb.Image, error) {
	f.record("GetImage")
	img, ok := f.images[id]
	if !ok {
		return nil, assetdb.ErrNotFound
	}
	cp := *img
	for _, tagID := range f.links[id] {
		for _, t := range f.tags {
			if t.ID == tagID {
				cp.Tags = append(cp.Tags, t)
			}
		}
	}
	return &cp, nil
}

func (f *FakeAssetRepo) ListImages(ctx context.Context, db bun.IDB, filter assetdb.ImageFilter) ([]*assetdb.Image, error) {
	f.record("ListImages")
	var out []*assetdb.Image
	for _, img := range f.images {
		if img.ArchivePath != nil || (filter.Category != "" && img.Category != filter.Category) {
			continue
		}
		cp := *img
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *FakeAssetRepo) MissingImages(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]uuid.UUID, error) {
	f.record("MissingImages")
	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := f.images[id]; !ok && !slices.Contains(missing, id) {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (f *FakeAssetRepo) SetImageSize(ctx context.Context, db bun.IDB, id uuid.UUID, size int64) error {
	f.record("SetImageSize")
	if img, ok := f.images[id]; ok {
		img.SizeBytes = size
	}
	return nil
}

func (f *FakeAssetRepo) DeleteImage(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.record("DeleteImage")
	if f.DeleteImageFunc != nil {
		return f.DeleteImageFunc(ctx, db, id)
	}
	if _, ok := f.images[id]; !ok {
		return assetdb.ErrNotFound
	}
	delete(f.images, id)
	delete(f.links, id)
	return nil
}

func (f *FakeAssetRepo) UpsertTags(ctx context.Context, db bun.IDB, names []string) ([]*assetdb.Tag, error) {
	f.record("UpsertTags")
	var out []*assetdb.Tag
	for _, n := range names {
		if n == "" {
			continue
		}
		t, ok := f.tags[n]
		if !ok {
			t = &assetdb.Tag{ID: uuid.New(), Name: n}
			f.tags[n] = t
		}
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *FakeAssetRepo) LinkTags(ctx context.Context, db bun.IDB, imageID uuid.UUID, tags []*assetdb.Tag) error {
	f.record("LinkTags")
	for _, t := range tags {
		if !slices.Contains(f.links[imageID], t.ID) {
			f.links[imageID] = append(f.links[imageID], t.ID)
		}
	}
	return nil
}

func (f *FakeAssetRepo) MarkArchiveRequested(ctx context.Context, db bun.IDB, id uuid.UUID, archivePath string, at time.Time) error {
	f.record("MarkArchiveRequested")
	img, ok := f.images[id]
	if !ok {
		return assetdb.ErrNotFound
	}
	img.ArchivePath = &archivePath
	img.ArchiveRequestedAt = &at
	return nil
}

func (f *FakeAssetRepo) ClearArchiveRequested(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.record("ClearArchiveRequested")
	img, ok := f.images[id]
	if !ok {
		return assetdb.ErrNotFound
	}
	img.ArchivePath = nil
	img.ArchiveRequestedAt = nil
	return nil
}

func (f *FakeAssetRepo) ListArchiveRequested(ctx context.Context, db bun.IDB) ([]*assetdb.Image, error) {
	f.record("ListArchiveRequested")
	var out []*assetdb.Image
	for _, img := range f.images {
		if img.ArchivePath != nil {
			cp := *img
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (f *FakeAssetRepo) InsertArchivedImage(ctx context.Context, db bun.IDB, entry *assetdb.ArchivedImage) error {
	f.record("InsertArchivedImage")
	if _, ok := f.archived[entry.ImageID]; !ok {
		cp := *entry
		f.archived[entry.ImageID] = &cp
	}
	return nil
}

func (f *FakeAssetRepo) ListArchivedSince(ctx context.Context, db bun.IDB, since time.Time) ([]*assetdb.ArchivedImage, error) {
	f.record("ListArchivedSince")
	var out []*assetdb.ArchivedImage
	for _, e := range f.archived {
		if !e.ArchivedAt.Before(since) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArchivedAt.Before(out[j].ArchivedAt) })
	return out, nil
}

// ------------------------
// Fake Store
// ------------------------

type FakeStore struct {
	files map[string][]byte
	moves []string

	WriteFunc func(ctx context.Context, key string, r io.Reader) (int64, error)
	MoveFunc  func(ctx context.Context, src, dst string) error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{files: make(map[string][]byte)}
}

func (s *FakeStore) Write(ctx context.Context, key string, r io.Reader) (int64, error) {
	if s.WriteFunc != nil {
		return s.WriteFunc(ctx, key, r)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	s.files[key] = b
	return int64(len(b)), nil
}

func (s *FakeStore) Move(ctx context.Context, src, dst string) error {
	if s.MoveFunc != nil {
		return s.MoveFunc(ctx, src, dst)
	}
	b, ok := s.files[src]
	if !ok {
		return fmt.Errorf("move %s: %w", src, fs.ErrNotExist)
	}
	delete(s.files, src)
	s.files[dst] = b
	s.moves = append(s.moves, src+" -> "+dst)
	return nil
}

func (s *FakeStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := s.files[key]
	return ok, nil
}

func (s *FakeStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	b, ok := s.files[key]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", key, fs.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *FakeStore) Remove(ctx context.Context, key string) error {
	delete(s.files, key)
	return nil
}

// ------------------------
// Fake Scheduler / Notifier
// ------------------------

type FakeScheduler struct {
	scheduled []uuid.UUID
	err       error
}

func (s *FakeScheduler) ScheduleRowDelete(ctx context.Context, imageID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.scheduled = append(s.scheduled, imageID)
	return nil
}

type FakeNotifier struct {
	created  []uuid.UUID
	archived []uuid.UUID
}

func (n *FakeNotifier) ImageCreated(ctx context.Context, img *assetdb.Image) error {
	n.created = append(n.created, img.ID)
	return nil
}

func (n *FakeNotifier) ImageArchived(ctx context.Context, entry *assetdb.ArchivedImage) error {
	n.archived = append(n.archived, entry.ImageID)
	return nil
}

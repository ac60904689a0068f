package assethandlers

import (
	"context"
	"io"
	"strings"
	"time"

	assetservice "github.com/Black-And-White-Club/club-cms/app/modules/asset/application"
	assetdb "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/repositories"
	"github.com/google/uuid"
)

// FakeService records calls and answers with the Func overrides or canned defaults.
type FakeService struct {
	trace []string

	CreateImageFunc  func(ctx context.Context, input assetservice.CreateImageInput) (*assetdb.Image, error)
	GetImageFunc     func(ctx context.Context, id uuid.UUID) (*assetdb.Image, error)
	ListImagesFunc   func(ctx context.Context, filter assetdb.ImageFilter) ([]*assetdb.Image, error)
	OpenImageFunc    func(ctx context.Context, id uuid.UUID) (*assetdb.Image, io.ReadCloser, error)
	DeleteImageFunc  func(ctx context.Context, id uuid.UUID) (*assetservice.DeleteResult, error)
	BulkDeleteFunc   func(ctx context.Context, ids []uuid.UUID) (*assetservice.BulkDeleteReport, error)
	ListArchivedFunc func(ctx context.Context, since time.Time) ([]*assetdb.ArchivedImage, error)
}

func (f *FakeService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeService) CreateImage(ctx context.Context, input assetservice.CreateImageInput) (*assetdb.Image, error) {
	f.record("CreateImage")
	if f.CreateImageFunc != nil {
		return f.CreateImageFunc(ctx, input)
	}
	return &assetdb.Image{ID: uuid.New(), Category: input.Category, Extension: "png"}, nil
}

func (f *FakeService) GetImage(ctx context.Context, id uuid.UUID) (*assetdb.Image, error) {
	f.record("GetImage")
	if f.GetImageFunc != nil {
		return f.GetImageFunc(ctx, id)
	}
	return &assetdb.Image{ID: id}, nil
}

func (f *FakeService) ListImages(ctx context.Context, filter assetdb.ImageFilter) ([]*assetdb.Image, error) {
	f.record("ListImages")
	if f.ListImagesFunc != nil {
		return f.ListImagesFunc(ctx, filter)
	}
	return nil, nil
}

func (f *FakeService) OpenImage(ctx context.Context, id uuid.UUID) (*assetdb.Image, io.ReadCloser, error) {
	f.record("OpenImage")
	if f.OpenImageFunc != nil {
		return f.OpenImageFunc(ctx, id)
	}
	return &assetdb.Image{ID: id, ContentType: "image/png", SizeBytes: 3}, io.NopCloser(strings.NewReader("png")), nil
}

func (f *FakeService) DeleteImage(ctx context.Context, id uuid.UUID) (*assetservice.DeleteResult, error) {
	f.record("DeleteImage")
	if f.DeleteImageFunc != nil {
		return f.DeleteImageFunc(ctx, id)
	}
	return &assetservice.DeleteResult{ImageID: id}, nil
}

func (f *FakeService) BulkDelete(ctx context.Context, ids []uuid.UUID) (*assetservice.BulkDeleteReport, error) {
	f.record("BulkDelete")
	if f.BulkDeleteFunc != nil {
		return f.BulkDeleteFunc(ctx, ids)
	}
	report := &assetservice.BulkDeleteReport{}
	for _, id := range ids {
		report.Items = append(report.Items, assetservice.BulkItemResult{ImageID: id, Status: assetservice.BulkItemArchived})
	}
	return report, nil
}

func (f *FakeService) CompleteRowDelete(ctx context.Context, id uuid.UUID) error {
	f.record("CompleteRowDelete")
	return nil
}

func (f *FakeService) ReconcileArchive(ctx context.Context) (*assetservice.ReconcileReport, error) {
	f.record("ReconcileArchive")
	return &assetservice.ReconcileReport{}, nil
}

func (f *FakeService) ListArchived(ctx context.Context, since time.Time) ([]*assetdb.ArchivedImage, error) {
	f.record("ListArchived")
	if f.ListArchivedFunc != nil {
		return f.ListArchivedFunc(ctx, since)
	}
	return nil, nil
}

var _ assetservice.Service = (*FakeService)(nil)

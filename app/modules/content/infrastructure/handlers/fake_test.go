package contenthandlers

import (
	"context"
	"io"

	contentservice "github.com/Black-And-White-Club/club-cms/app/modules/content/application"
	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	"github.com/google/uuid"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	trace []string

	CreateEntityFunc         func(ctx context.Context, rec contentdb.OrderedRecord) (contentdb.OrderedRecord, error)
	UpdateEntityFunc         func(ctx context.Context, rec contentdb.OrderedRecord) (contentdb.OrderedRecord, error)
	GetEntityFunc            func(ctx context.Context, t contentdb.EntityType, id uuid.UUID) (contentdb.OrderedRecord, error)
	DeleteEntityFunc         func(ctx context.Context, t contentdb.EntityType, id uuid.UUID) error
	CreateContainerFunc      func(ctx context.Context, rec contentdb.ContainerRecord) (contentdb.ContainerRecord, error)
	DeleteContainerFunc      func(ctx context.Context, t contentdb.ContainerType, id uuid.UUID) error
	AddMembersFunc           func(ctx context.Context, assoc contentdb.Association, containerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
	RemoveMembersFunc        func(ctx context.Context, assoc contentdb.Association, containerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
	ListMembersFunc          func(ctx context.Context, assoc contentdb.Association, containerID uuid.UUID) ([]contentdb.Member, error)
	SaveNavigationItemFunc   func(ctx context.Context, input contentservice.NavigationItemInput) (*contentdb.NavigationItem, error)
	DeleteNavigationItemFunc func(ctx context.Context, id uuid.UUID) error
	GetNavigationTreeFunc    func(ctx context.Context) ([]*contentservice.NavigationNode, error)
	AssignPageRenderFunc     func(ctx context.Context, pr *contentdb.PageRender) (*contentdb.PageRender, error)
	ImportPricingFunc        func(ctx context.Context, pricingPageID uuid.UUID, workbook io.Reader) ([]*contentdb.MenuItem, error)
	RecordChangeFunc         func(ctx context.Context, messageID string, change contentservice.ChangeNotice) error
}

func (f *FakeService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeService) CreateEntity(ctx context.Context, rec contentdb.OrderedRecord) (contentdb.OrderedRecord, error) {
	f.record("CreateEntity")
	if f.CreateEntityFunc != nil {
		return f.CreateEntityFunc(ctx, rec)
	}
	rec.SetID(uuid.New())
	return rec, nil
}

func (f *FakeService) UpdateEntity(ctx context.Context, rec contentdb.OrderedRecord) (contentdb.OrderedRecord, error) {
	f.record("UpdateEntity")
	if f.UpdateEntityFunc != nil {
		return f.UpdateEntityFunc(ctx, rec)
	}
	return rec, nil
}

func (f *FakeService) GetEntity(ctx context.Context, t contentdb.EntityType, id uuid.UUID) (contentdb.OrderedRecord, error) {
	f.record("GetEntity")
	if f.GetEntityFunc != nil {
		return f.GetEntityFunc(ctx, t, id)
	}
	rec, err := contentdb.NewRecord(t)
	if err != nil {
		return nil, err
	}
	rec.SetID(id)
	return rec, nil
}

func (f *FakeService) DeleteEntity(ctx context.Context, t contentdb.EntityType, id uuid.UUID) error {
	f.record("DeleteEntity")
	if f.DeleteEntityFunc != nil {
		return f.DeleteEntityFunc(ctx, t, id)
	}
	return nil
}

func (f *FakeService) CreateContainer(ctx context.Context, rec contentdb.ContainerRecord) (contentdb.ContainerRecord, error) {
	f.record("CreateContainer")
	if f.CreateContainerFunc != nil {
		return f.CreateContainerFunc(ctx, rec)
	}
	rec.SetID(uuid.New())
	return rec, nil
}

func (f *FakeService) DeleteContainer(ctx context.Context, t contentdb.ContainerType, id uuid.UUID) error {
	f.record("DeleteContainer")
	if f.DeleteContainerFunc != nil {
		return f.DeleteContainerFunc(ctx, t, id)
	}
	return nil
}

func (f *FakeService) AddMembers(ctx context.Context, assoc contentdb.Association, containerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	f.record("AddMembers")
	if f.AddMembersFunc != nil {
		return f.AddMembersFunc(ctx, assoc, containerID, ids)
	}
	return ids, nil
}

func (f *FakeService) RemoveMembers(ctx context.Context, assoc contentdb.Association, containerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	f.record("RemoveMembers")
	if f.RemoveMembersFunc != nil {
		return f.RemoveMembersFunc(ctx, assoc, containerID, ids)
	}
	return ids, nil
}

func (f *FakeService) ListMembers(ctx context.Context, assoc contentdb.Association, containerID uuid.UUID) ([]contentdb.Member, error) {
	f.record("ListMembers")
	if f.ListMembersFunc != nil {
		return f.ListMembersFunc(ctx, assoc, containerID)
	}
	return nil, nil
}

func (f *FakeService) SaveNavigationItem(ctx context.Context, input contentservice.NavigationItemInput) (*contentdb.NavigationItem, error) {
	f.record("SaveNavigationItem")
	if f.SaveNavigationItemFunc != nil {
		return f.SaveNavigationItemFunc(ctx, input)
	}
	item := &contentdb.NavigationItem{Label: input.Label, Route: input.Route}
	if input.ID != nil {
		item.ID = *input.ID
	} else {
		item.ID = uuid.New()
	}
	return item, nil
}

func (f *FakeService) DeleteNavigationItem(ctx context.Context, id uuid.UUID) error {
	f.record("DeleteNavigationItem")
	if f.DeleteNavigationItemFunc != nil {
		return f.DeleteNavigationItemFunc(ctx, id)
	}
	return nil
}

func (f *FakeService) GetNavigationTree(ctx context.Context) ([]*contentservice.NavigationNode, error) {
	f.record("GetNavigationTree")
	if f.GetNavigationTreeFunc != nil {
		return f.GetNavigationTreeFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) AssignPageRender(ctx context.Context, pr *contentdb.PageRender) (*contentdb.PageRender, error) {
	f.record("AssignPageRender")
	if f.AssignPageRenderFunc != nil {
		return f.AssignPageRenderFunc(ctx, pr)
	}
	return pr, nil
}

func (f *FakeService) ImportPricing(ctx context.Context, pricingPageID uuid.UUID, workbook io.Reader) ([]*contentdb.MenuItem, error) {
	f.record("ImportPricing")
	if f.ImportPricingFunc != nil {
		return f.ImportPricingFunc(ctx, pricingPageID, workbook)
	}
	return nil, nil
}

func (f *FakeService) RecordChange(ctx context.Context, messageID string, change contentservice.ChangeNotice) error {
	f.record("RecordChange")
	if f.RecordChangeFunc != nil {
		return f.RecordChangeFunc(ctx, messageID, change)
	}
	return nil
}

var _ contentservice.Service = (*FakeService)(nil)

package contentservice

import (
	"context"
	"sort"

	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Content Repo
// ------------------------

// FakeContentRepo is an in-memory contentdb.Repository. Individual methods can be
// overridden through the *Func fields; every call is recorded in the trace.
type FakeContentRepo struct {
	trace []string

	entities    map[uuid.UUID]contentdb.OrderedRecord
	containers  map[uuid.UUID]contentdb.Container
	memberships map[string]map[uuid.UUID][]uuid.UUID
	navItems    map[uuid.UUID]*contentdb.NavigationItem
	navEdges    []contentdb.NavigationEdge
	pageRenders []*contentdb.PageRender
	audit       []*contentdb.AuditEntry

	UpdateEntityFunc    func(ctx context.Context, db bun.IDB, rec contentdb.OrderedRecord) error
	SyncMemberOrderFunc func(ctx context.Context, db bun.IDB, assoc contentdb.Association, entityID uuid.UUID, order int) error
	AddMembersFunc      func(ctx context.Context, db bun.IDB, assoc contentdb.Association, containerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
	SiblingsOfFunc      func(ctx context.Context, db bun.IDB, assoc contentdb.Association, containerID, excludeID uuid.UUID) ([]contentdb.Member, error)
}

func NewFakeContentRepo() *FakeContentRepo {
	return &FakeContentRepo{
		trace:       []string{},
		entities:    map[uuid.UUID]contentdb.OrderedRecord{},
		containers:  map[uuid.UUID]contentdb.Container{},
		memberships: map[string]map[uuid.UUID][]uuid.UUID{},
		navItems:    map[uuid.UUID]*contentdb.NavigationItem{},
	}
}

func (f *FakeContentRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeContentRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeContentRepo) members(assoc contentdb.Association, containerID uuid.UUID) []uuid.UUID {
	return f.memberships[assoc.Name][containerID]
}

func (f *FakeContentRepo) member(id uuid.UUID) contentdb.Member {
	rec := f.entities[id]
	return contentdb.Member{ID: id, Order: rec.GetOrder(), DisplayName: rec.DisplayName()}
}

// --- Repository Interface Implementation ---

func (f *FakeContentRepo) InsertEntity(ctx context.Context, db bun.IDB, rec contentdb.OrderedRecord) error {
	f.record("InsertEntity")
	if rec.GetID() == uuid.Nil {
		rec.SetID(uuid.New())
	}
	f.entities[rec.GetID()] = rec
	return nil
}

func (f *FakeContentRepo) UpdateEntity(ctx context.Context, db bun.IDB, rec contentdb.OrderedRecord) error {
	f.record("UpdateEntity")
	if f.UpdateEntityFunc != nil {
		return f.UpdateEntityFunc(ctx, db, rec)
	}
	if _, ok := f.entities[rec.GetID()]; !ok {
		return contentdb.ErrNotFound
	}
	f.entities[rec.GetID()] = rec
	return nil
}

func (f *FakeContentRepo) GetEntity(ctx context.Context, db bun.IDB, t contentdb.EntityType, id uuid.UUID) (contentdb.OrderedRecord, error) {
	f.record("GetEntity")
	if !t.Valid() {
		return nil, contentdb.ErrUnknownEntityType
	}
	rec, ok := f.entities[id]
	if !ok || rec.EntityType() != t {
		return nil, contentdb.ErrNotFound
	}
	return rec, nil
}

func (f *FakeContentRepo) DeleteEntity(ctx context.Context, db bun.IDB, t contentdb.EntityType, id uuid.UUID) error {
	f.record("DeleteEntity")
	if _, ok := f.entities[id]; !ok {
		return contentdb.ErrNotFound
	}
	delete(f.entities, id)
	for _, byContainer := range f.memberships {
		for cid, ids := range byContainer {
			byContainer[cid] = without(ids, id)
		}
	}
	return nil
}

func (f *FakeContentRepo) GetMember(ctx context.Context, db bun.IDB, t contentdb.EntityType, id uuid.UUID) (contentdb.Member, error) {
	f.record("GetMember")
	if _, ok := f.entities[id]; !ok {
		return contentdb.Member{}, contentdb.ErrNotFound
	}
	return f.member(id), nil
}

func (f *FakeContentRepo) SyncMemberOrder(ctx context.Context, db bun.IDB, assoc contentdb.Association, entityID uuid.UUID, order int) error {
	f.record("SyncMemberOrder")
	if f.SyncMemberOrderFunc != nil {
		return f.SyncMemberOrderFunc(ctx, db, assoc, entityID, order)
	}
	return nil
}

func (f *FakeContentRepo) InsertContainer(ctx context.Context, db bun.IDB, rec contentdb.ContainerRecord) error {
	f.record("InsertContainer")
	if rec.GetID() == uuid.Nil {
		rec.SetID(uuid.New())
	}
	f.containers[rec.GetID()] = contentdb.Container{Type: rec.ContainerType(), ID: rec.GetID(), DisplayName: rec.DisplayName()}
	return nil
}

func (f *FakeContentRepo) GetContainer(ctx context.Context, db bun.IDB, t contentdb.ContainerType, id uuid.UUID) (contentdb.Container, error) {
	f.record("GetContainer")
	if !t.Valid() {
		return contentdb.Container{}, contentdb.ErrUnknownContainerType
	}
	c, ok := f.containers[id]
	if !ok || c.Type != t {
		return contentdb.Container{}, contentdb.ErrNotFound
	}
	return c, nil
}

func (f *FakeContentRepo) DeleteContainer(ctx context.Context, db bun.IDB, t contentdb.ContainerType, id uuid.UUID) error {
	f.record("DeleteContainer")
	if _, ok := f.containers[id]; !ok {
		return contentdb.ErrNotFound
	}
	delete(f.containers, id)
	for _, byContainer := range f.memberships {
		delete(byContainer, id)
	}
	return nil
}

func (f *FakeContentRepo) AddMembers(ctx context.Context, db bun.IDB, assoc contentdb.Association, containerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	f.record("AddMembers")
	if f.AddMembersFunc != nil {
		return f.AddMembersFunc(ctx, db, assoc, containerID, ids)
	}
	for _, id := range ids {
		rec, ok := f.entities[id]
		if !ok || rec.EntityType() != assoc.EntityType {
			return nil, contentdb.ErrNotFound
		}
	}
	if f.memberships[assoc.Name] == nil {
		f.memberships[assoc.Name] = map[uuid.UUID][]uuid.UUID{}
	}
	var added []uuid.UUID
	for _, id := range ids {
		if contains(f.memberships[assoc.Name][containerID], id) {
			continue
		}
		f.memberships[assoc.Name][containerID] = append(f.memberships[assoc.Name][containerID], id)
		added = append(added, id)
	}
	return added, nil
}

func (f *FakeContentRepo) RemoveMembers(ctx context.Context, db bun.IDB, assoc contentdb.Association, containerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	f.record("RemoveMembers")
	var removed []uuid.UUID
	for _, id := range ids {
		current := f.members(assoc, containerID)
		if contains(current, id) {
			f.memberships[assoc.Name][containerID] = without(current, id)
			removed = append(removed, id)
		}
	}
	return removed, nil
}

func (f *FakeContentRepo) ListMembers(ctx context.Context, db bun.IDB, assoc contentdb.Association, containerID uuid.UUID) ([]contentdb.Member, error) {
	f.record("ListMembers")
	var out []contentdb.Member
	for _, id := range f.members(assoc, containerID) {
		out = append(out, f.member(id))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *FakeContentRepo) SiblingsOf(ctx context.Context, db bun.IDB, assoc contentdb.Association, containerID, excludeID uuid.UUID) ([]contentdb.Member, error) {
	f.record("SiblingsOf")
	if f.SiblingsOfFunc != nil {
		return f.SiblingsOfFunc(ctx, db, assoc, containerID, excludeID)
	}
	var out []contentdb.Member
	for _, id := range f.members(assoc, containerID) {
		if id != excludeID {
			out = append(out, f.member(id))
		}
	}
	return out, nil
}

func (f *FakeContentRepo) ParentsOf(ctx context.Context, db bun.IDB, assoc contentdb.Association, entityID uuid.UUID) ([]contentdb.Container, error) {
	f.record("ParentsOf")
	var out []contentdb.Container
	for cid, ids := range f.memberships[assoc.Name] {
		if contains(ids, entityID) {
			out = append(out, f.containers[cid])
		}
	}
	return out, nil
}

func (f *FakeContentRepo) GetRender(ctx context.Context, db bun.IDB, id uuid.UUID) (*contentdb.Render, error) {
	f.record("GetRender")
	render, ok := f.entities[id].(*contentdb.Render)
	if !ok {
		return nil, contentdb.ErrNotFound
	}
	return render, nil
}

func (f *FakeContentRepo) ListNavigationItemsByRender(ctx context.Context, db bun.IDB, renderID uuid.UUID) ([]*contentdb.NavigationItem, error) {
	f.record("ListNavigationItemsByRender")
	var out []*contentdb.NavigationItem
	for _, item := range f.navItems {
		if item.NavBarRenderID != nil && *item.NavBarRenderID == renderID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *FakeContentRepo) ListNavigationItems(ctx context.Context, db bun.IDB) ([]*contentdb.NavigationItem, error) {
	f.record("ListNavigationItems")
	out := make([]*contentdb.NavigationItem, 0, len(f.navItems))
	for _, item := range f.navItems {
		out = append(out, item)
	}
	return out, nil
}

func (f *FakeContentRepo) ListNavigationEdges(ctx context.Context, db bun.IDB) ([]contentdb.NavigationEdge, error) {
	f.record("ListNavigationEdges")
	return append([]contentdb.NavigationEdge(nil), f.navEdges...), nil
}

func (f *FakeContentRepo) GetNavigationItem(ctx context.Context, db bun.IDB, id uuid.UUID) (*contentdb.NavigationItem, error) {
	f.record("GetNavigationItem")
	item, ok := f.navItems[id]
	if !ok {
		return nil, contentdb.ErrNotFound
	}
	return item, nil
}

func (f *FakeContentRepo) UpsertNavigationItem(ctx context.Context, db bun.IDB, item *contentdb.NavigationItem) error {
	f.record("UpsertNavigationItem")
	f.navItems[item.ID] = item
	return nil
}

func (f *FakeContentRepo) ReplaceChildren(ctx context.Context, db bun.IDB, parentID uuid.UUID, childIDs []uuid.UUID) error {
	f.record("ReplaceChildren")
	kept := f.navEdges[:0]
	for _, e := range f.navEdges {
		if e.ParentID != parentID {
			kept = append(kept, e)
		}
	}
	f.navEdges = kept
	for _, id := range childIDs {
		f.navEdges = append(f.navEdges, contentdb.NavigationEdge{ParentID: parentID, ChildID: id})
	}
	return nil
}

func (f *FakeContentRepo) DeleteNavigationItem(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.record("DeleteNavigationItem")
	if _, ok := f.navItems[id]; !ok {
		return contentdb.ErrNotFound
	}
	delete(f.navItems, id)
	kept := f.navEdges[:0]
	for _, e := range f.navEdges {
		if e.ParentID != id && e.ChildID != id {
			kept = append(kept, e)
		}
	}
	f.navEdges = kept
	return nil
}

func (f *FakeContentRepo) ListPageRendersByRender(ctx context.Context, db bun.IDB, renderID uuid.UUID) ([]*contentdb.PageRender, error) {
	f.record("ListPageRendersByRender")
	var out []*contentdb.PageRender
	for _, pr := range f.pageRenders {
		if pr.RenderID == renderID {
			out = append(out, pr)
		}
	}
	return out, nil
}

func (f *FakeContentRepo) UpsertPageRender(ctx context.Context, db bun.IDB, pr *contentdb.PageRender) error {
	f.record("UpsertPageRender")
	if pr.ID == uuid.Nil {
		pr.ID = uuid.New()
	}
	for i, existing := range f.pageRenders {
		if existing.PageType == pr.PageType && existing.PageID == pr.PageID && existing.Slot == pr.Slot {
			f.pageRenders[i] = pr
			return nil
		}
	}
	f.pageRenders = append(f.pageRenders, pr)
	return nil
}

func (f *FakeContentRepo) InsertAuditEntry(ctx context.Context, db bun.IDB, entry *contentdb.AuditEntry) error {
	f.record("InsertAuditEntry")
	f.audit = append(f.audit, entry)
	return nil
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func without(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

// ------------------------
// Fake Notifier
// ------------------------

type FakeNotifier struct {
	changes []ChangeNotice
	err     error
}

func (n *FakeNotifier) NotifyChange(ctx context.Context, change ChangeNotice) error {
	n.changes = append(n.changes, change)
	return n.err
}

// Ensure the fakes satisfy their interfaces
var (
	_ contentdb.Repository = (*FakeContentRepo)(nil)
	_ Notifier             = (*FakeNotifier)(nil)
)

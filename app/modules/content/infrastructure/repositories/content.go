package contentdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new content repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *Impl) InsertEntity(ctx context.Context, db bun.IDB, rec OrderedRecord) error {
	db = r.resolveDB(db)
	if rec.GetID() == uuid.Nil {
		rec.SetID(uuid.New())
	}
	if _, err := db.NewInsert().Model(rec).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert %s: %w", rec.EntityType(), err)
	}
	return nil
}

func (r *Impl) UpdateEntity(ctx context.Context, db bun.IDB, rec OrderedRecord) error {
	db = r.resolveDB(db)
	if t, ok := rec.(interface{ touch(time.Time) }); ok {
		t.touch(time.Now())
	}
	res, err := db.NewUpdate().
		Model(rec).
		ExcludeColumn("created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", rec.EntityType(), err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) GetEntity(ctx context.Context, db bun.IDB, t EntityType, id uuid.UUID) (OrderedRecord, error) {
	db = r.resolveDB(db)
	rec, err := NewRecord(t)
	if err != nil {
		return nil, err
	}
	rec.SetID(id)
	if err := db.NewSelect().Model(rec).WherePK().Scan(ctx); err != nil {
		if err = notFound(err); errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get %s: %w", t, err)
	}
	return rec, nil
}

func (r *Impl) DeleteEntity(ctx context.Context, db bun.IDB, t EntityType, id uuid.UUID) error {
	db = r.resolveDB(db)
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownEntityType, t)
	}
	res, err := db.NewDelete().
		TableExpr("?", bun.Ident(t.Table())).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", t, err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) GetMember(ctx context.Context, db bun.IDB, t EntityType, id uuid.UUID) (Member, error) {
	db = r.resolveDB(db)
	if !t.Valid() {
		return Member{}, fmt.Errorf("%w: %q", ErrUnknownEntityType, t)
	}
	var m Member
	err := db.NewSelect().
		TableExpr("? AS e", bun.Ident(t.Table())).
		ColumnExpr("e.id, e.display_order, e.? AS display_name", bun.Ident(t.NameColumn())).
		Where("e.id = ?", id).
		Scan(ctx, &m)
	if err != nil {
		if err = notFound(err); errors.Is(err, ErrNotFound) {
			return Member{}, err
		}
		return Member{}, fmt.Errorf("failed to get %s member: %w", t, err)
	}
	return m, nil
}

func (r *Impl) SyncMemberOrder(ctx context.Context, db bun.IDB, assoc Association, entityID uuid.UUID, order int) error {
	db = r.resolveDB(db)
	_, err := db.NewUpdate().
		TableExpr("?", bun.Ident(assoc.Name)).
		Set("display_order = ?", order).
		Where("? = ?", bun.Ident(assoc.EntityColumn), entityID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to sync %s order: %w", assoc, err)
	}
	return nil
}

func (r *Impl) InsertContainer(ctx context.Context, db bun.IDB, rec ContainerRecord) error {
	db = r.resolveDB(db)
	if rec.GetID() == uuid.Nil {
		rec.SetID(uuid.New())
	}
	if _, err := db.NewInsert().Model(rec).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert %s: %w", rec.ContainerType(), err)
	}
	return nil
}

func (r *Impl) GetContainer(ctx context.Context, db bun.IDB, t ContainerType, id uuid.UUID) (Container, error) {
	db = r.resolveDB(db)
	if !t.Valid() {
		return Container{}, fmt.Errorf("%w: %q", ErrUnknownContainerType, t)
	}
	var c Container
	err := db.NewSelect().
		TableExpr("? AS c", bun.Ident(t.Table())).
		ColumnExpr("c.id, c.title AS display_name").
		Where("c.id = ?", id).
		Scan(ctx, &c)
	if err != nil {
		if err = notFound(err); errors.Is(err, ErrNotFound) {
			return Container{}, err
		}
		return Container{}, fmt.Errorf("failed to get %s: %w", t, err)
	}
	c.Type = t
	return c, nil
}

func (r *Impl) DeleteContainer(ctx context.Context, db bun.IDB, t ContainerType, id uuid.UUID) error {
	db = r.resolveDB(db)
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownContainerType, t)
	}
	res, err := db.NewDelete().
		TableExpr("?", bun.Ident(t.Table())).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", t, err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) AddMembers(ctx context.Context, db bun.IDB, assoc Association, containerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	db = r.resolveDB(db)
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	found, err := db.NewSelect().
		TableExpr("?", bun.Ident(assoc.EntityType.Table())).
		Where("id IN (?)", bun.In(ids)).
		Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s members: %w", assoc, err)
	}
	if found != len(ids) {
		return nil, ErrNotFound
	}

	var added []uuid.UUID
	err = db.NewRaw(
		`INSERT INTO ? (?, ?, display_order)
		 SELECT ?, e.id, e.display_order FROM ? AS e WHERE e.id IN (?)
		 ON CONFLICT (?, ?) DO NOTHING
		 RETURNING ?`,
		bun.Ident(assoc.Name), bun.Ident(assoc.ContainerColumn), bun.Ident(assoc.EntityColumn),
		containerID, bun.Ident(assoc.EntityType.Table()), bun.In(ids),
		bun.Ident(assoc.ContainerColumn), bun.Ident(assoc.EntityColumn),
		bun.Ident(assoc.EntityColumn),
	).Scan(ctx, &added)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to add %s members: %w", assoc, err)
	}
	return added, nil
}

func (r *Impl) RemoveMembers(ctx context.Context, db bun.IDB, assoc Association, containerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	db = r.resolveDB(db)
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var removed []uuid.UUID
	err := db.NewRaw(
		`DELETE FROM ? WHERE ? = ? AND ? IN (?) RETURNING ?`,
		bun.Ident(assoc.Name), bun.Ident(assoc.ContainerColumn), containerID,
		bun.Ident(assoc.EntityColumn), bun.In(ids), bun.Ident(assoc.EntityColumn),
	).Scan(ctx, &removed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to remove %s members: %w", assoc, err)
	}
	return removed, nil
}

func (r *Impl) membersQuery(db bun.IDB, assoc Association, containerID uuid.UUID) *bun.SelectQuery {
	return db.NewSelect().
		TableExpr("? AS e", bun.Ident(assoc.EntityType.Table())).
		ColumnExpr("e.id, e.display_order, e.? AS display_name", bun.Ident(assoc.EntityType.NameColumn())).
		Join("JOIN ? AS j ON j.? = e.id", bun.Ident(assoc.Name), bun.Ident(assoc.EntityColumn)).
		Where("j.? = ?", bun.Ident(assoc.ContainerColumn), containerID)
}

func (r *Impl) ListMembers(ctx context.Context, db bun.IDB, assoc Association, containerID uuid.UUID) ([]Member, error) {
	db = r.resolveDB(db)
	var members []Member
	if err := r.membersQuery(db, assoc, containerID).OrderExpr("e.display_order ASC").Scan(ctx, &members); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s members: %w", assoc, err)
	}
	return members, nil
}

func (r *Impl) SiblingsOf(ctx context.Context, db bun.IDB, assoc Association, containerID, excludeID uuid.UUID) ([]Member, error) {
	db = r.resolveDB(db)
	var members []Member
	if err := r.membersQuery(db, assoc, containerID).Where("e.id <> ?", excludeID).Scan(ctx, &members); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query %s siblings: %w", assoc, err)
	}
	return members, nil
}

func (r *Impl) ParentsOf(ctx context.Context, db bun.IDB, assoc Association, entityID uuid.UUID) ([]Container, error) {
	db = r.resolveDB(db)
	var parents []Container
	err := db.NewSelect().
		TableExpr("? AS c", bun.Ident(assoc.ContainerType.Table())).
		ColumnExpr("c.id, c.title AS display_name").
		Join("JOIN ? AS j ON j.? = c.id", bun.Ident(assoc.Name), bun.Ident(assoc.ContainerColumn)).
		Where("j.? = ?", bun.Ident(assoc.EntityColumn), entityID).
		Scan(ctx, &parents)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve %s parents: %w", assoc, err)
	}
	for i := range parents {
		parents[i].Type = assoc.ContainerType
	}
	return parents, nil
}

func (r *Impl) GetRender(ctx context.Context, db bun.IDB, id uuid.UUID) (*Render, error) {
	db = r.resolveDB(db)
	render := new(Render)
	if err := db.NewSelect().Model(render).Where("r.id = ?", id).Scan(ctx); err != nil {
		if err = notFound(err); errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get render: %w", err)
	}
	return render, nil
}

func (r *Impl) ListNavigationItemsByRender(ctx context.Context, db bun.IDB, renderID uuid.UUID) ([]*NavigationItem, error) {
	db = r.resolveDB(db)
	var items []*NavigationItem
	if err := db.NewSelect().Model(&items).Where("ni.nav_bar_render_id = ?", renderID).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list navigation items by render: %w", err)
	}
	return items, nil
}

func (r *Impl) ListNavigationItems(ctx context.Context, db bun.IDB) ([]*NavigationItem, error) {
	db = r.resolveDB(db)
	var items []*NavigationItem
	if err := db.NewSelect().Model(&items).Order("ni.label ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list navigation items: %w", err)
	}
	return items, nil
}

func (r *Impl) ListNavigationEdges(ctx context.Context, db bun.IDB) ([]NavigationEdge, error) {
	db = r.resolveDB(db)
	var edges []NavigationEdge
	if err := db.NewSelect().Model(&edges).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list navigation edges: %w", err)
	}
	return edges, nil
}

func (r *Impl) GetNavigationItem(ctx context.Context, db bun.IDB, id uuid.UUID) (*NavigationItem, error) {
	db = r.resolveDB(db)
	item := new(NavigationItem)
	if err := db.NewSelect().Model(item).Where("ni.id = ?", id).Scan(ctx); err != nil {
		if err = notFound(err); errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get navigation item: %w", err)
	}
	return item, nil
}

func (r *Impl) UpsertNavigationItem(ctx context.Context, db bun.IDB, item *NavigationItem) error {
	db = r.resolveDB(db)
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.UpdatedAt = time.Now()
	_, err := db.NewInsert().
		Model(item).
		On("CONFLICT (id) DO UPDATE").
		Set("label = EXCLUDED.label").
		Set("route = EXCLUDED.route").
		Set("image_id = EXCLUDED.image_id").
		Set("nav_bar_render_id = EXCLUDED.nav_bar_render_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert navigation item: %w", err)
	}
	return nil
}

func (r *Impl) ReplaceChildren(ctx context.Context, db bun.IDB, parentID uuid.UUID, childIDs []uuid.UUID) error {
	db = r.resolveDB(db)
	if _, err := db.NewDelete().Model((*NavigationEdge)(nil)).Where("parent_id = ?", parentID).Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear navigation children: %w", err)
	}
	childIDs = dedupe(childIDs)
	if len(childIDs) == 0 {
		return nil
	}
	edges := make([]NavigationEdge, 0, len(childIDs))
	for _, id := range childIDs {
		edges = append(edges, NavigationEdge{ParentID: parentID, ChildID: id})
	}
	if _, err := db.NewInsert().Model(&edges).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert navigation children: %w", err)
	}
	return nil
}

func (r *Impl) DeleteNavigationItem(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	res, err := db.NewDelete().Model((*NavigationItem)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete navigation item: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) ListPageRendersByRender(ctx context.Context, db bun.IDB, renderID uuid.UUID) ([]*PageRender, error) {
	db = r.resolveDB(db)
	var slots []*PageRender
	if err := db.NewSelect().Model(&slots).Where("pr.render_id = ?", renderID).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list page renders: %w", err)
	}
	return slots, nil
}

func (r *Impl) UpsertPageRender(ctx context.Context, db bun.IDB, pr *PageRender) error {
	db = r.resolveDB(db)
	if pr.ID == uuid.Nil {
		pr.ID = uuid.New()
	}
	_, err := db.NewInsert().
		Model(pr).
		On("CONFLICT (page_type, page_id, slot) DO UPDATE").
		Set("render_id = EXCLUDED.render_id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert page render: %w", err)
	}
	return nil
}

func (r *Impl) InsertAuditEntry(ctx context.Context, db bun.IDB, entry *AuditEntry) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(entry).
		On("CONFLICT (message_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
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

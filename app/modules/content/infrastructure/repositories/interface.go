package contentdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for content persistence. Every method takes the
// bun handle to run on so callers can keep a whole operation in one transaction.
type Repository interface {
	// InsertEntity stores a new, unscoped ordered entity.
	InsertEntity(ctx context.Context, db bun.IDB, rec OrderedRecord) error
	// UpdateEntity overwrites an ordered entity row.
	UpdateEntity(ctx context.Context, db bun.IDB, rec OrderedRecord) error
	// GetEntity loads an ordered entity by type and id.
	GetEntity(ctx context.Context, db bun.IDB, t EntityType, id uuid.UUID) (OrderedRecord, error)
	// DeleteEntity removes an ordered entity and, through foreign keys, its memberships.
	DeleteEntity(ctx context.Context, db bun.IDB, t EntityType, id uuid.UUID) error
	// GetMember loads the ordering projection of one entity.
	GetMember(ctx context.Context, db bun.IDB, t EntityType, id uuid.UUID) (Member, error)
	// SyncMemberOrder copies an entity's order into every join row of the association.
	SyncMemberOrder(ctx context.Context, db bun.IDB, assoc Association, entityID uuid.UUID, order int) error

	// InsertContainer stores a new page container.
	InsertContainer(ctx context.Context, db bun.IDB, rec ContainerRecord) error
	// GetContainer loads the identity of a page container.
	GetContainer(ctx context.Context, db bun.IDB, t ContainerType, id uuid.UUID) (Container, error)
	// DeleteContainer removes a container; its members are kept.
	DeleteContainer(ctx context.Context, db bun.IDB, t ContainerType, id uuid.UUID) error

	// AddMembers associates entities with a container and returns the ids that were not members yet.
	AddMembers(ctx context.Context, db bun.IDB, assoc Association, containerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
	// RemoveMembers detaches entities from a container and returns the ids actually removed.
	RemoveMembers(ctx context.Context, db bun.IDB, assoc Association, containerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
	// ListMembers returns the members of a container ordered by display order.
	ListMembers(ctx context.Context, db bun.IDB, assoc Association, containerID uuid.UUID) ([]Member, error)
	// SiblingsOf returns the members of a container other than excludeID.
	SiblingsOf(ctx context.Context, db bun.IDB, assoc Association, containerID, excludeID uuid.UUID) ([]Member, error)
	// ParentsOf returns the containers an entity currently belongs to through assoc.
	ParentsOf(ctx context.Context, db bun.IDB, assoc Association, entityID uuid.UUID) ([]Container, error)

	// GetRender loads a render by id.
	GetRender(ctx context.Context, db bun.IDB, id uuid.UUID) (*Render, error)
	// ListNavigationItemsByRender returns the items whose nav bar render is renderID.
	ListNavigationItemsByRender(ctx context.Context, db bun.IDB, renderID uuid.UUID) ([]*NavigationItem, error)
	// ListNavigationItems returns every navigation item.
	ListNavigationItems(ctx context.Context, db bun.IDB) ([]*NavigationItem, error)
	// ListNavigationEdges returns every parent/child link.
	ListNavigationEdges(ctx context.Context, db bun.IDB) ([]NavigationEdge, error)
	// GetNavigationItem loads a navigation item by id.
	GetNavigationItem(ctx context.Context, db bun.IDB, id uuid.UUID) (*NavigationItem, error)
	// UpsertNavigationItem inserts or updates a navigation item.
	UpsertNavigationItem(ctx context.Context, db bun.IDB, item *NavigationItem) error
	// ReplaceChildren sets the complete child list of a navigation item.
	ReplaceChildren(ctx context.Context, db bun.IDB, parentID uuid.UUID, childIDs []uuid.UUID) error
	// DeleteNavigationItem removes a navigation item and its edges.
	DeleteNavigationItem(ctx context.Context, db bun.IDB, id uuid.UUID) error

	// ListPageRendersByRender returns the page slots using renderID.
	ListPageRendersByRender(ctx context.Context, db bun.IDB, renderID uuid.UUID) ([]*PageRender, error)
	// UpsertPageRender inserts or updates a page slot assignment.
	UpsertPageRender(ctx context.Context, db bun.IDB, pr *PageRender) error

	// InsertAuditEntry records a committed change; duplicates by message id are ignored.
	InsertAuditEntry(ctx context.Context, db bun.IDB, entry *AuditEntry) error
}

package contentservice

import (
	"context"

	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ScopeCapability supplies what the ordering policy needs to know about one association:
// which containers an entity sits in and who its siblings are there.
type ScopeCapability interface {
	Association() contentdb.Association
	ResolveParents(ctx context.Context, db bun.IDB, entityID uuid.UUID) ([]contentdb.Container, error)
	SiblingQuery(ctx context.Context, db bun.IDB, parent contentdb.Container, excludeID uuid.UUID) ([]contentdb.Member, error)
}

// associationScope backs a ScopeCapability with the join table of an association.
type associationScope struct {
	repo  contentdb.Repository
	assoc contentdb.Association
}

func (s associationScope) Association() contentdb.Association { return s.assoc }

func (s associationScope) ResolveParents(ctx context.Context, db bun.IDB, entityID uuid.UUID) ([]contentdb.Container, error) {
	return s.repo.ParentsOf(ctx, db, s.assoc, entityID)
}

func (s associationScope) SiblingQuery(ctx context.Context, db bun.IDB, parent contentdb.Container, excludeID uuid.UUID) ([]contentdb.Member, error) {
	return s.repo.SiblingsOf(ctx, db, s.assoc, parent.ID, excludeID)
}

// OrderingEngine decides whether an order value collides with the siblings in a scope.
type OrderingEngine struct {
	repo contentdb.Repository
}

// NewOrderingEngine creates an engine whose scopes are backed by repo.
func NewOrderingEngine(repo contentdb.Repository) *OrderingEngine {
	return &OrderingEngine{repo: repo}
}

// Scope returns the capability for an association.
func (e *OrderingEngine) Scope(assoc contentdb.Association) ScopeCapability {
	return associationScope{repo: e.repo, assoc: assoc}
}

// ValidateUniqueOrder checks entity against its siblings inside container. It returns an
// *OrderConflict when a sibling has the same order; any other error is infrastructural.
func (e *OrderingEngine) ValidateUniqueOrder(
	ctx context.Context,
	db bun.IDB,
	scope ScopeCapability,
	entity contentdb.Member,
	container contentdb.Container,
) error {
	siblings, err := scope.SiblingQuery(ctx, db, container, entity.ID)
	if err != nil {
		return err
	}
	if conflictingSibling(entity, siblings) == nil {
		return nil
	}
	assoc := scope.Association()
	return &OrderConflict{
		EntityType:           assoc.EntityType,
		EntityID:             entity.ID,
		DisplayName:          entity.DisplayName,
		Order:                entity.Order,
		ContainerType:        container.Type,
		ContainerID:          container.ID,
		ContainerDisplayName: container.DisplayName,
	}
}

// ValidateSave runs the check for a directly saved entity against every container it
// already belongs to. An entity with no memberships cannot conflict.
func (e *OrderingEngine) ValidateSave(ctx context.Context, db bun.IDB, scopes []contentdb.Association, entity contentdb.Member) error {
	for _, assoc := range scopes {
		scope := e.Scope(assoc)
		parents, err := scope.ResolveParents(ctx, db, entity.ID)
		if err != nil {
			return err
		}
		for _, parent := range parents {
			if err := e.ValidateUniqueOrder(ctx, db, scope, entity, parent); err != nil {
				return err
			}
		}
	}
	return nil
}

// conflictingSibling returns the first sibling sharing entity's order.
func conflictingSibling(entity contentdb.Member, siblings []contentdb.Member) *contentdb.Member {
	for i := range siblings {
		if siblings[i].ID != entity.ID && siblings[i].Order == entity.Order {
			return &siblings[i]
		}
	}
	return nil
}

package contentservice

import (
	"context"
	"fmt"

	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// AssociationChangeCascade validates every newly added member against the container's
// membership after the add. Removals are ignored since they can only relax the invariant.
type AssociationChangeCascade struct {
	repo   contentdb.Repository
	engine *OrderingEngine
}

// NewAssociationChangeCascade creates the cascade.
func NewAssociationChangeCascade(repo contentdb.Repository, engine *OrderingEngine) *AssociationChangeCascade {
	return &AssociationChangeCascade{repo: repo, engine: engine}
}

func (c *AssociationChangeCascade) Name() string { return "association_change_cascade" }

func (c *AssociationChangeCascade) Handle(ctx context.Context, db bun.IDB, event DomainEvent) error {
	added, ok := event.(MembersAdded)
	if !ok {
		return nil
	}
	scope := c.engine.Scope(added.Association)
	for _, id := range added.EntityIDs {
		member, err := c.repo.GetMember(ctx, db, added.Association.EntityType, id)
		if err != nil {
			return fmt.Errorf("failed to load added %s: %w", added.Association.EntityType, err)
		}
		if err := c.engine.ValidateUniqueOrder(ctx, db, scope, member, added.Container); err != nil {
			return err
		}
	}
	return nil
}

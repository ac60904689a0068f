package contentservice

import (
	"context"
	"fmt"

	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// RenderDependencyCascade re-validates everything that references an updated Render:
// navigation items using it as their nav bar render, and page slots it is attached to.
// Any invalid dependent rejects the Render update.
type RenderDependencyCascade struct {
	repo contentdb.Repository
}

// NewRenderDependencyCascade creates the cascade.
func NewRenderDependencyCascade(repo contentdb.Repository) *RenderDependencyCascade {
	return &RenderDependencyCascade{repo: repo}
}

func (c *RenderDependencyCascade) Name() string { return "render_dependency_cascade" }

func (c *RenderDependencyCascade) Handle(ctx context.Context, db bun.IDB, event DomainEvent) error {
	updated, ok := event.(EntityUpdated)
	if !ok || updated.EntityType != contentdb.EntityRender {
		return nil
	}
	render, ok := updated.After.(*contentdb.Render)
	if !ok {
		return fmt.Errorf("render update carried %T", updated.After)
	}

	dependents, err := c.repo.ListNavigationItemsByRender(ctx, db, render.ID)
	if err != nil {
		return err
	}
	if len(dependents) > 0 {
		arena, err := loadNavigationArena(ctx, db, c.repo)
		if err != nil {
			return err
		}
		for _, item := range dependents {
			if err := validateNavigationItem(item, render, arena.ChildCount(item.ID)); err != nil {
				return &RenderRejected{RenderID: render.ID, Cause: err}
			}
		}
	}

	slots, err := c.repo.ListPageRendersByRender(ctx, db, render.ID)
	if err != nil {
		return err
	}
	for _, slot := range slots {
		if !SlotAccepts(slot.Slot, render.Type) {
			return &RenderRejected{
				RenderID: render.ID,
				Cause:    &RenderTypeIncompatible{RenderID: render.ID, RenderType: render.Type, Slot: slot.Slot},
			}
		}
	}
	return nil
}

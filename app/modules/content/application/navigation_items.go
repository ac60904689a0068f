package contentservice

import (
	"context"
	"errors"
	"fmt"

	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	"github.com/Black-And-White-Club/club-cms/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NavigationItemInput is the full desired state of a navigation item. A nil ID creates a new item.
type NavigationItemInput struct {
	ID             *uuid.UUID  `json:"id,omitempty"`
	Label          string      `json:"label"`
	Route          string      `json:"route"`
	ImageID        *uuid.UUID  `json:"image_id,omitempty"`
	NavBarRenderID *uuid.UUID  `json:"nav_bar_render_id,omitempty"`
	ChildIDs       []uuid.UUID `json:"children"`
}

type navItemResult = results.OperationResult[*contentdb.NavigationItem, error]

// SaveNavigationItem creates or replaces a navigation item and its child list.
func (s *ContentService) SaveNavigationItem(ctx context.Context, input NavigationItemInput) (*contentdb.NavigationItem, error) {
	saveTx := func(ctx context.Context, db bun.IDB) (navItemResult, error) {
		return s.saveNavigationItemLogic(ctx, db, input)
	}

	item, err := unwrapResult(withTelemetry(s, ctx, "SaveNavigationItem", input.Label, func(ctx context.Context) (navItemResult, error) {
		return runInTx(s, ctx, saveTx)
	}))
	if err == nil {
		s.notify(ctx, ChangeNotice{
			Action:    ActionUpdated,
			Subject:   "NavigationItem",
			SubjectID: item.ID,
			Details:   map[string]any{"children": len(input.ChildIDs)},
		})
	}
	return item, err
}

func (s *ContentService) saveNavigationItemLogic(ctx context.Context, db bun.IDB, input NavigationItemInput) (navItemResult, error) {
	arena, err := loadNavigationArena(ctx, db, s.repo)
	if err != nil {
		return navItemResult{}, err
	}

	item := &contentdb.NavigationItem{ID: uuid.New()}
	if input.ID != nil {
		existing, ok := arena.Item(*input.ID)
		if !ok {
			return failure[*contentdb.NavigationItem](contentdb.ErrNotFound)
		}
		item = existing
	}
	item.Label = input.Label
	item.Route = input.Route
	item.ImageID = input.ImageID
	item.NavBarRenderID = input.NavBarRenderID

	for _, child := range input.ChildIDs {
		if _, ok := arena.Item(child); !ok {
			return failure[*contentdb.NavigationItem](fmt.Errorf("child %s: %w", child, contentdb.ErrNotFound))
		}
	}
	if arena.WouldCycle(item.ID, input.ChildIDs) {
		return failure[*contentdb.NavigationItem](ErrNavigationCycle)
	}

	var render *contentdb.Render
	if input.NavBarRenderID != nil {
		render, err = s.repo.GetRender(ctx, db, *input.NavBarRenderID)
		if err != nil {
			if errors.Is(err, contentdb.ErrNotFound) {
				return failure[*contentdb.NavigationItem](&NavigationItemInvalid{
					ItemID: item.ID, Label: item.Label, FieldKey: "nav_bar_render_id", Reason: "render does not exist",
				})
			}
			return navItemResult{}, err
		}
	}

	if err := validateNavigationItem(item, render, len(input.ChildIDs)); err != nil {
		return failure[*contentdb.NavigationItem](err)
	}

	if err := s.repo.UpsertNavigationItem(ctx, db, item); err != nil {
		return navItemResult{}, err
	}
	if err := s.repo.ReplaceChildren(ctx, db, item.ID, input.ChildIDs); err != nil {
		return navItemResult{}, err
	}

	return results.SuccessResult[*contentdb.NavigationItem, error](item), nil
}

// DeleteNavigationItem removes an item; its children become roots.
func (s *ContentService) DeleteNavigationItem(ctx context.Context, id uuid.UUID) error {
	deleteTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		if err := s.repo.DeleteNavigationItem(ctx, db, id); err != nil {
			return failure[bool](err)
		}
		return results.SuccessResult[bool, error](true), nil
	}

	_, err := unwrapResult(withTelemetry(s, ctx, "DeleteNavigationItem", id.String(), func(ctx context.Context) (results.OperationResult[bool, error], error) {
		return runInTx(s, ctx, deleteTx)
	}))
	if err == nil {
		s.notify(ctx, ChangeNotice{Action: ActionDeleted, Subject: "NavigationItem", SubjectID: id})
	}
	return err
}

// GetNavigationTree returns the navigation forest.
func (s *ContentService) GetNavigationTree(ctx context.Context) ([]*NavigationNode, error) {
	treeTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]*NavigationNode, error], error) {
		arena, err := loadNavigationArena(ctx, db, s.repo)
		if err != nil {
			return results.OperationResult[[]*NavigationNode, error]{}, err
		}
		return results.SuccessResult[[]*NavigationNode, error](arena.Tree()), nil
	}

	return unwrapResult(withTelemetry(s, ctx, "GetNavigationTree", "", func(ctx context.Context) (results.OperationResult[[]*NavigationNode, error], error) {
		return runInTx(s, ctx, treeTx)
	}))
}

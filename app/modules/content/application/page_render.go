package contentservice

import (
	"context"
	"errors"
	"fmt"

	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	"github.com/Black-And-White-Club/club-cms/app/shared/results"
	"github.com/uptrace/bun"
)

var slotRenderTypes = map[contentdb.SlotPurpose][]contentdb.RenderType{
	contentdb.SlotHeader:  {contentdb.RenderNavBar},
	contentdb.SlotContent: {contentdb.RenderSection, contentdb.RenderBanner},
	contentdb.SlotBanner:  {contentdb.RenderBanner},
}

// SlotAccepts reports whether a Render of type rt may be attached to slot.
func SlotAccepts(slot contentdb.SlotPurpose, rt contentdb.RenderType) bool {
	for _, allowed := range slotRenderTypes[slot] {
		if allowed == rt {
			return true
		}
	}
	return false
}

// ValidSlot reports whether slot is a known slot purpose.
func ValidSlot(slot contentdb.SlotPurpose) bool {
	_, ok := slotRenderTypes[slot]
	return ok
}

// AssignPageRender attaches a Render to a page slot after checking type compatibility.
func (s *ContentService) AssignPageRender(ctx context.Context, pr *contentdb.PageRender) (*contentdb.PageRender, error) {
	assignTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*contentdb.PageRender, error], error) {
		if pr == nil || !ValidSlot(pr.Slot) {
			return failure[*contentdb.PageRender](fmt.Errorf("%w: unknown slot", ErrInvalidInput))
		}
		if _, err := s.repo.GetContainer(ctx, db, pr.PageType, pr.PageID); err != nil {
			if errors.Is(err, contentdb.ErrUnknownContainerType) {
				return failure[*contentdb.PageRender](fmt.Errorf("%w: %v", ErrInvalidInput, err))
			}
			return failure[*contentdb.PageRender](err)
		}
		render, err := s.repo.GetRender(ctx, db, pr.RenderID)
		if err != nil {
			return failure[*contentdb.PageRender](err)
		}
		if !SlotAccepts(pr.Slot, render.Type) {
			return failure[*contentdb.PageRender](&RenderTypeIncompatible{RenderID: render.ID, RenderType: render.Type, Slot: pr.Slot})
		}
		if err := s.repo.UpsertPageRender(ctx, db, pr); err != nil {
			return results.OperationResult[*contentdb.PageRender, error]{}, err
		}
		return results.SuccessResult[*contentdb.PageRender, error](pr), nil
	}

	identifier := ""
	if pr != nil {
		identifier = fmt.Sprintf("%s/%s/%s", pr.PageType, pr.PageID, pr.Slot)
	}
	out, err := unwrapResult(withTelemetry(s, ctx, "AssignPageRender", identifier, func(ctx context.Context) (results.OperationResult[*contentdb.PageRender, error], error) {
		return runInTx(s, ctx, assignTx)
	}))
	if err == nil {
		s.notify(ctx, ChangeNotice{
			Action:    ActionRenderAssigned,
			Subject:   string(out.PageType),
			SubjectID: out.PageID,
			Details:   map[string]any{"slot": string(out.Slot), "render_id": out.RenderID},
		})
	}
	return out, err
}

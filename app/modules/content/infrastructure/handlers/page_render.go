package contenthandlers

import (
	"fmt"
	"net/http"

	contentservice "github.com/Black-And-White-Club/club-cms/app/modules/content/application"
	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type pageRenderRequest struct {
	RenderID uuid.UUID `json:"render_id"`
}

// AssignPageRender attaches a Render to /{containerType}/{pageID}/renders/{slot}.
// The render type is checked against the slot before the service is called so the
// form gets a field error on render_id.
func (h *ContentHandlers) AssignPageRender(w http.ResponseWriter, r *http.Request) {
	pageType, err := containerTypeParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	pageID, err := uuidParam(r, "pageID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	slot := contentdb.SlotPurpose(chi.URLParam(r, "slot"))
	if !contentservice.ValidSlot(slot) {
		h.writeError(w, r, fmt.Errorf("%w: unknown slot %q", contentservice.ErrInvalidInput, slot))
		return
	}

	var req pageRenderRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	rec, err := h.service.GetEntity(r.Context(), contentdb.EntityRender, req.RenderID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render, ok := rec.(*contentdb.Render)
	if !ok {
		h.writeError(w, r, fmt.Errorf("unexpected record %T for render %s", rec, req.RenderID))
		return
	}
	if !contentservice.SlotAccepts(slot, render.Type) {
		h.writeError(w, r, &contentservice.RenderTypeIncompatible{RenderID: render.ID, RenderType: render.Type, Slot: slot})
		return
	}

	assigned, err := h.service.AssignPageRender(r.Context(), &contentdb.PageRender{
		PageType: pageType,
		PageID:   pageID,
		Slot:     slot,
		RenderID: req.RenderID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assigned)
}

package contenthandlers

import (
	"net/http"

	contentservice "github.com/Black-And-White-Club/club-cms/app/modules/content/application"
	"github.com/google/uuid"
)

type navigationItemRequest struct {
	Label          string      `json:"label"`
	Route          string      `json:"route"`
	ImageID        *uuid.UUID  `json:"image_id"`
	NavBarRenderID *uuid.UUID  `json:"nav_bar_render_id"`
	ChildIDs       []uuid.UUID `json:"child_ids"`
}

func (h *ContentHandlers) GetNavigationTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.service.GetNavigationTree(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if tree == nil {
		tree = []*contentservice.NavigationNode{}
	}
	writeJSON(w, http.StatusOK, tree)
}

// SaveNavigationItem creates an item on POST and replaces it on PUT /{id}.
func (h *ContentHandlers) SaveNavigationItem(w http.ResponseWriter, r *http.Request) {
	var req navigationItemRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	input := contentservice.NavigationItemInput{
		Label:          req.Label,
		Route:          req.Route,
		ImageID:        req.ImageID,
		NavBarRenderID: req.NavBarRenderID,
		ChildIDs:       req.ChildIDs,
	}

	status := http.StatusCreated
	if r.Method == http.MethodPut {
		id, err := uuidParam(r, "id")
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		input.ID = &id
		status = http.StatusOK
	}

	item, err := h.service.SaveNavigationItem(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, status, item)
}

func (h *ContentHandlers) DeleteNavigationItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.service.DeleteNavigationItem(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

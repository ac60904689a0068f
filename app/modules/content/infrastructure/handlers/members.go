package contenthandlers

import (
	"fmt"
	"net/http"

	contentservice "github.com/Black-And-White-Club/club-cms/app/modules/content/application"
	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	"github.com/google/uuid"
)

type membersRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type membersResponse struct {
	Association string      `json:"association"`
	ContainerID uuid.UUID   `json:"container_id"`
	IDs         []uuid.UUID `json:"ids"`
}

// membersTarget resolves the association and container named in the path.
func membersTarget(r *http.Request) (contentdb.Association, uuid.UUID, error) {
	assoc, err := associationParam(r)
	if err != nil {
		return contentdb.Association{}, uuid.Nil, err
	}
	containerID, err := uuidParam(r, "containerID")
	if err != nil {
		return contentdb.Association{}, uuid.Nil, err
	}
	return assoc, containerID, nil
}

func decodeMemberIDs(r *http.Request) ([]uuid.UUID, error) {
	var req membersRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	if len(req.IDs) == 0 {
		return nil, fmt.Errorf("%w: ids must not be empty", contentservice.ErrInvalidInput)
	}
	return req.IDs, nil
}

// ListMembers returns a container's members in display order.
func (h *ContentHandlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	assoc, containerID, err := membersTarget(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	members, err := h.service.ListMembers(r.Context(), assoc, containerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// AddMembers associates entities with a container. One order conflict rejects the whole batch.
func (h *ContentHandlers) AddMembers(w http.ResponseWriter, r *http.Request) {
	assoc, containerID, err := membersTarget(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ids, err := decodeMemberIDs(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	added, err := h.service.AddMembers(r.Context(), assoc, containerID, ids)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, membersResponse{Association: assoc.Name, ContainerID: containerID, IDs: added})
}

// RemoveMembers detaches entities from a container.
func (h *ContentHandlers) RemoveMembers(w http.ResponseWriter, r *http.Request) {
	assoc, containerID, err := membersTarget(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ids, err := decodeMemberIDs(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	removed, err := h.service.RemoveMembers(r.Context(), assoc, containerID, ids)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, membersResponse{Association: assoc.Name, ContainerID: containerID, IDs: removed})
}

package contenthandlers

import (
	"net/http"

	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	"github.com/google/uuid"
)

// CreateEntity stores a new ordered entity of the type named in the path.
func (h *ContentHandlers) CreateEntity(w http.ResponseWriter, r *http.Request) {
	t, err := entityTypeParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, _ := contentdb.NewRecord(t)
	if err := decodeBody(r, rec); err != nil {
		h.writeError(w, r, err)
		return
	}
	rec.SetID(uuid.Nil)

	created, err := h.service.CreateEntity(r.Context(), rec)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetEntity returns one ordered entity.
func (h *ContentHandlers) GetEntity(w http.ResponseWriter, r *http.Request) {
	t, err := entityTypeParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rec, err := h.service.GetEntity(r.Context(), t, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// UpdateEntity replaces an ordered entity. Order conflicts come back as field errors on "order".
func (h *ContentHandlers) UpdateEntity(w http.ResponseWriter, r *http.Request) {
	t, err := entityTypeParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, _ := contentdb.NewRecord(t)
	if err := decodeBody(r, rec); err != nil {
		h.writeError(w, r, err)
		return
	}
	rec.SetID(id)

	updated, err := h.service.UpdateEntity(r.Context(), rec)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteEntity removes an ordered entity.
func (h *ContentHandlers) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	t, err := entityTypeParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.service.DeleteEntity(r.Context(), t, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateContainer stores a new page container.
func (h *ContentHandlers) CreateContainer(w http.ResponseWriter, r *http.Request) {
	t, err := containerTypeParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, _ := contentdb.NewContainerRecord(t)
	if err := decodeBody(r, rec); err != nil {
		h.writeError(w, r, err)
		return
	}
	rec.SetID(uuid.Nil)

	created, err := h.service.CreateContainer(r.Context(), rec)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// DeleteContainer removes a page container, keeping its members.
func (h *ContentHandlers) DeleteContainer(w http.ResponseWriter, r *http.Request) {
	t, err := containerTypeParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.service.DeleteContainer(r.Context(), t, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

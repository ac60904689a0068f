package contenthandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	contentservice "github.com/Black-And-White-Club/club-cms/app/modules/content/application"
	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// errorResponse is the body of every failed request. Field errors are keyed by the
// request field they belong to.
type errorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

func fieldError(w http.ResponseWriter, status int, field, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Fields: map[string][]string{field: {msg}}})
}

// writeError translates service errors into responses.
func (h *ContentHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fe contentservice.FieldError
	var rejected *contentservice.RenderRejected
	switch {
	case errors.As(err, &rejected):
		field := "render"
		if errors.As(rejected.Cause, &fe) {
			field = fe.Field()
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  rejected.Error(),
			Fields: map[string][]string{field: {rejected.Cause.Error()}},
		})
	case errors.As(err, &fe):
		fieldError(w, http.StatusUnprocessableEntity, fe.Field(), fe.Error())
	case errors.Is(err, contentservice.ErrNavigationCycle):
		fieldError(w, http.StatusUnprocessableEntity, "children", err.Error())
	case errors.Is(err, contentservice.ErrConcurrentOrderConflict):
		fieldError(w, http.StatusConflict, "order", contentservice.ErrConcurrentOrderConflict.Error())
	case errors.Is(err, contentdb.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, contentservice.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		h.logger.ErrorContext(r.Context(), "Content request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", contentservice.ErrInvalidInput, name)
	}
	return id, nil
}

func entityTypeParam(r *http.Request) (contentdb.EntityType, error) {
	t := contentdb.EntityType(chi.URLParam(r, "entityType"))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown entity type %q", contentservice.ErrInvalidInput, t)
	}
	return t, nil
}

func containerTypeParam(r *http.Request) (contentdb.ContainerType, error) {
	t := contentdb.ContainerType(chi.URLParam(r, "containerType"))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown container type %q", contentservice.ErrInvalidInput, t)
	}
	return t, nil
}

func associationParam(r *http.Request) (contentdb.Association, error) {
	name := chi.URLParam(r, "association")
	assoc, ok := contentdb.LookupAssociation(name)
	if !ok {
		return contentdb.Association{}, fmt.Errorf("%w: unknown association %q", contentservice.ErrInvalidInput, name)
	}
	return assoc, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: failed to decode request body: %v", contentservice.ErrInvalidInput, err)
	}
	return nil
}

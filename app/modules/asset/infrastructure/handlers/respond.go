package assethandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	assetservice "github.com/Black-And-White-Club/club-cms/app/modules/asset/application"
	assetdb "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/repositories"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error    string      `json:"error"`
	Field    string      `json:"field,omitempty"`
	ImageIDs []uuid.UUID `json:"image_ids,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

func (h *AssetHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var notFound *assetservice.NotFoundError
	var moveErr *assetservice.FileMoveFailure
	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), ImageIDs: notFound.IDs})
	case errors.Is(err, assetdb.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, assetservice.ErrInvalidCategory):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Field: "category"})
	case errors.Is(err, assetservice.ErrInvalidExtension), errors.Is(err, assetservice.ErrEmptyUpload):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Field: fileField})
	case errors.Is(err, assetservice.ErrNoImages), errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &moveErr):
		h.logger.ErrorContext(r.Context(), "Image file could not be archived",
			slog.String("image_id", moveErr.ImageID.String()),
			slog.Any("error", moveErr.Err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:    "image file could not be archived, the image was kept",
			ImageIDs: []uuid.UUID{moveErr.ImageID},
		})
	default:
		h.logger.ErrorContext(r.Context(), "Asset request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func imageIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid image id", errBadRequest)
	}
	return id, nil
}

package contenthandlers

import (
	"fmt"
	"net/http"

	contentservice "github.com/Black-And-White-Club/club-cms/app/modules/content/application"
)

const workbookField = "workbook"

// ImportPricing reads an xlsx upload and appends its rows to a pricing page.
func (h *ContentHandlers) ImportPricing(w http.ResponseWriter, r *http.Request) {
	pageID, err := uuidParam(r, "pageID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", contentservice.ErrInvalidInput, err))
		return
	}
	file, _, err := r.FormFile(workbookField)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: missing %s file", contentservice.ErrInvalidInput, workbookField))
		return
	}
	defer file.Close()

	items, err := h.service.ImportPricing(r.Context(), pageID, file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, items)
}

package assethandlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

type bulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// DeleteImage archives one image.
func (h *AssetHandlers) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, err := imageIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.service.DeleteImage(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if res.RowDeletePending {
		status = http.StatusAccepted
	}
	writeJSON(w, status, res)
}

// BulkDelete archives a batch. Unknown ids reject the whole batch with 404;
// per-item failures after that answer 207 with the report.
func (h *AssetHandlers) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: failed to decode request body: %v", errBadRequest, err))
		return
	}
	report, err := h.service.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if report.Failed() > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, report)
}

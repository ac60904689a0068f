package assethandlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes builds the asset API. Uploads pass through uploadLimit when it is set.
// It is mounted under /api/assets.
func Routes(h Handlers, uploadLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Route("/images", func(r chi.Router) {
		r.Get("/", h.ListImages)
		if uploadLimit != nil {
			r.With(uploadLimit).Post("/", h.UploadImage)
		} else {
			r.Post("/", h.UploadImage)
		}
		r.Post("/bulk-delete", h.BulkDelete)
		r.Get("/archived", h.ListArchived)
		r.Get("/{id}", h.GetImage)
		r.Get("/{id}/file", h.DownloadImage)
		r.Delete("/{id}", h.DeleteImage)
	})

	return r
}

package contenthandlers

import (
	"github.com/go-chi/chi/v5"
)

// Routes builds the content API. It is mounted under /api/content.
func Routes(h Handlers) chi.Router {
	r := chi.NewRouter()

	r.Route("/entities/{entityType}", func(r chi.Router) {
		r.Post("/", h.CreateEntity)
		r.Get("/{id}", h.GetEntity)
		r.Put("/{id}", h.UpdateEntity)
		r.Delete("/{id}", h.DeleteEntity)
	})

	r.Route("/containers/{containerType}", func(r chi.Router) {
		r.Post("/", h.CreateContainer)
		r.Delete("/{id}", h.DeleteContainer)
		r.Put("/{pageID}/renders/{slot}", h.AssignPageRender)
	})

	r.Route("/associations/{association}/{containerID}/members", func(r chi.Router) {
		r.Get("/", h.ListMembers)
		r.Post("/", h.AddMembers)
		r.Delete("/", h.RemoveMembers)
	})

	r.Route("/navigation", func(r chi.Router) {
		r.Get("/", h.GetNavigationTree)
		r.Post("/", h.SaveNavigationItem)
		r.Put("/{id}", h.SaveNavigationItem)
		r.Delete("/{id}", h.DeleteNavigationItem)
	})

	r.Post("/pricing/{pageID}/import", h.ImportPricing)

	return r
}

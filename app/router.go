package app

import (
	"net/http"
	"time"

	"github.com/Black-And-White-Club/club-cms/app/shared/httpmiddleware"
	"github.com/Black-And-White-Club/club-cms/app/shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewHTTPRouter returns the root router that module APIs mount on.
func NewHTTPRouter(obs observability.Observability) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.CorrelationID)
	r.Use(requestLogger(obs))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func requestLogger(obs observability.Observability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			obs.Logger.InfoContext(r.Context(), "HTTP request",
				observability.CorrelationAttr(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}

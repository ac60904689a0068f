package assethandlers

import (
	"log/slog"
	"net/http"

	assetservice "github.com/Black-And-White-Club/club-cms/app/modules/asset/application"
)

// Handlers exposes the asset module's HTTP endpoints.
type Handlers interface {
	UploadImage(w http.ResponseWriter, r *http.Request)
	ListImages(w http.ResponseWriter, r *http.Request)
	GetImage(w http.ResponseWriter, r *http.Request)
	DownloadImage(w http.ResponseWriter, r *http.Request)
	DeleteImage(w http.ResponseWriter, r *http.Request)
	BulkDelete(w http.ResponseWriter, r *http.Request)
	ListArchived(w http.ResponseWriter, r *http.Request)
}

// AssetHandlers implements the Handlers interface.
type AssetHandlers struct {
	service        assetservice.Service
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewAssetHandlers creates a new AssetHandlers instance.
func NewAssetHandlers(service assetservice.Service, logger *slog.Logger, maxUploadBytes int64) Handlers {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &AssetHandlers{
		service:        service,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

package contenthandlers

import (
	"log/slog"
	"net/http"

	contentservice "github.com/Black-And-White-Club/club-cms/app/modules/content/application"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Handlers exposes the content module's HTTP endpoints and event consumers.
type Handlers interface {
	CreateEntity(w http.ResponseWriter, r *http.Request)
	GetEntity(w http.ResponseWriter, r *http.Request)
	UpdateEntity(w http.ResponseWriter, r *http.Request)
	DeleteEntity(w http.ResponseWriter, r *http.Request)

	CreateContainer(w http.ResponseWriter, r *http.Request)
	DeleteContainer(w http.ResponseWriter, r *http.Request)

	ListMembers(w http.ResponseWriter, r *http.Request)
	AddMembers(w http.ResponseWriter, r *http.Request)
	RemoveMembers(w http.ResponseWriter, r *http.Request)

	GetNavigationTree(w http.ResponseWriter, r *http.Request)
	SaveNavigationItem(w http.ResponseWriter, r *http.Request)
	DeleteNavigationItem(w http.ResponseWriter, r *http.Request)

	AssignPageRender(w http.ResponseWriter, r *http.Request)
	ImportPricing(w http.ResponseWriter, r *http.Request)

	HandleContentChanged(msg *message.Message) error
}

// ContentHandlers implements the Handlers interface.
type ContentHandlers struct {
	service        contentservice.Service
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewContentHandlers creates a new ContentHandlers instance.
func NewContentHandlers(service contentservice.Service, logger *slog.Logger, maxUploadBytes int64) Handlers {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &ContentHandlers{
		service:        service,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

package contentservice

import (
	"context"
	"io"

	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	"github.com/google/uuid"
)

// Service defines the interface for content operations.
type Service interface {
	CreateEntity(ctx context.Context, rec contentdb.OrderedRecord) (contentdb.OrderedRecord, error)
	UpdateEntity(ctx context.Context, rec contentdb.OrderedRecord) (contentdb.OrderedRecord, error)
	GetEntity(ctx context.Context, t contentdb.EntityType, id uuid.UUID) (contentdb.OrderedRecord, error)
	DeleteEntity(ctx context.Context, t contentdb.EntityType, id uuid.UUID) error

	CreateContainer(ctx context.Context, rec contentdb.ContainerRecord) (contentdb.ContainerRecord, error)
	DeleteContainer(ctx context.Context, t contentdb.ContainerType, id uuid.UUID) error

	AddMembers(ctx context.Context, assoc contentdb.Association, containerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
	RemoveMembers(ctx context.Context, assoc contentdb.Association, containerID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
	ListMembers(ctx context.Context, assoc contentdb.Association, containerID uuid.UUID) ([]contentdb.Member, error)

	SaveNavigationItem(ctx context.Context, input NavigationItemInput) (*contentdb.NavigationItem, error)
	DeleteNavigationItem(ctx context.Context, id uuid.UUID) error
	GetNavigationTree(ctx context.Context) ([]*NavigationNode, error)

	AssignPageRender(ctx context.Context, pr *contentdb.PageRender) (*contentdb.PageRender, error)

	ImportPricing(ctx context.Context, pricingPageID uuid.UUID, workbook io.Reader) ([]*contentdb.MenuItem, error)

	RecordChange(ctx context.Context, messageID string, change ChangeNotice) error
}

var _ Service = (*ContentService)(nil)

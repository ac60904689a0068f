package assetdb

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ErrNotFound = errors.New("image not found")

// Category decides the live directory of an image.
type Category string

const (
	CategorySponsor    Category = "sponsor"
	CategoryProfessor  Category = "professor"
	CategoryTeamMember Category = "team_member"
	CategoryClubValue  Category = "club_value"
	CategoryNavigation Category = "navigation"
	CategoryPage       Category = "page"
	CategoryGallery    Category = "gallery"
)

var Categories = []Category{
	CategorySponsor,
	CategoryProfessor,
	CategoryTeamMember,
	CategoryClubValue,
	CategoryNavigation,
	CategoryPage,
	CategoryGallery,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Image is an uploaded file. Its bytes live at LivePath until it is deleted.
// ArchivePath is set when a delete has started and the file may already be archived.
type Image struct {
	bun.BaseModel `bun:"table:images,alias:img"`

	ID                 uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Category           Category   `bun:"category,notnull" json:"category"`
	Extension          string     `bun:"extension,notnull" json:"extension"`
	ContentType        string     `bun:"content_type" json:"content_type,omitempty"`
	SizeBytes          int64      `bun:"size_bytes,notnull,default:0" json:"size_bytes"`
	OriginalName       string     `bun:"original_name" json:"original_name,omitempty"`
	ArchivePath        *string    `bun:"archive_path" json:"-"`
	ArchiveRequestedAt *time.Time `bun:"archive_requested_at" json:"-"`
	CreatedAt          time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`

	Tags []*Tag `bun:"m2m:image_tags,join:Image=Tag" json:"tags,omitempty"`
}

// Tag labels images. Names are unique.
type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:tg"`

	ID   uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name string    `bun:"name,notnull,unique" json:"name"`
}

// ImageTag is the join model for Image.Tags.
type ImageTag struct {
	bun.BaseModel `bun:"table:image_tags,alias:it"`

	ImageID uuid.UUID `bun:"image_id,pk,type:uuid"`
	Image   *Image    `bun:"rel:belongs-to,join:image_id=id"`
	TagID   uuid.UUID `bun:"tag_id,pk,type:uuid"`
	Tag     *Tag      `bun:"rel:belongs-to,join:tag_id=id"`
}

// ArchivedImage records a completed delete. The row survives the image row.
type ArchivedImage struct {
	bun.BaseModel `bun:"table:image_archive_log,alias:ia"`

	ImageID     uuid.UUID `bun:"image_id,pk,type:uuid" json:"image_id"`
	Category    Category  `bun:"category,notnull" json:"category"`
	Extension   string    `bun:"extension,notnull" json:"extension"`
	ArchivePath string    `bun:"archive_path,notnull" json:"archive_path"`
	ArchivedAt  time.Time `bun:"archived_at,notnull" json:"archived_at"`
}

// RegisterModels registers the m2m join model. It must run before Image.Tags is queried.
func RegisterModels(db *bun.DB) {
	db.RegisterModel((*ImageTag)(nil))
}

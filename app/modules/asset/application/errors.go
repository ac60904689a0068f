package assetservice

import (
	"errors"
	"fmt"
	"strings"

	assetdb "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/repositories"
	"github.com/google/uuid"
)

var (
	ErrInvalidCategory  = errors.New("invalid image category")
	ErrInvalidExtension = errors.New("unsupported image type")
	ErrEmptyUpload      = errors.New("empty upload")
	ErrNoImages         = errors.New("no image ids given")
	// ErrNotArchived means a row delete was requested while the live file is still in place.
	ErrNotArchived = errors.New("image file has not been archived")
)

// NotFoundError names the image ids that do not exist. It matches assetdb.ErrNotFound.
type NotFoundError struct {
	IDs []uuid.UUID
}

func (e *NotFoundError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("image not found: %s", strings.Join(ids, ", "))
}

func (e *NotFoundError) Is(target error) bool { return target == assetdb.ErrNotFound }

// FileMoveFailure reports an image whose live file could not be archived. The row is kept.
type FileMoveFailure struct {
	ImageID uuid.UUID
	From    string
	To      string
	Err     error
}

func (e *FileMoveFailure) Error() string {
	return fmt.Sprintf("failed to archive image %s from %s to %s: %v", e.ImageID, e.From, e.To, e.Err)
}

func (e *FileMoveFailure) Unwrap() error { return e.Err }

func isDomainFailure(err error) bool {
	var move *FileMoveFailure
	return errors.Is(err, assetdb.ErrNotFound) ||
		errors.Is(err, ErrInvalidCategory) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrEmptyUpload) ||
		errors.Is(err, ErrNoImages) ||
		errors.As(err, &move)
}

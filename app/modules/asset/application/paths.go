package assetservice

import (
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	assetdb "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/repositories"
	"github.com/google/uuid"
)

// allowedExtensions maps accepted image extensions to their content type.
var allowedExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"avif": "image/avif",
}

// NormalizeExtension lowercases ext and strips a leading dot. It reports whether the
// result is an accepted image extension.
func NormalizeExtension(ext string) (string, bool) {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	_, ok := allowedExtensions[ext]
	return ext, ok
}

// ExtensionFor picks the extension from a filename, falling back to the content type.
func ExtensionFor(filename, contentType string) (string, bool) {
	if ext, ok := NormalizeExtension(path.Ext(filename)); ok {
		return ext, true
	}
	if contentType == "" {
		return "", false
	}
	exts, _ := mime.ExtensionsByType(contentType)
	for _, e := range exts {
		if ext, ok := NormalizeExtension(e); ok {
			return ext, true
		}
	}
	return "", false
}

func ContentTypeFor(ext string) string {
	return allowedExtensions[ext]
}

// LivePath is <category>/<id>.<ext>.
func LivePath(category assetdb.Category, id uuid.UUID, ext string) string {
	return fmt.Sprintf("%s/%s.%s", category, id, ext)
}

// ArchivePath is <root>/<year>/<month>/<day>/<id>.<ext> for the day t falls on.
// Month and day are not zero padded.
func ArchivePath(root string, id uuid.UUID, ext string, t time.Time) string {
	return fmt.Sprintf("%s/%d/%d/%d/%s.%s", root, t.Year(), int(t.Month()), t.Day(), id, ext)
}

func livePathOf(img *assetdb.Image) string {
	return LivePath(img.Category, img.ID, img.Extension)
}

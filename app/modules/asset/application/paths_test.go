package assetservice

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestArchivePath(t *testing.T) {
	id := uuid.MustParse("0d9c1b9e-5a55-4a7e-9d5c-2d3f41f1a001")

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"single digit month and day", time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), "archive/2024/3/5/" + id.String() + ".png"},
		{"two digit month and day", time.Date(2024, time.November, 18, 23, 59, 0, 0, time.UTC), "archive/2024/11/18/" + id.String() + ".png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ArchivePath("archive", id, "png", tt.at))
		})
	}
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		filename    string
		contentType string
		want        string
		ok          bool
	}{
		{"photo.JPG", "", "jpg", true},
		{"photo.jpeg", "image/png", "jpeg", true},
		{"scan", "image/png", "png", true},
		{"vector.svg", "", "svg", true},
		{"notes.txt", "text/plain", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.filename+"|"+tt.contentType, func(t *testing.T) {
			got, ok := ExtensionFor(tt.filename, tt.contentType)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestLivePath(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "sponsor/"+id.String()+".webp", LivePath("sponsor", id, "webp"))
}

package assethandlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	assetservice "github.com/Black-And-White-Club/club-cms/app/modules/asset/application"
	assetdb "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/repositories"
)

const (
	fileField     = "file"
	categoryField = "category"
	tagsField     = "tags"
)

// UploadImage stores a multipart upload. Tags may be repeated or comma separated.
func (h *AssetHandlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	file, header, err := r.FormFile(fileField)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: missing %s", errBadRequest, fileField))
		return
	}
	defer file.Close()

	img, err := h.service.CreateImage(r.Context(), assetservice.CreateImageInput{
		Category:    assetdb.Category(r.FormValue(categoryField)),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Tags:        splitTags(r.MultipartForm.Value[tagsField]),
		Body:        file,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

func splitTags(values []string) []string {
	var tags []string
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}

// ListImages returns live images, filtered by ?category= and ?tag=.
func (h *AssetHandlers) ListImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.service.ListImages(r.Context(), assetdb.ImageFilter{
		Category: assetdb.Category(r.URL.Query().Get("category")),
		Tag:      r.URL.Query().Get("tag"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if images == nil {
		images = []*assetdb.Image{}
	}
	writeJSON(w, http.StatusOK, images)
}

func (h *AssetHandlers) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := imageIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	img, err := h.service.GetImage(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}

// DownloadImage streams the live file.
func (h *AssetHandlers) DownloadImage(w http.ResponseWriter, r *http.Request) {
	id, err := imageIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	img, rc, err := h.service.OpenImage(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", img.ContentType)
	if img.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(img.SizeBytes, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.WarnContext(r.Context(), "Image download interrupted",
			slog.String("image_id", id.String()),
			slog.Any("error", err),
		)
	}
}

// ListArchived returns archive entries since ?since=, given as RFC 3339 or YYYY-MM-DD.
func (h *AssetHandlers) ListArchived(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := parseSince(raw)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		since = t
	}
	entries, err := h.service.ListArchived(r.Context(), since)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []*assetdb.ArchivedImage{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func parseSince(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: since must be RFC 3339 or YYYY-MM-DD", errBadRequest)
}

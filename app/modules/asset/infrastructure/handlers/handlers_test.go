package assethandlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	assetservice "github.com/Black-And-White-Club/club-cms/app/modules/asset/application"
	assetdb "github.com/Black-And-White-Club/club-cms/app/modules/asset/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, svc *FakeService, req *http.Request, uploadLimit func(http.Handler) http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rr := httptest.NewRecorder()
	Routes(NewAssetHandlers(svc, logger, 0), uploadLimit).ServeHTTP(rr, req)
	return rr
}

func uploadRequest(t *testing.T, category, filename string, tags ...string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField(categoryField, category))
	for _, tag := range tags {
		require.NoError(t, mw.WriteField(tagsField, tag))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		fw.Write([]byte("\x89PNG"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/images/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAssetHandlers_UploadImage(t *testing.T) {
	tests := []struct {
		name         string
		req          func(t *testing.T) *http.Request
		setupService func(*FakeService)
		wantStatus   int
		verify       func(t *testing.T, rr *httptest.ResponseRecorder, svc *FakeService)
	}{
		{
			name: "stores upload with split tags",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "sponsor", "logo.png", "gold, home", "spring")
			},
			wantStatus: http.StatusCreated,
			setupService: func(s *FakeService) {
				s.CreateImageFunc = func(ctx context.Context, in assetservice.CreateImageInput) (*assetdb.Image, error) {
					if in.Category != assetdb.CategorySponsor || in.Filename != "logo.png" {
						return nil, fmt.Errorf("unexpected input %+v", in)
					}
					if strings.Join(in.Tags, "|") != "gold|home|spring" {
						return nil, fmt.Errorf("unexpected tags %v", in.Tags)
					}
					body, _ := io.ReadAll(in.Body)
					return &assetdb.Image{ID: uuid.New(), Category: in.Category, SizeBytes: int64(len(body))}, nil
				}
			},
			verify: func(t *testing.T, rr *httptest.ResponseRecorder, svc *FakeService) {
				var got assetdb.Image
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
				assert.Equal(t, int64(4), got.SizeBytes)
			},
		},
		{
			name:       "missing file",
			req:        func(t *testing.T) *http.Request { return uploadRequest(t, "sponsor", "") },
			wantStatus: http.StatusBadRequest,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder, svc *FakeService) {
				assert.Empty(t, svc.Trace())
			},
		},
		{
			name:       "invalid category",
			req:        func(t *testing.T) *http.Request { return uploadRequest(t, "poster", "a.png") },
			wantStatus: http.StatusUnprocessableEntity,
			setupService: func(s *FakeService) {
				s.CreateImageFunc = func(ctx context.Context, in assetservice.CreateImageInput) (*assetdb.Image, error) {
					return nil, fmt.Errorf("CreateImage: %w", assetservice.ErrInvalidCategory)
				}
			},
			verify: func(t *testing.T, rr *httptest.ResponseRecorder, svc *FakeService) {
				var body errorResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
				assert.Equal(t, "category", body.Field)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &FakeService{}
			if tt.setupService != nil {
				tt.setupService(svc)
			}
			rr := serve(t, svc, tt.req(t), nil)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.verify != nil {
				tt.verify(t, rr, svc)
			}
		})
	}
}

func TestAssetHandlers_UploadRateLimited(t *testing.T) {
	svc := &FakeService{}
	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}

	rr := serve(t, svc, uploadRequest(t, "sponsor", "a.png"), deny)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Empty(t, svc.Trace())

	rr = serve(t, svc, httptest.NewRequest(http.MethodGet, "/images/", nil), deny)
	assert.Equal(t, http.StatusOK, rr.Code, "only uploads are limited")
}

func TestAssetHandlers_Delete(t *testing.T) {
	id := uuid.New()
	other := uuid.New()

	tests := []struct {
		name         string
		req          *http.Request
		setupService func(*FakeService)
		wantStatus   int
		verify       func(t *testing.T, rr *httptest.ResponseRecorder)
	}{
		{
			name:       "single delete",
			req:        httptest.NewRequest(http.MethodDelete, "/images/"+id.String(), nil),
			wantStatus: http.StatusOK,
		},
		{
			name: "row delete queued",
			req:  httptest.NewRequest(http.MethodDelete, "/images/"+id.String(), nil),
			setupService: func(s *FakeService) {
				s.DeleteImageFunc = func(ctx context.Context, id uuid.UUID) (*assetservice.DeleteResult, error) {
					return &assetservice.DeleteResult{ImageID: id, RowDeletePending: true}, nil
				}
			},
			wantStatus: http.StatusAccepted,
		},
		{
			name: "unknown image",
			req:  httptest.NewRequest(http.MethodDelete, "/images/"+id.String(), nil),
			setupService: func(s *FakeService) {
				s.DeleteImageFunc = func(ctx context.Context, id uuid.UUID) (*assetservice.DeleteResult, error) {
					return nil, fmt.Errorf("DeleteImage: %w", assetdb.ErrNotFound)
				}
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "move failure keeps image",
			req:  httptest.NewRequest(http.MethodDelete, "/images/"+id.String(), nil),
			setupService: func(s *FakeService) {
				s.DeleteImageFunc = func(ctx context.Context, id uuid.UUID) (*assetservice.DeleteResult, error) {
					return nil, &assetservice.FileMoveFailure{ImageID: id, Err: errors.New("EACCES")}
				}
			},
			wantStatus: http.StatusInternalServerError,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				var body errorResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
				assert.Equal(t, []uuid.UUID{id}, body.ImageIDs)
				assert.NotContains(t, body.Error, "EACCES")
			},
		},
		{
			name:       "bad id",
			req:        httptest.NewRequest(http.MethodDelete, "/images/nope", nil),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bulk delete all archived",
			req:        jsonRequest(http.MethodPost, "/images/bulk-delete", map[string]any{"ids": []uuid.UUID{id, other}}),
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				var report assetservice.BulkDeleteReport
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&report))
				assert.Len(t, report.Items, 2)
			},
		},
		{
			name: "bulk delete partial failure",
			req:  jsonRequest(http.MethodPost, "/images/bulk-delete", map[string]any{"ids": []uuid.UUID{id, other}}),
			setupService: func(s *FakeService) {
				s.BulkDeleteFunc = func(ctx context.Context, ids []uuid.UUID) (*assetservice.BulkDeleteReport, error) {
					return &assetservice.BulkDeleteReport{Items: []assetservice.BulkItemResult{
						{ImageID: ids[0], Status: assetservice.BulkItemArchived},
						{ImageID: ids[1], Status: assetservice.BulkItemFailed, Error: "busy"},
					}}, nil
				}
			},
			wantStatus: http.StatusMultiStatus,
		},
		{
			name: "bulk delete rejected for unknown ids",
			req:  jsonRequest(http.MethodPost, "/images/bulk-delete", map[string]any{"ids": []uuid.UUID{id, other}}),
			setupService: func(s *FakeService) {
				s.BulkDeleteFunc = func(ctx context.Context, ids []uuid.UUID) (*assetservice.BulkDeleteReport, error) {
					return nil, fmt.Errorf("BulkDelete: %w", &assetservice.NotFoundError{IDs: []uuid.UUID{other}})
				}
			},
			wantStatus: http.StatusNotFound,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				var body errorResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
				assert.Equal(t, []uuid.UUID{other}, body.ImageIDs)
			},
		},
		{
			name:       "bulk delete malformed body",
			req:        httptest.NewRequest(http.MethodPost, "/images/bulk-delete", strings.NewReader("{")),
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &FakeService{}
			if tt.setupService != nil {
				tt.setupService(svc)
			}
			rr := serve(t, svc, tt.req, nil)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.verify != nil {
				tt.verify(t, rr)
			}
		})
	}
}

func TestAssetHandlers_Reads(t *testing.T) {
	id := uuid.New()

	t.Run("download streams file", func(t *testing.T) {
		rr := serve(t, &FakeService{}, httptest.NewRequest(http.MethodGet, "/images/"+id.String()+"/file", nil), nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
		assert.Equal(t, "png", rr.Body.String())
	})

	t.Run("list passes filters", func(t *testing.T) {
		svc := &FakeService{}
		var got assetdb.ImageFilter
		svc.ListImagesFunc = func(ctx context.Context, f assetdb.ImageFilter) ([]*assetdb.Image, error) {
			got = f
			return nil, nil
		}
		rr := serve(t, svc, httptest.NewRequest(http.MethodGet, "/images/?category=gallery&tag=spring", nil), nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, "[]", rr.Body.String())
		assert.Equal(t, assetdb.ImageFilter{Category: assetdb.CategoryGallery, Tag: "spring"}, got)
	})

	t.Run("archived since date", func(t *testing.T) {
		svc := &FakeService{}
		var got time.Time
		svc.ListArchivedFunc = func(ctx context.Context, since time.Time) ([]*assetdb.ArchivedImage, error) {
			got = since
			return []*assetdb.ArchivedImage{{ImageID: id}}, nil
		}
		rr := serve(t, svc, httptest.NewRequest(http.MethodGet, "/images/archived?since=2024-11-08", nil), nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, time.Date(2024, 11, 8, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("archived since garbage", func(t *testing.T) {
		rr := serve(t, &FakeService{}, httptest.NewRequest(http.MethodGet, "/images/archived?since=yesterday", nil), nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("metadata not found", func(t *testing.T) {
		svc := &FakeService{GetImageFunc: func(ctx context.Context, id uuid.UUID) (*assetdb.Image, error) {
			return nil, assetdb.ErrNotFound
		}}
		rr := serve(t, svc, httptest.NewRequest(http.MethodGet, "/images/"+id.String(), nil), nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func jsonRequest(method, url string, body any) *http.Request {
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

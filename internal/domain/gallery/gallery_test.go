package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawgrasskings/booking-api/internal/pkg/imaging"
	"github.com/sawgrasskings/booking-api/internal/pkg/storage"
)

type memRepo struct {
	photos []Photo
	saves  int
}

func (m *memRepo) LocalPhotos() []Photo {
	return append([]Photo(nil), m.photos...)
}

func (m *memRepo) SaveGallery(_ context.Context, photos []Photo) error {
	m.photos = append([]Photo(nil), photos...)
	m.saves++
	return nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	img.Set(1, 1, color.NRGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestService(t *testing.T, repo *memRepo, manifest string) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(filepath.Join(dir, "uploads"), "/uploads")
	require.NoError(t, err)

	var recent *RecentWork
	if manifest != "" {
		path := filepath.Join(dir, "recent-work.json")
		require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))
		recent = NewRecentWork(path)
	}
	svc := NewService(repo, recent, store, imaging.NewProcessor(imaging.DefaultConfig()))
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc, filepath.Join(dir, "uploads")
}

func TestMigrateLegacyStringsOnce(t *testing.T) {
	ids := 0
	newID := func() string { ids++; return fmt.Sprintf("p%d", ids) }

	photos, changed := Migrate(nil, []json.RawMessage{
		json.RawMessage(`[]`),
		json.RawMessage(`["a.jpg","","c.jpg"]`),
	}, 5, newID)
	require.True(t, changed)
	require.Len(t, photos, 2)
	assert.Equal(t, Photo{ID: "p1", Caption: "Gallery 1", ImageData: "a.jpg", CreatedAt: 5}, photos[0])
	assert.Equal(t, "Gallery 3", photos[1].Caption)

	raw, err := json.Marshal(photos)
	require.NoError(t, err)
	again, changed := Migrate(raw, nil, 9, newID)
	assert.False(t, changed)
	assert.Equal(t, photos, again)
}

func TestRepoPhotos(t *testing.T) {
	photos := RepoPhotos([]RepoImage{
		{Src: "assets/recent-work/1.jpg", Alt: "Fade"},
		{Src: ""},
		{Src: "assets/recent-work/3.jpg"},
	}, 7)
	require.Len(t, photos, 2)
	assert.Equal(t, "repo-0-assets/recent-work/1.jpg", photos[0].ID)
	assert.Equal(t, "Fade", photos[0].Caption)
	assert.Equal(t, "repo-2-assets/recent-work/3.jpg", photos[1].ID)
	assert.Equal(t, "Recent work 3", photos[1].Caption)
	assert.Equal(t, SourceRepo, photos[1].Source)
}

func TestListMergesLocalFirstAndCaps(t *testing.T) {
	repo := &memRepo{}
	for i := 0; i < 5; i++ {
		repo.photos = append(repo.photos, Photo{ID: fmt.Sprintf("l%d", i), ImageData: "x"})
	}
	var manifest []RepoImage
	for i := 0; i < 6; i++ {
		manifest = append(manifest, RepoImage{Src: fmt.Sprintf("r%d.jpg", i)})
	}
	raw, _ := json.Marshal(manifest)
	svc, _ := newTestService(t, repo, string(raw))

	list := svc.List()
	require.Len(t, list, MaxPhotos)
	assert.Equal(t, "l0", list[0].ID)
	assert.Equal(t, SourceLocal, list[4].Source)
	assert.Equal(t, "repo-0-r0.jpg", list[5].ID)
}

func TestListToleratesMissingManifest(t *testing.T) {
	svc, _ := newTestService(t, &memRepo{photos: []Photo{{ID: "a", ImageData: "x"}}}, "")
	svc.recent = NewRecentWork(filepath.Join(t.TempDir(), "absent.json"))
	assert.Len(t, svc.List(), 1)
}

func TestUploadStoresAndPrepends(t *testing.T) {
	repo := &memRepo{photos: []Photo{{ID: "old", ImageData: "x"}}}
	svc, dir := newTestService(t, repo, "")

	photo, err := svc.Upload(context.Background(), "  ", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	assert.Equal(t, "Gallery upload", photo.Caption)
	assert.Equal(t, "/uploads/gallery/"+photo.ID+".png", photo.ImageData)
	assert.Equal(t, "/uploads/gallery/"+photo.ID+"_thumb.png", photo.ThumbURL)
	assert.Equal(t, int64(1700000000000), photo.CreatedAt)

	require.Len(t, repo.photos, 2)
	assert.Equal(t, photo.ID, repo.photos[0].ID)
	assert.FileExists(t, filepath.Join(dir, "gallery", photo.ID+".png"))
	assert.FileExists(t, filepath.Join(dir, "gallery", photo.ID+"_thumb.png"))
}

func TestUploadEvictsBeyondCap(t *testing.T) {
	repo := &memRepo{}
	svc, dir := newTestService(t, repo, "")

	var first Photo
	for i := 0; i <= MaxPhotos; i++ {
		p, err := svc.Upload(context.Background(), "cut", bytes.NewReader(pngBytes(t)))
		require.NoError(t, err)
		if i == 0 {
			first = p
		}
	}
	require.Len(t, repo.photos, MaxPhotos)
	assert.NoFileExists(t, filepath.Join(dir, "gallery", first.ID+".png"))
	assert.NoFileExists(t, filepath.Join(dir, "gallery", first.ID+"_thumb.png"))
}

func TestUploadRejectsNonImages(t *testing.T) {
	repo := &memRepo{}
	svc, _ := newTestService(t, repo, "")

	_, err := svc.Upload(context.Background(), "x", strings.NewReader("not an image"))
	assert.ErrorIs(t, err, storage.ErrInvalidMimeType)
	assert.Zero(t, repo.saves)
}

func TestDelete(t *testing.T) {
	repo := &memRepo{}
	svc, dir := newTestService(t, repo, "")
	p, err := svc.Upload(context.Background(), "x", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(context.Background(), "repo-0-a.jpg"), ErrManagedInRepo)
	assert.ErrorIs(t, svc.Delete(context.Background(), "missing"), ErrPhotoNotFound)

	require.NoError(t, svc.Delete(context.Background(), p.ID))
	assert.Empty(t, repo.photos)
	assert.NoFileExists(t, filepath.Join(dir, "gallery", p.ID+".png"))
}

func TestHandlerUploadAndList(t *testing.T) {
	repo := &memRepo{}
	svc, _ := newTestService(t, repo, `[{"src":"r.jpg","alt":"Taper"}]`)
	h := NewHandler(svc)
	pass := func(next http.Handler) http.Handler { return next }

	r := chi.NewRouter()
	r.Mount("/gallery", h.PublicRoutes())
	r.Mount("/admin/gallery", h.AdminRoutes(pass, pass))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("caption", "Skin fade"))
	fw, err := mw.CreateFormFile("file", "cut.png")
	require.NoError(t, err)
	_, err = fw.Write(pngBytes(t))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/gallery", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gallery", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []PhotoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "Skin fade", resp.Data[0].Caption)
	assert.Equal(t, "Taper", resp.Data[1].Caption)
	assert.True(t, resp.Data[1].Managed)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/gallery/"+resp.Data[1].ID, nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

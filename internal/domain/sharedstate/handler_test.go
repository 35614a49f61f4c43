package sharedstate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notifyRecorder struct {
	keys []string
}

func (n *notifyRecorder) StateUpdated(key string, _ json.RawMessage) {
	n.keys = append(n.keys, key)
}

func newTestRouter(t *testing.T) (http.Handler, string, *notifyRecorder) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	repo := NewFileRepository(path)
	require.NoError(t, repo.Ensure(t.Context()))
	n := &notifyRecorder{}
	r := chi.NewRouter()
	r.Mount("/api/state", NewHandler(NewService(repo, n)).Routes())
	return r, path, n
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGetStateDefaults(t *testing.T) {
	h, _, _ := newTestRouter(t)

	rr := do(h, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"bookings":{},"overrides":{},"queue":[],"gallery":[]}`, rr.Body.String())
}

func TestSetState(t *testing.T) {
	h, path, n := newTestRouter(t)

	rr := do(h, http.MethodPost, "/api/state/queue", `{"data":[{"id":"q1"}]}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
	assert.Equal(t, []string{"queue"}, n.keys)

	rr = do(h, http.MethodGet, "/api/state", "")
	assert.JSONEq(t, `{"bookings":{},"overrides":{},"queue":[{"id":"q1"}],"gallery":[]}`, rr.Body.String())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"queue\"")

	rr = do(h, http.MethodPost, "/api/state/queue", `{"data":null}`)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = do(h, http.MethodPost, "/api/state/bookings", ``)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(h, http.MethodGet, "/api/state", "")
	assert.JSONEq(t, `{"bookings":{},"overrides":{},"queue":[],"gallery":[]}`, rr.Body.String())
}

func TestSetStateErrors(t *testing.T) {
	h, _, n := newTestRouter(t)

	rr := do(h, http.MethodPost, "/api/state/barbers", `{"data":[]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid state key"}`, rr.Body.String())

	rr = do(h, http.MethodPost, "/api/state/queue", `{"data":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid JSON"}`, rr.Body.String())

	assert.Empty(t, n.keys)
}

func TestOptions(t *testing.T) {
	h, _, _ := newTestRouter(t)

	for _, target := range []string{"/api/state", "/api/state/queue"} {
		rr := do(h, http.MethodOptions, target, "")
		assert.Equal(t, http.StatusOK, rr.Code, target)
		assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
	}
}

func TestFileRepositoryToleratesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o644))

	svc := NewService(NewFileRepository(path), nil)
	assert.Equal(t, Defaults(), svc.Get(t.Context()))

	_, err := svc.Set(t.Context(), "overrides", []byte(`{"data":{"barber-1":{}}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"barber-1":{}}`, string(svc.Get(t.Context())["overrides"]))
}

func TestStatic(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>hi</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.js"), []byte("1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "logo.webp"), []byte("x"), 0o644))
	h := Static(root)

	rr := do(h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html", rr.Header().Get("Content-Type"))
	assert.Equal(t, "<h1>hi</h1>", rr.Body.String())

	rr = do(h, http.MethodGet, "/app.js", "")
	assert.Equal(t, "application/javascript", rr.Header().Get("Content-Type"))

	rr = do(h, http.MethodGet, "/logo.webp", "")
	assert.Equal(t, "application/octet-stream", rr.Header().Get("Content-Type"))

	rr = do(h, http.MethodGet, "/missing.css", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Not found", rr.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.URL.Path = "/../secret.txt"
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Forbidden", rr.Body.String())
}

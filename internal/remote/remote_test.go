package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMirror struct {
	mu      sync.Mutex
	state   map[string]json.RawMessage
	pullErr error
	pushErr error
	pushed  []string
	feed    chan [2]string
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{state: map[string]json.RawMessage{"queue": json.RawMessage(`{}`)}, feed: make(chan [2]string, 4)}
}

func (f *fakeMirror) Name() string { return "fake" }

func (f *fakeMirror) Pull(context.Context) (map[string]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.pullErr
}

func (f *fakeMirror) Push(ctx context.Context, name string, _ json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, name)
	return f.pushErr
}

func (f *fakeMirror) Subscribe(ctx context.Context, apply func(string, json.RawMessage)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-f.feed:
			apply(msg[0], json.RawMessage(msg[1]))
		}
	}
}

func (f *fakeMirror) Close() error { return nil }

type recordingStore struct {
	mu      sync.Mutex
	applied map[string]string
}

func (r *recordingStore) ApplyRemote(_ context.Context, name string, data json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.applied == nil {
		r.applied = make(map[string]string)
	}
	r.applied[name] = string(data)
	return nil
}

func (r *recordingStore) get(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applied[name]
}

func TestTrackerTransitions(t *testing.T) {
	tr := NewTracker("not started")
	var seen []Status
	tr.OnChange(func(s State) { seen = append(seen, s.Status) })

	assert.Equal(t, "Offline/Local Mode", tr.State().Label())
	assert.False(t, tr.MarkConnected(), "cannot connect without reconnecting first")

	require.True(t, tr.BeginReconnect())
	assert.False(t, tr.BeginReconnect())
	require.True(t, tr.MarkConnected())
	assert.True(t, tr.Connected())

	require.True(t, tr.Degrade(errors.New("boom")))
	assert.False(t, tr.Degrade(errors.New("again")))
	assert.Equal(t, "boom", tr.State().Reason)

	assert.Equal(t, []Status{StatusReconnecting, StatusConnected, StatusLocalOnly}, seen)
}

func TestSyncerPullsAndFollowsChanges(t *testing.T) {
	m := newFakeMirror()
	store := &recordingStore{}
	s := NewSyncer(m, store, NewTracker("starting"))
	defer s.Close()

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.Tracker().Connected())
	assert.Equal(t, "{}", store.get("queue"))

	m.feed <- [2]string{"bookings", `{"barber-1":[]}`}
	assert.Eventually(t, func() bool { return store.get("bookings") != "" }, time.Second, 10*time.Millisecond)

	s.Push(context.Background(), "queue", json.RawMessage(`{}`))
	assert.Equal(t, []string{"queue"}, m.pushed)
}

func TestSyncerDegradesOnPushFailureUntilReconnect(t *testing.T) {
	m := newFakeMirror()
	s := NewSyncer(m, &recordingStore{}, NewTracker("starting"))
	defer s.Close()
	require.NoError(t, s.Start(context.Background()))

	m.pushErr = errors.New("offline")
	s.Push(context.Background(), "queue", nil)
	assert.Equal(t, StatusLocalOnly, s.Tracker().State().Status)

	m.pushErr = nil
	s.Push(context.Background(), "queue", nil)
	assert.Len(t, m.pushed, 1, "no pushes while local-only")

	require.NoError(t, s.Reconnect(context.Background()))
	assert.True(t, s.Tracker().Connected())
	s.Push(context.Background(), "queue", nil)
	assert.Len(t, m.pushed, 2)
}

func TestSyncerPushIgnoresCallerCancellation(t *testing.T) {
	m := newFakeMirror()
	s := NewSyncer(m, &recordingStore{}, NewTracker("starting"))
	defer s.Close()
	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Push(ctx, "bookings", json.RawMessage(`{}`))

	assert.True(t, s.Tracker().Connected())
	assert.Equal(t, []string{"bookings"}, m.pushed)
}

func TestSyncerStartFailureStaysLocal(t *testing.T) {
	m := newFakeMirror()
	m.pullErr = errors.New("unreachable")
	s := NewSyncer(m, &recordingStore{}, NewTracker("starting"))

	assert.Error(t, s.Start(context.Background()))
	assert.Equal(t, StatusLocalOnly, s.Tracker().State().Status)
	assert.Contains(t, s.Tracker().State().Reason, "unreachable")
}

func TestHTTPMirror(t *testing.T) {
	var (
		mu     sync.Mutex
		posted = map[string]string{}
	)
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bookings":{},"overrides":{},"queue":[],"gallery":[]}`))
	})
	mux.HandleFunc("/api/state/", func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/api/state/")
		if key == "nope" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"Invalid state key"}`))
			return
		}
		var body struct {
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mu.Lock()
		posted[key] = string(body.Data)
		mu.Unlock()
		w.Write([]byte(`{"ok":true}`))
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"state_updated","key":"queue","data":[{"id":"q1"}]}`))
		conn.ReadMessage()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m, err := NewHTTPMirror(HTTPConfig{BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	state, err := m.Pull(context.Background())
	require.NoError(t, err)
	assert.Len(t, state, 4)
	assert.JSONEq(t, `[]`, string(state["queue"]))

	require.NoError(t, m.Push(context.Background(), "overrides", json.RawMessage(`{"barber-1":{}}`)))
	mu.Lock()
	assert.JSONEq(t, `{"barber-1":{}}`, posted["overrides"])
	mu.Unlock()

	err = m.Push(context.Background(), "nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid state key")

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- m.Subscribe(ctx, func(name string, data json.RawMessage) { got <- name + "=" + string(data) })
	}()
	select {
	case v := <-got:
		assert.Equal(t, `queue=[{"id":"q1"}]`, v)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscribe did not stop")
	}
}

func TestMirrorsRequireConfig(t *testing.T) {
	_, err := NewHTTPMirror(HTTPConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.False(t, FirestoreConfig{ProjectID: "REPLACE_WITH_YOUR_PROJECT_ID"}.Configured())
	assert.True(t, FirestoreConfig{ProjectID: "sawgrass-kings"}.Configured())
	_, err = NewFirestoreMirror(context.Background(), FirestoreConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewMirrorModes(t *testing.T) {
	_, err := NewMirror(context.Background(), Config{Mode: ModeNone})
	assert.ErrorIs(t, err, ErrNotConfigured)

	m, err := NewMirror(context.Background(), Config{Mode: ModeHTTP, HTTP: HTTPConfig{BaseURL: "http://state.local"}})
	require.NoError(t, err)
	assert.Equal(t, "http", m.Name())

	_, err = NewMirror(context.Background(), Config{Mode: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestSyncHandler(t *testing.T) {
	m := newFakeMirror()
	m.pullErr = errors.New("unreachable")
	s := NewSyncer(m, &recordingStore{}, NewTracker("starting"))
	defer s.Close()
	h := NewHandler(s.Tracker(), s)

	rr := httptest.NewRecorder()
	h.Reconnect(rr, httptest.NewRequest(http.MethodPost, "/sync", nil))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), `"label":"Offline/Local Mode"`)

	m.mu.Lock()
	m.pullErr = nil
	m.mu.Unlock()
	rr = httptest.NewRecorder()
	h.Reconnect(rr, httptest.NewRequest(http.MethodPost, "/sync", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.Status(rr, httptest.NewRequest(http.MethodGet, "/sync", nil))
	assert.Contains(t, rr.Body.String(), `"status":"connected"`)
	assert.Contains(t, rr.Body.String(), `"mirror":"fake"`)

	require.True(t, s.Tracker().Degrade(errors.New("offline")))
	require.True(t, s.Tracker().BeginReconnect())
	rr = httptest.NewRecorder()
	h.Reconnect(rr, httptest.NewRequest(http.MethodPost, "/sync", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = httptest.NewRecorder()
	NewHandler(NewTracker("disabled"), nil).Reconnect(rr, httptest.NewRequest(http.MethodPost, "/sync", nil))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

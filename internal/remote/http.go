package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// HTTPConfig points at a shared state server.
type HTTPConfig struct {
	BaseURL string
	Timeout time.Duration
}

// HTTPMirror talks to the shared state server: GET /api/state, POST
// /api/state/{key} and the /ws change feed.
type HTTPMirror struct {
	base       string
	httpClient *http.Client
	dialer     *websocket.Dialer
}

func NewHTTPMirror(cfg HTTPConfig) (*HTTPMirror, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrNotConfigured
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("remote: invalid base url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPMirror{
		base:       base,
		httpClient: &http.Client{Timeout: timeout},
		dialer:     &websocket.Dialer{HandshakeTimeout: timeout},
	}, nil
}

func (m *HTTPMirror) Name() string { return "http" }

func (m *HTTPMirror) Pull(ctx context.Context) (map[string]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.base+"/api/state", nil)
	if err != nil {
		return nil, err
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("state request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}
	var state map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return state, nil
}

func (m *HTTPMirror) Push(ctx context.Context, name string, data json.RawMessage) error {
	body, err := json.Marshal(struct {
		Data json.RawMessage `json:"data"`
	}{Data: data})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.base+"/api/state/"+url.PathEscape(name), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("state write failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		return fmt.Errorf("state server returned %d: %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("state server returned %d", resp.StatusCode)
}

// wsURL maps http(s)://host/path to ws(s)://host/path/ws.
func (m *HTTPMirror) wsURL() (string, error) {
	u, err := url.Parse(m.base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}

type stateEvent struct {
	Type string          `json:"type"`
	Key  string          `json:"key"`
	Data json.RawMessage `json:"data"`
}

func (m *HTTPMirror) Subscribe(ctx context.Context, apply func(name string, data json.RawMessage)) error {
	target, err := m.wsURL()
	if err != nil {
		return err
	}
	conn, _, err := m.dialer.DialContext(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("subscription closed: %w", err)
		}
		var ev stateEvent
		if err := json.Unmarshal(msg, &ev); err != nil || ev.Type != "state_updated" || ev.Key == "" {
			continue
		}
		apply(ev.Key, ev.Data)
	}
}

func (m *HTTPMirror) Close() error {
	m.httpClient.CloseIdleConnections()
	return nil
}

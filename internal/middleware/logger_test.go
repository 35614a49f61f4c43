package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sawgrasskings/booking-api/internal/pkg/logger"
)

func TestLoggerAttachesRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	h := RequestID(Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.LogInfo(r.Context(), "inside handler", "step", "submit")
		w.WriteHeader(http.StatusCreated)
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected handler and access log lines, got %q", buf.String())
	}
	for _, line := range lines {
		if !strings.Contains(line, `"request_id":"abc"`) {
			t.Fatalf("line missing request id: %s", line)
		}
	}
	if !strings.Contains(lines[0], `"step":"submit"`) {
		t.Fatalf("handler fields lost: %s", lines[0])
	}
}

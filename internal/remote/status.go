// Package remote mirrors the shared collections to an optional remote copy
// that is the source of truth while connected.
package remote

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawgrasskings/booking-api/internal/pkg/metrics"
)

// Status is the connection state of the mirror.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusLocalOnly    Status = "local_only"
	StatusReconnecting Status = "reconnecting"
)

var allStatuses = []string{string(StatusConnected), string(StatusLocalOnly), string(StatusReconnecting)}

// State is a point-in-time view of the tracker.
type State struct {
	Status Status    `json:"status"`
	Reason string    `json:"reason,omitempty"`
	Since  time.Time `json:"since"`
}

// Label is the operator-facing text for the status.
func (s State) Label() string {
	if s.Status == StatusConnected {
		return "Connected"
	}
	if s.Status == StatusReconnecting {
		return "Reconnecting"
	}
	return "Offline/Local Mode"
}

// Tracker holds the connection state. Once degraded it stays local-only
// until BeginReconnect is called.
type Tracker struct {
	mu        sync.RWMutex
	state     State
	listeners []func(State)
	now       func() time.Time
}

// NewTracker starts in local-only mode with the given reason.
func NewTracker(reason string) *Tracker {
	t := &Tracker{now: time.Now}
	t.state = State{Status: StatusLocalOnly, Reason: reason, Since: t.now()}
	metrics.SetRemoteStatus(string(StatusLocalOnly), allStatuses)
	return t
}

func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

func (t *Tracker) Connected() bool {
	return t.State().Status == StatusConnected
}

// OnChange registers fn for every later transition.
func (t *Tracker) OnChange(fn func(State)) {
	t.mu.Lock()
	t.listeners = append(t.listeners, fn)
	t.mu.Unlock()
}

// BeginReconnect moves local-only to reconnecting. It reports false when
// already connected or reconnecting.
func (t *Tracker) BeginReconnect() bool {
	return t.move(StatusReconnecting, "", StatusLocalOnly)
}

// MarkConnected completes a reconnect.
func (t *Tracker) MarkConnected() bool {
	return t.move(StatusConnected, "", StatusReconnecting)
}

// Degrade drops to local-only for the rest of the session. Only the first
// failure is recorded.
func (t *Tracker) Degrade(err error) bool {
	reason := "remote error"
	if err != nil {
		reason = err.Error()
	}
	moved := t.move(StatusLocalOnly, reason, StatusConnected, StatusReconnecting)
	if moved {
		log.Warn().Err(err).Msg("remote sync failed, continuing in local-only mode")
	}
	return moved
}

func (t *Tracker) move(to Status, reason string, from ...Status) bool {
	t.mu.Lock()
	allowed := false
	for _, f := range from {
		if t.state.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		t.mu.Unlock()
		return false
	}
	t.state = State{Status: to, Reason: reason, Since: t.now()}
	state := t.state
	listeners := make([]func(State), len(t.listeners))
	copy(listeners, t.listeners)
	t.mu.Unlock()

	metrics.SetRemoteStatus(string(to), allStatuses)
	for _, fn := range listeners {
		fn(state)
	}
	return true
}

package sharedstate

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/sawgrasskings/booking-api/internal/pkg/metrics"
)

// Notifier is told about every stored change.
type Notifier interface {
	StateUpdated(key string, data json.RawMessage)
}

// Service is the minimal shared state server logic.
type Service struct {
	repo     Repository
	notifier Notifier
}

// NewService creates sharedstate service. notifier may be nil.
func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Get returns the stored document over the defaults. A failing backend
// yields the defaults.
func (s *Service) Get(ctx context.Context) Document {
	stored, err := s.repo.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("shared state load failed, serving defaults")
		return Defaults()
	}
	return Merge(stored)
}

type setBody struct {
	Data json.RawMessage `json:"data"`
}

// Set stores body's "data" under key. An empty body, or a missing or null
// data field, resets the key to its default.
func (s *Service) Set(ctx context.Context, key string, body []byte) (json.RawMessage, error) {
	if !ValidKey(key) {
		return nil, ErrInvalidKey
	}

	var parsed setBody
	if len(bytes.TrimSpace(body)) > 0 {
		if !json.Valid(body) {
			return nil, ErrInvalidJSON
		}
		// A body that is not an object carries no data.
		_ = json.Unmarshal(body, &parsed)
	}
	value := parsed.Data
	if len(value) == 0 || string(value) == "null" {
		value = Default(key)
	}

	if err := s.repo.Save(ctx, key, value); err != nil {
		metrics.IncStateWrite(key, "error")
		return nil, err
	}
	metrics.IncStateWrite(key, "ok")

	if s.notifier != nil {
		s.notifier.StateUpdated(key, value)
	}
	return value, nil
}

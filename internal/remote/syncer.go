package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrReconnectInProgress is returned by Reconnect while another attempt runs.
var ErrReconnectInProgress = errors.New("remote: reconnect already in progress")

const pushTimeout = 10 * time.Second

// Syncer connects a Mirror to the local store. Writes are applied locally
// first and pushed optimistically; any remote error switches to local-only
// mode until an explicit Reconnect.
type Syncer struct {
	mirror  Mirror
	store   Applier
	tracker *Tracker

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSyncer(mirror Mirror, store Applier, tracker *Tracker) *Syncer {
	return &Syncer{mirror: mirror, store: store, tracker: tracker}
}

func (s *Syncer) Tracker() *Tracker { return s.tracker }

// Start pulls the remote copy over the local one and subscribes to later
// changes. Failure leaves the syncer local-only and is returned.
func (s *Syncer) Start(ctx context.Context) error {
	s.tracker.BeginReconnect()
	return s.connect(ctx)
}

// Reconnect is the operator's retry after a downgrade.
func (s *Syncer) Reconnect(ctx context.Context) error {
	if !s.tracker.BeginReconnect() {
		if s.tracker.Connected() {
			return nil
		}
		return ErrReconnectInProgress
	}
	s.stopSubscription()
	return s.connect(ctx)
}

func (s *Syncer) connect(ctx context.Context) error {
	collections, err := s.mirror.Pull(ctx)
	if err != nil {
		s.tracker.Degrade(err)
		return fmt.Errorf("remote: pull from %s: %w", s.mirror.Name(), err)
	}
	for name, data := range collections {
		if err := s.store.ApplyRemote(ctx, name, data); err != nil {
			log.Warn().Err(err).Str("collection", name).Msg("remote collection not applied")
		}
	}

	subCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.mu.Lock()
	s.cancel, s.done = cancel, done
	s.mu.Unlock()

	s.tracker.MarkConnected()
	log.Info().Str("mirror", s.mirror.Name()).Int("collections", len(collections)).Msg("remote mirror connected")

	go func() {
		defer close(done)
		err := s.mirror.Subscribe(subCtx, func(name string, data json.RawMessage) {
			if err := s.store.ApplyRemote(subCtx, name, data); err != nil {
				log.Warn().Err(err).Str("collection", name).Msg("remote change not applied")
			}
		})
		if err != nil && subCtx.Err() == nil {
			s.tracker.Degrade(err)
		}
	}()
	return nil
}

// Push sends one collection when connected and degrades on failure. It
// never returns an error; the local write already happened. The push outlives
// the caller's cancellation so a dropped client does not read as an outage.
func (s *Syncer) Push(ctx context.Context, name string, data json.RawMessage) {
	if !s.tracker.Connected() {
		return
	}
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()
	if err := s.mirror.Push(pushCtx, name, data); err != nil {
		s.tracker.Degrade(fmt.Errorf("push %s: %w", name, err))
		s.stopSubscription()
	}
}

func (s *Syncer) stopSubscription() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

// Close stops the subscription and releases the mirror.
func (s *Syncer) Close() error {
	s.stopSubscription()
	return s.mirror.Close()
}

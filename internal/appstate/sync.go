package appstate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sawgrasskings/booking-api/internal/domain/barber"
	"github.com/sawgrasskings/booking-api/internal/domain/gallery"
	"github.com/sawgrasskings/booking-api/internal/pkg/kvstore"
)

// Watch applies changes that other processes make to the kv store until ctx
// is done.
func (s *Store) Watch(ctx context.Context, w kvstore.Watcher) error {
	changes, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("appstate: watch: %w", err)
	}
	for c := range changes {
		if !isSyncKey(c.Key) {
			continue
		}
		value := c.Value
		if c.Deleted {
			value = nil
		}
		s.Apply(c.Key, value)
	}
	return ctx.Err()
}

// Apply replaces the in-memory collection under key with value as written
// by someone else. Nothing is written back. A nil or unreadable value resets
// the collection to empty.
func (s *Store) Apply(key string, value []byte) {
	s.mu.Lock()
	s.decodeInto(&s.state, key, value)
	s.mu.Unlock()
	log.Debug().Str("key", key).Msg("state changed elsewhere")
	s.publish(Event{Key: key, Origin: OriginStorage})
}

// ApplyRemote stores a mirrored collection pulled from the remote and
// persists it locally without pushing it back.
func (s *Store) ApplyRemote(ctx context.Context, name string, data json.RawMessage) error {
	key, ok := LocalKey(name)
	if !ok {
		return fmt.Errorf("appstate: unknown collection %q", name)
	}
	s.mu.Lock()
	prev := s.state
	next := s.state.clone()
	s.decodeInto(&next, key, data)
	s.state = next
	if _, err := s.writeLocked(ctx, key); err != nil {
		s.state = prev
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	s.publish(Event{Key: key, Origin: OriginRemote})
	return nil
}

func (s *Store) decodeInto(st *AppState, key string, value []byte) {
	switch key {
	case KeyBarbers:
		st.Barbers = barber.EnforceDefaults(decodeRoster(value))
		if len(st.Barbers) == 0 {
			st.Barbers = barber.Defaults(s.now())
		}
	case KeyBookings:
		st.Bookings, _ = decodeBookings(value, s.converter())
	case KeyOverrides:
		st.Overrides, _ = decodeOverrides(value)
	case KeyQueue:
		st.Queue, _ = decodeQueue(value)
	case KeyGallery:
		st.Gallery, _ = gallery.Migrate(value, nil, s.nowMillis(), s.newID)
	case KeyAdminUnlocked:
		st.Session.AdminUnlocked = string(value) == "true"
	case KeyBarberUnlocked:
		st.Session.BarberUnlocked = string(value) == "true"
	case KeyBarberSession:
		st.Session.BarberID = decodeSession(nil, nil, value).BarberID
	}
}

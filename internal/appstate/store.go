// Package appstate is the booking and queue record store. It keeps the whole
// application state in memory, persists each collection as one key in a
// kvstore, mirrors shared collections to an optional remote and notifies
// observers of every change.
package appstate

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sawgrasskings/booking-api/internal/domain/barber"
	"github.com/sawgrasskings/booking-api/internal/domain/booking"
	"github.com/sawgrasskings/booking-api/internal/domain/gallery"
	"github.com/sawgrasskings/booking-api/internal/pkg/kvstore"
	"github.com/sawgrasskings/booking-api/internal/pkg/metrics"
)

// Remote receives every local write of a mirrored collection. Push must not
// fail the local write; a mirror that cannot deliver degrades on its own.
type Remote interface {
	Push(ctx context.Context, name string, data json.RawMessage)
}

// Store implements the barber, booking and gallery repositories.
type Store struct {
	kv    kvstore.Store
	now   func() time.Time
	newID func() string

	mu     sync.RWMutex
	state  AppState
	remote Remote

	observers
}

// Open loads the state from kv, migrating older shapes and seeding the
// default roster. Migrated collections are written back once.
func Open(ctx context.Context, kv kvstore.Store, now func() time.Time) (*Store, error) {
	if now == nil {
		now = time.Now
	}
	s := &Store{kv: kv, now: now, newID: uuid.NewString}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) converter() converter {
	return converter{nowMillis: s.nowMillis, newID: s.newID}
}

func (s *Store) nowMillis() int64 { return s.now().UnixMilli() }

func (s *Store) load(ctx context.Context) error {
	raw := make(map[string][]byte)
	keys := append([]string{keyLegacyBookings, keyLegacyOverrides, keyLegacyQueue}, SyncKeys...)
	keys = append(keys, legacyGalleryKeys...)
	for _, key := range keys {
		v, ok, err := s.kv.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("appstate: read %s: %w", key, err)
		}
		if ok {
			raw[key] = v
		}
	}

	var st AppState
	var dirty []string

	st.Barbers = barber.EnforceDefaults(decodeRoster(raw[KeyBarbers]))
	if len(st.Barbers) == 0 {
		st.Barbers = barber.Defaults(s.now())
		dirty = append(dirty, KeyBarbers)
	}
	defaultID := barber.FallbackID
	if len(st.Barbers) > 0 {
		defaultID = st.Barbers[0].ID
	}

	c := s.converter()
	var ok bool
	if st.Bookings, ok = decodeBookings(raw[KeyBookings], c); !ok {
		st.Bookings = map[string][]booking.Booking{defaultID: decodeLegacyBookings(raw[keyLegacyBookings], c)}
		dirty = append(dirty, KeyBookings)
	}
	if st.Overrides, ok = decodeOverrides(raw[KeyOverrides]); !ok {
		st.Overrides = map[string]booking.Overrides{defaultID: decodeLegacyOverrides(raw[keyLegacyOverrides])}
		dirty = append(dirty, KeyOverrides)
	}
	if st.Queue, ok = decodeQueue(raw[KeyQueue]); !ok {
		st.Queue = map[string][]booking.QueueItem{defaultID: decodeLegacyQueue(raw[keyLegacyQueue])}
		dirty = append(dirty, KeyQueue)
	}

	legacy := make([]json.RawMessage, 0, len(legacyGalleryKeys))
	for _, key := range legacyGalleryKeys {
		legacy = append(legacy, raw[key])
	}
	photos, migrated := gallery.Migrate(raw[KeyGallery], legacy, s.nowMillis(), s.newID)
	st.Gallery = photos
	if migrated {
		dirty = append(dirty, KeyGallery)
	}

	st.Session = decodeSession(raw[KeyAdminUnlocked], raw[KeyBarberUnlocked], raw[KeyBarberSession])

	s.state = st
	for _, key := range dirty {
		if _, err := s.writeLocked(ctx, key); err != nil {
			return err
		}
		log.Info().Str("key", key).Msg("state migrated")
	}
	return nil
}

// value is the persisted form of key.
func (s *Store) value(key string) interface{} {
	switch key {
	case KeyBarbers:
		return s.state.Barbers
	case KeyBookings:
		return s.state.Bookings
	case KeyOverrides:
		return s.state.Overrides
	case KeyQueue:
		return s.state.Queue
	case KeyGallery:
		return s.state.Gallery
	case KeyBarberSession:
		return barberSession{BarberID: nullable(s.state.Session.BarberID)}
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// writeLocked persists the current value of key. Callers hold mu.
func (s *Store) writeLocked(ctx context.Context, key string) ([]byte, error) {
	if flag, ok := s.flag(key); ok {
		return s.writeFlagLocked(ctx, key, flag)
	}
	data, err := json.Marshal(s.value(key))
	if err != nil {
		metrics.IncStateWrite(key, "error")
		return nil, fmt.Errorf("appstate: encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		metrics.IncStateWrite(key, "error")
		return nil, fmt.Errorf("appstate: write %s: %w", key, err)
	}
	metrics.IncStateWrite(key, "ok")
	return data, nil
}

// flag reports the unlock flags, which are stored as the bare string
// "true" and removed when cleared.
func (s *Store) flag(key string) (bool, bool) {
	switch key {
	case KeyAdminUnlocked:
		return s.state.Session.AdminUnlocked, true
	case KeyBarberUnlocked:
		return s.state.Session.BarberUnlocked, true
	}
	return false, false
}

func (s *Store) writeFlagLocked(ctx context.Context, key string, set bool) ([]byte, error) {
	var err error
	if set {
		err = s.kv.Set(ctx, key, []byte("true"))
	} else {
		err = s.kv.Delete(ctx, key)
	}
	if err != nil {
		metrics.IncStateWrite(key, "error")
		return nil, fmt.Errorf("appstate: write %s: %w", key, err)
	}
	metrics.IncStateWrite(key, "ok")
	if !set {
		return nil, nil
	}
	return []byte("true"), nil
}

type write struct {
	key  string
	data []byte
}

// restoreLocked rewrites keys already persisted by a failed mutation from the
// restored state, so kv matches memory again. Callers hold mu.
func (s *Store) restoreLocked(ctx context.Context, written []write) {
	for _, w := range written {
		if _, err := s.writeLocked(ctx, w.key); err != nil {
			log.Error().Err(err).Str("key", w.key).Msg("state rollback failed")
		}
	}
}

// mutate applies fn to a copy of the state and persists the keys it names.
// Memory is only updated once every key is written. Mirroring and
// notification happen after the lock is released, so pushes from
// concurrent writers may reach the remote out of order.
func (s *Store) mutate(ctx context.Context, fn func(st *AppState) ([]string, error)) error {
	s.mu.Lock()
	prev := s.state
	next := s.state.clone()
	keys, err := fn(&next)
	if err != nil || len(keys) == 0 {
		s.mu.Unlock()
		return err
	}
	s.state = next
	writes := make([]write, 0, len(keys))
	for _, key := range keys {
		data, err := s.writeLocked(ctx, key)
		if err != nil {
			s.state = prev
			s.restoreLocked(ctx, writes)
			s.mu.Unlock()
			return err
		}
		writes = append(writes, write{key: key, data: data})
	}
	remote := s.remote
	s.mu.Unlock()

	for _, w := range writes {
		if name, ok := RemoteName(w.key); ok && remote != nil {
			remote.Push(ctx, name, w.data)
		}
		s.publish(Event{Key: w.key, Origin: OriginLocal})
	}
	return nil
}

// SetRemote attaches the mirror that receives later writes. nil detaches.
func (s *Store) SetRemote(r Remote) {
	s.mu.Lock()
	s.remote = r
	s.mu.Unlock()
}

// Snapshot returns a deep copy of the whole state.
func (s *Store) Snapshot() AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Export returns the persisted value of a mirrored collection.
func (s *Store) Export(name string) (json.RawMessage, error) {
	key, ok := LocalKey(name)
	if !ok {
		return nil, fmt.Errorf("appstate: unknown collection %q", name)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(s.value(key))
}

// Barbers returns the roster in display order.
func (s *Store) Barbers() barber.Roster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(barber.Roster(nil), s.state.Barbers...)
}

func (s *Store) SaveBarbers(ctx context.Context, roster barber.Roster) error {
	return s.mutate(ctx, func(st *AppState) ([]string, error) {
		st.Barbers = append(barber.Roster(nil), roster...)
		return []string{KeyBarbers}, nil
	})
}

// DeleteBarberData drops the barber's bookings, overrides and queue.
func (s *Store) DeleteBarberData(ctx context.Context, barberID string) error {
	return s.mutate(ctx, func(st *AppState) ([]string, error) {
		delete(st.Bookings, barberID)
		delete(st.Overrides, barberID)
		delete(st.Queue, barberID)
		return []string{KeyBookings, KeyOverrides, KeyQueue}, nil
	})
}

func (s *Store) Ledger(barberID string) booking.Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return booking.Ledger{
		Bookings:  append([]booking.Booking(nil), s.state.Bookings[barberID]...),
		Overrides: s.state.Overrides[barberID].Clone(),
	}
}

// Queue returns the barber's queue, newest first.
func (s *Store) Queue(barberID string) []booking.QueueItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]booking.QueueItem(nil), s.state.Queue[barberID]...)
}

func (s *Store) FindQueueItem(id string) (booking.QueueItem, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, barberID := range sortedKeys(s.state.Queue) {
		for _, q := range s.state.Queue[barberID] {
			if q.ID == id {
				return q, barberID, true
			}
		}
	}
	return booking.QueueItem{}, "", false
}

func (s *Store) defaults(id *string, createdAt *int64, barberID *string, st *AppState) {
	if *id == "" {
		*id = s.newID()
	}
	if *createdAt == 0 {
		*createdAt = s.nowMillis()
	}
	if *barberID == "" {
		*barberID = st.Barbers.ActiveFallback()
	}
}

// SaveBooking replaces any record with the same id and appends b, so the
// latest write is last.
func (s *Store) SaveBooking(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	err := s.mutate(ctx, func(st *AppState) ([]string, error) {
		s.defaults(&b.ID, &b.CreatedAt, &b.BarberID, st)
		list := st.Bookings[b.BarberID]
		next := make([]booking.Booking, 0, len(list)+1)
		for _, x := range list {
			if x.ID != b.ID {
				next = append(next, x)
			}
		}
		st.Bookings[b.BarberID] = append(next, b)
		return []string{KeyBookings}, nil
	})
	return b, err
}

// UpdateBookingStatus sets the status of every record with id, in any
// partition. It reports whether one was found.
func (s *Store) UpdateBookingStatus(ctx context.Context, id string, status booking.Status) (bool, error) {
	found := false
	err := s.mutate(ctx, func(st *AppState) ([]string, error) {
		for barberID, list := range st.Bookings {
			for i := range list {
				if list[i].ID == id {
					list[i].Status = status
					found = true
				}
			}
			st.Bookings[barberID] = list
		}
		if !found {
			return nil, nil
		}
		return []string{KeyBookings}, nil
	})
	return found, err
}

// MarkTaken replaces whatever holds the slot with b.
func (s *Store) MarkTaken(ctx context.Context, barberID string, b booking.Booking) error {
	return s.mutate(ctx, func(st *AppState) ([]string, error) {
		if b.ID == "" {
			b.ID = s.newID()
		}
		if b.BarberID == "" {
			b.BarberID = barberID
		}
		st.Bookings[barberID] = append(withoutSlot(st.Bookings[barberID], b.Date, b.Time), b)
		return []string{KeyBookings}, nil
	})
}

// ClearTaken removes every record at the slot.
func (s *Store) ClearTaken(ctx context.Context, barberID, date, hhmm string) error {
	return s.mutate(ctx, func(st *AppState) ([]string, error) {
		st.Bookings[barberID] = withoutSlot(st.Bookings[barberID], date, hhmm)
		return []string{KeyBookings}, nil
	})
}

func withoutSlot(list []booking.Booking, date, hhmm string) []booking.Booking {
	out := make([]booking.Booking, 0, len(list))
	for _, b := range list {
		if !b.At(date, hhmm) {
			out = append(out, b)
		}
	}
	return out
}

// SaveQueueItem puts item first in its barber's queue, replacing any item
// with the same id.
func (s *Store) SaveQueueItem(ctx context.Context, item booking.QueueItem) error {
	return s.mutate(ctx, func(st *AppState) ([]string, error) {
		s.defaults(&item.ID, &item.CreatedAt, &item.BarberID, st)
		list := st.Queue[item.BarberID]
		next := make([]booking.QueueItem, 0, len(list)+1)
		next = append(next, item)
		for _, q := range list {
			if q.ID != item.ID {
				next = append(next, q)
			}
		}
		st.Queue[item.BarberID] = next
		return []string{KeyQueue}, nil
	})
}

func (s *Store) UpdateQueueItem(ctx context.Context, id string, patch booking.QueuePatch) (booking.QueueItem, error) {
	var updated booking.QueueItem
	err := s.mutate(ctx, func(st *AppState) ([]string, error) {
		found := false
		for _, list := range st.Queue {
			for i := range list {
				if list[i].ID == id {
					list[i] = patch.Apply(list[i])
					updated = list[i]
					found = true
				}
			}
		}
		if !found {
			return nil, booking.ErrQueueItemNotFound
		}
		return []string{KeyQueue}, nil
	})
	return updated, err
}

func (s *Store) RemoveQueueItem(ctx context.Context, id string) (bool, error) {
	removed := false
	err := s.mutate(ctx, func(st *AppState) ([]string, error) {
		for barberID, list := range st.Queue {
			kept := make([]booking.QueueItem, 0, len(list))
			for _, q := range list {
				if q.ID == id {
					removed = true
					continue
				}
				kept = append(kept, q)
			}
			st.Queue[barberID] = kept
		}
		if !removed {
			return nil, nil
		}
		return []string{KeyQueue}, nil
	})
	return removed, err
}

func (s *Store) SaveOverrides(ctx context.Context, barberID string, o booking.Overrides) error {
	return s.mutate(ctx, func(st *AppState) ([]string, error) {
		st.Overrides[barberID] = normalizeOverrides(o)
		return []string{KeyOverrides}, nil
	})
}

// LocalPhotos returns this device's gallery, newest first.
func (s *Store) LocalPhotos() []gallery.Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]gallery.Photo(nil), s.state.Gallery...)
}

func (s *Store) SaveGallery(ctx context.Context, photos []gallery.Photo) error {
	return s.mutate(ctx, func(st *AppState) ([]string, error) {
		st.Gallery = append([]gallery.Photo{}, photos...)
		return []string{KeyGallery}, nil
	})
}

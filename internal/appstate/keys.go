package appstate

// Storage keys. Each holds one whole collection as JSON.
const (
	KeyBarbers        = "vb_barbers_v1"
	KeyBookings       = "vb_bookings_by_barber_v1"
	KeyOverrides      = "vb_overrides_by_barber_v1"
	KeyQueue          = "vb_queue_by_barber_v1"
	KeyAdminUnlocked  = "vb_admin_unlocked_v1"
	KeyBarberUnlocked = "vb_barber_unlocked_v1"
	KeyBarberSession  = "vb_barber_session_v1"
	KeyGallery        = "vb_gallery_v2"

	keyLegacyBookings  = "vb_bookings_v2"
	keyLegacyOverrides = "vb_overrides_v2"
	keyLegacyQueue     = "vb_queue_v2"
)

var legacyGalleryKeys = []string{"vb_gallery", "vb_photos", "vb_gallery_v0"}

// SyncKeys are the keys whose external changes are applied to a running store.
var SyncKeys = []string{
	KeyBookings,
	KeyOverrides,
	KeyQueue,
	KeyGallery,
	KeyBarbers,
	KeyAdminUnlocked,
	KeyBarberUnlocked,
	KeyBarberSession,
}

// Shared state document keys, as named by the remote mirror.
const (
	RemoteBookings  = "bookings"
	RemoteOverrides = "overrides"
	RemoteQueue     = "queue"
	RemoteGallery   = "gallery"
)

var toRemote = map[string]string{
	KeyBookings:  RemoteBookings,
	KeyOverrides: RemoteOverrides,
	KeyQueue:     RemoteQueue,
	KeyGallery:   RemoteGallery,
}

// RemoteName maps a storage key to its mirrored name. The roster and the
// session are never mirrored.
func RemoteName(key string) (string, bool) {
	name, ok := toRemote[key]
	return name, ok
}

// LocalKey maps a mirrored name back to its storage key.
func LocalKey(name string) (string, bool) {
	for key, n := range toRemote {
		if n == name {
			return key, true
		}
	}
	return "", false
}

func isSyncKey(key string) bool {
	for _, k := range SyncKeys {
		if k == key {
			return true
		}
	}
	return false
}

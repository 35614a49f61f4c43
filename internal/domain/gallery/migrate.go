package gallery

import (
	"encoding/json"
	"fmt"
)

// Migrate upgrades a stored gallery. Bare image strings, from the current
// key or the first non-empty legacy key, become Photo records; changed is
// true when the result must be written back. A list that already holds
// records is returned as is.
func Migrate(current json.RawMessage, legacy []json.RawMessage, now int64, newID func() string) (photos []Photo, changed bool) {
	entries := decodeEntries(current)
	if len(entries) > 0 && !isString(entries[0]) {
		return decodePhotos(entries), false
	}

	if len(entries) == 0 {
		for _, raw := range legacy {
			if found := decodeEntries(raw); len(found) > 0 {
				entries = found
				changed = true
				break
			}
		}
	}
	if len(entries) == 0 {
		return []Photo{}, false
	}
	if !isString(entries[0]) {
		return decodePhotos(entries), changed
	}

	photos = make([]Photo, 0, len(entries))
	for i, e := range entries {
		var src string
		if err := json.Unmarshal(e, &src); err != nil || src == "" {
			continue
		}
		photos = append(photos, Photo{
			ID:        newID(),
			Caption:   fmt.Sprintf("Gallery %d", i+1),
			ImageData: src,
			CreatedAt: now,
		})
	}
	return photos, true
}

func decodeEntries(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	return entries
}

func isString(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '"':
			return true
		default:
			return false
		}
	}
	return false
}

func decodePhotos(entries []json.RawMessage) []Photo {
	photos := make([]Photo, 0, len(entries))
	for _, e := range entries {
		var p Photo
		if err := json.Unmarshal(e, &p); err != nil || p.ImageData == "" {
			continue
		}
		photos = append(photos, p)
	}
	return photos
}

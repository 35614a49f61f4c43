package sharedstate

import (
	"encoding/json"
	"errors"
)

// Document keys and their defaults.
var defaults = map[string]json.RawMessage{
	"bookings":  json.RawMessage(`{}`),
	"overrides": json.RawMessage(`{}`),
	"queue":     json.RawMessage(`[]`),
	"gallery":   json.RawMessage(`[]`),
}

var (
	ErrInvalidKey  = errors.New("invalid state key")
	ErrInvalidJSON = errors.New("invalid JSON")
)

// Document is the whole shared state: key to raw JSON value.
type Document map[string]json.RawMessage

// Keys lists the accepted document keys.
func Keys() []string {
	return []string{"bookings", "overrides", "queue", "gallery"}
}

// ValidKey reports whether key is one of the document keys.
func ValidKey(key string) bool {
	_, ok := defaults[key]
	return ok
}

// Default returns the default value of key.
func Default(key string) json.RawMessage {
	return append(json.RawMessage(nil), defaults[key]...)
}

// Defaults returns a document holding every default.
func Defaults() Document {
	doc := make(Document, len(defaults))
	for k := range defaults {
		doc[k] = Default(k)
	}
	return doc
}

// Merge overlays stored values on the defaults. Stored keys outside the
// document are kept, as the file format allows them.
func Merge(stored Document) Document {
	doc := Defaults()
	for k, v := range stored {
		if len(v) > 0 {
			doc[k] = v
		}
	}
	return doc
}

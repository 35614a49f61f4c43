package barber

import "encoding/json"

// Barber owns its own partition of bookings, overrides and queue items.
type Barber struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Label     string `json:"label"`
	PIN       string `json:"pin"`
	Phone     string `json:"phone"`
	Active    bool   `json:"active"`
	CreatedAt int64  `json:"createdAt"`
}

// UnmarshalJSON treats a missing "active" field as active.
func (b *Barber) UnmarshalJSON(data []byte) error {
	type alias Barber
	aux := struct {
		*alias
		Active *bool `json:"active"`
	}{alias: (*alias)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.Active = aux.Active == nil || *aux.Active
	return nil
}

// DisplayName is "Name (Label)" when a label is set.
func (b Barber) DisplayName() string {
	if b.Label != "" {
		return b.Name + " (" + b.Label + ")"
	}
	return b.Name
}

// Public strips the passcode for unauthenticated listings.
func (b Barber) Public() Barber {
	b.PIN = ""
	return b
}

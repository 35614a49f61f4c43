package schedule

// DefaultSlotMinutes is the width of one bookable slot.
const DefaultSlotMinutes = 30

// Generator derives fixed-width slots from the weekly hours.
type Generator struct {
	Hours       WeekHours
	SlotMinutes int
}

// NewGenerator creates a slot generator, validating the configuration.
func NewGenerator(hours WeekHours, slotMinutes int) (Generator, error) {
	if slotMinutes <= 0 {
		return Generator{}, ErrInvalidStep
	}
	if err := hours.Validate(); err != nil {
		return Generator{}, err
	}
	return Generator{Hours: hours, SlotMinutes: slotMinutes}, nil
}

// Slots returns the ordered HH:MM start times for date. A closed day yields an
// empty slice. A trailing interval shorter than one slot is dropped.
func (g Generator) Slots(date string) ([]string, error) {
	w, err := g.Hours.ForDate(date)
	if err != nil {
		return nil, err
	}
	if w == nil || g.SlotMinutes <= 0 {
		return []string{}, nil
	}
	start, end, err := w.Minutes()
	if err != nil {
		return nil, err
	}

	slots := make([]string, 0, (end-start)/g.SlotMinutes)
	for m := start; m+g.SlotMinutes <= end; m += g.SlotMinutes {
		slots = append(slots, FormatClock(m))
	}
	return slots, nil
}

// IsOpen reports whether the shop has hours on date.
func (g Generator) IsOpen(date string) bool {
	w, err := g.Hours.ForDate(date)
	return err == nil && w != nil
}

package booking

// SubmitBookingRequest for POST /bookings
type SubmitBookingRequest struct {
	BarberID string `json:"barberId" validate:"omitempty,max=64"`
	Name     string `json:"name" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"required,max=32"`
	Service  string `json:"service" validate:"required,max=120"`
	Date     string `json:"date" validate:"required,isodate"`
	Time     string `json:"time" validate:"required,hhmm"`
	Notes    string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// EnqueueBookingRequest for POST /desk/barbers/{barberID}/queue
type EnqueueBookingRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Phone   string `json:"phone" validate:"required,max=32"`
	Service string `json:"service,omitempty" validate:"omitempty,max=120"`
	Date    string `json:"date" validate:"required,isodate"`
	Time    string `json:"time" validate:"required,hhmm"`
	Notes   string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// DayOffRequest for POST .../overrides/{date}/day-off
type DayOffRequest struct {
	DayOff bool `json:"dayOff"`
}

// SlotRequest names one slot.
type SlotRequest struct {
	Date string `json:"date,omitempty" validate:"omitempty,isodate"`
	Time string `json:"time" validate:"required,hhmm"`
}

// QueueItemResponse adds display fields to a queue item.
type QueueItemResponse struct {
	QueueItem
	ServiceName string `json:"serviceName"`
	TimeLabel   string `json:"timeLabel"`
}

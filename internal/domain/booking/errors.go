package booking

import "errors"

var (
	ErrSlotUnavailable   = errors.New("slot is no longer available")
	ErrSlotInPast        = errors.New("slot is in the past")
	ErrDateOutOfRange    = errors.New("date is outside the booking window")
	ErrInvalidSlot       = errors.New("time is not a slot on that date")
	ErrQueueItemNotFound = errors.New("queue item not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidTransition = errors.New("status change not allowed")
	ErrMissingField      = errors.New("required field missing")
)

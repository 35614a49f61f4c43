package barber

import "errors"

var (
	ErrBarberNotFound       = errors.New("barber not found")
	ErrBarberInactive       = errors.New("barber is not taking bookings")
	ErrInvalidPIN           = errors.New("passcode must be 4 digits")
	ErrEmptyName            = errors.New("barber name is required")
	ErrConfirmationRequired = errors.New("barber removal must be confirmed")
	ErrCannotMove           = errors.New("barber is already at that end of the list")
)

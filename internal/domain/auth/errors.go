package auth

import "errors"

var ErrInvalidPasscode = errors.New("incorrect passcode")

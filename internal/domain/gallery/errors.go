package gallery

import "errors"

var (
	ErrPhotoNotFound = errors.New("photo not found")
	ErrManagedInRepo = errors.New("photo is managed in recent-work.json")
)

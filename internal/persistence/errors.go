package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a record identifier is already taken or was retired.
	ErrDuplicate = errors.New("persistence: duplicate")
)

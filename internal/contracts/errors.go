package contracts

import "errors"

// Sentinel errors shared across the repository implementations.
var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate means a unique constraint would be violated.
	ErrDuplicate = errors.New("record already exists")
)

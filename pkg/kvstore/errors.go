package kvstore

import "errors"

var (
	// ErrFailedToWrite is returned when the backing medium rejects a write.
	ErrFailedToWrite = errors.New("kvstore: failed to write")

	// ErrFailedToDelete is returned when a delete cannot be persisted.
	ErrFailedToDelete = errors.New("kvstore: failed to delete")

	// ErrInvalidPath is returned when a file store path is empty or a directory.
	ErrInvalidPath = errors.New("kvstore: invalid file path")
)

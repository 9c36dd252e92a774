package upload

import (
	"errors"
	"fmt"
)

var (
	// Validation errors, surfaced per file and never aborting a whole batch.
	ErrEmptyFile          = errors.New("file is empty")
	ErrFileTooLarge       = errors.New("file size exceeds maximum allowed size")
	ErrMIMETypeNotAllowed = errors.New("MIME type is not allowed")
	ErrDuplicateFile      = errors.New("file is already staged")
	ErrTooManyFiles       = errors.New("too many files staged")

	// Orchestration errors.
	ErrNoFiles          = errors.New("no files staged for upload")
	ErrUploadInProgress = errors.New("an upload is already in progress")

	// Avatar-specific validation.
	ErrAvatarNotImage = errors.New("avatar must be an image file")
	ErrAvatarTooLarge = errors.New("avatar file size must be less than 2MB")
)

// TransportError carries the server-supplied failure message for a single
// transfer. The message, not the raw error, is what reaches the user.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upload failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upload failed: %s", e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

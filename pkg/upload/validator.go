package upload

import (
	"fmt"
	"slices"
	"strings"
)

// MaxFileSize is the default per-file size limit.
const MaxFileSize = 10 << 20 // 10 MiB

// maxAvatarSize caps avatar uploads tighter than regular documents.
const maxAvatarSize = 2 << 20 // 2 MiB

// DefaultAllowedMIMETypes lists the content types the upload API accepts.
var DefaultAllowedMIMETypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
	"image/webp",
	"text/plain",
	"application/json",
}

// Validator performs pure, local checks on candidate files. No side
// effects, no network access.
type Validator struct {
	maxFileSize  int64
	allowedTypes []string
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithMaxFileSize overrides the per-file size limit.
func WithMaxFileSize(limit int64) ValidatorOption {
	return func(v *Validator) {
		if limit > 0 {
			v.maxFileSize = limit
		}
	}
}

// WithAllowedMIMETypes overrides the accepted content types.
func WithAllowedMIMETypes(types ...string) ValidatorOption {
	return func(v *Validator) {
		if len(types) > 0 {
			v.allowedTypes = types
		}
	}
}

// NewValidator creates a validator with the default limits.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		maxFileSize:  MaxFileSize,
		allowedTypes: DefaultAllowedMIMETypes,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks a single candidate. The first failed check wins: empty,
// then oversized, then disallowed type.
func (v *Validator) Validate(f FileInfo) error {
	if f.Size == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, f.Name)
	}
	if f.Size > v.maxFileSize {
		return fmt.Errorf("%w: %s is %s, limit is %s",
			ErrFileTooLarge, f.Name, FormatFileSize(f.Size), FormatFileSize(v.maxFileSize))
	}
	if !slices.Contains(v.allowedTypes, f.MIMEType) {
		return fmt.Errorf("%w: %s has type %q, allowed types: %s",
			ErrMIMETypeNotAllowed, f.Name, f.MIMEType, strings.Join(v.allowedTypes, ", "))
	}
	return nil
}

// IsValidSize reports whether the file is non-empty and within the limit.
func (v *Validator) IsValidSize(f FileInfo) bool {
	return f.Size > 0 && f.Size <= v.maxFileSize
}

// IsValidType reports whether the file's MIME type is accepted.
func (v *Validator) IsValidType(f FileInfo) bool {
	return slices.Contains(v.allowedTypes, f.MIMEType)
}

// MaxSize returns the configured per-file limit.
func (v *Validator) MaxSize() int64 {
	return v.maxFileSize
}

// ValidateAvatar applies the stricter avatar rules: any image type, 2 MiB cap.
func ValidateAvatar(f FileInfo) error {
	if !strings.HasPrefix(f.MIMEType, "image/") {
		return fmt.Errorf("%w: %s has type %q", ErrAvatarNotImage, f.Name, f.MIMEType)
	}
	if f.Size > maxAvatarSize {
		return fmt.Errorf("%w: %s is %s", ErrAvatarTooLarge, f.Name, FormatFileSize(f.Size))
	}
	return nil
}

package errors

import "errors"

var (
	ErrInvalidEntry      = errors.New("invalid audit entry")
	ErrInvalidFilter     = errors.New("invalid audit filter")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrForbidden         = errors.New("forbidden")
	ErrDuplicateEntry    = errors.New("audit entry already exists")
)

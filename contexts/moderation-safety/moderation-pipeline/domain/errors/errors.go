package errors

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	ErrMalformedResponse     = errors.New("malformed classifier response")
	ErrForbidden             = errors.New("forbidden")
	ErrAssetNotFound         = errors.New("asset not found")
	ErrInvalidTransition     = errors.New("invalid asset status transition")
	ErrAlreadyDecided        = errors.New("asset already decided")
)

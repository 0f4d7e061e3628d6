package errors

import "errors"

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidCategory  = errors.New("invalid warning category")
	ErrUserNotFound     = errors.New("user not found")
	ErrForbidden        = errors.New("forbidden")
	ErrAccountSuspended = errors.New("account suspended")
	ErrNotBanned        = errors.New("user is not banned")
)

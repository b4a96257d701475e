package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidOption   = errors.New("invalid poll option")
	ErrPollClosed      = errors.New("poll is closed")
	ErrDuplicateAction = errors.New("duplicate action")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
)

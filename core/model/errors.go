package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the parent of every contact validation failure.
	ErrValidation = errors.New("validation error")
	// ErrInvalidName is returned when a name is empty after trimming.
	ErrInvalidName = fmt.Errorf("%w: name must be a non-empty string", ErrValidation)
	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = fmt.Errorf("%w: invalid email address", ErrValidation)
	// ErrInvalidTime is returned when a preferred time is not HH:MM AM/PM.
	ErrInvalidTime = fmt.Errorf("%w: invalid time format, expected HH:MM AM/PM (12-hour)", ErrValidation)
)

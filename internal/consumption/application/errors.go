package application

import "errors"

// ErrMissingSubject is returned when no lot, property or district id is given.
var ErrMissingSubject = errors.New("consumption: missing subject id")

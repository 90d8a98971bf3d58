package consumption

import "errors"

var (
	// ErrInvalidRange is returned when the start date is after the end date.
	ErrInvalidRange = errors.New("consumption: start date after end date")
	// ErrEmptyRange is returned when a range bound is missing.
	ErrEmptyRange = errors.New("consumption: empty date range")
	// ErrInvalidGranularity is returned when granularity is unsupported.
	ErrInvalidGranularity = errors.New("consumption: invalid granularity")
	// ErrGranularityNotAllowed is returned when granularity is not legal for the selected span.
	ErrGranularityNotAllowed = errors.New("consumption: granularity not allowed for range")
	// ErrInvalidTimestamp is returned when a reading timestamp cannot be parsed.
	ErrInvalidTimestamp = errors.New("consumption: invalid timestamp")
	// ErrInvalidDate is returned when a calendar date cannot be parsed.
	ErrInvalidDate = errors.New("consumption: invalid date")
)

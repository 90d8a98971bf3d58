package billing

import "errors"

var (
	// ErrInvalidDateFilter is returned when a creation-date bound cannot be parsed.
	ErrInvalidDateFilter = errors.New("billing: invalid date filter")
	// ErrInvalidDateRange is returned when the lower bound is after the upper bound.
	ErrInvalidDateRange = errors.New("billing: from date after to date")
)

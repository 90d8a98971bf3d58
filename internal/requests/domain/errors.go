package requests

import "errors"

var (
	ErrMissingLot           = errors.New("requests: missing lot")
	ErrInvalidFlow          = errors.New("requests: requested flow must be a positive number")
	ErrMissingJustification = errors.New("requests: missing justification")
	ErrMissingCategory      = errors.New("requests: missing failure category")
	ErrUnknownCategory      = errors.New("requests: unknown failure category")
	ErrMissingDescription   = errors.New("requests: missing description")
	ErrTextTooLong          = errors.New("requests: text too long")
	ErrMissingUserID        = errors.New("requests: missing user id")
	ErrEmptyUpdate          = errors.New("requests: nothing to update")
	ErrInvalidEmail         = errors.New("requests: invalid email")
	ErrInvalidPhone         = errors.New("requests: invalid phone")
)

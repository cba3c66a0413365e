package admin

import "errors"

var (
	ErrInvalidName     = errors.New("event name must not be empty")
	ErrInvalidDate     = errors.New("event date must be a valid calendar date")
	ErrNegativeTickets = errors.New("tickets available must not be negative")
	ErrEventNotFound   = errors.New("event not found")
	ErrEventConflict   = errors.New("event already exists")
)

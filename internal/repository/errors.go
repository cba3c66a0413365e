package repository

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInsufficientTickets = errors.New("insufficient tickets")
	ErrUnavailable         = errors.New("store unavailable")
)

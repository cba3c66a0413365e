package purchase

import "errors"

var (
	ErrInvalidQuantity     = errors.New("quantity must be a positive integer")
	ErrMissingCredential   = errors.New("missing credential")
	ErrInvalidCredential   = errors.New("invalid or expired credential")
	ErrEventNotFound       = errors.New("event not found")
	ErrInsufficientTickets = errors.New("not enough tickets available")
	ErrStoreUnavailable    = errors.New("inventory store unavailable")
	ErrRateLimited         = errors.New("rate limited")
)

package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campustix/campustix/internal/domain"
)

var (
	ErrInvalidQuantity   = errors.New("intent quantity must be a positive integer")
	ErrUnresolvedEvent   = errors.New("no catalog event matches the requested name")
	ErrAmbiguousEvent    = errors.New("more than one catalog event matches the requested name")
	ErrUnsupportedIntent = errors.New("unsupported intent")
)

// Catalog is the read-only catalog snapshot the relay resolves against.
type Catalog interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

// Purchaser is the coordinator contract the relay forwards resolved
// bookings to.
type Purchaser interface {
	Purchase(ctx context.Context, eventID int64, quantity int, credential, rlKey string) (*domain.PurchaseConfirmation, error)
}

// Relay bridges the external intent parser to the purchase coordinator: it
// resolves a free-text event name to an exact event id before calling
// Purchase. The coordinator itself never sees unresolved names. Resolution
// is exact after normalization, never fuzzy; anything ambiguous or
// unmatched is rejected here.
type Relay struct {
	catalog   Catalog
	purchases Purchaser
}

func NewRelay(catalog Catalog, purchases Purchaser) *Relay {
	return &Relay{
		catalog:   catalog,
		purchases: purchases,
	}
}

// Confirm resolves the intent's event name against the current catalog and
// forwards the booking to the purchase coordinator.
//
// A missing or non-positive quantity is rejected rather than defaulted to
// one: a parser that could not extract a quantity must not commit the
// caller to a purchase they did not ask for.
//
// Returns:
//   - *domain.PurchaseConfirmation: the coordinator's success outcome.
//   - error: booking.ErrUnsupportedIntent, booking.ErrInvalidQuantity,
//     booking.ErrUnresolvedEvent, booking.ErrAmbiguousEvent, or any error
//     from the purchase coordinator.
func (r *Relay) Confirm(
	ctx context.Context,
	intent domain.BookingIntent,
	credential string,
	rlKey string,
) (*domain.PurchaseConfirmation, error) {
	const op = "booking.Relay.Confirm"

	if intent.Intent != "" && intent.Intent != "book" {
		return nil, fmt.Errorf("%s: %q: %w", op, intent.Intent, ErrUnsupportedIntent)
	}

	if intent.Quantity <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	eventID, err := r.resolve(ctx, intent.Event)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	confirmation, err := r.purchases.Purchase(ctx, eventID, intent.Quantity, credential, rlKey)
	if err != nil {
		return nil, err
	}

	return confirmation, nil
}

func (r *Relay) resolve(ctx context.Context, name string) (int64, error) {
	want := normalize(name)
	if want == "" {
		return 0, ErrUnresolvedEvent
	}

	events, err := r.catalog.ListEvents(ctx)
	if err != nil {
		return 0, err
	}

	var (
		matchID int64
		matches int
	)
	for _, e := range events {
		if normalize(e.Name) == want {
			matchID = e.ID
			matches++
		}
	}

	switch matches {
	case 0:
		return 0, ErrUnresolvedEvent
	case 1:
		return matchID, nil
	default:
		return 0, ErrAmbiguousEvent
	}
}

// normalize folds case and collapses internal whitespace so that "  Jazz
// Night " resolves the catalog entry "Jazz Night", and nothing looser.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

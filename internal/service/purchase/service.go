package purchase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campustix/campustix/internal/domain"
	"github.com/campustix/campustix/internal/repository"
)

// Inventory is the slice of the event store the coordinator needs. The
// implementation must make DecrementTickets indivisible with respect to
// concurrent callers.
type Inventory interface {
	DecrementTickets(ctx context.Context, eventID int64, quantity int) (*domain.Event, error)
}

// Verifier resolves a bearer credential to a subject identity.
type Verifier interface {
	Verify(ctx context.Context, credential string) (*domain.Subject, error)
}

// Notifier is told about committed inventory changes.
type Notifier interface {
	PublishEventChanged(ctx context.Context, eventID int64) error
}

// Limiter throttles purchase attempts per caller key.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, current int64, retryAfter time.Duration, err error)
}

type Config struct{}

// Service is the authoritative entry point for ticket purchases. It
// composes credential verification, input validation and the atomic
// inventory decrement into one guaranteed-consistent unit. It never
// retries on its own; every failure is terminal for the request.
type Service struct {
	inventory Inventory
	verifier  Verifier
	notifier  Notifier
	limiter   Limiter
	cfg       Config
}

func New(
	inventory Inventory,
	verifier Verifier,
	notifier Notifier,
	limiter Limiter,
	cfg Config,
) *Service {
	return &Service{
		inventory: inventory,
		verifier:  verifier,
		notifier:  notifier,
		limiter:   limiter,
		cfg:       cfg,
	}
}

// Purchase buys quantity tickets for eventID on behalf of the subject
// identified by credential. Authentication completes strictly before any
// inventory access; an unauthenticated caller never observes or affects
// inventory state.
//
// Parameters:
//   - ctx: request-scoped context.
//   - eventID: exact catalog id; the coordinator never resolves names.
//   - quantity: positive number of tickets to buy.
//   - credential: bearer credential for the purchasing subject.
//   - rlKey: optional rate-limit key (empty disables throttling).
//
// Returns:
//   - *domain.PurchaseConfirmation: event id, quantity bought and the
//     post-purchase ticket count.
//   - error: purchase.ErrInvalidQuantity, purchase.ErrMissingCredential,
//     purchase.ErrInvalidCredential, purchase.ErrEventNotFound,
//     purchase.ErrInsufficientTickets, purchase.ErrStoreUnavailable or
//     purchase.ErrRateLimited.
func (s *Service) Purchase(
	ctx context.Context,
	eventID int64,
	quantity int,
	credential string,
	rlKey string,
) (*domain.PurchaseConfirmation, error) {
	const op = "service.purchase.Purchase"

	if quantity <= 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidQuantity)
	}

	if credential == "" {
		return nil, fmt.Errorf("%s:%w", op, ErrMissingCredential)
	}

	subject, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidCredential)
	}

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s: retry in %s: %w", op, retry, ErrRateLimited)
		}
	}

	event, err := s.inventory.DecrementTickets(ctx, eventID, quantity)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		case errors.Is(err, repository.ErrInsufficientTickets):
			return nil, fmt.Errorf("%s:%w", op, ErrInsufficientTickets)
		case errors.Is(err, repository.ErrUnavailable):
			return nil, fmt.Errorf("%s:%w", op, ErrStoreUnavailable)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if s.notifier != nil {
		_ = s.notifier.PublishEventChanged(ctx, event.ID)
	}

	return &domain.PurchaseConfirmation{
		EventID:          event.ID,
		Purchased:        quantity,
		RemainingTickets: event.TicketsAvailable,
		Subject:          *subject,
	}, nil
}

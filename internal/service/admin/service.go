package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campustix/campustix/internal/domain"
	"github.com/campustix/campustix/internal/repository"
	postgresrepo "github.com/campustix/campustix/internal/repository/postgres"
	redisx "github.com/campustix/campustix/internal/redis"
	"github.com/campustix/campustix/internal/uow"
)

// Service is the administrative path for creating and updating events. It
// goes through the same storage layer as purchases and enforces the same
// non-negative invariant before anything touches the store.
type Service struct {
	store  *postgresrepo.Store
	pubsub *redisx.EventsPubSub
	uow    *uow.UoW
}

func New(store *postgresrepo.Store, pubsub *redisx.EventsPubSub) *Service {
	return &Service{
		store:  store,
		pubsub: pubsub,
		uow:    uow.NewUoW(store),
	}
}

// CreateEvent validates and persists a new event.
//
// Returns:
//   - *domain.Event: the event with its assigned id.
//   - error: admin.ErrInvalidName, admin.ErrInvalidDate or
//     admin.ErrNegativeTickets when validation fails; nothing is persisted
//     in that case.
func (s *Service) CreateEvent(
	ctx context.Context,
	name string,
	date time.Time,
	ticketsAvailable int,
) (*domain.Event, error) {
	const op = "service.admin.CreateEvent"

	if err := validateEvent(name, date, ticketsAvailable); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var event *domain.Event
	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		e, err := s.store.Events().With(tx).Create(ctx, strings.TrimSpace(name), date, ticketsAvailable)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s: %w", op, ErrEventConflict)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		event = e

		after(func(ctx context.Context) {
			if s.pubsub != nil {
				_ = s.pubsub.PublishEventChanged(ctx, event.ID)
			}
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return event, nil
}

// UpdateEvent validates and replaces an existing event's fields.
//
// Returns:
//   - *domain.Event: the updated event.
//   - error: admin.ErrEventNotFound if the id does not exist; the
//     validation errors of CreateEvent otherwise.
func (s *Service) UpdateEvent(
	ctx context.Context,
	id int64,
	name string,
	date time.Time,
	ticketsAvailable int,
) (*domain.Event, error) {
	const op = "service.admin.UpdateEvent"

	if err := validateEvent(name, date, ticketsAvailable); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var event *domain.Event
	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		e, err := s.store.Events().With(tx).Update(ctx, id, strings.TrimSpace(name), date, ticketsAvailable)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrEventNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		event = e

		after(func(ctx context.Context) {
			if s.pubsub != nil {
				_ = s.pubsub.PublishEventChanged(ctx, event.ID)
			}
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return event, nil
}

func validateEvent(name string, date time.Time, ticketsAvailable int) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}

	if date.IsZero() {
		return ErrInvalidDate
	}

	if ticketsAvailable < 0 {
		return ErrNegativeTickets
	}

	return nil
}

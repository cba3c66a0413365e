package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/campustix/campustix/internal/domain"
	"github.com/campustix/campustix/internal/repository"
	postgresrepo "github.com/campustix/campustix/internal/repository/postgres"
)

// Service is a thin read-only view over the event store. Reads always hit
// the store's committed state; there is no cache layer in front of the
// inventory, so a listing never trails further than an in-flight commit.
type Service struct {
	store *postgresrepo.Store
}

func New(store *postgresrepo.Store) *Service {
	return &Service{store: store}
}

// ListEvents returns the full catalog ordered by id ascending.
func (s *Service) ListEvents(ctx context.Context) ([]domain.Event, error) {
	const op = "service.catalog.ListEvents"

	events, err := s.store.Events().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

// GetEvent retrieves a single event by id.
//
// Returns:
//   - *domain.Event: the event when found.
//   - error: catalog.ErrEventNotFound if the id is unknown.
func (s *Service) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	const op = "service.catalog.GetEvent"

	event, err := s.store.Events().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return event, nil
}

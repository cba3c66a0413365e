package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/campustix/campustix/internal/domain"
	"github.com/campustix/campustix/internal/repository"
)

type EventRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *EventRepo) With(db DB) *EventRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *EventRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Create inserts a new event and returns it with its assigned id.
//
// Returns:
//   - *domain.Event: the persisted event.
//   - error: repository.ErrConflict on a uniqueness violation.
func (r *EventRepo) Create(
	ctx context.Context,
	name string,
	date time.Time,
	ticketsAvailable int,
) (*domain.Event, error) {
	const op = "postgres.EventRepo.Create"

	db := r.handle()

	var e domain.Event
	err := db.QueryRow(ctx,
		`INSERT INTO events(name, date, tickets_available)
       	 VALUES ($1, $2, $3)
     	 RETURNING id, name, date, tickets_available`,
		name, date, ticketsAvailable,
	).Scan(&e.ID, &e.Name, &e.Date, &e.TicketsAvailable)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &e, nil
}

// Update replaces all mutable fields of an event.
//
// Returns:
//   - *domain.Event: the updated event.
//   - error: repository.ErrNotFound if the id does not exist.
func (r *EventRepo) Update(
	ctx context.Context,
	id int64,
	name string,
	date time.Time,
	ticketsAvailable int,
) (*domain.Event, error) {
	const op = "postgres.EventRepo.Update"

	db := r.handle()

	var e domain.Event
	err := db.QueryRow(ctx,
		`UPDATE events
        	SET name = $2, date = $3, tickets_available = $4
      	 WHERE id = $1
     	 RETURNING id, name, date, tickets_available`,
		id, name, date, ticketsAvailable,
	).Scan(&e.ID, &e.Name, &e.Date, &e.TicketsAvailable)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &e, nil
}

// Get retrieves an event by its id.
//
// Returns:
//   - *domain.Event: the event when found.
//   - error: repository.ErrNotFound if the event does not exist.
func (r *EventRepo) Get(ctx context.Context, id int64) (*domain.Event, error) {
	const op = "postgres.EventRepo.Get"

	db := r.handle()

	var e domain.Event
	err := db.QueryRow(ctx,
		`SELECT id, name, date, tickets_available
       	 FROM events WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Name, &e.Date, &e.TicketsAvailable)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &e, nil
}

// List returns all events ordered by id ascending. The ordering is part of
// the contract: two calls with no intervening writes return identical
// sequences.
func (r *EventRepo) List(ctx context.Context) ([]domain.Event, error) {
	const op = "postgres.EventRepo.List"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, name, date, tickets_available
		 FROM events
		 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Date, &e.TicketsAvailable); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

// DecrementTickets atomically reduces an event's ticket count by quantity,
// but only if the result stays non-negative. The conditional update and the
// insufficiency check run inside one transaction, so no concurrent caller
// can interleave a conflicting decrement.
//
// Returns:
//   - *domain.Event: the event with its post-decrement count.
//   - error: repository.ErrNotFound if the event does not exist.
//   - error: repository.ErrInsufficientTickets if fewer than quantity
//     tickets remain; the stored count is unchanged.
func (r *EventRepo) DecrementTickets(
	ctx context.Context,
	id int64,
	quantity int,
) (*domain.Event, error) {
	const op = "postgres.EventRepo.DecrementTickets"

	if r.db != nil {
		e, err := r.decrementCore(ctx, r.db, id, quantity)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return e, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer tx.Rollback(ctx)

	e, err := r.decrementCore(ctx, tx, id, quantity)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return e, nil
}

func (r *EventRepo) decrementCore(
	ctx context.Context,
	db DB,
	id int64,
	quantity int,
) (*domain.Event, error) {
	var e domain.Event
	err := db.QueryRow(ctx,
		`UPDATE events
        	SET tickets_available = tickets_available - $2
      	 WHERE id = $1 AND tickets_available >= $2
     	 RETURNING id, name, date, tickets_available`,
		id, quantity,
	).Scan(&e.ID, &e.Name, &e.Date, &e.TicketsAvailable)
	if err == nil {
		return &e, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, translateDBErr(err)
	}

	// Zero rows: either the event is missing or the floor check failed.
	// Resolve which inside the same transaction.
	var exists bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`,
		id,
	).Scan(&exists); err != nil {
		return nil, translateDBErr(err)
	}

	if !exists {
		return nil, repository.ErrNotFound
	}

	return nil, repository.ErrInsufficientTickets
}

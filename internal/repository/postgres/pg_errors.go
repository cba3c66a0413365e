package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/campustix/campustix/internal/repository"
)

// translateDBErr maps driver errors to repository-level sentinels. A check
// violation on tickets_available means the storage backstop fired before
// the conditional update could say "insufficient" itself.
func translateDBErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return repository.ErrUnavailable
	}

	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		switch {
		// unique_violation
		case pge.Code == "23505":
			return repository.ErrConflict
		// check_violation: the tickets_available >= 0 backstop
		case pge.Code == "23514":
			return repository.ErrInsufficientTickets
		// serialization_failure, deadlock_detected
		case pge.Code == "40001" || pge.Code == "40P01":
			return repository.ErrUnavailable
		// connection exceptions
		case len(pge.Code) >= 2 && pge.Code[:2] == "08":
			return repository.ErrUnavailable
		}
	}

	if pgconn.Timeout(err) {
		return repository.ErrUnavailable
	}

	return err
}

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/campustix/campustix/internal/repository"
	postgresrepo "github.com/campustix/campustix/internal/repository/postgres"
	"github.com/campustix/campustix/internal/testutil"
)

func TestEventRepo_CreateGet(t *testing.T) {
	pool := testutil.NewTestPool(t)
	store := postgresrepo.NewStore(pool)
	ctx := context.Background()

	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	created, err := store.Events().Create(ctx, "Jazz Night", date, 100)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned id, got 0")
	}

	got, err := store.Events().Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Jazz Night" || got.TicketsAvailable != 100 {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
	if !got.Date.Equal(date) {
		t.Fatalf("expected date %s, got %s", date, got.Date)
	}

	if _, err := store.Events().Get(ctx, created.ID+1000); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestEventRepo_SchemaConstraints(t *testing.T) {
	pool := testutil.NewTestPool(t)
	store := postgresrepo.NewStore(pool)
	ctx := context.Background()

	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	t.Run("negative ticket count is rejected by the check constraint", func(t *testing.T) {
		_, err := store.Events().Create(ctx, "Bad Event", date, -1)
		if !errors.Is(err, repository.ErrInsufficientTickets) {
			t.Fatalf("expected check violation, got %v", err)
		}
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		_, err := store.Events().Create(ctx, "", date, 10)
		if err == nil {
			t.Fatalf("expected constraint error for empty name")
		}
	})
}

func TestEventRepo_List(t *testing.T) {
	pool := testutil.NewTestPool(t)
	store := postgresrepo.NewStore(pool)
	ctx := context.Background()

	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	id1 := testutil.InsertEvent(t, pool, "First", date, 10)
	id2 := testutil.InsertEvent(t, pool, "Second", date, 20)

	first, err := store.Events().List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 events, got %d", len(first))
	}
	if first[0].ID != id1 || first[1].ID != id2 {
		t.Fatalf("expected id-ascending order, got [%d %d]", first[0].ID, first[1].ID)
	}

	// Reading must not disturb state or ordering.
	second, err := store.Events().List(ctx)
	if err != nil {
		t.Fatalf("second list: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("list size changed between reads: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("list entry %d changed between reads: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestEventRepo_DecrementTickets(t *testing.T) {
	pool := testutil.NewTestPool(t)
	store := postgresrepo.NewStore(pool)
	ctx := context.Background()

	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	t.Run("decrements and returns the remaining count", func(t *testing.T) {
		id := testutil.InsertEvent(t, pool, "Spring Gala", date, 10)

		e, err := store.Events().DecrementTickets(ctx, id, 3)
		if err != nil {
			t.Fatalf("decrement: %v", err)
		}
		if e.TicketsAvailable != 7 {
			t.Fatalf("expected 7 remaining, got %d", e.TicketsAvailable)
		}
	})

	t.Run("exact remaining count drains to zero", func(t *testing.T) {
		id := testutil.InsertEvent(t, pool, "Small Show", date, 4)

		e, err := store.Events().DecrementTickets(ctx, id, 4)
		if err != nil {
			t.Fatalf("decrement: %v", err)
		}
		if e.TicketsAvailable != 0 {
			t.Fatalf("expected 0 remaining, got %d", e.TicketsAvailable)
		}
	})

	t.Run("insufficiency leaves the stored count unchanged", func(t *testing.T) {
		id := testutil.InsertEvent(t, pool, "Tiny Show", date, 2)

		_, err := store.Events().DecrementTickets(ctx, id, 3)
		if !errors.Is(err, repository.ErrInsufficientTickets) {
			t.Fatalf("expected ErrInsufficientTickets, got %v", err)
		}

		got, err := store.Events().Get(ctx, id)
		if err != nil {
			t.Fatalf("get after failed decrement: %v", err)
		}
		if got.TicketsAvailable != 2 {
			t.Fatalf("failed decrement changed the count: %d", got.TicketsAvailable)
		}
	})

	t.Run("missing event is not mistaken for insufficiency", func(t *testing.T) {
		_, err := store.Events().DecrementTickets(ctx, 999999, 1)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestEventRepo_DecrementTickets_Concurrent(t *testing.T) {
	pool := testutil.NewTestPool(t)
	store := postgresrepo.NewStore(pool)
	ctx := context.Background()

	const (
		initial = 10
		buyers  = 30
	)

	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	id := testutil.InsertEvent(t, pool, "Rush Event", date, initial)

	var wg sync.WaitGroup
	results := make(chan error, buyers)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Events().DecrementTickets(ctx, id, 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var sold int
	for err := range results {
		switch {
		case err == nil:
			sold++
		case errors.Is(err, repository.ErrInsufficientTickets):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if sold != initial {
		t.Fatalf("expected exactly %d successful decrements, got %d", initial, sold)
	}

	got, err := store.Events().Get(ctx, id)
	if err != nil {
		t.Fatalf("get after race: %v", err)
	}
	if got.TicketsAvailable != 0 {
		t.Fatalf("expected 0 remaining, got %d", got.TicketsAvailable)
	}
}

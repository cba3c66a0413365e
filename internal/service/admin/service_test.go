package admin

import (
	"context"
	"errors"
	"testing"
	"time"
)

// Validation runs before the unit of work is entered, so a service with no
// store behind it is enough to prove rejected input never touches storage.
func TestService_CreateEvent_Validation(t *testing.T) {
	t.Parallel()

	svc := New(nil, nil)
	date := time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   string
		date    time.Time
		tickets int
		wantErr error
	}{
		{"empty name", "", date, 10, ErrInvalidName},
		{"whitespace name", "   ", date, 10, ErrInvalidName},
		{"zero date", "Jazz Night", time.Time{}, 10, ErrInvalidDate},
		{"negative tickets", "Jazz Night", date, -1, ErrNegativeTickets},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateEvent(context.Background(), tt.event, tt.date, tt.tickets)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestService_UpdateEvent_Validation(t *testing.T) {
	t.Parallel()

	svc := New(nil, nil)

	_, err := svc.UpdateEvent(context.Background(), 1, "Jazz Night", time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC), -5)
	if !errors.Is(err, ErrNegativeTickets) {
		t.Fatalf("expected ErrNegativeTickets, got %v", err)
	}
}

func TestValidateEvent_AcceptsZeroTickets(t *testing.T) {
	t.Parallel()

	if err := validateEvent("Sold Out Show", time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC), 0); err != nil {
		t.Fatalf("zero tickets is a valid sold-out state, got %v", err)
	}
}

package httpgin

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/campustix/campustix/internal/auth"
	"github.com/campustix/campustix/internal/booking"
	"github.com/campustix/campustix/internal/domain"
	"github.com/campustix/campustix/internal/repository"
	"github.com/campustix/campustix/internal/service"
	"github.com/campustix/campustix/internal/service/purchase"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubInventory struct {
	mu     sync.Mutex
	events map[int64]*domain.Event
}

func (s *stubInventory) DecrementTickets(ctx context.Context, eventID int64, quantity int) (*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if e.TicketsAvailable < quantity {
		return nil, repository.ErrInsufficientTickets
	}
	e.TicketsAvailable -= quantity
	cp := *e
	return &cp, nil
}

type stubCatalog struct {
	events []domain.Event
}

func (s *stubCatalog) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.events, nil
}

func newTestRouter(t *testing.T, tickets int) (*gin.Engine, *auth.Service) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	sessions := auth.New("router-test-secret", time.Hour)

	event := domain.Event{
		ID:               1,
		Name:             "Jazz Night",
		Date:             time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		TicketsAvailable: tickets,
	}
	inv := &stubInventory{events: map[int64]*domain.Event{1: &event}}

	purchaseSvc := purchase.New(inv, sessions, nil, nil, purchase.Config{})
	svcs := &service.Services{Purchase: purchaseSvc}
	relay := booking.NewRelay(&stubCatalog{events: []domain.Event{event}}, purchaseSvc)

	return NewRouter(svcs, relay, sessions, nil, []string{"*"}, logger), sessions
}

func issueToken(t *testing.T, sessions *auth.Service) string {
	t.Helper()
	token, err := sessions.Issue(domain.Subject{ID: "student-1", Name: "Sam"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Healthz(t *testing.T) {
	r, _ := newTestRouter(t, 10)

	w := doJSON(r, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header on every response")
	}
}

func TestRouter_CreateSession(t *testing.T) {
	r, _ := newTestRouter(t, 10)

	w := doJSON(r, http.MethodPost, "/auth/sessions", "", CreateSessionRequest{
		UserID: "student-1",
		Name:   "Sam",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp CreateSessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected a token in the response")
	}
	if resp.ExpiresIn != 3600 {
		t.Fatalf("expected 3600s expiry, got %d", resp.ExpiresIn)
	}
}

func TestRouter_Purchase(t *testing.T) {
	t.Run("succeeds with a valid session", func(t *testing.T) {
		r, sessions := newTestRouter(t, 10)
		token := issueToken(t, sessions)

		w := doJSON(r, http.MethodPost, "/events/1/purchase", token, PurchaseRequest{Quantity: 3})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var resp PurchaseResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.EventID != 1 || resp.Purchased != 3 || resp.RemainingTickets != 7 {
			t.Fatalf("unexpected confirmation: %+v", resp)
		}
	})

	t.Run("zero quantity is a client error", func(t *testing.T) {
		r, sessions := newTestRouter(t, 10)
		token := issueToken(t, sessions)

		w := doJSON(r, http.MethodPost, "/events/1/purchase", token, PurchaseRequest{Quantity: 0})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("missing bearer credential", func(t *testing.T) {
		r, _ := newTestRouter(t, 10)

		w := doJSON(r, http.MethodPost, "/events/1/purchase", "", PurchaseRequest{Quantity: 1})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("forged credential", func(t *testing.T) {
		r, _ := newTestRouter(t, 10)
		other := auth.New("some-other-secret", time.Hour)
		token := issueToken(t, other)

		w := doJSON(r, http.MethodPost, "/events/1/purchase", token, PurchaseRequest{Quantity: 1})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("insufficient tickets map to conflict", func(t *testing.T) {
		r, sessions := newTestRouter(t, 2)
		token := issueToken(t, sessions)

		w := doJSON(r, http.MethodPost, "/events/1/purchase", token, PurchaseRequest{Quantity: 5})
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		r, sessions := newTestRouter(t, 10)
		token := issueToken(t, sessions)

		w := doJSON(r, http.MethodPost, "/events/42/purchase", token, PurchaseRequest{Quantity: 1})
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestRouter_ConfirmBooking(t *testing.T) {
	t.Run("resolves the event by exact name", func(t *testing.T) {
		r, sessions := newTestRouter(t, 10)
		token := issueToken(t, sessions)

		w := doJSON(r, http.MethodPost, "/bookings/confirm", token, ConfirmBookingRequest{
			Intent:   "book",
			Event:    "Jazz Night",
			Quantity: 2,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var resp PurchaseResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.EventID != 1 || resp.Purchased != 2 {
			t.Fatalf("unexpected confirmation: %+v", resp)
		}
	})

	t.Run("unresolved name", func(t *testing.T) {
		r, sessions := newTestRouter(t, 10)
		token := issueToken(t, sessions)

		w := doJSON(r, http.MethodPost, "/bookings/confirm", token, ConfirmBookingRequest{
			Event:    "Jazz Nite",
			Quantity: 1,
		})
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

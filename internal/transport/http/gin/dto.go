package httpgin

import (
	"time"

	"github.com/campustix/campustix/internal/domain"
)

// Calendar dates travel as YYYY-MM-DD on the wire.
const dateLayout = "2006-01-02"

type PurchaseRequest struct {
	Quantity int `json:"quantity"`
}

type PurchaseResponse struct {
	EventID          int64 `json:"event_id"`
	Purchased        int   `json:"purchased"`
	RemainingTickets int   `json:"remaining_tickets"`
}

type ConfirmBookingRequest struct {
	Intent   string `json:"intent"`
	Event    string `json:"event" binding:"required"`
	Quantity int    `json:"quantity"`
}

type UpsertEventRequest struct {
	Name             string `json:"name" binding:"required"`
	Date             string `json:"date" binding:"required"`
	TicketsAvailable *int   `json:"tickets_available" binding:"required"`
}

type EventResponse struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Date             string `json:"date"`
	TicketsAvailable int    `json:"tickets_available"`
}

type CreateSessionRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Name   string `json:"name"`
}

type CreateSessionResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toEventResponse(e domain.Event) EventResponse {
	return EventResponse{
		ID:               e.ID,
		Name:             e.Name,
		Date:             e.Date.Format(dateLayout),
		TicketsAvailable: e.TicketsAvailable,
	}
}

func toEventResponses(events []domain.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	return out
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

package domain

import "time"

// Event is one ticketed occasion. TicketsAvailable is the only field
// mutated after creation, and it never goes below zero.
type Event struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Date             time.Time `json:"date"`
	TicketsAvailable int       `json:"tickets_available"`
}

// Subject is the authenticated identity resolved from a session credential.
type Subject struct {
	ID   string
	Name string
}

// PurchaseConfirmation is the outcome of a successful purchase.
type PurchaseConfirmation struct {
	EventID          int64
	Purchased        int
	RemainingTickets int
	Subject          Subject
}

// BookingIntent is a structured booking proposal produced by an external
// intent parser. Event is free text and may not match the catalog exactly.
type BookingIntent struct {
	Intent   string
	Event    string
	Quantity int
}

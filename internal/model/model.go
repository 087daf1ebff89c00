// Package model defines the core domain types for the event management system.
package model

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// User is the organizer account that owns events.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
}

// Event is owned by exactly one User.
// Date is formatted YYYY-MM-DD and Time HH:MM.
type Event struct {
	ID          int64  `json:"id"`
	OwnerID     int64  `json:"owner_id"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// EventSummary is the short form used by event listings.
type EventSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
}

// TicketType is a named, priced category of admission for one event.
type TicketType struct {
	ID                int64  `json:"id"`
	EventID           int64  `json:"event_id"`
	Name              string `json:"name"`
	Price             Money  `json:"price"`
	QuantityAvailable int    `json:"quantity_available"`
}

// Attendee is a person registered for an event.
type Attendee struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"event_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// MaxQuantity is the largest ticket count an INTEGER column holds.
const MaxQuantity = math.MaxInt32

// AttendeeTicket joins an Attendee to a TicketType with the purchased quantity.
type AttendeeTicket struct {
	AttendeeID int64 `json:"attendee_id"`
	TicketID   int64 `json:"ticket_id"`
	Quantity   int   `json:"quantity"`
}

// PurchasedTicket is one line of a completed registration.
type PurchasedTicket struct {
	TicketID  int64  `json:"ticket_id"`
	TypeName  string `json:"type_name"`
	Quantity  int    `json:"quantity"`
	UnitPrice Money  `json:"unit_price"`
}

// Registration is the outcome of a successful attendee registration.
type Registration struct {
	Attendee Attendee          `json:"attendee"`
	Tickets  []PurchasedTicket `json:"tickets"`
}

// Total returns the amount paid across all purchased tickets.
func (r *Registration) Total() Money {
	var total Money
	for _, t := range r.Tickets {
		total += t.UnitPrice * Money(t.Quantity)
	}
	return total
}

// AttendeeTickets returns the join rows recorded for this registration.
func (r *Registration) AttendeeTickets() []AttendeeTicket {
	rows := make([]AttendeeTicket, 0, len(r.Tickets))
	for _, t := range r.Tickets {
		rows = append(rows, AttendeeTicket{AttendeeID: r.Attendee.ID, TicketID: t.TicketID, Quantity: t.Quantity})
	}
	return rows
}

// Summary renders the purchase as "2x VIP, 1x General", ordered by ticket id.
func (r *Registration) Summary() string {
	lines := make([]PurchasedTicket, len(r.Tickets))
	copy(lines, r.Tickets)
	sort.Slice(lines, func(i, j int) bool { return lines[i].TicketID < lines[j].TicketID })

	parts := make([]string, 0, len(lines))
	for _, t := range lines {
		parts = append(parts, fmt.Sprintf("%dx %s", t.Quantity, t.TypeName))
	}
	return strings.Join(parts, ", ")
}

// Dashboard aggregates attendance and sales for one event.
type Dashboard struct {
	EventID            int64          `json:"event_id"`
	TotalAttendees     int            `json:"total_attendees"`
	TotalRevenue       Money          `json:"total_revenue"`
	TicketsSoldPerType map[string]int `json:"tickets_sold_per_type"`
}

// AttendeeListing is a row of the attendee list view.
type AttendeeListing struct {
	AttendeeID int64  `json:"attendee_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// Package repository implements all database queries for the event management
// system: organizers, events, ticket inventory and attendee registration.
// It uses pgx directly (no ORM).
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when a user email is already registered.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrDuplicateTicketType is returned when an event already has a ticket type with the same name.
	ErrDuplicateTicketType = errors.New("ticket type already exists for this event")

	// ErrInvalidTicketType is returned when a ticket type has no tickets, a
	// negative price, or values beyond what the columns hold.
	ErrInvalidTicketType = errors.New("invalid ticket type")

	// ErrOwnerNotFound is returned when an event references a missing user.
	ErrOwnerNotFound = errors.New("owner does not exist")

	// ErrEventNotFound is returned when a row references a missing event.
	ErrEventNotFound = errors.New("event does not exist")

	// ErrTicketNotFound is returned when a purchase names a ticket type that is not part of the event.
	ErrTicketNotFound = errors.New("ticket type does not exist for this event")

	// ErrInsufficientTickets is returned when a purchase exceeds the available quantity.
	ErrInsufficientTickets = errors.New("not enough tickets available")

	// ErrInvalidQuantity is returned when a purchase requests zero or fewer
	// tickets, or more than a ticket type can ever hold.
	ErrInvalidQuantity = errors.New("ticket quantity must be positive")

	// ErrEmptyPurchase is returned when a registration requests no tickets.
	ErrEmptyPurchase = errors.New("at least one ticket must be requested")
)

// Postgres SQLSTATE codes.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNumericOutOfRange   = "22003"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

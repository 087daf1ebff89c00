package repository

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/event-manager/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TicketRepository handles persistence for ticket types.
type TicketRepository struct {
	db *pgxpool.Pool
}

// NewTicketRepository constructs a TicketRepository.
func NewTicketRepository(db *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{db: db}
}

// Create inserts the ticket type and sets its generated ID. A new ticket
// type must offer at least one ticket at a price the column can hold.
func (r *TicketRepository) Create(ctx context.Context, t *model.TicketType) error {
	if t.QuantityAvailable <= 0 || t.QuantityAvailable > model.MaxQuantity {
		return fmt.Errorf("%w: quantity %d", ErrInvalidTicketType, t.QuantityAvailable)
	}
	if t.Price < 0 || t.Price > model.MaxPrice {
		return fmt.Errorf("%w: price %s", ErrInvalidTicketType, t.Price)
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO tickets (event_id, ticket_type_name, price, quantity_available)
		 VALUES ($1, $2, $3::numeric / 100, $4)
		 RETURNING ticket_id`,
		t.EventID, t.Name, int64(t.Price), t.QuantityAvailable,
	).Scan(&t.ID)
	if err != nil {
		switch pgErrorCode(err) {
		case codeUniqueViolation:
			return ErrDuplicateTicketType
		case codeForeignKeyViolation:
			return ErrEventNotFound
		case codeCheckViolation, codeNumericOutOfRange:
			return ErrInvalidTicketType
		}
		return fmt.Errorf("insert ticket type: %w", err)
	}
	return nil
}

// ListByEvent returns the event's ticket types with their current inventory.
func (r *TicketRepository) ListByEvent(ctx context.Context, eventID int64) ([]model.TicketType, error) {
	rows, err := r.db.Query(ctx,
		`SELECT ticket_id, event_id, ticket_type_name, (price * 100)::bigint, quantity_available
		 FROM tickets
		 WHERE event_id = $1
		 ORDER BY ticket_id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []model.TicketType
	for rows.Next() {
		var (
			t     model.TicketType
			cents int64
		)
		if err := rows.Scan(&t.ID, &t.EventID, &t.Name, &cents, &t.QuantityAvailable); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		t.Price = model.Money(cents)
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

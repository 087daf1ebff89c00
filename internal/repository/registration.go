package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Shivanand-hulikatti/event-manager/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegistrationRepository handles attendees, their ticket purchases and the
// aggregates derived from them.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Register records an attendee and their ticket purchases in one transaction.
// purchases maps a ticket type id to the requested quantity.
//
// Each ticket row is decremented with a single conditional UPDATE that only
// matches while quantity_available >= requested. The UPDATE takes the row
// lock, so a concurrent registration for the same ticket waits and then
// re-evaluates the condition against the committed quantity. Rows are
// touched in ascending ticket id order so two multi-ticket registrations
// cannot deadlock. Any failure rolls back every decrement and insert.
func (r *RegistrationRepository) Register(ctx context.Context, eventID int64, name, email string, purchases map[int64]int) (*model.Registration, error) {
	if len(purchases) == 0 {
		return nil, ErrEmptyPurchase
	}
	ticketIDs := make([]int64, 0, len(purchases))
	for id, qty := range purchases {
		if qty <= 0 || qty > model.MaxQuantity {
			return nil, fmt.Errorf("%w: ticket %d", ErrInvalidQuantity, id)
		}
		ticketIDs = append(ticketIDs, id)
	}
	sort.Slice(ticketIDs, func(i, j int) bool { return ticketIDs[i] < ticketIDs[j] })

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	reg := &model.Registration{Tickets: make([]model.PurchasedTicket, 0, len(ticketIDs))}

	// Step 1: reserve inventory.
	for _, ticketID := range ticketIDs {
		qty := purchases[ticketID]
		var cents int64
		line := model.PurchasedTicket{TicketID: ticketID, Quantity: qty}
		err = tx.QueryRow(ctx,
			`UPDATE tickets
			 SET quantity_available = quantity_available - $1
			 WHERE ticket_id = $2 AND event_id = $3 AND quantity_available >= $1
			 RETURNING ticket_type_name, (price * 100)::bigint`,
			qty, ticketID, eventID,
		).Scan(&line.TypeName, &cents)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				err = unavailable(ctx, tx, eventID, ticketID, qty)
				return nil, err
			}
			err = fmt.Errorf("decrement ticket %d: %w", ticketID, err)
			return nil, err
		}
		line.UnitPrice = model.Money(cents)
		reg.Tickets = append(reg.Tickets, line)
	}

	// Step 2: the attendee.
	reg.Attendee = model.Attendee{EventID: eventID, Name: name, Email: email}
	err = tx.QueryRow(ctx,
		`INSERT INTO attendees (event_id, name, email)
		 VALUES ($1, $2, $3)
		 RETURNING attendee_id, created_at`,
		eventID, name, email,
	).Scan(&reg.Attendee.ID, &reg.Attendee.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == codeForeignKeyViolation {
			err = ErrEventNotFound
			return nil, err
		}
		err = fmt.Errorf("insert attendee: %w", err)
		return nil, err
	}

	// Step 3: one attendee_tickets row per purchased ticket type.
	batch := &pgx.Batch{}
	for _, at := range reg.AttendeeTickets() {
		batch.Queue(
			`INSERT INTO attendee_tickets (attendee_id, ticket_id, quantity) VALUES ($1, $2, $3)`,
			at.AttendeeID, at.TicketID, at.Quantity,
		)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		err = fmt.Errorf("insert attendee tickets: %w", err)
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		err = fmt.Errorf("commit transaction: %w", err)
		return nil, err
	}
	return reg, nil
}

// unavailable explains why the conditional decrement matched no row.
func unavailable(ctx context.Context, tx pgx.Tx, eventID, ticketID int64, requested int) error {
	var available int
	err := tx.QueryRow(ctx,
		`SELECT quantity_available FROM tickets WHERE ticket_id = $1 AND event_id = $2`,
		ticketID, eventID,
	).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: ticket %d", ErrTicketNotFound, ticketID)
		}
		return fmt.Errorf("check ticket %d: %w", ticketID, err)
	}
	return fmt.Errorf("%w: ticket %d has %d left, %d requested", ErrInsufficientTickets, ticketID, available, requested)
}

// Dashboard computes attendance and revenue for the event from a single
// snapshot. An event without sales yields zeros and an empty mapping.
func (r *RegistrationRepository) Dashboard(ctx context.Context, eventID int64) (*model.Dashboard, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	d := &model.Dashboard{EventID: eventID, TicketsSoldPerType: map[string]int{}}

	if err := tx.QueryRow(ctx,
		`SELECT COUNT(attendee_id) FROM attendees WHERE event_id = $1`,
		eventID,
	).Scan(&d.TotalAttendees); err != nil {
		return nil, fmt.Errorf("count attendees: %w", err)
	}

	var revenue int64
	if err := tx.QueryRow(ctx,
		`SELECT (COALESCE(SUM(atk.quantity * t.price), 0) * 100)::bigint
		 FROM attendee_tickets atk
		 JOIN tickets t ON atk.ticket_id = t.ticket_id
		 WHERE t.event_id = $1`,
		eventID,
	).Scan(&revenue); err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	d.TotalRevenue = model.Money(revenue)

	rows, err := tx.Query(ctx,
		`SELECT t.ticket_type_name, SUM(atk.quantity)::bigint
		 FROM attendee_tickets atk
		 JOIN tickets t ON atk.ticket_id = t.ticket_id
		 WHERE t.event_id = $1
		 GROUP BY t.ticket_type_name`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("tickets sold per type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			typeName string
			sold     int64
		)
		if err := rows.Scan(&typeName, &sold); err != nil {
			return nil, fmt.Errorf("scan tickets sold: %w", err)
		}
		d.TicketsSoldPerType[typeName] = int(sold)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tickets sold per type: %w", err)
	}
	return d, nil
}

// ListAttendees returns the event's attendees. A non-empty ticketType keeps
// only attendees holding that ticket type.
func (r *RegistrationRepository) ListAttendees(ctx context.Context, eventID int64, ticketType string) ([]model.AttendeeListing, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if ticketType == "" {
		rows, err = r.db.Query(ctx,
			`SELECT attendee_id, name, email
			 FROM attendees
			 WHERE event_id = $1
			 ORDER BY attendee_id`,
			eventID,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT a.attendee_id, a.name, a.email
			 FROM attendees a
			 JOIN attendee_tickets atk ON a.attendee_id = atk.attendee_id
			 JOIN tickets t ON atk.ticket_id = t.ticket_id
			 WHERE a.event_id = $1 AND t.ticket_type_name = $2
			 ORDER BY a.attendee_id`,
			eventID, ticketType,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	defer rows.Close()

	var attendees []model.AttendeeListing
	for rows.Next() {
		var a model.AttendeeListing
		if err := rows.Scan(&a.AttendeeID, &a.Name, &a.Email); err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

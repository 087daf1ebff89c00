// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-manager/internal/metrics"
	"github.com/Shivanand-hulikatti/event-manager/internal/model"
	"github.com/Shivanand-hulikatti/event-manager/internal/notify"
	"github.com/Shivanand-hulikatti/event-manager/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var (
	// ErrValidation wraps every input validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden is returned when an organizer acts on another organizer's event.
	ErrForbidden = errors.New("event belongs to another organizer")
)

const notifyTimeout = 10 * time.Second

// UserStore persists organizer accounts.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// EventStore persists events.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	ListByOwner(ctx context.Context, ownerID int64) ([]model.EventSummary, error)
	GetByID(ctx context.Context, id int64) (*model.Event, error)
}

// TicketStore persists ticket types.
type TicketStore interface {
	Create(ctx context.Context, t *model.TicketType) error
	ListByEvent(ctx context.Context, eventID int64) ([]model.TicketType, error)
}

// RegistrationStore persists attendees and their purchases.
type RegistrationStore interface {
	Register(ctx context.Context, eventID int64, name, email string, purchases map[int64]int) (*model.Registration, error)
	Dashboard(ctx context.Context, eventID int64) (*model.Dashboard, error)
	ListAttendees(ctx context.Context, eventID int64, ticketType string) ([]model.AttendeeListing, error)
}

// EventService orchestrates every organizer operation.
type EventService struct {
	users         UserStore
	events        EventStore
	tickets       TicketStore
	registrations RegistrationStore
	notifier      notify.Notifier
	validate      *validator.Validate
	logger        zerolog.Logger
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(
	users UserStore,
	events EventStore,
	tickets TicketStore,
	registrations RegistrationStore,
	notifier notify.Notifier,
	logger zerolog.Logger,
) *EventService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &EventService{
		users:         users,
		events:        events,
		tickets:       tickets,
		registrations: registrations,
		notifier:      notifier,
		validate:      v,
		logger:        logger.With().Str("component", "service").Logger(),
	}
}

// CreateUser registers a new organizer. Emails are stored lower-cased.
func (s *EventService) CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Organization = strings.TrimSpace(req.Organization)
	if err := s.check(req); err != nil {
		return nil, err
	}

	u := &model.User{Name: req.Name, Email: req.Email, Organization: req.Organization}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, repository.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info().Int64("user_id", u.ID).Msg("user registered")
	return u, nil
}

// Login looks an organizer up by email.
func (s *EventService) Login(ctx context.Context, req model.LoginRequest) (*model.User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.check(req); err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	return u, nil
}

// GetUser returns the organizer with the given id.
func (s *EventService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// CreateEvent creates an event owned by ownerID.
func (s *EventService) CreateEvent(ctx context.Context, ownerID int64, req model.CreateEventRequest) (*model.Event, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	req.Location = strings.TrimSpace(req.Location)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.check(req); err != nil {
		return nil, err
	}

	e := &model.Event{
		OwnerID:     ownerID,
		Name:        req.Name,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		Description: req.Description,
	}
	if err := s.events.Create(ctx, e); err != nil {
		if errors.Is(err, repository.ErrOwnerNotFound) {
			return nil, repository.ErrOwnerNotFound
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.Info().Int64("event_id", e.ID).Int64("owner_id", ownerID).Msg("event created")
	return e, nil
}

// ListEvents returns the organizer's events.
func (s *EventService) ListEvents(ctx context.Context, ownerID int64) ([]model.EventSummary, error) {
	return s.events.ListByOwner(ctx, ownerID)
}

// GetEvent returns an event owned by userID.
func (s *EventService) GetEvent(ctx context.Context, userID, eventID int64) (*model.Event, error) {
	return s.ownedEvent(ctx, userID, eventID)
}

// AddTicketType adds a ticket type to one of the organizer's events.
func (s *EventService) AddTicketType(ctx context.Context, userID, eventID int64, req model.AddTicketTypeRequest) (*model.TicketType, error) {
	if _, err := s.ownedEvent(ctx, userID, eventID); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := s.check(req); err != nil {
		return nil, err
	}

	t := &model.TicketType{
		EventID:           eventID,
		Name:              req.Name,
		Price:             req.Price,
		QuantityAvailable: req.Quantity,
	}
	if err := s.tickets.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrDuplicateTicketType) ||
			errors.Is(err, repository.ErrEventNotFound) ||
			errors.Is(err, repository.ErrInvalidTicketType) {
			return nil, err
		}
		return nil, fmt.Errorf("add ticket type: %w", err)
	}
	return t, nil
}

// ListTickets returns the ticket inventory of one of the organizer's events.
func (s *EventService) ListTickets(ctx context.Context, userID, eventID int64) ([]model.TicketType, error) {
	if _, err := s.ownedEvent(ctx, userID, eventID); err != nil {
		return nil, err
	}
	return s.tickets.ListByEvent(ctx, eventID)
}

// RegisterAttendee registers an attendee against the event's ticket
// inventory and, once committed, sends exactly one confirmation. A failed
// confirmation is logged and does not undo the registration.
func (s *EventService) RegisterAttendee(ctx context.Context, userID, eventID int64, req model.RegisterAttendeeRequest) (*model.Registration, error) {
	event, err := s.ownedEvent(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.check(req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}

	reg, err := s.registrations.Register(ctx, eventID, req.Name, req.Email, req.Tickets)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientTickets):
			metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeSoldOut).Inc()
			return nil, err
		case errors.Is(err, repository.ErrTicketNotFound),
			errors.Is(err, repository.ErrInvalidQuantity),
			errors.Is(err, repository.ErrEmptyPurchase),
			errors.Is(err, repository.ErrEventNotFound):
			metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
			return nil, err
		}
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("register attendee: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	sold := 0
	for _, t := range reg.Tickets {
		sold += t.Quantity
	}
	metrics.TicketsSoldTotal.Add(float64(sold))
	s.logger.Info().
		Int64("event_id", eventID).
		Int64("attendee_id", reg.Attendee.ID).
		Int("tickets", sold).
		Msg("attendee registered")

	s.confirm(ctx, event, reg)
	return reg, nil
}

func (s *EventService) confirm(ctx context.Context, event *model.Event, reg *model.Registration) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	err := s.notifier.RegistrationConfirmed(ctx, notify.Confirmation{
		AttendeeName:  reg.Attendee.Name,
		AttendeeEmail: reg.Attendee.Email,
		EventName:     event.Name,
		Tickets:       reg.Summary(),
		Total:         reg.Total(),
	})
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		s.logger.Error().Err(err).
			Int64("attendee_id", reg.Attendee.ID).
			Msg("registration confirmation failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
}

// Dashboard returns attendance and revenue figures for the event.
func (s *EventService) Dashboard(ctx context.Context, userID, eventID int64) (*model.Dashboard, error) {
	if _, err := s.ownedEvent(ctx, userID, eventID); err != nil {
		return nil, err
	}
	d, err := s.registrations.Dashboard(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return d, nil
}

// ListAttendees lists the event's attendees, optionally only those holding
// the named ticket type.
func (s *EventService) ListAttendees(ctx context.Context, userID, eventID int64, ticketType string) ([]model.AttendeeListing, error) {
	if _, err := s.ownedEvent(ctx, userID, eventID); err != nil {
		return nil, err
	}
	return s.registrations.ListAttendees(ctx, eventID, strings.TrimSpace(ticketType))
}

func (s *EventService) ownedEvent(ctx context.Context, userID, eventID int64) (*model.Event, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if e.OwnerID != userID {
		return nil, ErrForbidden
	}
	return e, nil
}

// check runs struct validation and converts failures into ErrValidation.
func (s *EventService) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " is not a valid email address"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

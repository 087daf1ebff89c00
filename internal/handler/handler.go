// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Shivanand-hulikatti/event-manager/internal/auth"
	"github.com/Shivanand-hulikatti/event-manager/internal/model"
	"github.com/Shivanand-hulikatti/event-manager/internal/repository"
	"github.com/Shivanand-hulikatti/event-manager/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Service is the subset of service.EventService the HTTP layer calls.
type Service interface {
	CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	CreateEvent(ctx context.Context, ownerID int64, req model.CreateEventRequest) (*model.Event, error)
	ListEvents(ctx context.Context, ownerID int64) ([]model.EventSummary, error)
	GetEvent(ctx context.Context, userID, eventID int64) (*model.Event, error)
	AddTicketType(ctx context.Context, userID, eventID int64, req model.AddTicketTypeRequest) (*model.TicketType, error)
	ListTickets(ctx context.Context, userID, eventID int64) ([]model.TicketType, error)
	RegisterAttendee(ctx context.Context, userID, eventID int64, req model.RegisterAttendeeRequest) (*model.Registration, error)
	Dashboard(ctx context.Context, userID, eventID int64) (*model.Dashboard, error)
	ListAttendees(ctx context.Context, userID, eventID int64, ticketType string) ([]model.AttendeeListing, error)
}

// Tokens issues and verifies session tokens.
type Tokens interface {
	Issue(userID int64, email string) (string, error)
	Verify(token string) (auth.Session, error)
}

// EventHandler holds all HTTP handlers for the event management API.
type EventHandler struct {
	svc    Service
	tokens Tokens
	logger zerolog.Logger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc Service, tokens Tokens, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		svc:    svc,
		tokens: tokens,
		logger: logger.With().Str("component", "http").Logger(),
	}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func eventID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// fail maps service and repository errors onto HTTP statuses. notFound is
// the message used for a missing resource.
func (h *EventHandler) fail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "event belongs to another organizer")
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, repository.ErrEventNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, repository.ErrDuplicateEmail),
		errors.Is(err, repository.ErrDuplicateTicketType),
		errors.Is(err, repository.ErrInsufficientTickets):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrTicketNotFound),
		errors.Is(err, repository.ErrInvalidQuantity),
		errors.Is(err, repository.ErrInvalidTicketType),
		errors.Is(err, repository.ErrEmptyPurchase):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrOwnerNotFound):
		writeError(w, http.StatusUnauthorized, "session user no longer exists")
	default:
		h.logger.Error().Err(err).
			Str("request_id", requestID(r)).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// ─── Users & sessions ─────────────────────────────────────────────────────────

// CreateUser handles POST /users
// Registers a new organizer account.
func (h *EventHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, err := h.svc.CreateUser(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "user not found")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /sessions
// Looks the organizer up by email and returns a bearer token.
func (h *EventHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, err := h.svc.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "unknown email")
			return
		}
		h.fail(w, r, err, "user not found")
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}

	writeJSON(w, http.StatusCreated, model.TokenResponse{Token: token, User: *user})
}

// Me handles GET /me
func (h *EventHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetUser(r.Context(), userID(r.Context()))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "session user no longer exists")
			return
		}
		h.fail(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ─── Events ───────────────────────────────────────────────────────────────────

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), userID(r.Context()), req)
	if err != nil {
		h.fail(w, r, err, "event not found")
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events
// Returns the caller's events, newest date first.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context(), userID(r.Context()))
	if err != nil {
		h.fail(w, r, err, "")
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.EventSummary{}
	}

	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := h.svc.GetEvent(r.Context(), userID(r.Context()), id)
	if err != nil {
		h.fail(w, r, err, "event not found")
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// ─── Tickets ──────────────────────────────────────────────────────────────────

// AddTicketType handles POST /events/{id}/tickets
func (h *EventHandler) AddTicketType(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req model.AddTicketTypeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ticket, err := h.svc.AddTicketType(r.Context(), userID(r.Context()), id, req)
	if err != nil {
		h.fail(w, r, err, "event not found")
		return
	}

	writeJSON(w, http.StatusCreated, ticket)
}

// ListTickets handles GET /events/{id}/tickets
func (h *EventHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	tickets, err := h.svc.ListTickets(r.Context(), userID(r.Context()), id)
	if err != nil {
		h.fail(w, r, err, "event not found")
		return
	}
	if tickets == nil {
		tickets = []model.TicketType{}
	}

	writeJSON(w, http.StatusOK, tickets)
}

// ─── Attendees ────────────────────────────────────────────────────────────────

// registrationResponse is the body returned after a successful registration.
type registrationResponse struct {
	Attendee model.Attendee          `json:"attendee"`
	Tickets  []model.PurchasedTicket `json:"tickets"`
	Summary  string                  `json:"summary"`
	Total    model.Money             `json:"total"`
}

// RegisterAttendee handles POST /events/{id}/attendees
// Registers an attendee and decrements ticket inventory atomically.
func (h *EventHandler) RegisterAttendee(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req model.RegisterAttendeeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	reg, err := h.svc.RegisterAttendee(r.Context(), userID(r.Context()), id, req)
	if err != nil {
		h.fail(w, r, err, "event not found")
		return
	}

	writeJSON(w, http.StatusCreated, registrationResponse{
		Attendee: reg.Attendee,
		Tickets:  reg.Tickets,
		Summary:  reg.Summary(),
		Total:    reg.Total(),
	})
}

// ListAttendees handles GET /events/{id}/attendees?ticket_type=
// An empty ticket_type lists every attendee.
func (h *EventHandler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	attendees, err := h.svc.ListAttendees(r.Context(), userID(r.Context()), id, r.URL.Query().Get("ticket_type"))
	if err != nil {
		h.fail(w, r, err, "event not found")
		return
	}
	if attendees == nil {
		attendees = []model.AttendeeListing{}
	}

	writeJSON(w, http.StatusOK, attendees)
}

// Dashboard handles GET /events/{id}/dashboard
func (h *EventHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	d, err := h.svc.Dashboard(r.Context(), userID(r.Context()), id)
	if err != nil {
		h.fail(w, r, err, "event not found")
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck handles GET /health
func HealthCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

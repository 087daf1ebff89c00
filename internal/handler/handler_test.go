package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-manager/internal/auth"
	"github.com/Shivanand-hulikatti/event-manager/internal/config"
	"github.com/Shivanand-hulikatti/event-manager/internal/model"
	"github.com/Shivanand-hulikatti/event-manager/internal/repository"
	"github.com/Shivanand-hulikatti/event-manager/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService answers every call from its fields and records the last
// acting user id and event id it saw.
type stubService struct {
	user       *model.User
	event      *model.Event
	reg        *model.Registration
	err        error
	lastUser   int64
	lastEvent  int64
	lastFilter string
}

func (s *stubService) CreateUser(_ context.Context, req model.CreateUserRequest) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.User{ID: 1, Name: req.Name, Email: req.Email}, nil
}

func (s *stubService) Login(_ context.Context, req model.LoginRequest) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func (s *stubService) GetUser(_ context.Context, id int64) (*model.User, error) {
	s.lastUser = id
	return s.user, s.err
}

func (s *stubService) CreateEvent(_ context.Context, ownerID int64, req model.CreateEventRequest) (*model.Event, error) {
	s.lastUser = ownerID
	if s.err != nil {
		return nil, s.err
	}
	return &model.Event{ID: 7, OwnerID: ownerID, Name: req.Name}, nil
}

func (s *stubService) ListEvents(_ context.Context, ownerID int64) ([]model.EventSummary, error) {
	s.lastUser = ownerID
	return nil, s.err
}

func (s *stubService) GetEvent(_ context.Context, userID, eventID int64) (*model.Event, error) {
	s.lastUser, s.lastEvent = userID, eventID
	if s.err != nil {
		return nil, s.err
	}
	return s.event, nil
}

func (s *stubService) AddTicketType(_ context.Context, userID, eventID int64, req model.AddTicketTypeRequest) (*model.TicketType, error) {
	s.lastUser, s.lastEvent = userID, eventID
	if s.err != nil {
		return nil, s.err
	}
	return &model.TicketType{ID: 3, EventID: eventID, Name: req.Name, Price: req.Price, QuantityAvailable: req.Quantity}, nil
}

func (s *stubService) ListTickets(_ context.Context, userID, eventID int64) ([]model.TicketType, error) {
	s.lastUser, s.lastEvent = userID, eventID
	return nil, s.err
}

func (s *stubService) RegisterAttendee(_ context.Context, userID, eventID int64, req model.RegisterAttendeeRequest) (*model.Registration, error) {
	s.lastUser, s.lastEvent = userID, eventID
	if s.err != nil {
		return nil, s.err
	}
	return s.reg, nil
}

func (s *stubService) Dashboard(_ context.Context, userID, eventID int64) (*model.Dashboard, error) {
	s.lastUser, s.lastEvent = userID, eventID
	if s.err != nil {
		return nil, s.err
	}
	return &model.Dashboard{EventID: eventID, TicketsSoldPerType: map[string]int{"VIP": 2}, TotalAttendees: 1, TotalRevenue: 20000}, nil
}

func (s *stubService) ListAttendees(_ context.Context, userID, eventID int64, ticketType string) ([]model.AttendeeListing, error) {
	s.lastUser, s.lastEvent, s.lastFilter = userID, eventID, ticketType
	return nil, s.err
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type testServer struct {
	svc    *stubService
	tokens *auth.TokenManager
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	svc := &stubService{
		user:  &model.User{ID: 42, Name: "Ada", Email: "ada@example.com"},
		event: &model.Event{ID: 7, OwnerID: 42, Name: "GopherCon", Date: "2026-06-01", Time: "09:30"},
	}
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	h := NewEventHandler(svc, tokens, zerolog.Nop())
	return &testServer{
		svc:    svc,
		tokens: tokens,
		router: NewRouter(h, pinger{}, config.ServerConfig{
			AllowedOrigins:  []string{"http://localhost:3000"},
			PublicPerMinute: 3,
		}, zerolog.Nop()),
	}
}

func (s *testServer) do(t *testing.T, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token, err := s.tokens.Issue(42, "ada@example.com")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthCheck(pinger{})(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	HealthCheck(pinger{err: errors.New("down")})(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLogin_IssuesVerifiableToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/sessions", `{"email":"ada@example.com"}`, false)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp model.TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	session, err := s.tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), session.UserID)
	assert.Equal(t, "Ada", resp.User.Name)
}

func TestLogin_UnknownEmail(t *testing.T) {
	s := newTestServer(t)
	s.svc.err = repository.ErrNotFound

	rec := s.do(t, http.MethodPost, "/sessions", `{"email":"nobody@example.com"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/events", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/events", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, int64(42), s.svc.lastUser)
}

func TestCreateEvent_RejectsUnknownFields(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/events", `{"name":"x","capacity":10}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "invalid request body")
}

func TestCreateEvent_UsesSessionOwner(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/events",
		`{"name":"GopherCon","date":"2026-06-01","time":"09:30","location":"Berlin"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var e model.Event
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
	assert.Equal(t, int64(42), e.OwnerID)
}

func TestEventID_Invalid(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/events/abc", "/events/0/tickets", "/events/-1/dashboard"} {
		rec := s.do(t, http.MethodGet, path, "", true)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", fmt.Errorf("%w: name is required", service.ErrValidation), http.StatusBadRequest},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"not found", repository.ErrNotFound, http.StatusNotFound},
		{"sold out", fmt.Errorf("%w: ticket 3", repository.ErrInsufficientTickets), http.StatusConflict},
		{"foreign ticket", fmt.Errorf("%w: ticket 9", repository.ErrTicketNotFound), http.StatusBadRequest},
		{"duplicate ticket type", repository.ErrDuplicateTicketType, http.StatusConflict},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.svc.err = tt.err

			rec := s.do(t, http.MethodPost, "/events/7/attendees",
				`{"name":"Linus","email":"linus@example.com","tickets":{"3":1}}`, true)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", decodeError(t, rec))
			}
		})
	}
}

func TestRegisterAttendee(t *testing.T) {
	s := newTestServer(t)
	s.svc.reg = &model.Registration{
		Attendee: model.Attendee{ID: 5, EventID: 7, Name: "Linus", Email: "linus@example.com"},
		Tickets: []model.PurchasedTicket{
			{TicketID: 4, TypeName: "General", Quantity: 1, UnitPrice: 2500},
			{TicketID: 3, TypeName: "VIP", Quantity: 2, UnitPrice: 10000},
		},
	}

	rec := s.do(t, http.MethodPost, "/events/7/attendees",
		`{"name":"Linus","email":"linus@example.com","tickets":{"3":2,"4":1}}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(7), s.svc.lastEvent)

	var body struct {
		Summary string `json:"summary"`
		Total   string `json:"total"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "2x VIP, 1x General", body.Summary)
	assert.Equal(t, "225.00", body.Total)
}

func TestListAttendees_PassesFilter(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/events/7/attendees?ticket_type=VIP", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, "VIP", s.svc.lastFilter)
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/events/7/dashboard", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"event_id":7,"total_attendees":1,"total_revenue":"200.00","tickets_sold_per_type":{"VIP":2}}`,
		rec.Body.String())
}

func TestCORS(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/events", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit_PublicRoutes(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < 3; i++ {
		rec := s.do(t, http.MethodPost, "/sessions", `{"email":"ada@example.com"}`, false)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := s.do(t, http.MethodPost, "/sessions", `{"email":"ada@example.com"}`, false)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// Authenticated routes are not limited.
	rec = s.do(t, http.MethodGet, "/events", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLimiterStore_SweepsIdleClients(t *testing.T) {
	now := time.Now()
	store := newLimiterStore(10)
	store.now = func() time.Time { return now }

	store.limiter("10.0.0.1")
	now = now.Add(limiterTTL + time.Minute)
	store.limiter("10.0.0.2")

	assert.Len(t, store.limiters, 1)
	assert.Contains(t, store.limiters, "10.0.0.2")
}

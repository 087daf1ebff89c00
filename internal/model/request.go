package model

// CreateUserRequest is the payload for registering an organizer.
type CreateUserRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	Email        string `json:"email" validate:"required,email,max=255"`
	Organization string `json:"organization" validate:"max=255"`
}

// LoginRequest identifies an organizer by email.
type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,datetime=15:04"`
	Location    string `json:"location" validate:"required,max=255"`
	Description string `json:"description"`
}

// AddTicketTypeRequest is the payload for adding a ticket type to an event.
type AddTicketTypeRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Price    Money  `json:"price" validate:"gte=0,lte=9999999999"`
	Quantity int    `json:"quantity" validate:"gt=0,lte=2147483647"`
}

// RegisterAttendeeRequest is the payload for registering an attendee.
// Tickets maps a ticket type id to the requested quantity.
type RegisterAttendeeRequest struct {
	Name    string        `json:"name" validate:"required,max=255"`
	Email   string        `json:"email" validate:"required,email,max=255"`
	Tickets map[int64]int `json:"tickets" validate:"required,min=1,dive,keys,gt=0,endkeys,gt=0,lte=2147483647"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

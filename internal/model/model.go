// Package model defines the core domain types for the event admission system.
package model

import "time"

// Event is a capacity-limited happening users can register for.
// Capacity is fixed at creation time and never changes.
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	Location  string    `json:"location"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

// User is an attendee identity. Email is unique across users.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Registration records that a user currently holds a seat at an event.
// It is a fact, not a mutable object: created by a successful register,
// removed by a cancel, never updated. At most one exists per (event, user).
type Registration struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// EventDetail is an event together with its currently registered users.
type EventDetail struct {
	Event
	RegisteredUsers []User `json:"registered_users"`
}

// EventStats summarises occupancy for one event.
type EventStats struct {
	TotalRegistrations int    `json:"total_registrations"`
	RemainingCapacity  int    `json:"remaining_capacity"`
	PercentUsed        string `json:"percent_used"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	Location  string    `json:"location"`
	Capacity  int       `json:"capacity"`
}

// CreateUserRequest is the payload for creating a new user.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RegisterRequest is the payload for registering a user for an event.
// The same shape is used for cancellation.
type RegisterRequest struct {
	UserID string `json:"user_id"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

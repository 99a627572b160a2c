// Package service implements business logic, validation, and orchestration
// between HTTP handlers and storage. Storage is consumed through the
// interfaces below so the Postgres repositories and the in-memory store
// are interchangeable.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"event-admission/internal/model"
)

// ErrEventStarted is returned when registering for an event whose start
// time has already passed.
var ErrEventStarted = errors.New("event has already started")

// ErrUserNotFound distinguishes a missing user from a missing event on
// the register path.
var ErrUserNotFound = errors.New("user not found")

// ErrValidation marks input errors detected before any storage call.
// Concrete messages wrap it with %w.
var ErrValidation = errors.New("invalid input")

// EventStore persists events.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	ListUpcoming(ctx context.Context, now time.Time) ([]model.Event, error)
}

// UserStore persists users.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

// Ledger is the atomic registration record. TryRegister and Cancel must
// be safe under arbitrary concurrency on the same event.
type Ledger interface {
	TryRegister(ctx context.Context, eventID, userID string, capacity int) (*model.Registration, error)
	Cancel(ctx context.Context, eventID, userID string) error
	Count(ctx context.Context, eventID string) (int, error)
	ListRegisteredUsers(ctx context.Context, eventID string) ([]model.User, error)
}

// StatsCache caches occupancy stats per event. Get returns (nil, nil)
// on a miss.
type StatsCache interface {
	Get(ctx context.Context, eventID string) (*model.EventStats, error)
	Set(ctx context.Context, eventID string, stats *model.EventStats) error
	Invalidate(ctx context.Context, eventID string) error
}

// isValidEmail does a basic structural check (no external deps).
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}

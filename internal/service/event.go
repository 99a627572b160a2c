package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"event-admission/internal/model"

	"github.com/google/uuid"
)

// Capacity bounds enforced at event creation. Capacity is immutable
// afterwards, so these are checked exactly once.
const (
	minCapacity = 1
	maxCapacity = 1000
)

// EventService handles event creation and retrieval.
type EventService struct {
	events EventStore
	ledger Ledger
}

// NewEventService constructs an EventService.
func NewEventService(events EventStore, ledger Ledger) *EventService {
	return &EventService{events: events, ledger: ledger}
}

// Create validates the request and persists a new event.
func (s *EventService) Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Location = strings.TrimSpace(req.Location)
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if req.Location == "" {
		return nil, fmt.Errorf("%w: location is required", ErrValidation)
	}
	if req.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: start_time is required", ErrValidation)
	}
	if req.Capacity < minCapacity || req.Capacity > maxCapacity {
		return nil, fmt.Errorf("%w: capacity must be between %d and %d", ErrValidation, minCapacity, maxCapacity)
	}

	event := &model.Event{
		ID:        uuid.New().String(),
		Title:     req.Title,
		StartTime: req.StartTime,
		Location:  req.Location,
		Capacity:  req.Capacity,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// GetDetail returns an event together with its registered users.
func (s *EventService) GetDetail(ctx context.Context, id string) (*model.EventDetail, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrValidation)
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	users, err := s.ledger.ListRegisteredUsers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list registered users: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return &model.EventDetail{Event: *event, RegisteredUsers: users}, nil
}

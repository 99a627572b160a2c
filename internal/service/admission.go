package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"event-admission/internal/model"
	"event-admission/internal/repository"

	"github.com/sirupsen/logrus"
)

// AdmissionService orchestrates registration requests: it applies the
// business rules that are orthogonal to capacity (event exists, user
// exists, event not yet started) and delegates the capacity-safe part to
// the Ledger, forwarding its outcome verbatim.
type AdmissionService struct {
	events EventStore
	users  UserStore
	ledger Ledger
	stats  StatsCache // optional; nil disables caching
}

// NewAdmissionService constructs an AdmissionService. stats may be nil.
func NewAdmissionService(events EventStore, users UserStore, ledger Ledger, stats StatsCache) *AdmissionService {
	return &AdmissionService{events: events, users: users, ledger: ledger, stats: stats}
}

// Register admits userID to eventID if the event exists, has not started
// at instant now, the user exists, and the ledger grants a seat.
func (s *AdmissionService) Register(ctx context.Context, eventID, userID string, now time.Time) (*model.Registration, error) {
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrValidation)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrValidation)
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !now.Before(event.StartTime) {
		return nil, ErrEventStarted
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	reg, err := s.ledger.TryRegister(ctx, eventID, userID, event.Capacity)
	if err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, eventID)
	return reg, nil
}

// Cancel removes the user's registration. Cancellation carries no
// temporal restriction: a seat may be given up even after the event has
// started.
func (s *AdmissionService) Cancel(ctx context.Context, eventID, userID string) error {
	if eventID == "" {
		return fmt.Errorf("%w: event id is required", ErrValidation)
	}
	if userID == "" {
		return fmt.Errorf("%w: user_id is required", ErrValidation)
	}

	if err := s.ledger.Cancel(ctx, eventID, userID); err != nil {
		return err
	}
	s.invalidateStats(ctx, eventID)
	return nil
}

// Stats returns occupancy figures for an event, served from the cache
// when possible.
func (s *AdmissionService) Stats(ctx context.Context, eventID string) (*model.EventStats, error) {
	if s.stats != nil {
		cached, err := s.stats.Get(ctx, eventID)
		if err != nil {
			logrus.WithError(err).WithField("event_id", eventID).Warn("stats cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	total, err := s.ledger.Count(ctx, eventID)
	if err != nil {
		return nil, err
	}

	stats := &model.EventStats{
		TotalRegistrations: total,
		RemainingCapacity:  event.Capacity - total,
		PercentUsed:        formatPercent(total, event.Capacity),
	}

	if s.stats != nil {
		if err := s.stats.Set(ctx, eventID, stats); err != nil {
			logrus.WithError(err).WithField("event_id", eventID).Warn("stats cache write failed")
		}
	}
	return stats, nil
}

// ListUpcoming returns events starting strictly after now, soonest first,
// ties broken by location.
func (s *AdmissionService) ListUpcoming(ctx context.Context, now time.Time) ([]model.Event, error) {
	return s.events.ListUpcoming(ctx, now)
}

func (s *AdmissionService) invalidateStats(ctx context.Context, eventID string) {
	if s.stats == nil {
		return
	}
	if err := s.stats.Invalidate(ctx, eventID); err != nil {
		logrus.WithError(err).WithField("event_id", eventID).Warn("stats cache invalidation failed")
	}
}

// formatPercent renders used/capacity as a percentage with two decimals,
// rounding half away from zero, e.g. "45.00%".
func formatPercent(used, capacity int) string {
	pct := math.Round(float64(used)/float64(capacity)*100*100) / 100
	return fmt.Sprintf("%.2f%%", pct)
}

package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"event-admission/internal/model"
)

// MemoryStore is an in-memory implementation of the event, user, and
// ledger interfaces. It backs the test suite and local development runs
// where no Postgres is available.
//
// Admission is serialised per event with a dedicated mutex, mirroring the
// per-row lock the Postgres ledger takes: attempts on the same event
// queue, attempts on different events do not contend. The store-wide
// mutex only guards map structure and is held for map operations only.
type MemoryStore struct {
	mu     sync.Mutex
	events map[string]*model.Event
	users  map[string]*model.User
	emails map[string]struct{}
	regs   map[string]map[string]time.Time // event id -> user id -> registered at

	admission map[string]*sync.Mutex // per-event admission locks
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:    make(map[string]*model.Event),
		users:     make(map[string]*model.User),
		emails:    make(map[string]struct{}),
		regs:      make(map[string]map[string]time.Time),
		admission: make(map[string]*sync.Mutex),
	}
}

func (s *MemoryStore) admissionLock(eventID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.admission[eventID]
	if !ok {
		lock = &sync.Mutex{}
		s.admission[eventID] = lock
	}
	return lock
}

// ── Events ────────────────────────────────────────────────────────────

func (s *MemoryStore) Create(ctx context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.events[e.ID] = &cp
	s.regs[e.ID] = make(map[string]time.Time)
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *MemoryStore) ListUpcoming(ctx context.Context, now time.Time) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var events []model.Event
	for _, e := range s.events {
		if e.StartTime.After(now) {
			events = append(events, *e)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].StartTime.Equal(events[j].StartTime) {
			return events[i].StartTime.Before(events[j].StartTime)
		}
		return events[i].Location < events[j].Location
	})
	return events, nil
}

// ── Users ─────────────────────────────────────────────────────────────

// Users returns a user-facing view of the store so one MemoryStore value
// can satisfy both the event and user store interfaces without method
// name clashes.
func (s *MemoryStore) Users() *MemoryUserStore {
	return &MemoryUserStore{s: s}
}

// MemoryUserStore adapts MemoryStore to the user store interface.
type MemoryUserStore struct {
	s *MemoryStore
}

func (us *MemoryUserStore) Create(ctx context.Context, u *model.User) error {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()
	if _, taken := us.s.emails[u.Email]; taken {
		return ErrDuplicateEmail
	}
	cp := *u
	us.s.users[u.ID] = &cp
	us.s.emails[u.Email] = struct{}{}
	return nil
}

func (us *MemoryUserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()
	u, ok := us.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (us *MemoryUserStore) List(ctx context.Context) ([]model.User, error) {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()
	users := make([]model.User, 0, len(us.s.users))
	for _, u := range us.s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

// ── Ledger ────────────────────────────────────────────────────────────

func (s *MemoryStore) TryRegister(ctx context.Context, eventID, userID string, capacity int) (*model.Registration, error) {
	lock := s.admissionLock(eventID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	evRegs, ok := s.regs[eventID]
	if !ok {
		return nil, ErrNotFound
	}
	if _, dup := evRegs[userID]; dup {
		return nil, ErrAlreadyRegistered
	}
	if len(evRegs) >= capacity {
		return nil, ErrEventFull
	}

	now := time.Now().UTC()
	evRegs[userID] = now
	return &model.Registration{EventID: eventID, UserID: userID, CreatedAt: now}, nil
}

func (s *MemoryStore) Cancel(ctx context.Context, eventID, userID string) error {
	lock := s.admissionLock(eventID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	evRegs, ok := s.regs[eventID]
	if !ok {
		return ErrNotRegistered
	}
	if _, found := evRegs[userID]; !found {
		return ErrNotRegistered
	}
	delete(evRegs, userID)
	return nil
}

func (s *MemoryStore) Count(ctx context.Context, eventID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.regs[eventID]), nil
}

func (s *MemoryStore) ListRegisteredUsers(ctx context.Context, eventID string) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type entry struct {
		user model.User
		at   time.Time
	}
	var entries []entry
	for userID, at := range s.regs[eventID] {
		if u, ok := s.users[userID]; ok {
			entries = append(entries, entry{user: *u, at: at})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].at.Before(entries[j].at)
	})

	var users []model.User
	for _, e := range entries {
		users = append(users, e.user)
	}
	return users, nil
}

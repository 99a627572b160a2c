package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"event-admission/internal/model"
)

func newTestStore(t *testing.T, capacity int) (*MemoryStore, string) {
	t.Helper()
	s := NewMemoryStore()
	eventID := "ev-1"
	err := s.Create(context.Background(), &model.Event{
		ID:        eventID,
		Title:     "launch party",
		StartTime: time.Now().Add(24 * time.Hour),
		Location:  "main hall",
		Capacity:  capacity,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return s, eventID
}

func TestTryRegister_ConcurrentAttemptsRespectCapacity(t *testing.T) {
	const capacity = 10
	const attempts = 50

	s, eventID := newTestStore(t, capacity)
	ctx := context.Background()

	var wg sync.WaitGroup
	start := make(chan struct{})
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			<-start
			_, err := s.TryRegister(ctx, eventID, userID, capacity)
			results <- err
		}(fmt.Sprintf("user-%d", i))
	}

	close(start)
	wg.Wait()
	close(results)

	var admitted, full int
	for err := range results {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, ErrEventFull):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if admitted != capacity {
		t.Fatalf("expected exactly %d admissions, got %d", capacity, admitted)
	}
	if full != attempts-capacity {
		t.Fatalf("expected %d full rejections, got %d", attempts-capacity, full)
	}

	count, err := s.Count(ctx, eventID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != capacity {
		t.Fatalf("expected committed count %d, got %d", capacity, count)
	}
}

func TestTryRegister_ConcurrentChurnNeverExceedsCapacity(t *testing.T) {
	const capacity = 5
	const workers = 20

	s, eventID := newTestStore(t, capacity)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := s.TryRegister(ctx, eventID, userID, capacity); err == nil {
					_ = s.Cancel(ctx, eventID, userID)
				}
			}
		}(fmt.Sprintf("user-%d", i))
	}
	wg.Wait()

	count, err := s.Count(ctx, eventID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count > capacity {
		t.Fatalf("capacity invariant violated: count %d > capacity %d", count, capacity)
	}
}

func TestTryRegister_DuplicateUser(t *testing.T) {
	s, eventID := newTestStore(t, 10)
	ctx := context.Background()

	if _, err := s.TryRegister(ctx, eventID, "user-1", 10); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := s.TryRegister(ctx, eventID, "user-1", 10); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestTryRegister_UnknownEvent(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.TryRegister(context.Background(), "missing", "user-1", 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCancel_FreesCapacity(t *testing.T) {
	const capacity = 2
	s, eventID := newTestStore(t, capacity)
	ctx := context.Background()

	for i := 0; i < capacity; i++ {
		if _, err := s.TryRegister(ctx, eventID, fmt.Sprintf("user-%d", i), capacity); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}
	if _, err := s.TryRegister(ctx, eventID, "late-user", capacity); !errors.Is(err, ErrEventFull) {
		t.Fatalf("expected ErrEventFull, got %v", err)
	}

	if err := s.Cancel(ctx, eventID, "user-0"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := s.TryRegister(ctx, eventID, "late-user", capacity); err != nil {
		t.Fatalf("expected admission after cancel, got %v", err)
	}
}

func TestCancel_SecondCallReportsNotRegistered(t *testing.T) {
	s, eventID := newTestStore(t, 10)
	ctx := context.Background()

	if _, err := s.TryRegister(ctx, eventID, "user-1", 10); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := s.Cancel(ctx, eventID, "user-1"); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if err := s.Cancel(ctx, eventID, "user-1"); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
}

func TestTryRegister_IndependentEvents(t *testing.T) {
	s, first := newTestStore(t, 1)
	ctx := context.Background()

	second := "ev-2"
	if err := s.Create(ctx, &model.Event{ID: second, Title: "second", StartTime: time.Now().Add(time.Hour), Location: "annex", Capacity: 1}); err != nil {
		t.Fatalf("create second event: %v", err)
	}

	// Filling one event must not consume capacity on another.
	if _, err := s.TryRegister(ctx, first, "user-1", 1); err != nil {
		t.Fatalf("register first event: %v", err)
	}
	if _, err := s.TryRegister(ctx, second, "user-1", 1); err != nil {
		t.Fatalf("register second event: %v", err)
	}
}

func TestListRegisteredUsers_RegistrationOrder(t *testing.T) {
	s, eventID := newTestStore(t, 10)
	ctx := context.Background()
	users := s.Users()

	for i, name := range []string{"ana", "bruno", "carla"} {
		id := fmt.Sprintf("user-%d", i)
		err := users.Create(ctx, &model.User{ID: id, Name: name, Email: name + "@example.com", CreatedAt: time.Now()})
		if err != nil {
			t.Fatalf("create user %s: %v", name, err)
		}
		if _, err := s.TryRegister(ctx, eventID, id, 10); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
		time.Sleep(time.Millisecond)
	}

	got, err := s.ListRegisteredUsers(ctx, eventID)
	if err != nil {
		t.Fatalf("list registered users: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 registered users, got %d", len(got))
	}
	for i, name := range []string{"ana", "bruno", "carla"} {
		if got[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, got[i].Name)
		}
	}
}

func TestMemoryUserStore_DuplicateEmail(t *testing.T) {
	s := NewMemoryStore()
	users := s.Users()
	ctx := context.Background()

	err := users.Create(ctx, &model.User{ID: "u1", Name: "ana", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	err = users.Create(ctx, &model.User{ID: "u2", Name: "other", Email: "ana@example.com"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event-admission/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegistrationLedger is the authoritative record of who holds a seat at
// which event, and the sole enforcer of the uniqueness and capacity
// invariants. No other component inserts or deletes registrations.
type RegistrationLedger struct {
	db *pgxpool.Pool
}

// NewRegistrationLedger constructs a RegistrationLedger.
func NewRegistrationLedger(db *pgxpool.Pool) *RegistrationLedger {
	return &RegistrationLedger{db: db}
}

// TryRegister atomically admits a user to an event.
//
// A naive "SELECT COUNT, then INSERT if below capacity" is racy: two
// transactions read the same committed count before either inserts, and a
// 10-seat event ends up with 11 registrations. The whole check-and-insert
// therefore runs in one transaction that first takes a row-level lock on
// the event (SELECT ... FOR UPDATE), serialising admission per event:
// concurrent attempts on the same event queue on the row lock, attempts
// on different events proceed independently.
//
// The capacity argument is the caller's view of the limit; the value is
// re-read under the lock so the stored capacity always wins. Outcomes:
// ErrNotFound (event row gone), ErrAlreadyRegistered, ErrEventFull, or
// the committed registration.
func (l *RegistrationLedger) TryRegister(ctx context.Context, eventID, userID string, capacity int) (*model.Registration, error) {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Lock the event row. Held until commit or rollback.
	err = tx.QueryRow(ctx,
		`SELECT capacity FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check existing registration: %w", err)
	}
	if exists {
		err = ErrAlreadyRegistered
		return nil, err
	}

	var total int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1`,
		eventID,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	if total >= capacity {
		err = ErrEventFull
		return nil, err
	}

	reg := &model.Registration{
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO registrations (event_id, user_id, created_at)
		 VALUES ($1, $2, $3)`,
		reg.EventID, reg.UserID, reg.CreatedAt,
	)
	if err != nil {
		// The primary key on (event_id, user_id) backs the row lock up.
		if isUniqueViolation(err) {
			err = ErrAlreadyRegistered
		} else {
			err = fmt.Errorf("insert registration: %w", err)
		}
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return reg, nil
}

// Cancel removes the registration if present, freeing one seat.
// Returns ErrNotRegistered when there is nothing to remove. A single
// DELETE is already atomic, so no explicit transaction is needed.
func (l *RegistrationLedger) Cancel(ctx context.Context, eventID, userID string) error {
	tag, err := l.db.Exec(ctx,
		`DELETE FROM registrations WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotRegistered
	}
	return nil
}

// Count returns the committed number of registrations for an event.
func (l *RegistrationLedger) Count(ctx context.Context, eventID string) (int, error) {
	var total int
	err := l.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1`,
		eventID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return total, nil
}

// ListRegisteredUsers returns the users currently registered for an event,
// in registration order.
func (l *RegistrationLedger) ListRegisteredUsers(ctx context.Context, eventID string) ([]model.User, error) {
	rows, err := l.db.Query(ctx,
		`SELECT u.id, u.name, u.email, u.created_at
		 FROM registrations r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.event_id = $1
		 ORDER BY r.created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registered users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan registered user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

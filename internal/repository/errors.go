package repository

import "errors"

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrEventFull is returned when an event has no remaining capacity.
var ErrEventFull = errors.New("event is full")

// ErrAlreadyRegistered is returned when a user who already holds a seat
// attempts to register again for the same event.
var ErrAlreadyRegistered = errors.New("user already registered for this event")

// ErrNotRegistered is returned when cancelling a registration that does
// not exist.
var ErrNotRegistered = errors.New("user not registered for this event")

// ErrDuplicateEmail is returned when a new user's email is already taken.
var ErrDuplicateEmail = errors.New("email already exists")

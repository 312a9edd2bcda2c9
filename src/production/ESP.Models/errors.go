package espmodels

import (
	"errors"
)

// Error taxonomy surfaced by repositories and services. Controllers map these
// onto HTTP status codes with errors.Is.
var (
	// ErrInvalidArgument indicates a missing or malformed required field.
	// It is always detected before any store access.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDuplicateEmail indicates a registration with an email that already exists.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers malformed, expired, and badly signed tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrStoreUnavailable indicates a storage failure. Any open transaction has
	// been rolled back; prior state is unchanged.
	ErrStoreUnavailable = errors.New("store unavailable")
)

package domain

import "errors"

// Authentication and authorization failures. Each kind maps to exactly one
// outcome a caller can branch on; the HTTP layer translates them centrally.
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrTokenMalformed     = errors.New("invalid token")
	ErrTokenExpired       = errors.New("session expired")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// Directory failures.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// Invite lifecycle failures.
var (
	ErrInviteNotFound    = errors.New("invite not found")
	ErrInviteExpired     = errors.New("invite expired")
	ErrInviteAlreadyUsed = errors.New("invite already used")
	ErrDuplicateInvite   = errors.New("pending invite already exists for this email")
)

// ErrValidation marks malformed input caught before any state mutation.
var ErrValidation = errors.New("validation failed")

// ErrUnavailable wraps collaborator outages (directory, invite store) so raw
// driver errors never leak to callers.
var ErrUnavailable = errors.New("service unavailable")

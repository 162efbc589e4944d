package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token related errors. The four verification outcomes are disjoint;
	// they are distinguished internally for logging but all map to the same
	// client-facing 401.
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenRevoked          = errors.New("token revoked")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrHashing marks a catastrophic password hashing failure. Not
	// user-recoverable; surfaces as a generic server error.
	ErrHashing = errors.New("password hashing failed")
)

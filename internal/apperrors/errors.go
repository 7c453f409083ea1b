package apperrors

import (
	"errors"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrHandleTaken  = errors.New("handle already registered")
	ErrUserNotFound = errors.New("user not found")

	// Login failures collapse to this single value so a caller can't tell
	// an unknown email from a wrong password
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Refresh failures collapse to this single value: bad signature,
	// expired, unknown and already consumed tokens all look the same
	ErrUnauthorized = errors.New("unauthorized")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenExpired  = errors.New("refresh token is expired")

	ErrTokenExpired   = errors.New("token is expired")
	ErrTokenMalformed = errors.New("token is malformed")
)

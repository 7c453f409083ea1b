package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mcandela/linkhub/internal/models"
)

type CreateUserParams struct {
	Email          string
	Handle         string
	Name           string
	Description    string
	Image          string
	Links          []string
	HashedPassword string
}

// UpdateUserParams is a partial patch: nil fields are left unchanged.
// Email and password are immutable through this repository.
type UpdateUserParams struct {
	Handle      *string
	Name        *string
	Description *string
	Image       *string
	Links       []string
}

// User repository interface
type UserRepo interface {
	// Create user
	// Must return apperrors.ErrEmailTaken or apperrors.ErrHandleTaken if
	// the matching unique constraint is violated
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by id, email or normalized handle
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByHandle(ctx context.Context, handle string) (models.User, error)

	// Apply a partial update to the user's mutable fields
	// Same unique violation mapping as CreateUser for the handle
	UpdateUser(ctx context.Context, userID uuid.UUID, arg UpdateUserParams) (models.User, error)
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	// Persist an issued token
	Save(ctx context.Context, token models.RefreshToken) error

	// Atomically look up and delete a token by its exact string, so two
	// concurrent consumers of the same token get exactly one winner
	// If absent: apperrors.ErrRefreshTokenNotFound
	// If present but expired: apperrors.ErrRefreshTokenExpired (the row is
	// removed anyway)
	Consume(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Drop every token the user holds. Used by single-session policies
	DeleteForUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Purge tokens that expired before the given moment
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Storage bundles the repositories over one connection or transaction
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo

	// InTx runs fn against a Storage bound to a single transaction.
	// Commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}

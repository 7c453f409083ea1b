package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mcandela/linkhub/internal/apperrors"
	"github.com/mcandela/linkhub/internal/models"
	"github.com/mcandela/linkhub/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

// Empty handles are stored as NULL so the unique constraint doesn't fire
// for users that registered without one
const createUser = `-- name: CreateUser
INSERT INTO users (id, email, handle, name, description, image, links, password_hash)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8)
RETURNING id, created_at, email, COALESCE(handle, ''), name, description, image, links, password_hash
`

func (r *UserRepo) CreateUser(ctx context.Context, arg repository.CreateUserParams) (models.User, error) {
	links := arg.Links
	if links == nil {
		links = []string{}
	}

	rows, _ := r.DB.Query(ctx, createUser,
		uuid.New(), arg.Email, arg.Handle, arg.Name, arg.Description, arg.Image, links, arg.HashedPassword,
	)
	user, err := pgx.CollectOneRow(rows, rowToUser)
	if err != nil {
		return user, mapUniqueViolation(err)
	}

	return user, nil
}

const getUserByID = `-- name: getUserByID
SELECT id, created_at, email, COALESCE(handle, ''), name, description, image, links, password_hash
FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, userID)
	return collectUser(rows)
}

const getUserByEmail = `-- name: getUserByEmail
SELECT id, created_at, email, COALESCE(handle, ''), name, description, image, links, password_hash
FROM users
WHERE email = $1
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	return collectUser(rows)
}

const getUserByHandle = `-- name: getUserByHandle
SELECT id, created_at, email, COALESCE(handle, ''), name, description, image, links, password_hash
FROM users
WHERE handle = $1
`

func (r *UserRepo) GetUserByHandle(ctx context.Context, handle string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByHandle, handle)
	return collectUser(rows)
}

// Only the profile fields are patchable. Email and password hash stay as
// they are no matter what the caller sends
const updateUser = `-- name: UpdateUser
UPDATE users
SET handle      = NULLIF(COALESCE($2, handle), ''),
    name        = COALESCE($3, name),
    description = COALESCE($4, description),
    image       = COALESCE($5, image),
    links       = COALESCE($6, links)
WHERE id = $1
RETURNING id, created_at, email, COALESCE(handle, ''), name, description, image, links, password_hash
`

func (r *UserRepo) UpdateUser(ctx context.Context, userID uuid.UUID, arg repository.UpdateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, updateUser,
		userID, arg.Handle, arg.Name, arg.Description, arg.Image, arg.Links,
	)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, mapUniqueViolation(err)
	}
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Email, &u.Handle, &u.Name, &u.Description, &u.Image, &u.Links, &u.HashedPassword)
	return u, err
}

// mapUniqueViolation translates a unique constraint violation into the
// field level error the constraint name identifies. This is the backstop
// against registration races: the pre-checks only improve error messages
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch pgErr.ConstraintName {
		case "users_email_key":
			return apperrors.ErrEmailTaken
		case "users_handle_key":
			return apperrors.ErrHandleTaken
		}
	}

	return fmt.Errorf("db error: %w", err)
}

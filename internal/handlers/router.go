package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/mcandela/linkhub/internal/apperrors"
	"github.com/mcandela/linkhub/internal/handlers/middleware"
	"github.com/mcandela/linkhub/internal/logger"
	"github.com/mcandela/linkhub/internal/models"
	"github.com/mcandela/linkhub/internal/service/auth"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(authService authService, log logger.Logger) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authenticatorFunc(authService, log))
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	authmux := http.NewServeMux()

	authmux.Handle("POST /register", handleRegister(authService, log))
	authmux.Handle("POST /login", handleLogin(authService, log))
	authmux.Handle("POST /refresh-token", handleTokenRefresh(authService, log))
	authmux.Handle("GET /handle/{handle}", handleGetByHandle(authService, log))

	authmux.Handle("GET /me", withAuth(handleUserMe()))
	authmux.Handle("PATCH /me", withAuth(handleUpdateProfile(authService, log)))

	root := http.NewServeMux()
	root.Handle("/auth/", http.StripPrefix("/auth", authmux))
	root.Handle("GET /health-check", handleHealthCheck())

	handler := chain(root,
		middleware.LoggerMiddleware(log),
	)

	return handler
}

// Auth service contract the handlers rely on
type authService interface {
	// Register user. Returns apperrors.ErrEmailTaken or
	// apperrors.ErrHandleTaken if a unique field is held by another user
	Register(ctx context.Context, arg auth.RegisterParams) (models.User, error)

	// Login by email and password. Unknown email and wrong password both
	// return apperrors.ErrInvalidCredentials
	Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error)

	// Rotate a refresh token. A rejected token (missing, expired,
	// consumed, bad signature) is apperrors.ErrUnauthorized; anything
	// else is an internal failure
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	// Patch the user's mutable profile fields
	UpdateProfile(ctx context.Context, userID uuid.UUID, arg auth.UpdateProfileParams) (models.User, error)

	// Public lookups
	GetByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetByHandle(ctx context.Context, handle string) (models.User, error)

	// Resolve a bearer access token into its user
	Authenticate(ctx context.Context, access string) (models.User, error)
}

// authenticatorFunc adapts the auth service to the middleware contract:
// read the bearer token from the request, resolve it to a user
func authenticatorFunc(authService authService, log logger.Logger) middleware.AuthenticateFunc {
	return func(ctx context.Context, r *http.Request) (models.User, error) {
		token, err := middleware.BearerToken(r)
		if err != nil {
			return models.User{}, err
		}

		user, err := authService.Authenticate(ctx, token)
		switch {
		case errors.Is(err, apperrors.ErrUnauthorized):
			log.Debug("access token rejected", "error", err)
			return models.User{}, err
		case err != nil:
			log.Error("authentication failed", "error", err)
			return models.User{}, err
		}

		return user, nil
	}
}

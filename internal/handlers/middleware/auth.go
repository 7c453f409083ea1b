package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mcandela/linkhub/internal/apperrors"
	"github.com/mcandela/linkhub/internal/handlers/render"
	"github.com/mcandela/linkhub/internal/handlers/userctx"
	"github.com/mcandela/linkhub/internal/models"
)

var ErrNoBearerToken = errors.New("no bearer token in request")

// AuthenticateFunc resolves a request into the authenticated user
type AuthenticateFunc func(ctx context.Context, r *http.Request) (models.User, error)

// BearerToken extracts the token from the Authorization header
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", ErrNoBearerToken
	}

	return token, nil
}

func AuthMiddleware(authenticate AuthenticateFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authenticate(r.Context(), r)
			switch {
			case errors.Is(err, ErrNoBearerToken), errors.Is(err, apperrors.ErrUnauthorized):
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			case err != nil:
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			ctx := userctx.NewContext(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

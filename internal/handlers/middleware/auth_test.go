package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcandela/linkhub/internal/apperrors"
	"github.com/mcandela/linkhub/internal/handlers/userctx"
	"github.com/mcandela/linkhub/internal/models"
)

func Test_BearerToken(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantErr   error
	}{
		{name: "ok", header: "Bearer sometoken", wantToken: "sometoken"},
		{name: "scheme is case insensitive", header: "bearer sometoken", wantToken: "sometoken"},
		{name: "no header", header: "", wantErr: ErrNoBearerToken},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", wantErr: ErrNoBearerToken},
		{name: "scheme without token", header: "Bearer ", wantErr: ErrNoBearerToken},
		{name: "token without scheme", header: "sometoken", wantErr: ErrNoBearerToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			token, err := BearerToken(req)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func Test_AuthMiddleware(t *testing.T) {
	user := models.User{ID: uuid.New(), Email: "nk@example.com"}

	authenticate := func(_ context.Context, r *http.Request) (models.User, error) {
		switch r.Header.Get("Authorization") {
		case "Bearer valid":
			return user, nil
		case "Bearer broken":
			return models.User{}, errors.New("db error: connection refused")
		default:
			return models.User{}, fmt.Errorf("%w: bad token", apperrors.ErrUnauthorized)
		}
	}

	var gotUser models.User
	var gotOk bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotOk = userctx.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := AuthMiddleware(authenticate)(next)

	t.Run("authenticated user put in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer valid")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, gotOk, "user should be in request context")
		assert.Equal(t, user.ID, gotUser.ID)
	})

	t.Run("rejected token stops the chain", func(t *testing.T) {
		gotOk = false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer invalid")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, gotOk, "next handler must not run")
		assert.JSONEq(t, `{"error": "service_error", "message": "Unauthorized"}`, rec.Body.String())
	})

	t.Run("infrastructure failure is a server error", func(t *testing.T) {
		gotOk = false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer broken")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code, "a backend fault must not read as a rejected token")
		assert.False(t, gotOk, "next handler must not run")
	})
}

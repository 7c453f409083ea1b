// Package integration wires the real router, service and repositories
// together over a database transaction that rolls back after each test.
// Tests get a running HTTP server plus direct service handles to arrange
// state without going through the API
package integration

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcandela/linkhub/internal/handlers"
	"github.com/mcandela/linkhub/internal/logger"
	"github.com/mcandela/linkhub/internal/repository"
	"github.com/mcandela/linkhub/internal/repository/postgres"
	"github.com/mcandela/linkhub/internal/service/auth"
	"github.com/mcandela/linkhub/internal/testutil"
)

type Services struct {
	AuthService *auth.AuthService
	Storage     repository.Storage
}

// RunTx runs fn against a test server whose whole stack shares one
// transaction. Rollback on exit keeps tests independent without
// recreating the database
func RunTx(pool *pgxpool.Pool, t *testing.T, fn func(srvURL string, s Services)) {
	t.Helper()

	testutil.WithTx(pool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)

		authService, err := auth.NewService(auth.Config{
			AccessSecret:  "integration-access-secret",
			RefreshSecret: "integration-refresh-secret",
			BcryptCost:    bcrypt.MinCost,
		}, storage)
		require.NoError(t, err)

		srv := httptest.NewServer(handlers.NewRouter(authService, logger.NewNoOpLogger()))
		defer srv.Close()

		fn(srv.URL, Services{
			AuthService: authService,
			Storage:     storage,
		})
	})
}

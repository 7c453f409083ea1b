package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcandela/linkhub/internal/apperrors"
	"github.com/mcandela/linkhub/internal/models"
	"github.com/mcandela/linkhub/internal/testutil"
)

func Test_RefreshTokenRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	mustCreateUser := func(t *testing.T, tx pgx.Tx, email string) models.User {
		t.Helper()
		users := UserRepo{DB: tx}
		user, err := users.CreateUser(t.Context(), createUserParams(email, ""))
		require.NoError(t, err)
		return user
	}

	tokenRow := func(userID uuid.UUID, value string, ttl time.Duration) models.RefreshToken {
		now := time.Now().Truncate(time.Second)
		return models.RefreshToken{
			ID:        uuid.New(),
			UserID:    userID,
			Token:     value,
			CreatedAt: now,
			ExpiresAt: now.Add(ttl),
		}
	}

	t.Run("save and consume ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}
			user := mustCreateUser(t, tx, "a@x.com")
			saved := tokenRow(user.ID, "token-value", time.Hour)

			err := r.Save(t.Context(), saved)
			require.NoError(t, err)

			got, err := r.Consume(t.Context(), "token-value")

			require.NoError(t, err)
			assert.Equal(t, saved.ID, got.ID)
			assert.Equal(t, user.ID, got.UserID)
			assert.Equal(t, "token-value", got.Token)
		})
	})

	t.Run("consume removes the row", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}
			user := mustCreateUser(t, tx, "a@x.com")
			require.NoError(t, r.Save(t.Context(), tokenRow(user.ID, "single-use", time.Hour)))

			_, err := r.Consume(t.Context(), "single-use")
			require.NoError(t, err)

			_, err = r.Consume(t.Context(), "single-use")

			require.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound, "second consume must not find anything")
		})
	})

	t.Run("consume unknown token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}

			_, err := r.Consume(t.Context(), "never-saved")

			require.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})

	t.Run("consume expired token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}
			user := mustCreateUser(t, tx, "a@x.com")
			require.NoError(t, r.Save(t.Context(), tokenRow(user.ID, "stale", -time.Minute)))

			_, err := r.Consume(t.Context(), "stale")
			require.ErrorIs(t, err, apperrors.ErrRefreshTokenExpired)

			_, err = r.Consume(t.Context(), "stale")
			require.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound, "expired row is deleted on first consume")
		})
	})

	t.Run("save duplicate token value", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}
			user := mustCreateUser(t, tx, "a@x.com")
			require.NoError(t, r.Save(t.Context(), tokenRow(user.ID, "dup", time.Hour)))

			err := r.Save(t.Context(), tokenRow(user.ID, "dup", time.Hour))

			require.Error(t, err, "token column is unique")
		})
	})

	t.Run("delete for user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}
			first := mustCreateUser(t, tx, "a@x.com")
			second := mustCreateUser(t, tx, "b@x.com")
			require.NoError(t, r.Save(t.Context(), tokenRow(first.ID, "first-1", time.Hour)))
			require.NoError(t, r.Save(t.Context(), tokenRow(first.ID, "first-2", time.Hour)))
			require.NoError(t, r.Save(t.Context(), tokenRow(second.ID, "second-1", time.Hour)))

			deleted, err := r.DeleteForUser(t.Context(), first.ID)

			require.NoError(t, err)
			assert.EqualValues(t, 2, deleted)

			_, err = r.Consume(t.Context(), "second-1")
			assert.NoError(t, err, "other user's tokens survive")
		})
	})

	t.Run("delete expired", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}
			user := mustCreateUser(t, tx, "a@x.com")
			require.NoError(t, r.Save(t.Context(), tokenRow(user.ID, "old", -time.Hour)))
			require.NoError(t, r.Save(t.Context(), tokenRow(user.ID, "fresh", time.Hour)))

			deleted, err := r.DeleteExpired(t.Context(), time.Now())

			require.NoError(t, err)
			assert.EqualValues(t, 1, deleted)

			_, err = r.Consume(t.Context(), "fresh")
			assert.NoError(t, err)
		})
	})

	t.Run("tokens removed with user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}
			user := mustCreateUser(t, tx, "a@x.com")
			require.NoError(t, r.Save(t.Context(), tokenRow(user.ID, "cascade", time.Hour)))

			_, err := tx.Exec(t.Context(), "DELETE FROM users WHERE id = $1", user.ID)
			require.NoError(t, err)

			_, err = r.Consume(t.Context(), "cascade")
			require.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})
}

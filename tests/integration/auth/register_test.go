package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcandela/linkhub/internal/service/auth"
	"github.com/mcandela/linkhub/internal/testutil"
	"github.com/mcandela/linkhub/tests/integration"
)

const (
	RegisterURL = "/auth/register"
)

func Test_Register(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("register ok", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, _ integration.Services) {
			data := `{
				"email": "nk@example.com",
				"password": "StrongEnoughPassword",
				"handle": "My Cool Page!!",
				"name": "NK"
			}`
			resp, err := http.Post(srvURL+RegisterURL, "application/json", strings.NewReader(data))
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", string(body))

			var profile struct {
				ID     string   `json:"id"`
				Email  string   `json:"email"`
				Handle string   `json:"handle"`
				Name   string   `json:"name"`
				Links  []string `json:"links"`
			}
			require.NoError(t, json.Unmarshal(body, &profile))
			assert.NotEmpty(t, profile.ID)
			assert.Equal(t, "nk@example.com", profile.Email)
			assert.Equal(t, "my-cool-page", profile.Handle, "handle comes back normalized")
			assert.Equal(t, "NK", profile.Name)
			assert.NotNil(t, profile.Links, "links render as an empty list, not null")

			assert.NotContains(t, string(body), "password", "no credential material in the response")
		})
	})

	t.Run("register duplicate email", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, s integration.Services) {
			_, err := s.AuthService.Register(t.Context(), auth.RegisterParams{
				Email:    "nk@example.com",
				Password: "StrongEnoughPassword",
			})
			require.NoError(t, err)

			data := `{"email": "nk@example.com", "password": "AnotherGoodPassword"}`
			resp, err := http.Post(srvURL+RegisterURL, "application/json", strings.NewReader(data))
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			require.Equalf(t, http.StatusConflict, resp.StatusCode, "not expected code. Body: %s", string(body))
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Email already registered"
				}`, string(body))
		})
	})

	t.Run("register duplicate handle", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, s integration.Services) {
			_, err := s.AuthService.Register(t.Context(), auth.RegisterParams{
				Email:    "nk@example.com",
				Password: "StrongEnoughPassword",
				Handle:   "my-page",
			})
			require.NoError(t, err)

			data := `{"email": "other@example.com", "password": "StrongEnoughPassword", "handle": "My Page"}`
			resp, err := http.Post(srvURL+RegisterURL, "application/json", strings.NewReader(data))
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			require.Equalf(t, http.StatusConflict, resp.StatusCode, "not expected code. Body: %s", string(body))
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Handle already registered"
				}`, string(body))
		})
	})

	t.Run("register validation failed", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, _ integration.Services) {
			data := `{"email": "not-an-email", "password": "short"}`
			resp, err := http.Post(srvURL+RegisterURL, "application/json", strings.NewReader(data))
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", string(body))
			assert.Contains(t, string(body), "validation_failed")
			assert.Contains(t, string(body), "email")
			assert.Contains(t, string(body), "password")
		})
	})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/mcandela/linkhub/internal/apperrors"
	"github.com/mcandela/linkhub/internal/handlers/render"
	"github.com/mcandela/linkhub/internal/handlers/userctx"
	"github.com/mcandela/linkhub/internal/logger"
	"github.com/mcandela/linkhub/internal/service/auth"
)

// Public profile resolution by handle, no auth required
func handleGetByHandle(authService authService, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := authService.GetByHandle(r.Context(), r.PathValue("handle"))
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "User not found", http.StatusNotFound)
			default:
				log.Error("handle lookup failed", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, user.Public())
	})
}

// Profile of the authenticated user
func handleUserMe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		render.JSON(w, user.Public())
	})
}

// Partial profile update for the authenticated user
func handleUpdateProfile(authService authService, log logger.Logger) http.Handler {
	type UpdateRequest struct {
		Handle      *string  `json:"handle" validate:"omitempty,max=255"`
		Name        *string  `json:"name" validate:"omitempty,max=255"`
		Description *string  `json:"description" validate:"omitempty,max=255"`
		Image       *string  `json:"image" validate:"omitempty,url,max=255"`
		Links       []string `json:"links" validate:"omitempty,dive,max=255"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		data, err := render.BindAndValidate[UpdateRequest](w, r)
		if err != nil {
			return
		}

		updated, err := authService.UpdateProfile(r.Context(), user.ID, auth.UpdateProfileParams{
			Handle:      data.Handle,
			Name:        data.Name,
			Description: data.Description,
			Image:       data.Image,
			Links:       data.Links,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrHandleTaken):
				render.ServiceError(w, "Handle already registered", http.StatusConflict)
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "User not found", http.StatusNotFound)
			default:
				log.Error("profile update failed", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, updated.Public())
	})
}

func handleHealthCheck() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		render.JSON(w, map[string]string{"status": "ok"})
	})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/mcandela/linkhub/internal/apperrors"
	"github.com/mcandela/linkhub/internal/handlers/render"
	"github.com/mcandela/linkhub/internal/logger"
	"github.com/mcandela/linkhub/internal/models"
	"github.com/mcandela/linkhub/internal/service/auth"
)

func handleRegister(authService authService, log logger.Logger) http.Handler {
	type RegisterRequest struct {
		Email       string   `json:"email" validate:"required,email,max=255"`
		Password    string   `json:"password" validate:"required,min=8,max=255"`
		Handle      string   `json:"handle" validate:"omitempty,max=255"`
		Name        string   `json:"name" validate:"omitempty,max=255"`
		Description string   `json:"description" validate:"omitempty,max=255"`
		Image       string   `json:"image" validate:"omitempty,url,max=255"`
		Links       []string `json:"links" validate:"omitempty,dive,max=255"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[RegisterRequest](w, r)
		if err != nil {
			// Error response is already written
			return
		}

		user, err := authService.Register(r.Context(), auth.RegisterParams{
			Email:       data.Email,
			Password:    data.Password,
			Handle:      data.Handle,
			Name:        data.Name,
			Description: data.Description,
			Image:       data.Image,
			Links:       data.Links,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrEmailTaken):
				render.ServiceError(w, "Email already registered", http.StatusConflict)
			case errors.Is(err, apperrors.ErrHandleTaken):
				render.ServiceError(w, "Handle already registered", http.StatusConflict)
			default:
				log.Error("register failed", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSONWithStatus(w, user.Public(), http.StatusCreated)
	})
}

func handleLogin(authService authService, log logger.Logger) http.Handler {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	type LoginResponse struct {
		User         models.PublicProfile `json:"user"`
		Token        string               `json:"token"`
		RefreshToken string               `json:"refreshToken"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[LoginRequest](w, r)
		if err != nil {
			return
		}

		user, pair, err := authService.Login(r.Context(), data.Email, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrInvalidCredentials):
				render.ServiceError(w, "Invalid email or password", http.StatusUnauthorized)
			default:
				log.Error("login failed", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, LoginResponse{
			User:         user.Public(),
			Token:        pair.Access.Value,
			RefreshToken: pair.Refresh.Value,
		})
	})
}

func handleTokenRefresh(authService authService, log logger.Logger) http.Handler {
	type RefreshRequest struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}
	type RefreshResponse struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refreshToken"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[RefreshRequest](w, r)
		if err != nil {
			return
		}

		pair, err := authService.Refresh(r.Context(), data.RefreshToken)
		if err != nil {
			// One opaque message for every refresh failure
			switch {
			case errors.Is(err, apperrors.ErrUnauthorized):
				render.ServiceError(w, "Invalid or expired refresh token", http.StatusUnauthorized)
			default:
				log.Error("token refresh failed", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, RefreshResponse{
			Token:        pair.Access.Value,
			RefreshToken: pair.Refresh.Value,
		})
	})
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcandela/linkhub/internal/apperrors"
	"github.com/mcandela/linkhub/internal/handle"
	"github.com/mcandela/linkhub/internal/models"
	"github.com/mcandela/linkhub/internal/repository"
)

// A well formed bcrypt hash that matches no password. Login verifies
// against it when the email is unknown, so unknown-email and wrong-password
// attempts cost the same amount of work
const enumerationGuardHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type Config struct {
	// Secret keys to sign access and refresh token payloads
	// Required, must differ from each other
	AccessSecret  string
	RefreshSecret string

	// Access and refresh token lifetimes. Zero means issuer defaults
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Hasher to use during registration and login
	// Default is BcryptHasher with the given cost
	Hasher     PasswordHasher
	BcryptCost int

	// If set, issuing a refresh token drops every other token the user
	// holds, so at most one session stays alive
	SingleSession bool
}

type RegisterParams struct {
	Email       string
	Password    string
	Handle      string
	Name        string
	Description string
	Image       string
	Links       []string
}

// UpdateProfileParams is a partial patch: nil fields stay unchanged
type UpdateProfileParams struct {
	Handle      *string
	Name        *string
	Description *string
	Image       *string
	Links       []string
}

// Auth service. Owns orchestration of credentials, tokens and profiles;
// the sole translator of storage and crypto failures into apperrors values
type AuthService struct {
	issuer  *TokenIssuer
	hasher  PasswordHasher
	storage repository.Storage

	singleSession bool
}

func NewService(cfg Config, storage repository.Storage) (*AuthService, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{Cost: cfg.BcryptCost}
	}

	issuer, err := NewIssuer(IssuerConfig{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	if err != nil {
		return nil, err
	}

	return &AuthService{
		issuer:        issuer,
		hasher:        hasher,
		storage:       storage,
		singleSession: cfg.SingleSession,
	}, nil
}

// Register creates the user. The uniqueness pre-checks and the insert run
// in one transaction; the unique constraints are the backstop if a
// concurrent registration slips between check and insert
func (s *AuthService) Register(ctx context.Context, arg RegisterParams) (models.User, error) {
	var user models.User

	hash, err := s.hasher.Hash(arg.Password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	normalized := handle.Normalize(arg.Handle)

	err = s.storage.InTx(ctx, func(st repository.Storage) error {
		if _, err := st.User().GetUserByEmail(ctx, arg.Email); err == nil {
			return apperrors.ErrEmailTaken
		} else if !errors.Is(err, apperrors.ErrUserNotFound) {
			return err
		}

		if normalized != "" {
			if _, err := st.User().GetUserByHandle(ctx, normalized); err == nil {
				return apperrors.ErrHandleTaken
			} else if !errors.Is(err, apperrors.ErrUserNotFound) {
				return err
			}
		}

		user, err = st.User().CreateUser(ctx, repository.CreateUserParams{
			Email:          arg.Email,
			Handle:         normalized,
			Name:           arg.Name,
			Description:    arg.Description,
			Image:          arg.Image,
			Links:          arg.Links,
			HashedPassword: hash,
		})
		return err
	})
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password return the identical apperrors.ErrInvalidCredentials value
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error) {
	user, err := s.storage.User().GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		// Burn the same hashing work as the happy path before failing
		_ = s.hasher.Compare(enumerationGuardHash, password)
		return models.User{}, models.TokenPair{}, apperrors.ErrInvalidCredentials
	case err != nil:
		return models.User{}, models.TokenPair{}, err
	}

	err = s.hasher.Compare(user.HashedPassword, password)
	switch {
	case errors.Is(err, ErrPasswordMismatch):
		return models.User{}, models.TokenPair{}, apperrors.ErrInvalidCredentials
	case err != nil:
		return models.User{}, models.TokenPair{}, fmt.Errorf("credential check failed. Err: %w", err)
	}

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	return user, pair, nil
}

// Refresh rotates a refresh token: the presented token is verified,
// consumed and replaced. Rejected tokens collapse to
// apperrors.ErrUnauthorized; infrastructure failures pass through so the
// caller can tell them apart
func (s *AuthService) Refresh(ctx context.Context, refreshString string) (models.TokenPair, error) {
	if _, err := s.issuer.Verify(refreshString, KindRefresh); err != nil {
		return models.TokenPair{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}

	token, err := s.storage.Refresh().Consume(ctx, refreshString)
	switch {
	case errors.Is(err, apperrors.ErrRefreshTokenNotFound), errors.Is(err, apperrors.ErrRefreshTokenExpired):
		return models.TokenPair{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	case err != nil:
		return models.TokenPair{}, fmt.Errorf("refresh token consume failed. Err: %w", err)
	}

	return s.issuePair(ctx, token.UserID)
}

// UpdateProfile patches the mutable profile fields. A changed handle is
// normalized and checked against every other user before the update; the
// unique constraint backstops the race window
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, arg UpdateProfileParams) (models.User, error) {
	if arg.Handle != nil {
		normalized := handle.Normalize(*arg.Handle)
		arg.Handle = &normalized
	}

	var user models.User
	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		if arg.Handle != nil && *arg.Handle != "" {
			owner, err := st.User().GetUserByHandle(ctx, *arg.Handle)
			switch {
			case err == nil && owner.ID != userID:
				return apperrors.ErrHandleTaken
			case err != nil && !errors.Is(err, apperrors.ErrUserNotFound):
				return err
			}
		}

		var err error
		user, err = st.User().UpdateUser(ctx, userID, repository.UpdateUserParams{
			Handle:      arg.Handle,
			Name:        arg.Name,
			Description: arg.Description,
			Image:       arg.Image,
			Links:       arg.Links,
		})
		return err
	})
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (s *AuthService) GetByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.storage.User().GetUserByID(ctx, userID)
}

func (s *AuthService) GetByHandle(ctx context.Context, rawHandle string) (models.User, error) {
	return s.storage.User().GetUserByHandle(ctx, handle.Normalize(rawHandle))
}

// Authenticate resolves a bearer access token into its user
func (s *AuthService) Authenticate(ctx context.Context, accessString string) (models.User, error) {
	userID, err := s.issuer.Verify(accessString, KindAccess)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}

	user, err := s.storage.User().GetUserByID(ctx, userID)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.User{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	case err != nil:
		return models.User{}, fmt.Errorf("user lookup failed. Err: %w", err)
	}

	return user, nil
}

// PurgeExpired removes refresh tokens past their expiry. Consume already
// refuses them one by one; this reclaims the rows in bulk
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.storage.Refresh().DeleteExpired(ctx, time.Now())
}

// issuePair mints a fresh access and refresh token and persists the
// refresh one. Under the single session policy older tokens are dropped
// first, so the new session is the only live one
func (s *AuthService) issuePair(ctx context.Context, userID uuid.UUID) (models.TokenPair, error) {
	var pair models.TokenPair

	access, err := s.issuer.IssueAccess(userID)
	if err != nil {
		return pair, err
	}

	refresh, err := s.issuer.IssueRefresh(userID)
	if err != nil {
		return pair, err
	}

	err = s.storage.InTx(ctx, func(st repository.Storage) error {
		if s.singleSession {
			if _, err := st.Refresh().DeleteForUser(ctx, userID); err != nil {
				return err
			}
		}

		return st.Refresh().Save(ctx, models.RefreshToken{
			ID:        uuid.New(),
			UserID:    userID,
			Token:     refresh.Value,
			CreatedAt: time.Now().Truncate(time.Second),
			ExpiresAt: refresh.ExpiresAt,
		})
	})
	if err != nil {
		return pair, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mcandela/linkhub/internal/apperrors"
	"github.com/mcandela/linkhub/internal/models"
)

const (
	defaultSigningMethod   = "HS256"
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Class of token an issuer secret signs. Access and refresh tokens use
// distinct secrets so one can never be replayed as the other
type TokenKind int

const (
	KindAccess TokenKind = iota
	KindRefresh
)

type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"uid"`
}

// Token issuer config with sensible defaults
type IssuerConfig struct {
	// Secret keys to sign access and refresh tokens
	// Both required, must differ
	AccessSecret  string
	RefreshSecret string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set then default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set then defaults are used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenIssuer struct {
	accessKey  []byte
	refreshKey []byte

	alg jwt.SigningMethod

	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewIssuer(cfg IssuerConfig) (*TokenIssuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("both token secrets must not be empty")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh token secrets must differ")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenIssuer{
		accessKey:  []byte(cfg.AccessSecret),
		refreshKey: []byte(cfg.RefreshSecret),
		alg:        jwt.GetSigningMethod(cfg.Alg),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

func (i *TokenIssuer) IssueAccess(userID uuid.UUID) (models.IssuedToken, error) {
	return i.issue(userID, i.accessKey, i.accessTTL)
}

// IssueRefresh signs the same payload shape with the refresh secret. The
// jti claim makes every issued token string unique even for one user
func (i *TokenIssuer) IssueRefresh(userID uuid.UUID) (models.IssuedToken, error) {
	return i.issue(userID, i.refreshKey, i.refreshTTL)
}

func (i *TokenIssuer) issue(userID uuid.UUID, key []byte, ttl time.Duration) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(
		i.alg,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID: userID,
		},
	)

	signed, err := token.SignedString(key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Verify checks the signature against the secret of the given kind and the
// expiry claim. Callers can tell apperrors.ErrTokenExpired from
// apperrors.ErrTokenMalformed; everything but expiry counts as malformed
func (i *TokenIssuer) Verify(tokenString string, kind TokenKind) (uuid.UUID, error) {
	key := i.accessKey
	if kind == KindRefresh {
		key = i.refreshKey
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{i.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)

	switch {
	case err == nil:
		return claims.UserID, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return uuid.Nil, fmt.Errorf("%w: %w", apperrors.ErrTokenExpired, err)
	default:
		return uuid.Nil, fmt.Errorf("%w: %w", apperrors.ErrTokenMalformed, err)
	}
}

package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcandela/linkhub/internal/logger"
)

const (
	defaultListenAddr           = "localhost:8000"
	defaultLoggingLevel         = logger.LevelInfo
	defaultEnvironment          = logger.EnvProduction
	defaultAccessTokenTTL       = 15 * time.Minute
	defaultRefreshTokenTTL      = 7 * 24 * time.Hour
	defaultBcryptCost           = bcrypt.DefaultCost
	defaultTokenCleanupInterval = time.Hour
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the linkhub service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret keys for signing JWT tokens; access and refresh tokens are
	// signed with independent keys so must both be set, and must differ
	AccessSecret  string
	RefreshSecret string

	// Token lifetimes
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Password hashing work factor
	BcryptCost int

	// Drop the user's other refresh tokens on every login or refresh,
	// keeping at most one session alive
	SingleSession bool

	// How often expired refresh tokens are purged from storage
	TokenCleanupInterval time.Duration

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:             defaultLoggingLevel,
		ListenAddr:           defaultListenAddr,
		Environment:          defaultEnvironment,
		AccessTokenTTL:       defaultAccessTokenTTL,
		RefreshTokenTTL:      defaultRefreshTokenTTL,
		BcryptCost:           defaultBcryptCost,
		TokenCleanupInterval: defaultTokenCleanupInterval,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}

	// Set duration option if value parses as one
	setDuration := func(o *time.Duration) func(value string) {
		return func(value string) {
			if value == "" {
				return
			}
			if d, err := time.ParseDuration(value); err == nil {
				*o = d
			}
		}
	}

	// Set int option if value parses as one
	setInt := func(o *int) func(value string) {
		return func(value string) {
			if value == "" {
				return
			}
			if n, err := strconv.Atoi(value); err == nil {
				*o = n
			}
		}
	}

	// Set bool option if value parses as one
	setBool := func(o *bool) func(value string) {
		return func(value string) {
			if value == "" {
				return
			}
			if b, err := strconv.ParseBool(value); err == nil {
				*o = b
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":              setString(&c.ListenAddr),
		"DATABASE_URI":             setString(&c.DatabaseDSN),
		"JWT_ACCESS_TOKEN_SECRET":  setString(&c.AccessSecret),
		"JWT_REFRESH_TOKEN_SECRET": setString(&c.RefreshSecret),
		"ACCESS_TOKEN_TTL":         setDuration(&c.AccessTokenTTL),
		"REFRESH_TOKEN_TTL":        setDuration(&c.RefreshTokenTTL),
		"BCRYPT_COST":              setInt(&c.BcryptCost),
		"SINGLE_SESSION":           setBool(&c.SingleSession),
		"TOKEN_CLEANUP_INTERVAL":   setDuration(&c.TokenCleanupInterval),
		"LOG_LEVEL":                setString(&c.LogLevel),
		"ENVIRONMENT":              setString(&c.Environment),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("linkhub", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVar(&c.AccessSecret, "access-secret", c.AccessSecret, "Secret key for signing access tokens")
	fs.StringVar(&c.RefreshSecret, "refresh-secret", c.RefreshSecret, "Secret key for signing refresh tokens")
	fs.DurationVar(&c.AccessTokenTTL, "access-ttl", c.AccessTokenTTL, "Access token lifetime")
	fs.DurationVar(&c.RefreshTokenTTL, "refresh-ttl", c.RefreshTokenTTL, "Refresh token lifetime")
	fs.IntVar(&c.BcryptCost, "bcrypt-cost", c.BcryptCost, "Password hashing work factor")
	fs.BoolVar(&c.SingleSession, "single-session", c.SingleSession, "Keep at most one live session per user")
	fs.DurationVar(&c.TokenCleanupInterval, "token-cleanup-interval", c.TokenCleanupInterval, "How often to purge expired refresh tokens")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, production)")

	return fs.Parse(args)
}

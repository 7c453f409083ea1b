package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mcandela/linkhub/internal/db"
	"github.com/mcandela/linkhub/internal/handlers"
	"github.com/mcandela/linkhub/internal/logger"
	"github.com/mcandela/linkhub/internal/repository/postgres"
	"github.com/mcandela/linkhub/internal/service/auth"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
	Logger     logger.Logger

	AuthService     *auth.AuthService
	CleanupInterval time.Duration
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	authService, err := auth.NewService(auth.Config{
		AccessSecret:    c.AccessSecret,
		RefreshSecret:   c.RefreshSecret,
		AccessTokenTTL:  c.AccessTokenTTL,
		RefreshTokenTTL: c.RefreshTokenTTL,
		BcryptCost:      c.BcryptCost,
		SingleSession:   c.SingleSession,
	}, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	mux := handlers.NewRouter(authService, log)

	return &ServerApp{
		ListenAddr:      c.ListenAddr,
		Handler:         mux,
		Logger:          log,
		AuthService:     authService,
		CleanupInterval: c.TokenCleanupInterval,
	}, nil
}

// runTokenCleanup purges expired refresh tokens on a timer until the
// context is cancelled
func (s *ServerApp) runTokenCleanup(ctx context.Context) {
	ticker := time.NewTicker(s.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.AuthService.PurgeExpired(ctx)
			if err != nil {
				s.Logger.Error("expired token cleanup failed", "error", err)
				continue
			}
			if deleted > 0 {
				s.Logger.Info("expired refresh tokens purged", "count", deleted)
			}
		}
	}
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go s.runTokenCleanup(srvCtx)

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			s.Logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.Logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.Logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

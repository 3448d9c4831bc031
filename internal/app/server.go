package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/keepsake-backend/internal/config"
	"github.com/heartmarshall/keepsake-backend/internal/transport/middleware"
	"github.com/heartmarshall/keepsake-backend/internal/transport/rest"
)

// tokenValidator is what the auth middleware needs from the JWT layer.
type tokenValidator interface {
	ValidateToken(ctx context.Context, token string) (uuid.UUID, error)
}

// Server wraps the HTTP server with its middleware chain and shutdown
// handling.
type Server struct {
	cfg     *config.Config
	log     *slog.Logger
	httpSrv *http.Server
	limiter *middleware.RateLimiter
}

// NewServer assembles the middleware chain around the router and returns a
// ready-to-run server.
func NewServer(cfg *config.Config, logger *slog.Logger, handlers rest.Handlers, validator tokenValidator) *Server {
	mux := rest.NewRouter(handlers)

	limiter := middleware.NewRateLimiter(time.Minute)
	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		limiter.Limit(cfg.Server.RateLimitPerMinute),
		middleware.Auth(validator),
	)

	return &Server{
		cfg: cfg,
		log: logger,
		httpSrv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      chain(mux),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		limiter: limiter,
	}
}

// Run serves until the context is cancelled, then shuts down gracefully
// within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", slog.String("addr", s.httpSrv.Addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	s.limiter.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

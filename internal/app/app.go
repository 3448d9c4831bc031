package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/keepsake-backend/internal/adapter/mailer"
	"github.com/heartmarshall/keepsake-backend/internal/adapter/postgres"
	contributionrepo "github.com/heartmarshall/keepsake-backend/internal/adapter/postgres/contribution"
	eventrepo "github.com/heartmarshall/keepsake-backend/internal/adapter/postgres/event"
	recipientrepo "github.com/heartmarshall/keepsake-backend/internal/adapter/postgres/recipient"
	sessionrepo "github.com/heartmarshall/keepsake-backend/internal/adapter/postgres/session"
	userrepo "github.com/heartmarshall/keepsake-backend/internal/adapter/postgres/user"
	"github.com/heartmarshall/keepsake-backend/internal/auth"
	"github.com/heartmarshall/keepsake-backend/internal/config"
	authsvc "github.com/heartmarshall/keepsake-backend/internal/service/auth"
	contributionsvc "github.com/heartmarshall/keepsake-backend/internal/service/contribution"
	eventsvc "github.com/heartmarshall/keepsake-backend/internal/service/event"
	"github.com/heartmarshall/keepsake-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// the database, runs migrations, wires services and handlers, and serves
// HTTP until the context is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	txManager := postgres.NewTxManager(pool)
	users := userrepo.New(pool)
	events := eventrepo.New(pool)
	recipients := recipientrepo.New(pool)
	sessions := sessionrepo.New(pool)
	contributions := contributionrepo.New(pool)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
	mail := mailer.New(cfg.Mail, logger)

	authService := authsvc.NewService(logger, users, jwtManager, cfg.Auth)
	eventService := eventsvc.NewService(logger, events, recipients, sessions, contributions, users, txManager, mail, cfg.Delivery)
	contributionService := contributionsvc.NewService(logger, sessions, events, recipients, contributions, users, txManager, cfg.Auth)

	handlers := rest.Handlers{
		Auth:    rest.NewAuthHandler(authService, logger),
		Events:  rest.NewEventHandler(eventService, logger),
		Session: rest.NewSessionHandler(contributionService, logger),
		Health:  rest.NewHealthHandler(pool, BuildVersion()),
	}

	srv := NewServer(cfg, logger, handlers, tokenValidatorAdapter{jwt: jwtManager})
	return srv.Run(ctx)
}

// tokenValidatorAdapter bridges the JWT manager to the auth middleware's
// context-taking validator interface.
type tokenValidatorAdapter struct {
	jwt *auth.JWTManager
}

func (a tokenValidatorAdapter) ValidateToken(_ context.Context, token string) (uuid.UUID, error) {
	return a.jwt.ValidateAccessToken(token)
}

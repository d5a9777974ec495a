package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nlschedule/config"
	_ "nlschedule/docs"
	"nlschedule/internal/adapters/auth"
	"nlschedule/internal/adapters/email"
	"nlschedule/internal/adapters/ical"
	"nlschedule/internal/adapters/llm"
	httpDelivery "nlschedule/internal/delivery/http"
	"nlschedule/internal/delivery/http/controllers"
	"nlschedule/internal/delivery/http/middleware"
	"nlschedule/internal/domain"
	"nlschedule/internal/repository/postgres"
	"nlschedule/internal/repository/sqlite"
	"nlschedule/internal/services"

	_ "github.com/lib/pq"
)

const (
	tokenIssuer     = "nlschedule"
	shutdownTimeout = 10 * time.Second
)

// @title nlschedule API
// @version 1.0
// @description Natural-language schedule service: add events from free text, detect conflicts, query by period.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := config.NewLogger()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, eventRepo, userRepo, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("store ready", "driver", cfg.DBDriver)

	if cfg.LLM.APIKey == "" {
		logger.Warn("ANTHROPIC_API_KEY is empty; language service calls will fail")
	}
	language := llm.New(llm.Config{
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    cfg.LLM.Model,
		Timeout:  cfg.LLM.Timeout,
		Location: cfg.Location(),
	})

	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.AWSRegion,
			AccessKeyID:     cfg.Email.AWSAccessKeyID,
			SecretAccessKey: cfg.Email.AWSSecretAccessKey,
		},
	}, logger)
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	tokens := auth.NewJWT(cfg.JWTSecret, tokenIssuer)
	authService := services.NewAuthService(userRepo, auth.NewBcryptHasher(0), tokens, cfg.JWTExpiry, emailService, logger, cfg.RequestTimeout)
	scheduleService := services.NewScheduleService(eventRepo, language, logger, cfg.RequestTimeout)

	scheduleController := controllers.NewScheduleController(logger, scheduleService, ical.NewExporter("nlschedule", cfg.Location()), cfg.Location())
	authController := controllers.NewAuthController(logger, authService)
	router := httpDelivery.NewRouter(scheduleController, authController, tokens, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, router)),
		ReadHeaderTimeout: 10 * time.Second,
		// Writes wait on the language service, which may take up to its own timeout.
		WriteTimeout: cfg.LLM.Timeout*3 + cfg.RequestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment, "timezone", cfg.Location().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("signal received, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore opens the configured database, applies the schema and returns the repositories.
func openStore(ctx context.Context, cfg *config.Config) (*sql.DB, domain.EventRepository, domain.UserRepository, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := sqlite.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return db, sqlite.NewEventRepository(db), sqlite.NewUserRepository(db), nil
	default:
		db, err := sql.Open("postgres", cfg.DBUrl)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return db, postgres.NewEventRepository(db), postgres.NewUserRepository(db), nil
	}
}

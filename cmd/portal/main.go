package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/event-portal/internal/analytics"
	"github.com/example/event-portal/internal/application"
	"github.com/example/event-portal/internal/cache"
	"github.com/example/event-portal/internal/config"
	httptransport "github.com/example/event-portal/internal/http"
	"github.com/example/event-portal/internal/persistence/memory"
	"github.com/example/event-portal/internal/persistence/sqlite"
)

const memoryCacheEntries = 64

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, logger); err != nil {
		logger.Error("portal exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, logger *slog.Logger) error {
	if err := config.LoadEnvFile(); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if len(args) > 0 && args[0] == "token" {
		return issueToken(cfg, args[1:], stdout)
	}

	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	return serve(ctx, cfg, app.handler, logger)
}

// app holds the wired HTTP handler and everything that must be released on exit.
type app struct {
	handler http.Handler
	closers []func() error
	logger  *slog.Logger
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("failed to release resource", "error", err)
		}
	}
}

func buildApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{logger: logger}

	storage, err := sqlite.OpenWithLogger(ctx, cfg.SQLiteDSN, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.closers = append(a.closers, storage.Close)

	if err := storage.Migrate(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	invitations := memory.NewInvitationStore()
	now := time.Now

	if cfg.SeedDemoData {
		if err := seedDemoData(ctx, storage, invitations, now(), logger); err != nil {
			a.Close()
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}

	checks := map[string]httptransport.HealthChecker{"sqlite": storage}
	var (
		reportCache application.ReportCache
		limiter     httptransport.RateLimiter
	)
	if cfg.RedisEnabled() {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		store := cache.NewRedisStore(client, cfg.RateLimit, cfg.RateWindow)
		a.closers = append(a.closers, store.Close)
		reportCache, limiter = store, store
		checks["redis"] = store
		logger.Info("redis cache enabled")
	} else {
		store := cache.NewMemoryStore(memoryCacheEntries, cfg.RateLimit, cfg.RateWindow, now)
		reportCache, limiter = store, store
		logger.Info("redis not configured, using in-process cache")
	}

	tokens := application.NewSessionTokenService(cfg.JWTSecret, cfg.SessionTTL, now)
	invitationService := application.NewInvitationServiceWithLogger(
		newInvitationRepositoryAdapter(invitations),
		uuid.NewString,
		now,
		logger,
		application.WithPublicBaseURL(cfg.PublicBaseURL),
	)
	reportService := application.NewReportServiceWithLogger(
		newReportSourceAdapter(storage),
		reportCache,
		cfg.ReportCacheTTL,
		analytics.NewProcessor(),
		logger,
	)

	a.handler = httptransport.NewRouter(httptransport.RouterConfig{
		Invitations:    httptransport.NewInvitationHandler(invitationService, logger),
		EmailLinks:     httptransport.NewEmailLinkHandler(invitationService, logger),
		Reports:        httptransport.NewReportHandler(reportService, logger),
		Health:         httptransport.NewHealthHandler(checks, logger),
		Sessions:       tokens,
		Limiter:        limiter,
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: cfg.TrustedProxies,
		Logger:         logger,
	})
	return a, nil
}

func serve(ctx context.Context, cfg config.Config, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("portal API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// issueToken prints a dashboard session token, for local testing and operator scripts.
func issueToken(cfg config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(stdout)
	userID := fs.String("user", "", "user id carried as the token subject")
	email := fs.String("email", "", "faculty email address")
	organizer := fs.Bool("organizer", false, "grant the organizer role")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tokens := application.NewSessionTokenService(cfg.JWTSecret, cfg.SessionTTL, time.Now)
	token, expiresAt, err := tokens.Issue(application.Principal{
		UserID:      *userID,
		Email:       *email,
		IsOrganizer: *organizer,
	})
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	_, err = fmt.Fprintf(stdout, "%s\nexpires_at=%s\n", token, expiresAt.UTC().Format(time.RFC3339))
	return err
}

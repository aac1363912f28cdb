package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	httpserver "github.com/tendant/voicehub/internal/http"
	"github.com/tendant/voicehub/internal/metrics"
	"github.com/tendant/voicehub/pkg/auth"
	"github.com/tendant/voicehub/pkg/repository"
	"github.com/tendant/voicehub/pkg/tenancy"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Connects to the database, optionally applies migrations, and serves the HTTP API until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	db, err := repository.NewDB(dbConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	logger.Info("connected to database")

	if cfg.AutoMigrate {
		if err := migrateUp(ctx, db); err != nil {
			return err
		}
	}

	// Initialize repositories
	sessionsRepo := repository.NewSessionsRepository(db)
	superAdminsRepo := repository.NewSuperAdminsRepository(db)
	partnersRepo := repository.NewPartnersRepository(db)
	workspacesRepo := repository.NewWorkspacesRepository(db)
	membersRepo := repository.NewMembersRepository(db)
	plansRepo := repository.NewPlansRepository(db)
	subscriptionsRepo := repository.NewSubscriptionsRepository(db)
	agentsRepo := repository.NewAgentsRepository(db)
	conversationsRepo := repository.NewConversationsRepository(db)

	// Initialize services
	sessionService := auth.NewSessionService(auth.SessionConfig{
		JWTSecret:      []byte(cfg.JWTSecret),
		Issuer:         cfg.JWTIssuer,
		AccessTokenTTL: cfg.AccessTokenTTL,
		CheckSessions:  cfg.CheckSessions,
	}, sessionsRepo)

	resolverOpts := []tenancy.Option{tenancy.WithRecorder(metrics.TenancyRecorder{})}
	if cfg.CheckSessions {
		resolverOpts = append(resolverOpts, tenancy.WithSessionTouch(sessionsRepo))
	}
	resolver := tenancy.NewResolver(
		tenancy.Config{LastLoginTimeout: cfg.LastLoginUpdateTimeout},
		sessionService,
		workspacesRepo,
		membersRepo,
		superAdminsRepo,
		db,
		logger,
		resolverOpts...,
	)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:          logger,
		Resolver:        resolver,
		Partners:        partnersRepo,
		Workspaces:      workspacesRepo,
		Members:         membersRepo,
		Plans:           plansRepo,
		Subscriptions:   subscriptionsRepo,
		Agents:          agentsRepo,
		Conversations:   conversationsRepo,
		RateLimitConfig: cfg.RateLimit,
		SecurityHeaders: cfg.SecurityHeaders,
		RequestLimits:   cfg.RequestLimits,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestLimits.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-quit:
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := resolver.Drain(shutdownCtx); err != nil {
		logger.Warn("pending last-login updates abandoned", "error", err)
	}

	logger.Info("server stopped")
	return nil
}

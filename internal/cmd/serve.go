package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/secureops-systems/secureops/internal/attribution"
	"github.com/secureops-systems/secureops/internal/handlers"
	"github.com/secureops-systems/secureops/internal/logging"
	"github.com/secureops-systems/secureops/internal/middleware"
	"github.com/secureops-systems/secureops/internal/notify"
	"github.com/secureops-systems/secureops/internal/repository"
	"github.com/secureops-systems/secureops/internal/server"
	"github.com/secureops-systems/secureops/internal/service"
	"github.com/secureops-systems/secureops/pkg/tokens"
)

var migrationsPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	Long:  "Run database migrations and start the SecureOps HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&migrationsPath, "migrations", "migrations", "path to migration files")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(logger)

	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required (set SECUREOPS_AUTH_JWT_SECRET)")
	}

	connString := cfg.Database.Postgres.ConnString()

	// Run database migrations
	logger.InfoContext(cmd.Context(), "running database migrations")
	m, err := migrate.New("file://"+migrationsPath, connString)
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	repo, err := repository.NewPostgresRepository(context.Background(), connString)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer repo.Close()

	// Threat-actor profiles: YAML file override or compiled-in defaults
	profiles := attribution.DefaultProfiles()
	if cfg.Attribution.ProfilesFile != "" {
		profiles, err = attribution.LoadFile(cfg.Attribution.ProfilesFile)
		if err != nil {
			return fmt.Errorf("failed to load threat actor profiles: %w", err)
		}
	}
	engine := attribution.NewEngine(profiles)

	// Optional Redis unread-count cache
	var cache *notify.UnreadCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		cache = notify.NewUnreadCache(redisClient, cfg.Redis.CacheTTL)
	}

	// Optional NATS publisher for real-time notification events
	var publisher notify.Publisher
	if cfg.NATS.Enabled {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name("secureops"))
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer nc.Close()
		publisher = nc
	}

	dispatcher := notify.NewDispatcher(repo, repo, publisher, cache, logger)

	tg := tokens.NewTokenGenerator(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL)

	authSvc := service.NewAuthService(repo, tg)
	incidentSvc := service.NewIncidentService(repo, dispatcher, engine, logger)
	iocSvc := service.NewIOCService(repo)
	threatSvc := service.NewThreatService(engine)
	notificationSvc := service.NewNotificationService(repo, cache, logger)
	reportSvc := service.NewReportService(incidentSvc)

	handler := handlers.NewHandler(authSvc, incidentSvc, iocSvc, threatSvc, notificationSvc, reportSvc, logger)
	authMW := middleware.NewAuthMiddleware(tg)

	router := server.NewRouter(handler, authMW, middleware.CORSConfig{
		AllowedOrigins: cfg.Server.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(context.Background(), "server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.InfoContext(context.Background(), "shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.InfoContext(context.Background(), "server stopped")
	return nil
}

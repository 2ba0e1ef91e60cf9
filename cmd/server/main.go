package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	specpkg "github.com/collegepedia/collegepedia/api"
	"github.com/collegepedia/collegepedia/internal/api"
	"github.com/collegepedia/collegepedia/internal/api/handler"
	"github.com/collegepedia/collegepedia/internal/auth"
	"github.com/collegepedia/collegepedia/internal/college"
	"github.com/collegepedia/collegepedia/internal/config"
	"github.com/collegepedia/collegepedia/internal/database"
	"github.com/collegepedia/collegepedia/internal/department"
	"github.com/collegepedia/collegepedia/internal/district"
	"github.com/collegepedia/collegepedia/internal/profile"
	"github.com/collegepedia/collegepedia/internal/role"
)

const recoveryTTL = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("database schema up to date")
	}

	rdb, err := openRedis(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err, "addr", cfg.RedisAddr)
		os.Exit(1)
	}
	defer rdb.Close()

	policy, err := role.NewPolicy(cfg.AdminUserID, cfg.AdminDisplayName)
	if err != nil {
		slog.Error("invalid admin user id", "error", err)
		os.Exit(1)
	}

	users := auth.NewRepository(db.Pool())
	profiles := profile.NewRepository(db.Pool())

	authService := auth.NewService(
		users,
		auth.NewRedisStore(rdb),
		auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.JWTIssuer),
		auth.NewHub(),
		auth.LogRecoveryNotifier{},
		auth.ServiceConfig{
			BcryptCost:  cfg.BcryptCost,
			SessionTTL:  cfg.SessionTTL,
			RecoveryTTL: recoveryTTL,
		},
	)

	router := api.NewRouter(api.RouterDeps{
		DBPinger:      db,
		SessionPinger: handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		Version:       cfg.Version,
		OpenAPISpec:   specpkg.OpenAPISpec,

		Sessions:       authService,
		ResolveTimeout: cfg.SessionResolveTimeout,
		AuthService:    authService,
		Enforcer:       role.NewEnforcer(authService, profiles, policy),
		CookieSecure:   cfg.CookieSecure,
		ReservedNames:  []string{cfg.AdminDisplayName},

		Users:       users,
		Profiles:    profiles,
		Districts:   district.NewRepository(db.Pool()),
		Colleges:    college.NewRepository(db.Pool()),
		Departments: department.NewRepository(db.Pool()),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting CollegePedia server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(logHandler))
}

// openRedis connects to the session store and checks it answers within 2s.
func openRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

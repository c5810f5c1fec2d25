// @title           ScreenGrabber Account API
// @version         1.0
// @description     Accounts, sessions, password recovery and Pro licensing for ScreenGrabber.
// @BasePath        /api
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
//
// @securityDefinitions.apikey  AdminKey
// @in                          header
// @name                        X-Admin-Key
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	_ "github.com/screengrabber/account-api/docs"
	"github.com/screengrabber/account-api/internal/api"
	"github.com/screengrabber/account-api/internal/api/handler"
	"github.com/screengrabber/account-api/internal/core/hasher"
	"github.com/screengrabber/account-api/internal/core/service"
	"github.com/screengrabber/account-api/internal/core/token"
	"github.com/screengrabber/account-api/internal/infrastructure/db/mongo"
	"github.com/screengrabber/account-api/internal/infrastructure/db/redis"
	"github.com/screengrabber/account-api/internal/infrastructure/notify"
	"github.com/screengrabber/account-api/internal/infrastructure/queue"
	"github.com/screengrabber/account-api/internal/pkg/config"
	"github.com/screengrabber/account-api/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "account-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "screengrabber-account-api",
	})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	users := mongo.NewUserRepository(db)
	resets := mongo.NewResetRepository(db)
	licenses := mongo.NewLicenseRepository(db)
	statuses := mongo.NewStatusRepository(db)
	if err := mongo.EnsureIndexes(ctx, users, resets, licenses, statuses); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, redis.Config{
		URL:        cfg.Redis.URL,
		Addr:       cfg.Redis.Addr,
		DB:         cfg.Redis.DB,
		Username:   cfg.Redis.Username,
		Password:   cfg.Redis.Password,
		TLS:        cfg.Redis.TLS,
		PoolSize:   cfg.Redis.PoolSize,
		ClientName: "screengrabber-account-api",
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Notification workers ---
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Auth.NotifyWorkers, notify.NewLogNotifier(log, cfg.Auth.ResetURL), log)
	dispatcher.Start(workerCtx)
	defer func() {
		stopWorkers()
		dispatcher.Wait()
	}()

	// --- Services ---
	secret, err := jwtSecret(cfg, log)
	if err != nil {
		return err
	}
	if cfg.Auth.ExposeResetToken {
		log.Warn().Msg("EXPOSE_RESET_TOKEN is on: reset tokens are returned to callers")
	}

	authService := service.NewAuthService(
		users,
		resets,
		hasher.Default(),
		token.NewJWT(secret, cfg.Auth.TokenTTL),
		log,
		service.WithDenylist(redis.NewDenylist(rdb)),
		service.WithResetThrottle(redis.NewThrottle(rdb, cfg.Auth.ResetThrottleLimit, cfg.Auth.ResetThrottleWindow)),
		service.WithNotificationQueue(dispatcher),
		service.WithResetTokenTTL(cfg.Auth.ResetTokenTTL),
		service.WithExposedResetToken(cfg.Auth.ExposeResetToken),
	)
	entitlementService := service.NewEntitlementService(licenses, users, cfg.License.Prefix, log)
	statusService := service.NewStatusService(statuses)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Auth:         authService,
		Entitlements: entitlementService,
		Statuses:     statusService,
		Health: map[string]handler.Pinger{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		Log:         log,
		CORSOrigins: cfg.AllowedOrigins(),
		AdminAPIKey: cfg.License.AdminAPIKey,
		ResetURL:    cfg.Auth.ResetURL,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// jwtSecret returns the configured signing secret, or a random one when none
// is configured. A random secret invalidates every token on restart.
func jwtSecret(cfg *config.Config, log zerolog.Logger) ([]byte, error) {
	if cfg.Auth.JWTSecret != "" {
		return []byte(cfg.Auth.JWTSecret), nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	log.Warn().Msg("JWT_SECRET not set, using a random secret; sessions will not survive a restart")
	return secret, nil
}

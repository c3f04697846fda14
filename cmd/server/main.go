package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-employes/auth"
	"github.com/diewo77/go-employes/internal/config"
	"github.com/diewo77/go-employes/internal/db"
	"github.com/diewo77/go-employes/internal/logging"
	"github.com/diewo77/go-employes/internal/models"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logging.New(cfg.App.Dev, cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	configureSession(cfg.Auth.SessionSecret, logger)

	dbConn, err := db.Open(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx := context.Background()

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations completed")
		return nil
	}
	if *seedOnlyFlag {
		if err := db.Seed(ctx, dbConn, cfg.Bootstrap, logger); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.Info("seeding completed")
		return nil
	}

	if cfg.App.Migrations {
		if err := db.Migrate(dbConn); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations completed")
	}
	if err := db.Seed(ctx, dbConn, cfg.Bootstrap, logger); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	// Sessions of removed or disabled accounts are rejected.
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		var count int64
		dbConn.WithContext(ctx).Model(&models.User{}).
			Where("id = ? AND is_active = ?", uid, true).
			Count(&count)
		return count > 0
	})

	routerCfg := NewRouterConfig(dbConn, cfg.Auth.ProfileCacheTTL, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewApp(routerCfg, logger),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.Bool("dev", cfg.App.Dev),
			zap.String("db_driver", cfg.Database.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-quit:
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}

// configureSession installs the session signing key. Without one the auth
// package keeps its development key.
func configureSession(secret string, logger *zap.Logger) {
	if secret == "" {
		logger.Warn("SESSION_SECRET not set, using the development key")
		return
	}
	auth.SetSecret(secret)
}

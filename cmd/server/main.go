package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/coaching-backend/internal/app"
	"github.com/nekogravitycat/coaching-backend/internal/config"
	"github.com/nekogravitycat/coaching-backend/internal/db"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.DBAutoMigrate {
		if err := db.RunMigrations(cfg.DBDSN); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	container, err := app.NewContainer(app.Config{
		IsProduction:              cfg.IsProduction(),
		ProdOrigins:               cfg.ProdOrigins,
		DBPool:                    pool,
		Logger:                    logger,
		JWTSecret:                 cfg.JWTSecret,
		JWTTTL:                    cfg.JWTAccessTokenTTL,
		BcryptCost:                cfg.BcryptCost,
		SessionRequireFutureStart: cfg.SessionRequireFutureStart,
		UploadDir:                 cfg.UploadDir,
		UploadMaxBytes:            cfg.UploadMaxBytes,
		AuthRatePerMinute:         cfg.AuthRatePerMinute,
		AuthRateBurst:             cfg.AuthRateBurst,
		MetricsEnabled:            cfg.MetricsEnabled,
	})
	if err != nil {
		return err
	}
	defer container.Close()

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server running", slog.String("addr", cfg.HTTPAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", slog.Any("error", err))
	}

	logger.Info("server exited gracefully")
	return nil
}

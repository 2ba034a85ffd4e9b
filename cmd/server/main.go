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

	"github.com/hashicorp/go-multierror"
	"github.com/redis/go-redis/v9"

	"nutricoach-backend/internal/config"
	"nutricoach-backend/internal/database"
	"nutricoach-backend/internal/handlers"
	"nutricoach-backend/internal/logger"
	"nutricoach-backend/internal/repository"
	"nutricoach-backend/internal/router"
	"nutricoach-backend/internal/services"
)

func main() {
	if err := run(); err != nil {
		slog.Error("✗ NutriCoach backend stopped", logger.Err(err))
		os.Exit(1)
	}
}

func run() error {
	// ──── Step 1: Load Environment Variables ────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("🚀 Starting NutriCoach backend...", "env", cfg.Env)

	if missing := cfg.LLM.MissingSecrets(); len(missing) > 0 {
		log.Warn("✗ LLM secrets missing, /api/chat will answer 500 until set", "missing", missing)
	} else {
		log.Info("✓ Environment variables loaded")
	}

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("✗ PostgreSQL connection failed: %w", err)
	}
	defer pool.Close()
	log.Info("✓ PostgreSQL connected")

	// ──── Step 3: Run Database Migrations ────
	applied, err := database.RunMigrations(pool)
	if err != nil {
		return fmt.Errorf("✗ database migration failed: %w", err)
	}
	log.Info("✓ Database migrations applied", "count", applied)

	// ──── Step 4: Initialize Profile Store (Redis cache optional) ────
	profileRepo := repository.NewProfileRepo(pool)
	var profiles repository.ProfileStore = profileRepo

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("✗ Redis connection failed: %w", err)
		}
		profiles = repository.NewCachedProfileRepo(profileRepo, redisClient, cfg.ProfileCacheTTL, log)
		log.Info("✓ Redis profile cache enabled", "ttl", cfg.ProfileCacheTTL)
	} else {
		log.Info("Redis not configured, profile cache disabled")
	}

	// ──── Step 5: Initialize YandexGPT Client ────
	yandexGPT := services.NewYandexGPTClient(&cfg.LLM, log)
	coach := services.NewCoachService(&cfg.LLM, yandexGPT, log)
	log.Info("✓ YandexGPT client initialized",
		"timeout", cfg.LLM.Timeout,
		"max_retries", cfg.LLM.MaxRetries,
		"history_window", cfg.LLM.HistoryWindow,
	)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(
		handlers.NewChatHandler(coach, log),
		handlers.NewProfileHandler(profiles, log),
		cfg.FrontendURL,
		log,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("✓ NutriCoach backend ready on http://localhost:%s", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-sigChan:
		log.Info("Shutting down...", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var result *multierror.Error
	if err := server.Shutdown(ctx); err != nil {
		result = multierror.Append(result, fmt.Errorf("http shutdown: %w", err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("redis close: %w", err))
		}
	}
	return result.ErrorOrNil()
}

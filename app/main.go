package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wikical/wikical/app/api"
	"github.com/wikical/wikical/app/cache"
	"github.com/wikical/wikical/app/calendar"
	"github.com/wikical/wikical/app/cfg"
	"github.com/wikical/wikical/app/database"
	"github.com/wikical/wikical/app/tasks"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appConfig.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting wikical server", "version", appConfig.Version)

	// Database connection
	db, err := database.NewConnection(appConfig.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appConfig.DBPath, "migration_version", version, "dirty", dirty)

	// Snippet cache; the service runs without it, rendering snippets on
	// every refresh instead.
	var snippetCache calendar.SnippetCache
	if appConfig.RedisAddr != "" {
		redisCache, err := cache.NewCache(appConfig.RedisAddr)
		if err != nil {
			slog.Warn("Snippet cache unavailable, snippets will be rendered on every refresh", "error", err)
		} else {
			defer redisCache.Close()
			snippetCache = redisCache
			slog.Info("Connected to snippet cache", "addr", appConfig.RedisAddr)
		}
	}

	// Load calendar configurations
	configCache := calendar.NewConfigCache(appConfig.CalendarsDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load calendar configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Calendar configurations loaded", "count", configCache.GetConfigCount(), "dir", appConfig.CalendarsDir)

	// Initialize repositories
	calendarRepo := database.NewCalendarRepository(db)
	eventRepo := database.NewEventRepository(db)

	httpClient := &http.Client{}

	// Initialize and start scheduler
	slog.Info("Starting background scheduler", "workers", appConfig.WorkerCount, "interval", appConfig.SchedulerInterval)
	scheduler := tasks.NewScheduler(configCache, calendarRepo, eventRepo, httpClient, snippetCache)
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize HTTP server
	handler := api.NewHandler(configCache, calendarRepo, eventRepo, scheduler)
	server := api.NewServer(handler, appConfig.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appConfig.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	// Graceful shutdown
	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("wikical server shutdown complete")
}

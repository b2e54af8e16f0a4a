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

	"github.com/sinodesk/sinodesk/app/api"
	"github.com/sinodesk/sinodesk/app/cfg"
	"github.com/sinodesk/sinodesk/app/database"
	"github.com/sinodesk/sinodesk/app/fetcher"
	"github.com/sinodesk/sinodesk/app/llm"
	"github.com/sinodesk/sinodesk/app/outlets"
	"github.com/sinodesk/sinodesk/app/pipeline"
	"github.com/sinodesk/sinodesk/app/research"
)

func main() {
	// Load configuration from environment variables and command-line flags
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("Starting SinoDesk server", "version", appCfg.Version)

	// Database connection and schema
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	// Initialize repositories
	articleRepo := database.NewArticles(db)
	projectRepo := database.NewProjects(db)
	outletRepo := database.NewOutlets(db)
	entityRepo := database.NewEntities(db)

	// Register seed outlets
	if appCfg.OutletsFile != "" {
		seeds, err := outlets.LoadSeeds(appCfg.OutletsFile)
		if err != nil {
			slog.Error("Failed to load outlets file", "path", appCfg.OutletsFile, "error", err)
			os.Exit(1)
		}
		registered, err := outlets.Register(outletRepo, seeds)
		if err != nil {
			slog.Error("Failed to register outlets", "error", err)
			os.Exit(1)
		}
		slog.Info("Registered seed outlets", "count", registered, "file", appCfg.OutletsFile)
	}

	// Initialize core components
	llmClient := llm.NewClient(appCfg.LLMBaseURL, appCfg.LLMModel, appCfg.LLMAPIKey,
		time.Duration(appCfg.LLMTimeout)*time.Second)
	articleFetcher := fetcher.New(&http.Client{
		Timeout: time.Duration(appCfg.FetchTimeout) * time.Second,
	}, appCfg.UserAgent)
	matcher := outlets.NewMatcher(outletRepo)
	aggregator := research.NewAggregator(llmClient, entityRepo)
	processor := pipeline.NewProcessor(articleFetcher, matcher, llmClient, articleRepo)

	// Initialize HTTP server
	apiHandler := api.NewHandler(articleRepo, projectRepo, outletRepo, processor,
		aggregator, appCfg.Version)
	server := api.NewServer(apiHandler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second, // translation requests wait on the LLM
		IdleTimeout:  120 * time.Second,
	}

	// Start HTTP server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
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
	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Shutdown complete")
}

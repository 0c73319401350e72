package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/oho/readcontent-daemon/internal/api"
	"github.com/oho/readcontent-daemon/internal/config"
	"github.com/oho/readcontent-daemon/internal/legacy"
	"github.com/oho/readcontent-daemon/internal/logging"
	"github.com/oho/readcontent-daemon/internal/ocr"
	"github.com/oho/readcontent-daemon/internal/pipeline"
	"github.com/oho/readcontent-daemon/internal/pipeline/extractors"
	"github.com/oho/readcontent-daemon/internal/server"
	"github.com/oho/readcontent-daemon/internal/storage"
)

func main() {
	configPath := flag.String("config", os.Getenv("RC_CONFIG"), "path to YAML config file")
	flag.Parse()

	// Load config
	cfg, err := config.LoadConfigFile(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		os.Exit(1)
	}

	// Configure structured logging
	slog.SetDefault(logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}))
	slog.Info("Starting ReadContent daemon...")
	slog.Info("Configuration loaded", "data_dir", cfg.DataDir, "port", cfg.Port)

	// Initialize extraction journal
	var db *storage.Database
	var opts []pipeline.Option
	if cfg.Journal.Enabled {
		db, err = storage.NewDatabase(cfg.DBPath)
		if err != nil {
			slog.Error("Failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Initialize(); err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		opts = append(opts, pipeline.WithRecorder(db))
		slog.Info("Journal initialized", "path", cfg.DBPath)
	}

	if cfg.Tokens.Enabled {
		opts = append(opts, pipeline.WithTokenCounter(pipeline.NewTokenCounter(cfg.Tokens.Encoding).Count))
	}

	// OCR engine
	engine, err := ocr.New(cfg.OCR)
	if err != nil {
		slog.Error("Failed to initialize OCR engine", "error", err)
		os.Exit(1)
	}
	if engine.Available() {
		slog.Info("OCR engine ready", "engine", engine.Name(), "language", cfg.OCR.Language)
	} else {
		slog.Warn("OCR engine not available - image and scanned PDF extraction will fail", "engine", engine.Name())
	}

	// Legacy Office conversion
	converter := legacy.New(cfg.Legacy, cfg.TempDir)
	slog.Info("Legacy converter", "name", converter.Name(), "available", converter.Available())

	registry := extractors.CreateDefaultRegistry(ocr.NewBridge(engine, cfg.TempDir), converter)
	svc := pipeline.NewService(registry, opts...)

	// Build HTTP router
	r := server.NewRouter()

	r.Get("/health", server.HealthHandler(cfg, engine, converter, db))
	r.Post("/read-file", api.ReadFileHandler(svc))
	r.Post("/extract", api.ExtractHandler(svc))
	r.Get("/formats", api.FormatsHandler(engine, converter))
	if db != nil {
		r.Mount("/extractions", api.ExtractionsRouter(db, cfg.Journal.HistoryLimit))
	}

	// Write PID file
	pidPath := filepath.Join(cfg.DataDir, "daemon.pid")
	os.WriteFile(pidPath, []byte(fmt.Sprintf("%d", os.Getpid())), 0o644)
	defer os.Remove(pidPath)

	// Start HTTP server
	addr := cfg.Addr()
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 60))
	fmt.Printf("  ReadContent Daemon\n")
	fmt.Printf("  http://%s\n", addr)
	fmt.Printf("  Data dir: %s\n", cfg.DataDir)
	fmt.Printf("  OCR: %s (%s)\n", engine.Name(), cfg.OCR.Language)
	fmt.Printf("  Legacy formats: %s\n", converter.Name())
	fmt.Printf("%s\n\n", strings.Repeat("=", 60))

	slog.Info("Daemon ready", "addr", addr)

	// Graceful shutdown on signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(ctx)

	slog.Info("Daemon stopped")
}

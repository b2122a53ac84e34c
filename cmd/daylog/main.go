// cmd/daylog/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ingrid-daylog/internal/chat"
	"ingrid-daylog/internal/config"
	"ingrid-daylog/internal/engine"
	"ingrid-daylog/internal/image"
	"ingrid-daylog/internal/server"
	"ingrid-daylog/internal/storage"
)

var (
	port     = flag.Int("port", 0, "Port for HTTP transport (overrides env)")
	host     = flag.String("host", "", "Host address (overrides env)")
	dbPath   = flag.String("db-path", "", "Database path (overrides env)")
	spoolDir = flag.String("spool-dir", "", "Image spool directory (overrides env)")
	version  = flag.Bool("version", false, "Show version")
)

const (
	compressWidth  = 640
	compressHeight = 480
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("ingrid-daylog version 1.0.0")
		os.Exit(0)
	}

	cfg := config.Load()
	if *port != 0 {
		cfg.Port = *port
	}
	if *host != "" {
		cfg.Host = *host
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *spoolDir != "" {
		cfg.SpoolDir = *spoolDir
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	spool, err := image.NewSpoolCompressor(cfg.SpoolDir, compressWidth, compressHeight)
	if err != nil {
		log.Fatalf("Failed to create spool: %v", err)
	}

	templates := chat.NewTemplates()
	chatCfg := chat.Config{
		APIKey:      cfg.GeminiAPIKey,
		BaseURL:     cfg.GeminiBaseURL,
		TextModel:   cfg.TextModel,
		VisionModel: cfg.VisionModel,
		Timeout:     cfg.AITimeout,
	}
	factory := func(lang string) (engine.ChatSession, error) {
		return chat.NewSession(chatCfg, templates, lang)
	}

	eng, err := engine.New(store, spool, factory, cfg.Language)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Template sync must never block startup; built-in prompts stay on failure.
	if cfg.TemplateSyncURL != "" {
		go func() {
			syncCtx, syncCancel := context.WithTimeout(ctx, 30*time.Second)
			defer syncCancel()
			if err := templates.Sync(syncCtx, cfg.TemplateSyncURL); err != nil {
				log.Printf("Template sync failed, keeping defaults: %v", err)
			} else {
				log.Println("Template sync complete")
			}
		}()
	}

	eng.Load(ctx)

	srv := server.NewDayLogServer(&server.Config{Host: cfg.Host, Port: cfg.Port}, eng, spool, store)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting day log server on %s:%d", cfg.Host, cfg.Port)
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigCh:
		log.Println("Received shutdown signal")
	case err := <-errCh:
		log.Printf("Server error: %v", err)
	}

	// Graceful shutdown
	log.Println("Shutting down...")
	cancel()
	if err := srv.Stop(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

func openStore(cfg *config.Config) (storage.Store, error) {
	var (
		store storage.Store
		err   error
	)

	switch cfg.StoreBackend {
	case "postgres":
		store, err = storage.NewPostgresStore(cfg.PostgresDSN)
	default:
		store, err = storage.NewSQLiteStore(cfg.DBPath)
	}
	if err != nil {
		return nil, err
	}

	if cfg.StoreSecret != "" {
		return storage.NewEncryptedStore(store, cfg.StoreSecret)
	}
	return store, nil
}

// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/osa030/wavedeck/internal/api/rest"
	"github.com/osa030/wavedeck/internal/app/playback"
	"github.com/osa030/wavedeck/internal/app/snapshot"
	"github.com/osa030/wavedeck/internal/infra/config"
	"github.com/osa030/wavedeck/internal/infra/ibroadcast"
	"github.com/osa030/wavedeck/internal/infra/logger"
	"github.com/osa030/wavedeck/internal/infra/sessionstore"
)

var (
	app        = kingpin.New("wavedeck-server", "wavedeck music player server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: console)").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{Level: "info"}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.File = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx := context.Background()

	tokens, err := ibroadcast.NewTokenCache(ibroadcast.TokenConfig{
		OAuthURL:     cfg.IBroadcast.OAuthURL,
		ClientID:     cfg.IBroadcast.ClientID,
		RefreshToken: cfg.IBroadcast.RefreshToken,
	})
	if err != nil {
		return fmt.Errorf("failed to create token cache: %w", err)
	}

	client, err := ibroadcast.NewClient(ibroadcast.Config{
		LibraryURL: cfg.IBroadcast.LibraryURL,
		ArtworkURL: cfg.IBroadcast.ArtworkURL,
		UserID:     cfg.IBroadcast.UserID,
		Platform:   cfg.IBroadcast.Platform,
		Version:    cfg.IBroadcast.Version,
	}, tokens)
	if err != nil {
		return fmt.Errorf("failed to create upstream client: %w", err)
	}

	store, err := sessionstore.New(cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to create session store: %w", err)
	}

	libraries := snapshot.NewService(client, cfg.Library.CacheWindow())

	controller := playback.NewController(store)
	if err := controller.Restore(ctx); err != nil {
		zlog.Warn().Err(err).Msg("Failed to restore previous session, starting fresh")
	}

	go func() {
		for ev := range controller.Events() {
			zlog.Debug().Msgf("Playback event: %s", ev.Type)
		}
	}()

	handler := rest.NewHandler(libraries, client, controller)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: h2c.NewHandler(handler.Router(cfg.Server.AllowedOrigins), &http2.Server{}),
	}

	serverErrCh := make(chan error, 1)
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	// Warm the library cache in the background so the first page load does
	// not pay for the full fetch.
	go func() {
		if _, err := libraries.Get(ctx); err != nil {
			zlog.Warn().Err(err).Msg("Initial library fetch failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	if closer, ok := store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			zlog.Error().Msgf("Failed to close session store: %v", err)
		}
	}

	zlog.Info().Msg("Server stopped")
	return nil
}

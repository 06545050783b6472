package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"blockworld/server"
	"blockworld/server/internal/config"
	servernet "blockworld/server/internal/net"
	"blockworld/server/internal/world"
	"blockworld/server/logging"
	loggingSinks "blockworld/server/logging/sinks"
)

const shutdownGrace = 5 * time.Second

// Run boots the full server: config, logging, world, hub, background
// loops, and the HTTP listener. It blocks until ctx is cancelled or the
// listener fails, then kicks every session before returning.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	router, err := buildRouter(cfg)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			log.Printf("failed to close logging router: %v", cerr)
		}
	}()

	store, err := world.NewStore(world.Config{
		Width:      cfg.WorldWidth,
		Height:     cfg.WorldHeight,
		ChunkSize:  cfg.ChunkSize,
		SpawnX:     cfg.SpawnX,
		SpawnRange: cfg.SpawnRange,
	})
	if err != nil {
		return fmt.Errorf("failed to build world: %w", err)
	}
	if err := store.FillFlat(cfg.GrassLevel); err != nil {
		return fmt.Errorf("failed to fill world: %w", err)
	}

	hub := server.NewHub(store, server.HubConfig{
		HeartbeatEnabled:  cfg.HeartbeatEnabled,
		HeartbeatInterval: cfg.HeartbeatInterval,
		HeartbeatMisses:   cfg.HeartbeatMisses,
		WaterTickInterval: cfg.WaterTickInterval,
	}, router)

	stop := make(chan struct{})
	go hub.RunHeartbeat(stop)
	go hub.RunWaterTick(stop)
	defer close(stop)

	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{
		ClientDir: cfg.ClientDir,
		Publisher: router,
	})

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: handler}
	log.Printf("server listening on %s", srv.Addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		hub.Shutdown("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}
}

func buildRouter(cfg config.Config) (*logging.Router, error) {
	logConfig := logging.DefaultConfig()
	logConfig.EnabledSinks = cfg.LogSinks
	logConfig.MinimumSeverity = parseSeverity(cfg.LogMinLevel)

	sinks := map[string]logging.Sink{
		"console": loggingSinks.NewConsole(os.Stdout),
		"json":    loggingSinks.NewJSON(os.Stdout),
	}
	return logging.NewRouter(logConfig, logging.SystemClock{}, log.Default(), sinks)
}

func parseSeverity(level string) logging.Severity {
	switch level {
	case "debug":
		return logging.SeverityDebug
	case "warn":
		return logging.SeverityWarn
	case "error":
		return logging.SeverityError
	default:
		return logging.SeverityInfo
	}
}

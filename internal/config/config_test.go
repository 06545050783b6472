package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("default listen addr = %q", cfg.ListenAddr)
	}
	if cfg.ChunkSize != 16 || cfg.WorldWidth%cfg.ChunkSize != 0 {
		t.Fatalf("default world dimensions are inconsistent: %+v", cfg)
	}
	if !cfg.HeartbeatEnabled || cfg.HeartbeatInterval != 2*time.Second || cfg.HeartbeatMisses != 3 {
		t.Fatalf("default heartbeat config = %+v", cfg)
	}
}

func TestLoadOverridesFromEnvironment(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("WORLD_WIDTH", "256")
	t.Setenv("WORLD_HEIGHT", "64")
	t.Setenv("CHUNK_SIZE", "32")
	t.Setenv("HEARTBEAT_ENABLED", "false")
	t.Setenv("HEARTBEAT_INTERVAL", "5s")
	t.Setenv("WATER_TICK_INTERVAL", "250ms")
	t.Setenv("LOG_SINKS", "console, json")
	t.Setenv("LOG_MIN_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Fatalf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.WorldWidth != 256 || cfg.WorldHeight != 64 || cfg.ChunkSize != 32 {
		t.Fatalf("world dimensions = %dx%d/%d", cfg.WorldWidth, cfg.WorldHeight, cfg.ChunkSize)
	}
	if cfg.HeartbeatEnabled {
		t.Fatalf("heartbeat should be disabled")
	}
	if cfg.HeartbeatInterval != 5*time.Second || cfg.WaterTickInterval != 250*time.Millisecond {
		t.Fatalf("intervals = %v, %v", cfg.HeartbeatInterval, cfg.WaterTickInterval)
	}
	if len(cfg.LogSinks) != 2 || cfg.LogSinks[0] != "console" || cfg.LogSinks[1] != "json" {
		t.Fatalf("log sinks = %v", cfg.LogSinks)
	}
	if cfg.LogMinLevel != "debug" {
		t.Fatalf("log level = %q", cfg.LogMinLevel)
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("WORLD_WIDTH", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for malformed WORLD_WIDTH")
	}
}

func TestLoadRejectsInconsistentWorld(t *testing.T) {
	t.Setenv("WORLD_WIDTH", "100")
	t.Setenv("CHUNK_SIZE", "16")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for width not a multiple of chunk size")
	}
}

func TestLoadRejectsNonPositiveDurations(t *testing.T) {
	t.Setenv("HEARTBEAT_INTERVAL", "-2s")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative heartbeat interval")
	}
}

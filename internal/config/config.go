package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config collects every knob the server reads from the environment.
// Defaults match a small single-node world suitable for development.
type Config struct {
	ListenAddr string
	ClientDir  string

	WorldWidth  uint32
	WorldHeight uint32
	ChunkSize   uint32
	GrassLevel  uint32
	SpawnX      uint32
	SpawnRange  uint32

	HeartbeatEnabled  bool
	HeartbeatInterval time.Duration
	HeartbeatMisses   int
	WaterTickInterval time.Duration

	LogSinks    []string
	LogMinLevel string
}

func Default() Config {
	return Config{
		ListenAddr:        ":8080",
		WorldWidth:        1024,
		WorldHeight:       256,
		ChunkSize:         16,
		GrassLevel:        128,
		SpawnX:            512,
		SpawnRange:        16,
		HeartbeatEnabled:  true,
		HeartbeatInterval: 2 * time.Second,
		HeartbeatMisses:   3,
		WaterTickInterval: 500 * time.Millisecond,
		LogSinks:          []string{"console"},
		LogMinLevel:       "info",
	}
}

// Load reads .env if present, then overlays process environment
// variables onto the defaults. Malformed values are reported, not
// silently dropped.
func Load() (Config, error) {
	godotenv.Load()

	cfg := Default()

	if raw := os.Getenv("LISTEN_ADDR"); raw != "" {
		cfg.ListenAddr = raw
	}
	if raw := os.Getenv("CLIENT_DIR"); raw != "" {
		cfg.ClientDir = raw
	}

	var err error
	if cfg.WorldWidth, err = envUint32("WORLD_WIDTH", cfg.WorldWidth); err != nil {
		return cfg, err
	}
	if cfg.WorldHeight, err = envUint32("WORLD_HEIGHT", cfg.WorldHeight); err != nil {
		return cfg, err
	}
	if cfg.ChunkSize, err = envUint32("CHUNK_SIZE", cfg.ChunkSize); err != nil {
		return cfg, err
	}
	if cfg.GrassLevel, err = envUint32("GRASS_LEVEL", cfg.GrassLevel); err != nil {
		return cfg, err
	}
	if cfg.SpawnX, err = envUint32("SPAWN_X", cfg.SpawnX); err != nil {
		return cfg, err
	}
	if cfg.SpawnRange, err = envUint32("SPAWN_RANGE", cfg.SpawnRange); err != nil {
		return cfg, err
	}
	if cfg.HeartbeatEnabled, err = envBool("HEARTBEAT_ENABLED", cfg.HeartbeatEnabled); err != nil {
		return cfg, err
	}
	if cfg.HeartbeatInterval, err = envDuration("HEARTBEAT_INTERVAL", cfg.HeartbeatInterval); err != nil {
		return cfg, err
	}
	if cfg.HeartbeatMisses, err = envInt("HEARTBEAT_MISSES", cfg.HeartbeatMisses); err != nil {
		return cfg, err
	}
	if cfg.WaterTickInterval, err = envDuration("WATER_TICK_INTERVAL", cfg.WaterTickInterval); err != nil {
		return cfg, err
	}

	if raw := os.Getenv("LOG_SINKS"); raw != "" {
		sinks := make([]string, 0, 2)
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				sinks = append(sinks, name)
			}
		}
		if len(sinks) > 0 {
			cfg.LogSinks = sinks
		}
	}
	if raw := os.Getenv("LOG_MIN_LEVEL"); raw != "" {
		cfg.LogMinLevel = raw
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.ChunkSize == 0 {
		return fmt.Errorf("config: CHUNK_SIZE must be positive")
	}
	if c.WorldWidth == 0 || c.WorldHeight == 0 {
		return fmt.Errorf("config: world dimensions must be positive")
	}
	if c.WorldWidth%c.ChunkSize != 0 || c.WorldHeight%c.ChunkSize != 0 {
		return fmt.Errorf("config: world dimensions %dx%d not a multiple of chunk size %d",
			c.WorldWidth, c.WorldHeight, c.ChunkSize)
	}
	if c.HeartbeatInterval <= 0 || c.HeartbeatMisses <= 0 {
		return fmt.Errorf("config: heartbeat interval and miss limit must be positive")
	}
	return nil
}

func envUint32(key string, fallback uint32) (uint32, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return fallback, fmt.Errorf("config: invalid %s=%q: %w", key, raw, err)
	}
	return uint32(value), nil
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, fmt.Errorf("config: invalid %s=%q: %w", key, raw, err)
	}
	return value, nil
}

func envBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback, fmt.Errorf("config: invalid %s=%q: %w", key, raw, err)
	}
	return value, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback, fmt.Errorf("config: invalid %s=%q: %w", key, raw, err)
	}
	if value <= 0 {
		return fallback, fmt.Errorf("config: %s must be positive, got %q", key, raw)
	}
	return value, nil
}

// Package config loads runtime configuration for the Hearts engine.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"hearts/internal/bot"
)

const (
	// EnvPrefix marks environment variables that override file values.
	EnvPrefix = "HEARTS_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

var (
	ErrInvalidTargetScore = errors.New("game.target_score must be positive")
	ErrUnknownDriver      = errors.New("unknown storage driver")
	ErrMissingDSN         = errors.New("storage.dsn is required for sql drivers")
	ErrUnknownLogLevel    = errors.New("unknown log level")
	ErrUnknownLogFormat   = errors.New("unknown log format")
	ErrUnknownStrategy    = errors.New("unknown bot strategy")
)

// Config is the full runtime configuration.
type Config struct {
	Game    GameConfig    `koanf:"game"`
	Bots    BotsConfig    `koanf:"bots"`
	Storage StorageConfig `koanf:"storage"`
	Log     LogConfig     `koanf:"log"`
	Ops     OpsConfig     `koanf:"ops"`
	NATS    NATSConfig    `koanf:"nats"`
}

type GameConfig struct {
	TargetScore int `koanf:"target_score"`
}

type BotsConfig struct {
	// IdentitiesPath points at the bot roster JSON. Empty uses the built-in roster.
	IdentitiesPath  string `koanf:"identities_path"`
	DefaultStrategy string `koanf:"default_strategy"`
}

type StorageConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// OpsConfig controls the health and metrics listener. An empty Addr disables it.
type OpsConfig struct {
	Addr string `koanf:"addr"`
}

// NATSConfig controls event publishing. An empty URL disables it.
type NATSConfig struct {
	URL           string `koanf:"url"`
	SubjectPrefix string `koanf:"subject_prefix"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Game:    GameConfig{TargetScore: 100},
		Bots:    BotsConfig{DefaultStrategy: "random"},
		Storage: StorageConfig{Driver: DriverMemory},
		Log:     LogConfig{Level: "info", Format: "json"},
		NATS:    NATSConfig{SubjectPrefix: "hearts"},
	}
}

// Load reads configuration with the following precedence, highest first:
//  1. Environment variables prefixed with HEARTS_
//  2. The YAML file at path, when path is not empty
//  3. Default()
//
// Environment variables map to keys by splitting on the first underscore
// after the prefix:
//
//	HEARTS_GAME_TARGET_SCORE -> game.target_score
//	HEARTS_NATS_SUBJECT_PREFIX -> nats.subject_prefix
func Load(path string) (*Config, error) {
	var content []byte
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
		}
		content, err = io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return LoadBytes(content)
}

// LoadBytes is Load for YAML content already in memory. Empty content
// yields defaults plus environment overrides.
func LoadBytes(content []byte) (*Config, error) {
	k := koanf.New(".")

	if len(content) > 0 {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Game.TargetScore <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTargetScore, c.Game.TargetScore)
	}
	if !bot.Known(c.Bots.DefaultStrategy) {
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Bots.DefaultStrategy)
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("%w: %s", ErrMissingDSN, c.Storage.Driver)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Storage.Driver)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLogLevel, c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLogFormat, c.Log.Format)
	}
	return nil
}

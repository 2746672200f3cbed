package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, 100, cfg.Game.TargetScore)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hearts.yaml")
	content := `
game:
  target_score: 50
bots:
  default_strategy: lowest
storage:
  driver: sqlite3
  dsn: /tmp/hearts.db
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Game.TargetScore)
	assert.Equal(t, "lowest", cfg.Bots.DefaultStrategy)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/hearts.db", cfg.Storage.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "hearts", cfg.NATS.SubjectPrefix, "unset keys keep defaults")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("HEARTS_GAME_TARGET_SCORE", "75")
	t.Setenv("HEARTS_NATS_SUBJECT_PREFIX", "cards")
	t.Setenv("HEARTS_NATS_URL", "nats://127.0.0.1:4222")

	cfg, err := LoadBytes([]byte("game:\n  target_score: 50\n"))
	require.NoError(t, err)

	assert.Equal(t, 75, cfg.Game.TargetScore)
	assert.Equal(t, "cards", cfg.NATS.SubjectPrefix)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
}

func TestLoadBytes_InvalidYAML(t *testing.T) {
	_, err := LoadBytes([]byte("game: [unclosed"))
	require.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HEARTS_GAME_TARGET_SCORE", "game.target_score"},
		{"HEARTS_STORAGE_DSN", "storage.dsn"},
		{"HEARTS_OPS_ADDR", "ops.addr"},
		{"HEARTS_BOTS_IDENTITIES_PATH", "bots.identities_path"},
		{"HEARTS_DEBUG", "debug"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, envKey(tt.in))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"defaults", func(*Config) {}, nil},
		{"zero target", func(c *Config) { c.Game.TargetScore = 0 }, ErrInvalidTargetScore},
		{"negative target", func(c *Config) { c.Game.TargetScore = -5 }, ErrInvalidTargetScore},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }, ErrUnknownDriver},
		{"sqlite without dsn", func(c *Config) { c.Storage.Driver = DriverSQLite }, ErrMissingDSN},
		{"postgres with dsn", func(c *Config) {
			c.Storage.Driver = DriverPostgres
			c.Storage.DSN = "postgres://localhost/hearts"
		}, nil},
		{"unknown level", func(c *Config) { c.Log.Level = "loud" }, ErrUnknownLogLevel},
		{"upper-case level", func(c *Config) { c.Log.Level = "WARN" }, nil},
		{"unknown format", func(c *Config) { c.Log.Format = "xml" }, ErrUnknownLogFormat},
		{"unknown strategy", func(c *Config) { c.Bots.DefaultStrategy = "greedy" }, ErrUnknownStrategy},
		{"lowest strategy", func(c *Config) { c.Bots.DefaultStrategy = "lowest" }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

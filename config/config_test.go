package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, "dev", cfg.Core)
	assert.True(t, cfg.Headless)
	assert.True(t, cfg.Streaming)
	assert.Equal(t, "gameplay_sessions", cfg.SessionsDir)
	assert.Equal(t, 50, cfg.AutosaveInterval)
	assert.Equal(t, time.Duration(0), cfg.SessionTimeout)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pokemon-gym.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"host: 0.0.0.0\nport: 9123\nsessions_dir: runs\nsession_timeout: 2h\n",
	), 0o644))

	cfg, err := Load(nil, path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9123", cfg.Addr())
	assert.Equal(t, "runs", cfg.SessionsDir)
	assert.Equal(t, 2*time.Hour, cfg.SessionTimeout)
	// Untouched keys keep defaults.
	assert.Equal(t, "dev", cfg.Core)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("POKEMON_GYM_PORT", "9999")
	t.Setenv("POKEMON_GYM_SESSIONS_DIR", "env_sessions")

	cfg, err := Load(nil, "")
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, "env_sessions", cfg.SessionsDir)
}

func TestFlagsBeatEnv(t *testing.T) {
	t.Setenv("POKEMON_GYM_PORT", "9999")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 8080, "")
	flags.String("sessions-dir", "gameplay_sessions", "")
	require.NoError(t, flags.Set("port", "7001"))
	require.NoError(t, flags.Set("sessions-dir", "flag_sessions"))

	cfg, err := Load(flags, "")
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Port)
	// Dashed flag names map onto underscore config keys.
	assert.Equal(t, "flag_sessions", cfg.SessionsDir)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad port", "port: 0\n"},
		{"empty core", "core: \"\"\n"},
		{"external core without rom", "core: gb\n"},
		{"negative interval", "autosave_interval: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "pokemon-gym.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			_, err := Load(nil, path)
			assert.Error(t, err)
		})
	}
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/tutor-hub/internal/config"
)

func TestLoadFirstRunWritesTemplate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "thub", "config.yaml")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "template not written")

	assert.Equal(t, config.DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5.0, cfg.API.RequestsPerSecond)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, config.LimitsConfig{Education: 3, Qualification: 5}, cfg.Limits)
	assert.NotEmpty(t, cfg.DataDir)

	again, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://api.tutorhub.example/v1
  timeout: 3s
limits:
  education: 10
data_dir: ~/tutorhub
`), 0o600))
	t.Setenv("THUB_LOG_LEVEL", "debug")
	t.Setenv("THUB_LIMITS_QUALIFICATION", "0")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.tutorhub.example/v1", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Limits.Education)
	assert.Equal(t, 0, cfg.Limits.Qualification)
	assert.Equal(t, filepath.Join(home, "tutorhub"), cfg.DataDir)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"relative url", "api:\n  base_url: localhost:8000\n", "api.base_url"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
		{"negative limit", "limits:\n  education: -1\n", "limits"},
		{"zero timeout", "api:\n  timeout: 0s\n", "api.timeout"},
		{"broken yaml", "api: [\n", "reading config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))

			_, err := config.Load(path)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

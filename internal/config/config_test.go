package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("SUBMISSION_TIMEOUT", "5s")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "redis", cfg.SessionStore)
	assert.Equal(t, 5*time.Second, cfg.SubmissionTimeout)
	assert.Equal(t, 10*time.Second, cfg.GeolocationTimeout)
	assert.Equal(t, "50", cfg.BaseFee)
	assert.InDelta(t, -1.286389, cfg.FallbackLat, 1e-9)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigReadsAppEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	dir := t.TempDir()
	content := "JWT_SECRET=from-file\nSERVER_PORT=9090\nENV=production\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

package bootstrap

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revanth-rampal/trail/config"
)

func TestNewLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := NewLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("dropped")
	logger.Warn("kept", "path", "/feedback")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "trail", entry["service"])
	assert.Equal(t, "/feedback", entry["path"])
	assert.Same(t, logger, slog.Default())
}

func TestNewLogger_Text(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	NewLogger(config.LoggingConfig{Level: "debug", Format: "text"}, &buf).Debug("hello")
	assert.Contains(t, buf.String(), "level=DEBUG msg=hello service=trail")
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("AUTH_DIRECTORY", "postgres")
	t.Setenv("AUTH_TIMEOUT", "4s")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("SESSION_COOKIE_NAME", "trail_session")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.DirectoryPostgres, cfg.Auth.Directory)
	assert.True(t, cfg.NeedsPostgres())
	assert.Equal(t, 4*time.Second, cfg.Auth.Timeout)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "trail_session", cfg.Session.CookieName)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("AUTH_DIRECTORY", "oidc")
	t.Setenv("OIDC_DISCOVERY_URL", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
	assert.Contains(t, err.Error(), "OIDC_DISCOVERY_URL")
}

func TestLoadConfig_ParseError(t *testing.T) {
	t.Setenv("AUTH_DIRECTORY", "ldap")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

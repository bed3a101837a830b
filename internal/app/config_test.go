package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := writeConfig(t, "auth:\n  secret: test-secret\n")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "wedding-api", cfg.Auth.Issuer)
	require.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	require.Equal(t, 3*time.Hour, cfg.Auth.CodeMaxAge)
	require.False(t, cfg.Email.SMTP.Enabled)
	require.True(t, cfg.Maintenance.Enabled)
	require.Equal(t, "@daily", cfg.Maintenance.Schedule)
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: 9000
  log_level: debug
database:
  driver: postgres
  host: db.internal
  port: 5432
  name: wedding
  user: app
  password: hunter2
  options:
    sslmode: require
auth:
  secret: test-secret
  token_ttl: 24h
  code_max_age: 30m
email:
  smtp:
    enabled: true
    host: smtp.internal
    from: rsvp@example.com
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	require.Equal(t, 30*time.Minute, cfg.Auth.CodeMaxAge)
	require.True(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, "rsvp@example.com", cfg.Email.SMTP.From)

	dbCfg := cfg.Database.DatabaseConfig()
	require.Equal(t, "db.internal", dbCfg.Host)
	require.Equal(t, "wedding", dbCfg.Name)
	require.Equal(t, map[string]string{"sslmode": "require"}, dbCfg.Options)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	dir := writeConfig(t, "server:\n  port: 9000\n")

	_, err := LoadConfig(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "auth.secret")
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := writeConfig(t, "auth:\n  secret: test-secret\n")
	t.Setenv("WEDDING_SERVER_PORT", "8123")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	require.Equal(t, 8123, cfg.Server.Port)
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CHAT_CALLBACK_URL", "http://relay.local")
	t.Setenv("CHAT_RELAY_TOKEN", "relay-token")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.StorageDriver)
	assert.Equal(t, "mealtrace.db", cfg.SQLitePath)
	assert.Equal(t, 21, cfg.SummaryHour)
}

func TestLoadRejectsMissingSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CHAT_CALLBACK_URL", "http://relay.local")
	t.Setenv("CHAT_RELAY_TOKEN", "relay-token")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadRejectsMissingRelay(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CHAT_CALLBACK_URL", "")
	t.Setenv("CHAT_RELAY_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHAT_CALLBACK_URL")
}

func TestPostgresValidation(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORAGE_DRIVER", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER")

	t.Setenv("DB_USER", "mealtrace")
	t.Setenv("DB_PASSWORD", "pw")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Contains(t, cfg.DSN(), "user=mealtrace")
	assert.Contains(t, cfg.DSN(), "dbname=mealtrace")
}

func TestUnknownDriverRejected(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORAGE_DRIVER", "mysql")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_DRIVER")
}

func TestSummaryHourBounds(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SUMMARY_HOUR", "24")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUMMARY_HOUR")
}

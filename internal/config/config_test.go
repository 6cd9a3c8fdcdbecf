package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "pmd-directory", cfg.Database.ApplicationName)
	assert.Equal(t, "directory", cfg.Database.Database)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, TriggerPolling, cfg.Directory.TriggerMode)
	assert.Equal(t, time.Minute, cfg.PollInterval())
	assert.Equal(t, 300*time.Millisecond, cfg.Debounce())
	assert.Equal(t, 2000, cfg.Search.AcceleratorThreshold)
	assert.Equal(t, 15*time.Minute, cfg.SessionIdleTimeout())
	assert.Equal(t, "directory/changes", cfg.MQTT.Topic)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.Equal(t, 20, cfg.Redis.PoolSize)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("DIRECTORY_TRIGGER_MODE", "EVENTS")
	t.Setenv("DIRECTORY_POLL_INTERVAL", "-5")
	t.Setenv("SEARCH_DEBOUNCE_MS", "150")
	t.Setenv("TAXONOMY_REMOTE_URL", "http://directory.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, TriggerEvents, cfg.Directory.TriggerMode)
	assert.Equal(t, 60, cfg.Directory.Polling.Interval, "non-positive values fall back")
	assert.Equal(t, 150*time.Millisecond, cfg.Debounce())
	assert.Equal(t, "http://directory.example", cfg.Taxonomy.RemoteURL)
}

func TestLoad_InvalidTriggerMode(t *testing.T) {
	t.Setenv("DIRECTORY_TRIGGER_MODE", "webhook")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_TriggerModeRequirements(t *testing.T) {
	t.Setenv("DIRECTORY_TRIGGER_MODE", "mqtt")
	_, err := Load()
	assert.ErrorContains(t, err, "MQTT_BROKER")

	t.Setenv("MQTT_BROKER", "tcp://broker:1883")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)

	t.Setenv("DIRECTORY_TRIGGER_MODE", "events")
	t.Setenv("REDIS_ENABLED", "false")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_RejectsMalformedConnectionSettings(t *testing.T) {
	t.Setenv("REDIS_POOL_SIZE", "lots")
	_, err := Load()
	assert.ErrorContains(t, err, "REDIS_POOL_SIZE")
}

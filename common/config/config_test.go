package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DefaultDatabaseConfig()
	c.Host = "db"
	c.Port = 5433
	c.User = "u"
	c.Password = "p"
	c.Database = "pmd"
	c.StatementTimeout = 2 * time.Second

	assert.Equal(t,
		"application_name=pmd-directory connect_timeout=5 dbname=pmd host=db options='-c statement_timeout=2000' password=p port=5433 sslmode=disable user=u",
		c.DSN())
}

func TestDatabaseConfig_DSNQuotesValues(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: `it's a \secret`, Database: "pmd"}
	assert.Equal(t, `dbname=pmd host=db password='it\'s a \\secret' port=5432 user=u`, c.DSN())
	assert.Equal(t, "u@db:5432/pmd", c.Redacted())
}

func TestDatabaseConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("DB_HOST", "pg.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "directory")
	t.Setenv("DB_MAX_CONNS", "40")
	t.Setenv("DB_CONN_MAX_LIFETIME", "0")
	t.Setenv("DB_STATEMENT_TIMEOUT_MS", "1500")

	c := DefaultDatabaseConfig()
	require.NoError(t, c.LoadFromEnv("DB"))

	assert.False(t, c.Enabled)
	assert.Equal(t, "pg.internal", c.Host)
	assert.Equal(t, 6543, c.Port)
	assert.Equal(t, "directory", c.Database)
	assert.Equal(t, 40, c.MaxConns)
	assert.Equal(t, 5, c.MaxIdle)
	assert.Zero(t, c.ConnMaxLifetime)
	assert.Equal(t, 1500*time.Millisecond, c.StatementTimeout)
}

func TestDatabaseConfig_LoadFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("DB_PORT", "five")
	c := DefaultDatabaseConfig()
	assert.ErrorContains(t, c.LoadFromEnv("DB"), "DB_PORT")

	t.Setenv("DB_PORT", "0")
	c = DefaultDatabaseConfig()
	assert.ErrorContains(t, c.LoadFromEnv("DB"), "must be positive")

	// 禁用数据库时不校验端口
	t.Setenv("DB_ENABLED", "false")
	c = DefaultDatabaseConfig()
	assert.NoError(t, c.LoadFromEnv("DB"))
}

func TestRedisConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_POOL_SIZE", "50")
	t.Setenv("REDIS_READ_TIMEOUT", "10")

	r := DefaultRedisConfig()
	require.NoError(t, r.LoadFromEnv("REDIS"))
	assert.True(t, r.Enabled)
	assert.Equal(t, "redis:6380", r.Addr)
	assert.Equal(t, 2, r.DB)
	assert.Equal(t, 50, r.PoolSize)
	assert.Equal(t, 10*time.Second, r.ReadTimeout)
	assert.Equal(t, 3*time.Second, r.WriteTimeout)

	t.Setenv("REDIS_ENABLED", "maybe")
	assert.ErrorContains(t, r.LoadFromEnv("REDIS"), "REDIS_ENABLED")
}

func TestMQTTConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("MQTT_CLIENT_ID", "pmd-1")
	t.Setenv("MQTT_TOPIC", "ksp/directory")
	t.Setenv("MQTT_QOS", "2")

	m := DefaultMQTTConfig()
	require.NoError(t, m.LoadFromEnv("MQTT"))
	assert.Equal(t, "tcp://broker:1883", m.Broker)
	assert.Equal(t, "pmd-1", m.ClientID)
	assert.Equal(t, "ksp/directory", m.Topic)
	assert.Equal(t, byte(2), m.QoS)

	t.Setenv("MQTT_QOS", "3")
	assert.ErrorContains(t, m.LoadFromEnv("MQTT"), "MQTT_QOS")
}

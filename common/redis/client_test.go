package redis

import (
	"context"
	"testing"
	"time"

	"pmd-directory/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_FromConfig(t *testing.T) {
	cfg := config.DefaultRedisConfig()
	cfg.Addr = "cache:6380"
	cfg.DB = 3
	cfg.PoolSize = 7

	opts := Options(&cfg)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, 2, opts.MinIdleConns)
	assert.Equal(t, 5*time.Second, opts.DialTimeout)
	assert.Equal(t, 3*time.Second, opts.ReadTimeout)
}

func TestConnect_Unreachable(t *testing.T) {
	cfg := config.DefaultRedisConfig()
	cfg.Addr = "127.0.0.1:1"
	cfg.DialTimeout = 200 * time.Millisecond

	client, err := Connect(context.Background(), &cfg)
	assert.Nil(t, client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
	assert.NoError(t, Close(nil))
}

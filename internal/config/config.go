package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"pmd-directory/common/config"
)

// 目录刷新触发方式
const (
	TriggerPolling = "polling"
	TriggerEvents  = "events"
	TriggerMQTT    = "mqtt"
)

// Config 通讯录服务配置
type Config struct {
	HTTP struct {
		Addr string
	}

	Database config.DatabaseConfig
	Redis    config.RedisConfig
	MQTT     config.MQTTConfig

	Directory struct {
		// polling（轮询）、events（Redis Streams）、mqtt（订阅变更主题）
		TriggerMode string

		Polling struct {
			Interval int // 轮询间隔（秒），默认 60 秒
		}

		EventStream   string // 事件流名称，如 "directory:events"
		ConsumerGroup string
		ConsumerName  string
		BatchSize     int
	}

	Search struct {
		DebounceMS           int
		AcceleratorThreshold int
		ResultCacheTTL       int // 秒
		SessionIdleTimeout   int // 秒
	}

	Taxonomy struct {
		RemoteURL       string
		RefreshInterval int // 秒
		CacheTTL        int // 秒
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Database = config.DefaultDatabaseConfig()
	if err := cfg.Database.LoadFromEnv("DB"); err != nil {
		return nil, err
	}
	cfg.Redis = config.DefaultRedisConfig()
	if err := cfg.Redis.LoadFromEnv("REDIS"); err != nil {
		return nil, err
	}
	cfg.MQTT = config.DefaultMQTTConfig()
	if err := cfg.MQTT.LoadFromEnv("MQTT"); err != nil {
		return nil, err
	}

	cfg.Directory.TriggerMode = strings.ToLower(getEnv("DIRECTORY_TRIGGER_MODE", TriggerPolling))
	cfg.Directory.Polling.Interval = getEnvInt("DIRECTORY_POLL_INTERVAL", 60)
	cfg.Directory.EventStream = getEnv("DIRECTORY_EVENT_STREAM", "directory:events")
	cfg.Directory.ConsumerGroup = getEnv("DIRECTORY_CONSUMER_GROUP", "directory-group")
	cfg.Directory.ConsumerName = getEnv("DIRECTORY_CONSUMER_NAME", "directory-1")
	cfg.Directory.BatchSize = getEnvInt("DIRECTORY_BATCH_SIZE", 10)

	cfg.Search.DebounceMS = getEnvInt("SEARCH_DEBOUNCE_MS", 300)
	cfg.Search.AcceleratorThreshold = getEnvInt("SEARCH_ACCELERATOR_THRESHOLD", 2000)
	cfg.Search.ResultCacheTTL = getEnvInt("RESULT_CACHE_TTL", 30)
	cfg.Search.SessionIdleTimeout = getEnvInt("SESSION_IDLE_TIMEOUT", 900)

	cfg.Taxonomy.RemoteURL = getEnv("TAXONOMY_REMOTE_URL", "")
	cfg.Taxonomy.RefreshInterval = getEnvInt("TAXONOMY_REFRESH_INTERVAL", 3600)
	cfg.Taxonomy.CacheTTL = getEnvInt("TAXONOMY_CACHE_TTL", 86400)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Directory.TriggerMode {
	case TriggerPolling:
	case TriggerEvents:
		if !c.Redis.Enabled {
			return fmt.Errorf("trigger mode %q requires Redis", TriggerEvents)
		}
	case TriggerMQTT:
		if c.MQTT.Broker == "" {
			return fmt.Errorf("trigger mode %q requires MQTT_BROKER", TriggerMQTT)
		}
	default:
		return fmt.Errorf("unknown DIRECTORY_TRIGGER_MODE %q", c.Directory.TriggerMode)
	}
	return nil
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Directory.Polling.Interval) * time.Second
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Search.DebounceMS) * time.Millisecond
}

func (c *Config) ResultCacheTTL() time.Duration {
	return time.Duration(c.Search.ResultCacheTTL) * time.Second
}

func (c *Config) SessionIdleTimeout() time.Duration {
	return time.Duration(c.Search.SessionIdleTimeout) * time.Second
}

func (c *Config) TaxonomyRefreshInterval() time.Duration {
	return time.Duration(c.Taxonomy.RefreshInterval) * time.Second
}

func (c *Config) TaxonomyCacheTTL() time.Duration {
	return time.Duration(c.Taxonomy.CacheTTL) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt 只接受正整数，否则用默认值
func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil && v > 0 {
		return v
	}
	return defaultValue
}

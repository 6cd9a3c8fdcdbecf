package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig 通讯录 PostgreSQL 配置
type DatabaseConfig struct {
	Enabled  bool // DB_ENABLED=false 时使用内存目录
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	ApplicationName  string
	MaxConns         int
	MaxIdle          int
	ConnMaxLifetime  time.Duration
	ConnectTimeout   time.Duration
	StatementTimeout time.Duration // 0 表示不限制
}

// RedisConfig Redis 配置（结果缓存、分类缓存、变更事件流共用一个连接池）
type RedisConfig struct {
	Enabled      bool
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// MQTTConfig MQTT 配置（变更主题）
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Enabled:         true,
		Host:            "localhost",
		Port:            5432,
		User:            "postgres",
		Password:        "postgres",
		Database:        "directory",
		SSLMode:         "disable",
		ApplicationName: "pmd-directory",
		MaxConns:        20,
		MaxIdle:         5,
		ConnMaxLifetime: 30 * time.Minute,
		ConnectTimeout:  5 * time.Second,
	}
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:      true,
		Addr:         "localhost:6379",
		PoolSize:     20,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func DefaultMQTTConfig() MQTTConfig {
	return MQTTConfig{
		ClientID: "pmd-directory",
		Topic:    "directory/changes",
		QoS:      1,
	}
}

// DSN 生成 lib/pq 的 key=value 连接串，值按 libpq 规则加引号
func (c *DatabaseConfig) DSN() string {
	params := map[string]string{
		"host":     c.Host,
		"port":     strconv.Itoa(c.Port),
		"user":     c.User,
		"password": c.Password,
		"dbname":   c.Database,
		"sslmode":  c.SSLMode,
	}
	if c.ApplicationName != "" {
		params["application_name"] = c.ApplicationName
	}
	if c.ConnectTimeout > 0 {
		params["connect_timeout"] = strconv.Itoa(int(c.ConnectTimeout.Round(time.Second) / time.Second))
	}
	if c.StatementTimeout > 0 {
		params["options"] = fmt.Sprintf("-c statement_timeout=%d", c.StatementTimeout.Milliseconds())
	}

	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+quoteDSNValue(params[k]))
	}
	return strings.Join(parts, " ")
}

// Redacted 用于日志，不含密码
func (c *DatabaseConfig) Redacted() string {
	return fmt.Sprintf("%s@%s:%d/%s", c.User, c.Host, c.Port, c.Database)
}

func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// LoadFromEnv 从环境变量覆盖（prefix_ENABLED, prefix_HOST ...）
func (c *DatabaseConfig) LoadFromEnv(prefix string) error {
	e := envReader{prefix: prefix}
	e.readBool("ENABLED", &c.Enabled)
	e.readString("HOST", &c.Host)
	e.readInt("PORT", &c.Port)
	e.readString("USER", &c.User)
	e.readString("PASSWORD", &c.Password)
	e.readString("NAME", &c.Database)
	e.readString("SSLMODE", &c.SSLMode)
	e.readString("APPLICATION_NAME", &c.ApplicationName)
	e.readInt("MAX_CONNS", &c.MaxConns)
	e.readInt("MAX_IDLE", &c.MaxIdle)
	e.readSeconds("CONN_MAX_LIFETIME", &c.ConnMaxLifetime)
	e.readSeconds("CONNECT_TIMEOUT", &c.ConnectTimeout)
	e.readMillis("STATEMENT_TIMEOUT_MS", &c.StatementTimeout)
	if e.err != nil {
		return e.err
	}
	if c.Enabled && c.Port <= 0 {
		return fmt.Errorf("%s_PORT must be positive", prefix)
	}
	return nil
}

// LoadFromEnv 从环境变量加载 Redis 配置
func (c *RedisConfig) LoadFromEnv(prefix string) error {
	e := envReader{prefix: prefix}
	e.readBool("ENABLED", &c.Enabled)
	e.readString("ADDR", &c.Addr)
	e.readString("PASSWORD", &c.Password)
	e.readInt("DB", &c.DB)
	e.readInt("POOL_SIZE", &c.PoolSize)
	e.readInt("MIN_IDLE_CONNS", &c.MinIdleConns)
	e.readSeconds("DIAL_TIMEOUT", &c.DialTimeout)
	e.readSeconds("READ_TIMEOUT", &c.ReadTimeout)
	e.readSeconds("WRITE_TIMEOUT", &c.WriteTimeout)
	return e.err
}

// LoadFromEnv 从环境变量加载 MQTT 配置
func (c *MQTTConfig) LoadFromEnv(prefix string) error {
	e := envReader{prefix: prefix}
	e.readString("BROKER", &c.Broker)
	e.readString("CLIENT_ID", &c.ClientID)
	e.readString("USERNAME", &c.Username)
	e.readString("PASSWORD", &c.Password)
	e.readString("TOPIC", &c.Topic)

	qos := int(c.QoS)
	e.readInt("QOS", &qos)
	if e.err != nil {
		return e.err
	}
	if qos < 0 || qos > 2 {
		return fmt.Errorf("%s_QOS must be 0, 1 or 2, got %d", prefix, qos)
	}
	c.QoS = byte(qos)
	return nil
}

// envReader 读取 prefix_KEY，只记录第一个解析错误
type envReader struct {
	prefix string
	err    error
}

func (e *envReader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(e.prefix + "_" + key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *envReader) fail(key, raw string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s_%s %q: %w", e.prefix, key, raw, err)
	}
}

func (e *envReader) readString(key string, dst *string) {
	if v, ok := e.lookup(key); ok {
		*dst = v
	}
}

func (e *envReader) readInt(key string, dst *int) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = n
}

func (e *envReader) readBool(key string, dst *bool) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = b
}

func (e *envReader) readSeconds(key string, dst *time.Duration) {
	n := -1
	e.readInt(key, &n)
	if n >= 0 {
		*dst = time.Duration(n) * time.Second
	}
}

func (e *envReader) readMillis(key string, dst *time.Duration) {
	n := -1
	e.readInt(key, &n)
	if n >= 0 {
		*dst = time.Duration(n) * time.Millisecond
	}
}

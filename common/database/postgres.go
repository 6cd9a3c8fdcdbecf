package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pmd-directory/common/config"

	_ "github.com/lib/pq"
)

const defaultPingTimeout = 5 * time.Second

// Open 按配置打开通讯录数据库并检查连通性，失败时关闭连接池
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Redacted(), err)
	}
	ApplyPool(db, cfg)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.Redacted(), err)
	}
	return db, nil
}

// ApplyPool 设置连接池参数，非正值保持 database/sql 默认
func ApplyPool(db *sql.DB, cfg *config.DatabaseConfig) {
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdle > 0 {
		idle := cfg.MaxIdle
		if cfg.MaxConns > 0 && idle > cfg.MaxConns {
			idle = cfg.MaxConns
		}
		db.SetMaxIdleConns(idle)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}

func Close(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}

package remote

import (
	"context"
	"fmt"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// ConnConfig 保存托管数据库的地址和密钥，
// 密钥作为连接密码使用。
type ConnConfig struct {
	URL          string
	Key          string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN 把密钥合并进连接 URL。
func (c ConnConfig) DSN() (string, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("parse REMOTE_DB_URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("REMOTE_DB_URL must use the postgres scheme, got %q", u.Scheme)
	}
	user := "postgres"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, c.Key)
	return u.String(), nil
}

// Connect 打开 pgx 连接池并 ping，数据库未就绪时重试。
func Connect(ctx context.Context, cfg ConnConfig) (*sqlx.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	const (
		maxRetries = 10
		retryDelay = 2 * time.Second
		pingTTL    = 5 * time.Second
	)

	for i := 1; i <= maxRetries; i++ {
		var db *sqlx.DB
		db, err = sqlx.Open("pgx", dsn)
		if err == nil {
			pctx, cancel := context.WithTimeout(ctx, pingTTL)
			err = db.PingContext(pctx)
			cancel()
			if err == nil {
				if cfg.MaxOpenConns > 0 {
					db.SetMaxOpenConns(cfg.MaxOpenConns)
				}
				if cfg.MaxIdleConns > 0 {
					db.SetMaxIdleConns(cfg.MaxIdleConns)
				}
				db.SetConnMaxLifetime(5 * time.Minute)
				return db, nil
			}
			_ = db.Close()
		}

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("remote connect canceled: %w", ctx.Err())
		}
	}
	return nil, fmt.Errorf("remote database unreachable after %d attempts: %w", maxRetries, err)
}

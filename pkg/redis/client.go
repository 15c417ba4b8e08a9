// Package redis 提供 Redis 客户端初始化和 key 命名，
// 供限流和订单事件 outbox 共用。
package redis

import (
	"context"
	"fmt"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// Connect 返回已 ping 通的客户端，addr 不可达时返回错误。
func Connect(ctx context.Context, addr string, db int) (*rd.Client, error) {
	rdb := rd.NewClient(&rd.Options{
		Addr:         addr,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

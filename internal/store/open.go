package store

import (
	"context"
	"fmt"

	"qr_menu/internal/config"
	"qr_menu/internal/store/embedded"
	"qr_menu/internal/store/memory"
	"qr_menu/internal/store/remote"

	"go.uber.org/zap"
)

var (
	_ Store    = (*memory.Store)(nil)
	_ Store    = (*embedded.Store)(nil)
	_ Store    = (*remote.Store)(nil)
	_ Migrator = (*remote.Store)(nil)
)

// Open 按 cfg 创建对应的存储实现，
// 进程运行期间不再切换。
func Open(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (Store, error) {
	switch cfg.Kind {
	case config.StoreMemory, "":
		log.Warn("no persistent store configured, orders are kept in memory and lost on restart")
		return memory.New(), nil
	case config.StoreSQLite:
		s, err := embedded.Open(cfg.SQLitePath, log)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, nil
	case config.StorePostgres:
		db, err := remote.Connect(ctx, remote.ConnConfig{
			URL:          cfg.RemoteURL,
			Key:          cfg.RemoteKey,
			MaxOpenConns: cfg.RemoteMaxOpenConns,
			MaxIdleConns: cfg.RemoteMaxIdleConns,
		})
		if err != nil {
			return nil, fmt.Errorf("connect remote store: %w", err)
		}
		s := remote.New(db, log)
		if _, err := s.Capabilities(ctx); err != nil {
			// 下次请求时再懒探测
			log.Warn("initial schema probe failed", zap.Error(err))
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
}

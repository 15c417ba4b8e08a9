// Package store 定义内存、嵌入式 SQLite 和远程 PostgreSQL
// 三种实现共用的订单持久化接口。
package store

import (
	"context"
	"time"

	"qr_menu/internal/model"
)

// Store 负责订单的读写。实现需用 apperr 包装错误：
// I/O 失败用 WriteFailure/ReadFailure，未知 id 用 NotFound，
// 写操作需要的列不存在时用 MigrationRequired。
type Store interface {
	// Name 标识底层数据库，用于诊断。
	Name() string
	Capabilities(ctx context.Context) (model.Capabilities, error)

	Insert(ctx context.Context, draft model.OrderDraft) (model.Record, error)
	// List 按时间倒序返回订单。
	List(ctx context.Context, f model.Filter) ([]model.Record, error)
	// MarkPaid 把一桌所有未支付订单标记为已支付。
	MarkPaid(ctx context.Context, tableID string, at time.Time) (int64, error)
	// DeleteByQR 删除 qrID 下的所有订单。
	DeleteByQR(ctx context.Context, qrID string) (int64, error)
	SetServed(ctx context.Context, id int64, served bool, at time.Time) (model.Record, error)
	Count(ctx context.Context) (int64, error)

	Close() error
}

// Migrator 由可原地升级表结构的存储实现。
type Migrator interface {
	Migrate(ctx context.Context) (model.Capabilities, error)
}

package remote

import (
	"context"
	"errors"
	"strings"
	"sync"

	"qr_menu/internal/apperr"
	"qr_menu/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// SQLSTATE undefined_column
const pgUndefinedColumn = "42703"

const ordersTable = "orders"

// baseColumns 在每一代表结构中都存在。
var baseColumns = []string{"id", "qr_id", "menu_id", `"timestamp"`}

// columns 记录实际存在的可选列。时间戳列单独记录，
// 迁移中断时可能只有 paid 没有 paid_at。
type columns struct {
	TableID  bool
	Price    bool
	Paid     bool
	PaidAt   bool
	Served   bool
	ServedAt bool
}

func (c columns) caps() model.Capabilities {
	return model.Capabilities{TableID: c.TableID, Price: c.Price, Paid: c.Paid, Served: c.Served}
}

func (c columns) complete() bool {
	return c == columns{TableID: true, Price: true, Paid: true, PaidAt: true, Served: true, ServedAt: true}
}

// optionalColumns 逐列探测。
var optionalColumns = []struct {
	name string
	set  func(*columns)
}{
	{"table_id", func(c *columns) { c.TableID = true }},
	{"price", func(c *columns) { c.Price = true }},
	{"paid", func(c *columns) { c.Paid = true }},
	{"paid_at", func(c *columns) { c.PaidAt = true }},
	{"served", func(c *columns) { c.Served = true }},
	{"served_at", func(c *columns) { c.ServedAt = true }},
}

// IsUndefinedColumn 判断 err 是否表示引用的列不存在。
// 同时识别 SQLite 的报错，便于在 SQLite 上运行。
func IsUndefinedColumn(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedColumn
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such column") || strings.Contains(msg, "has no column named")
}

// Schema 记录远程 orders 表具备哪些可选列。
// 每个连接探测一次；查询仍因缺列失败时
// 重新探测。
type Schema struct {
	db  *sqlx.DB
	log *zap.Logger

	mu     sync.RWMutex
	cols   columns
	probed bool
}

func NewSchema(db *sqlx.DB, log *zap.Logger) *Schema {
	return &Schema{db: db, log: log}
}

// Capabilities 返回缓存的探测结果，首次调用时探测。
func (s *Schema) Capabilities(ctx context.Context) (model.Capabilities, error) {
	cols, err := s.columns(ctx)
	if err != nil {
		return model.Capabilities{}, err
	}
	return cols.caps(), nil
}

// Probe 用 LIMIT 0 查询检查表结构并刷新缓存。
func (s *Schema) Probe(ctx context.Context) (model.Capabilities, error) {
	cols, err := s.probe(ctx)
	if err != nil {
		return model.Capabilities{}, err
	}
	return cols.caps(), nil
}

func (s *Schema) columns(ctx context.Context) (columns, error) {
	s.mu.RLock()
	cols, probed := s.cols, s.probed
	s.mu.RUnlock()
	if probed {
		return cols, nil
	}
	return s.probe(ctx)
}

func (s *Schema) probe(ctx context.Context) (columns, error) {
	var cols columns
	for _, c := range optionalColumns {
		rows, err := s.db.QueryContext(ctx, "SELECT "+c.name+" FROM "+ordersTable+" LIMIT 0")
		if err != nil {
			if IsUndefinedColumn(err) {
				continue
			}
			return columns{}, apperr.Wrap(apperr.KindReadFailure, "remote.Probe", err)
		}
		_ = rows.Close()
		c.set(&cols)
	}

	s.mu.Lock()
	prev, wasProbed := s.cols, s.probed
	s.cols, s.probed = cols, true
	s.mu.Unlock()

	if !wasProbed || prev != cols {
		fields := []zap.Field{
			zap.Bool("table_id", cols.TableID),
			zap.Bool("price", cols.Price),
			zap.Bool("paid", cols.Paid),
			zap.Bool("paid_at", cols.PaidAt),
			zap.Bool("served", cols.Served),
			zap.Bool("served_at", cols.ServedAt),
		}
		if !cols.complete() {
			s.log.Warn("orders table lacks optional columns, running degraded queries", fields...)
		} else {
			s.log.Info("orders table schema probed", fields...)
		}
	}
	return cols, nil
}

// withFallback 用当前列集合执行 fn。fn 因缺列失败时
// 重新探测，并用缩减后的列集合重试一次。
// 探测结果没有变化时返回原错误。
func (s *Schema) withFallback(ctx context.Context, op string, fn func(columns) error) error {
	cols, err := s.columns(ctx)
	if err != nil {
		return err
	}
	err = fn(cols)
	if !IsUndefinedColumn(err) {
		return err
	}

	s.log.Warn("column missing, retrying with degraded column list", zap.String("op", op), zap.Error(err))
	next, perr := s.probe(ctx)
	if perr != nil {
		return perr
	}
	if next == cols {
		return err
	}
	return fn(next)
}

// selectColumns 返回 cols 下可读取的列。
func selectColumns(cols columns) []string {
	out := append([]string{}, baseColumns...)
	for _, c := range []struct {
		name    string
		present bool
	}{
		{"table_id", cols.TableID},
		{"price", cols.Price},
		{"paid", cols.Paid},
		{"paid_at", cols.PaidAt},
		{"served", cols.Served},
		{"served_at", cols.ServedAt},
	} {
		if c.present {
			out = append(out, c.name)
		}
	}
	return out
}

// Package remote 把订单存到托管的 PostgreSQL，orders 表可能早于
// table_id、price、paid、served 等列。每条查询都按探测到的表结构生成，
// 缺列时自动降级。
package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"qr_menu/internal/apperr"
	"qr_menu/internal/model"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Store 是自适应表结构的远程订单存储。
type Store struct {
	db     *sqlx.DB
	schema *Schema
	log    *zap.Logger
}

// New 包装已打开的连接，查询按驱动的占位符风格 Rebind。
func New(db *sqlx.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("remote")
	return &Store{db: db, schema: NewSchema(db, log), log: log}
}

func (s *Store) Name() string {
	if s.db.DriverName() == "pgx" {
		return "Postgres"
	}
	return s.db.DriverName()
}

func (s *Store) Capabilities(ctx context.Context) (model.Capabilities, error) {
	return s.schema.Capabilities(ctx)
}

func (s *Store) Insert(ctx context.Context, d model.OrderDraft) (model.Record, error) {
	ts := d.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	var rec model.Record
	err := s.schema.withFallback(ctx, "insert", func(cols columns) error {
		names := []string{"qr_id", "menu_id", `"timestamp"`}
		args := []any{d.QRID, d.MenuID, ts}
		if cols.TableID {
			names = append(names, "table_id")
			args = append(args, d.TableID)
		}
		if cols.Price {
			names = append(names, "price")
			args = append(args, d.Price)
		}
		if cols.Paid {
			names = append(names, "paid")
			args = append(args, false)
		}
		if cols.Served {
			names = append(names, "served")
			args = append(args, false)
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			ordersTable, strings.Join(names, ", "), placeholders(len(names)), strings.Join(selectColumns(cols), ", "))

		var row orderRow
		if err := s.db.QueryRowxContext(ctx, s.db.Rebind(q), args...).StructScan(&row); err != nil {
			return err
		}
		rec = row.record(cols)
		return nil
	})
	if err != nil {
		return model.Record{}, classify(apperr.KindWriteFailure, "remote.Insert", err)
	}
	return rec, nil
}

// List 只在有 paid 列时按支付状态过滤，否则所有订单都算未结。
func (s *Store) List(ctx context.Context, f model.Filter) ([]model.Record, error) {
	var out []model.Record
	err := s.schema.withFallback(ctx, "list", func(cols columns) error {
		var (
			where []string
			args  []any
		)
		if f.QRID != "" {
			where = append(where, "qr_id = ?")
			args = append(args, f.QRID)
		}
		if f.UnpaidOnly && cols.Paid {
			where = append(where, "(paid IS NULL OR paid = ?)")
			args = append(args, false)
		}

		q := "SELECT " + strings.Join(selectColumns(cols), ", ") + " FROM " + ordersTable
		if len(where) > 0 {
			q += " WHERE " + strings.Join(where, " AND ")
		}
		q += ` ORDER BY "timestamp" DESC, id DESC`
		if f.Limit > 0 {
			q += fmt.Sprintf(" LIMIT %d", f.Limit)
		}

		var rows []orderRow
		if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
			return err
		}
		out = make([]model.Record, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.record(cols))
		}
		return nil
	})
	if err != nil {
		return nil, classify(apperr.KindReadFailure, "remote.List", err)
	}
	return out, nil
}

// MarkPaid 按 table_id 匹配；行或表结构没有 table_id 时退回 qr_id。
// 空字符串与 NULL 同样视为缺失。
func (s *Store) MarkPaid(ctx context.Context, tableID string, at time.Time) (int64, error) {
	var n int64
	err := s.schema.withFallback(ctx, "mark_paid", func(cols columns) error {
		if !cols.Paid {
			return apperr.New(apperr.KindMigrationRequired, "remote.MarkPaid", "orders table has no paid column")
		}
		set := "paid = ?"
		args := []any{true}
		if cols.PaidAt {
			set += ", paid_at = ?"
			args = append(args, at)
		}
		match := "qr_id = ?"
		if cols.TableID {
			match = "(table_id = ? OR ((table_id IS NULL OR table_id = '') AND qr_id = ?))"
			args = append(args, tableID, tableID)
		} else {
			args = append(args, tableID)
		}
		args = append(args, false)

		q := "UPDATE " + ordersTable + " SET " + set + " WHERE " + match + " AND (paid IS NULL OR paid = ?)"
		res, err := s.db.ExecContext(ctx, s.db.Rebind(q), args...)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, classify(apperr.KindWriteFailure, "remote.MarkPaid", err)
	}
	return n, nil
}

func (s *Store) DeleteByQR(ctx context.Context, qrID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM "+ordersTable+" WHERE qr_id = ?"), qrID)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindWriteFailure, "remote.DeleteByQR", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Wrap(apperr.KindWriteFailure, "remote.DeleteByQR", err)
	}
	return n, nil
}

// SetServed 没有降级方案：缺少 served 列时返回 MigrationRequired。
func (s *Store) SetServed(ctx context.Context, id int64, served bool, at time.Time) (model.Record, error) {
	var rec model.Record
	err := s.schema.withFallback(ctx, "set_served", func(cols columns) error {
		if !cols.Served {
			return apperr.New(apperr.KindMigrationRequired, "remote.SetServed", "orders table has no served column")
		}
		set := "served = ?"
		args := []any{served}
		if cols.ServedAt {
			var servedAt any
			if served {
				servedAt = at
			}
			set += ", served_at = ?"
			args = append(args, servedAt)
		}
		args = append(args, id)
		q := "UPDATE " + ordersTable + " SET " + set + " WHERE id = ? RETURNING " +
			strings.Join(selectColumns(cols), ", ")

		var row orderRow
		err := s.db.QueryRowxContext(ctx, s.db.Rebind(q), args...).StructScan(&row)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.KindNotFound, "remote.SetServed", "order not found")
		}
		if err != nil {
			return err
		}
		rec = row.record(cols)
		return nil
	})
	if err != nil {
		return model.Record{}, classify(apperr.KindWriteFailure, "remote.SetServed", err)
	}
	return rec, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+ordersTable); err != nil {
		return 0, apperr.Wrap(apperr.KindReadFailure, "remote.Count", err)
	}
	return n, nil
}

func (s *Store) Close() error { return s.db.Close() }

// classify 保留查询闭包内已设置的错误类型。
func classify(kind apperr.Kind, op string, err error) error {
	if apperr.KindOf(err) != apperr.KindUnknown {
		return err
	}
	return apperr.Wrap(kind, op, err)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// Package embedded 通过 gorm 把订单存到本地 SQLite 文件。
// 表保持第一代结构（id, qr_id, menu_id, timestamp），
// 不持久化 paid、served、table_id 和 price。
package embedded

import (
	"context"
	"errors"
	"time"

	"qr_menu/internal/apperr"
	"qr_menu/internal/model"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LegacyOrder 是固定的嵌入式表结构。
type LegacyOrder struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	QRID      string    `gorm:"column:qr_id;type:text;not null;index"`
	MenuID    string    `gorm:"column:menu_id;type:text;not null"`
	Timestamp time.Time `gorm:"column:timestamp;not null;default:CURRENT_TIMESTAMP;index"`
}

func (LegacyOrder) TableName() string { return "orders" }

func (o LegacyOrder) record() model.Record {
	return model.Record{
		ID:        o.ID,
		QRID:      o.QRID,
		MenuID:    o.MenuID,
		Timestamp: o.Timestamp,
	}
}

// Store 是基于 SQLite 的订单存储。
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open 打开 path 处的 SQLite 文件，不存在则创建。
func Open(path string, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return New(db, log)
}

// New 包装已打开的 gorm 连接，并确保 orders 表存在。
func New(db *gorm.DB, log *zap.Logger) (*Store, error) {
	if err := db.AutoMigrate(&LegacyOrder{}); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log.Named("embedded")}, nil
}

func (s *Store) Name() string { return "SQLite" }

func (s *Store) Capabilities(context.Context) (model.Capabilities, error) {
	return model.Capabilities{}, nil
}

func (s *Store) Insert(ctx context.Context, d model.OrderDraft) (model.Record, error) {
	row := LegacyOrder{QRID: d.QRID, MenuID: d.MenuID, Timestamp: d.Timestamp}
	if row.Timestamp.IsZero() {
		row.Timestamp = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Record{}, apperr.Wrap(apperr.KindWriteFailure, "embedded.Insert", err)
	}
	return row.record(), nil
}

// List 忽略 f.UnpaidOnly：没有 paid 列时所有订单都算未结。
func (s *Store) List(ctx context.Context, f model.Filter) ([]model.Record, error) {
	q := s.db.WithContext(ctx).Model(&LegacyOrder{})
	if f.QRID != "" {
		q = q.Where("qr_id = ?", f.QRID)
	}
	q = q.Order("timestamp desc").Order("id desc")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []LegacyOrder
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindReadFailure, "embedded.List", err)
	}
	out := make([]model.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

func (s *Store) MarkPaid(context.Context, string, time.Time) (int64, error) {
	return 0, apperr.New(apperr.KindMigrationRequired, "embedded.MarkPaid", "orders table has no paid column")
}

func (s *Store) DeleteByQR(ctx context.Context, qrID string) (int64, error) {
	res := s.db.WithContext(ctx).Where("qr_id = ?", qrID).Delete(&LegacyOrder{})
	if res.Error != nil {
		return 0, apperr.Wrap(apperr.KindWriteFailure, "embedded.DeleteByQR", res.Error)
	}
	return res.RowsAffected, nil
}

// SetServed 对未知 id 返回 NotFound，其余情况返回 MigrationRequired。
func (s *Store) SetServed(ctx context.Context, id int64, _ bool, _ time.Time) (model.Record, error) {
	var row LegacyOrder
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Record{}, apperr.New(apperr.KindNotFound, "embedded.SetServed", "order not found")
	}
	if err != nil {
		return model.Record{}, apperr.Wrap(apperr.KindReadFailure, "embedded.SetServed", err)
	}
	return model.Record{}, apperr.New(apperr.KindMigrationRequired, "embedded.SetServed", "orders table has no served column")
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&LegacyOrder{}).Count(&n).Error; err != nil {
		return 0, apperr.Wrap(apperr.KindReadFailure, "embedded.Count", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

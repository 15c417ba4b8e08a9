package remote

import (
	"context"
	"fmt"

	"qr_menu/internal/apperr"
	"qr_menu/internal/model"

	"go.uber.org/zap"
)

type dialect struct {
	serialPK  string
	timestamp string
	now       string
	addColumn string
}

func (s *Store) dialect() dialect {
	if s.db.DriverName() == "pgx" {
		return dialect{serialPK: "BIGSERIAL PRIMARY KEY", timestamp: "TIMESTAMPTZ", now: "NOW()", addColumn: "ADD COLUMN IF NOT EXISTS"}
	}
	return dialect{serialPK: "INTEGER PRIMARY KEY AUTOINCREMENT", timestamp: "TIMESTAMP", now: "CURRENT_TIMESTAMP", addColumn: "ADD COLUMN"}
}

// Migrate 在 orders 表不存在时建表，并逐列补齐探测到缺失的可选列。
// 可重复执行。
func (s *Store) Migrate(ctx context.Context) (model.Capabilities, error) {
	d := s.dialect()

	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id %s,
	qr_id VARCHAR(%d) NOT NULL,
	menu_id VARCHAR(%d) NOT NULL,
	"timestamp" %s NOT NULL DEFAULT %s
)`, ordersTable, d.serialPK, model.MaxQRIDLength, model.MaxMenuIDLength, d.timestamp, d.now)
	if _, err := s.db.ExecContext(ctx, create); err != nil {
		return model.Capabilities{}, apperr.Wrap(apperr.KindWriteFailure, "remote.Migrate", err)
	}

	cols, err := s.schema.probe(ctx)
	if err != nil {
		return model.Capabilities{}, err
	}

	add := func(column, def string) string {
		return fmt.Sprintf("ALTER TABLE %s %s %s %s", ordersTable, d.addColumn, column, def)
	}
	var stmts []string
	if !cols.TableID {
		stmts = append(stmts,
			add("table_id", fmt.Sprintf("VARCHAR(%d)", model.MaxQRIDLength)),
			fmt.Sprintf("UPDATE %s SET table_id = qr_id WHERE table_id IS NULL", ordersTable))
	}
	if !cols.Price {
		stmts = append(stmts, add("price", "INTEGER NOT NULL DEFAULT 0"))
	}
	if !cols.Paid {
		stmts = append(stmts, add("paid", "BOOLEAN NOT NULL DEFAULT FALSE"))
	}
	if !cols.PaidAt {
		stmts = append(stmts, add("paid_at", d.timestamp))
	}
	if !cols.Served {
		stmts = append(stmts, add("served", "BOOLEAN NOT NULL DEFAULT FALSE"))
	}
	if !cols.ServedAt {
		stmts = append(stmts, add("served_at", d.timestamp))
	}
	stmts = append(stmts,
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_orders_qr_id ON %s (qr_id)", ordersTable),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_orders_table_id ON %s (table_id)", ordersTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_orders_timestamp ON %s ("timestamp")`, ordersTable),
	)

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return model.Capabilities{}, apperr.Wrap(apperr.KindWriteFailure, "remote.Migrate", fmt.Errorf("%s: %w", stmt, err))
		}
	}

	caps, err := s.schema.Probe(ctx)
	if err != nil {
		return model.Capabilities{}, err
	}
	s.log.Info("orders table migrated", zap.Int("statements", len(stmts)))
	return caps, nil
}

package remote

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"qr_menu/internal/model"
)

// dbTime 既能扫描驱动返回的 time.Time，
// 也能解析以文本返回的时间戳。
type dbTime struct {
	Time  time.Time
	Valid bool
}

var textTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v.UTC(), true
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range textTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

func (t dbTime) ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// orderRow 可接收 orders 表任意列子集。
type orderRow struct {
	ID        int64           `db:"id"`
	QRID      sql.NullString  `db:"qr_id"`
	MenuID    sql.NullString  `db:"menu_id"`
	Timestamp dbTime          `db:"timestamp"`
	TableID   sql.NullString  `db:"table_id"`
	Price     sql.NullFloat64 `db:"price"`
	Paid      sql.NullBool    `db:"paid"`
	PaidAt    dbTime          `db:"paid_at"`
	Served    sql.NullBool    `db:"served"`
	ServedAt  dbTime          `db:"served_at"`
}

func (r orderRow) record(cols columns) model.Record {
	rec := model.Record{
		ID:        r.ID,
		QRID:      r.QRID.String,
		MenuID:    r.MenuID.String,
		Timestamp: r.Timestamp.Time,
		Schema:    cols.caps(),
	}
	if cols.TableID {
		rec.TableID = r.TableID.String
	}
	if cols.Price {
		rec.Price = math.NaN()
		if r.Price.Valid {
			rec.Price = r.Price.Float64
		}
	}
	if cols.Paid {
		rec.Paid = r.Paid.Bool
	}
	if cols.PaidAt {
		rec.PaidAt = r.PaidAt.ptr()
	}
	if cols.Served {
		rec.Served = r.Served.Bool
	}
	if cols.ServedAt {
		rec.ServedAt = r.ServedAt.ptr()
	}
	return rec
}

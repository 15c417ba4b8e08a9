package model

import (
	"math"
	"time"
)

const (
	MaxQRIDLength   = 50
	MaxMenuIDLength = 100

	// UnknownTable 在 table_id 和 qr_id 都为空时使用
	UnknownTable = "unknown"
)

// Capabilities 描述底层表结构具备哪些可选列。
// Paid、Served 只看 paid、served 列本身，对应的 *_at 列可以缺失。
type Capabilities struct {
	TableID bool `json:"table_id"`
	Price   bool `json:"price"`
	Paid    bool `json:"paid"`
	Served  bool `json:"served"`
}

// FullCapabilities 对应当前版本的表结构。
func FullCapabilities() Capabilities {
	return Capabilities{TableID: true, Price: true, Paid: true, Served: true}
}

// Degraded 判断是否缺少任何可选列。
func (c Capabilities) Degraded() bool {
	return c != FullCapabilities()
}

// OrderDraft 是 service 交给存储层写入的数据。
type OrderDraft struct {
	QRID      string
	MenuID    string
	TableID   string
	Price     int64
	Timestamp time.Time
}

// Order 是返回给客户端的规范化订单。
type Order struct {
	ID        int64      `json:"id"`
	QRID      string     `json:"qr_id"`
	MenuID    string     `json:"menu_id"`
	TableID   string     `json:"table_id"`
	Price     int64      `json:"price"`
	Timestamp time.Time  `json:"timestamp"`
	Paid      bool       `json:"paid"`
	PaidAt    *time.Time `json:"paid_at"`
	Served    bool       `json:"served"`
	ServedAt  *time.Time `json:"served_at"`
}

// Record 是从存储层读出的订单。Schema 表示实际读取了哪些可选字段，
// 未读取的字段为零值。price 列存在但值为 null 时
// Price 为 NaN。
type Record struct {
	ID        int64
	QRID      string
	MenuID    string
	TableID   string
	Price     float64
	Timestamp time.Time
	Paid      bool
	PaidAt    *time.Time
	Served    bool
	ServedAt  *time.Time

	Schema Capabilities
}

// PriceLookup 按菜名查询菜单价格。
type PriceLookup func(menuID string) (int64, bool)

// Normalize 为缺失的列补默认值，
// 并把存储值修正为客户端约定的形式。
func (r Record) Normalize(lookup PriceLookup) Order {
	o := Order{
		ID:        r.ID,
		QRID:      r.QRID,
		MenuID:    r.MenuID,
		Timestamp: r.Timestamp,
	}

	o.TableID = r.TableID
	if !r.Schema.TableID || o.TableID == "" {
		o.TableID = r.QRID
	}
	if o.TableID == "" {
		o.TableID = UnknownTable
	}

	if r.Schema.Price {
		o.Price = coercePrice(r.Price)
	} else if lookup != nil {
		if p, ok := lookup(r.MenuID); ok && p >= 0 {
			o.Price = p
		}
	}

	if r.Schema.Paid {
		o.Paid = r.Paid
		o.PaidAt = r.PaidAt
	}
	if r.Schema.Served {
		o.Served = r.Served
		o.ServedAt = r.ServedAt
	}
	return o
}

func coercePrice(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return int64(math.Round(v))
}

// NormalizeAll 逐条规范化，保持原有顺序。
func NormalizeAll(records []Record, lookup PriceLookup) []Order {
	out := make([]Order, 0, len(records))
	for _, r := range records {
		out = append(out, r.Normalize(lookup))
	}
	return out
}

// Filter 是列表查询条件。不支持 paid 的存储会忽略 UnpaidOnly。
// Limit 为 0 表示不限制。
type Filter struct {
	QRID       string
	UnpaidOnly bool
	Limit      int
}

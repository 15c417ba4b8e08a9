package model

import "time"

// TableSummary 按桌汇总未结订单，供管理后台使用。
type TableSummary struct {
	TableID     string    `json:"table_id"`
	OrderCount  int       `json:"order_count"`
	ServedCount int       `json:"served_count"`
	Total       int64     `json:"total"`
	FirstOrder  time.Time `json:"first_order_at"`
	LastOrder   time.Time `json:"last_order_at"`
	Orders      []Order   `json:"orders"`
}

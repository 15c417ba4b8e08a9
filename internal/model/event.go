package model

import (
	"fmt"
	"time"
)

// OrderEventType 描述订单或桌子发生的变化。
type OrderEventType string

const (
	EventOrderPlaced     OrderEventType = "order_placed"
	EventTableCheckedOut OrderEventType = "table_checked_out"
	EventOrderServed     OrderEventType = "order_served"
)

// OrderEvent 在状态变更成功后发布，
// 后厨和前厅屏幕无需轮询即可响应。
type OrderEvent struct {
	EventID    string         `json:"event_id"`
	Type       OrderEventType `json:"type"`
	OrderID    int64          `json:"order_id,omitempty"`
	QRID       string         `json:"qr_id,omitempty"`
	TableID    string         `json:"table_id"`
	MenuID     string         `json:"menu_id,omitempty"`
	Price      int64          `json:"price,omitempty"`
	Served     bool           `json:"served,omitempty"`
	Affected   int64          `json:"affected,omitempty"`
	Degraded   bool           `json:"degraded,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Validate 做最小字段校验，防止消费者处理脏消息。
func (e OrderEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if e.TableID == "" {
		return fmt.Errorf("table_id is required")
	}
	if e.OccurredAt.IsZero() {
		return fmt.Errorf("occurred_at is required")
	}
	switch e.Type {
	case EventOrderPlaced:
		if e.OrderID <= 0 || e.MenuID == "" {
			return fmt.Errorf("order_placed needs order_id and menu_id")
		}
	case EventOrderServed:
		if e.OrderID <= 0 {
			return fmt.Errorf("order_served needs order_id")
		}
	case EventTableCheckedOut:
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	return nil
}

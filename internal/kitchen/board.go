// Package kitchen 根据订单事件维护
// 每桌待出餐的实时视图。
package kitchen

import (
	"context"
	"sort"
	"sync"
	"time"

	"qr_menu/internal/model"

	"go.uber.org/zap"
)

// Ticket 是后厨视角下的一笔订单。
type Ticket struct {
	OrderID  int64
	MenuID   string
	PlacedAt time.Time
	Served   bool
}

// Board 可并发使用。
type Board struct {
	mu     sync.Mutex
	tables map[string][]Ticket
	// seen 按桌记录已处理的事件 id，结账后清除
	seen map[string]map[string]struct{}
	log    *zap.Logger
}

func NewBoard(log *zap.Logger) *Board {
	if log == nil {
		log = zap.NewNop()
	}
	return &Board{
		tables: make(map[string][]Ticket),
		seen:   make(map[string]map[string]struct{}),
		log:    log.Named("kitchen"),
	}
}

// Handle 处理 ev。桌子未结账时，重复投递（相同 event id）的事件会被忽略；
// 结账时连同小票一起清掉该桌的事件 id。
func (b *Board) Handle(_ context.Context, ev model.OrderEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ev.Type != model.EventTableCheckedOut {
		ids := b.seen[ev.TableID]
		if _, dup := ids[ev.EventID]; dup {
			return nil
		}
		if ids == nil {
			ids = make(map[string]struct{})
			b.seen[ev.TableID] = ids
		}
		ids[ev.EventID] = struct{}{}
	}

	switch ev.Type {
	case model.EventOrderPlaced:
		b.tables[ev.TableID] = append(b.tables[ev.TableID], Ticket{
			OrderID:  ev.OrderID,
			MenuID:   ev.MenuID,
			PlacedAt: ev.OccurredAt,
		})
		b.log.Info("new ticket",
			zap.String("table_id", ev.TableID),
			zap.String("menu_id", ev.MenuID),
			zap.Int64("order_id", ev.OrderID))
	case model.EventOrderServed:
		tickets := b.tables[ev.TableID]
		for i := range tickets {
			if tickets[i].OrderID == ev.OrderID {
				tickets[i].Served = ev.Served
			}
		}
	case model.EventTableCheckedOut:
		delete(b.tables, ev.TableID)
		delete(b.seen, ev.TableID)
		b.log.Info("table cleared", zap.String("table_id", ev.TableID), zap.Int64("orders", ev.Affected))
	}
	return nil
}

// Pending 按桌返回未出餐的小票，最早的在前。
func (b *Board) Pending() map[string][]Ticket {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string][]Ticket)
	for table, tickets := range b.tables {
		var open []Ticket
		for _, t := range tickets {
			if !t.Served {
				open = append(open, t)
			}
		}
		if len(open) == 0 {
			continue
		}
		sort.Slice(open, func(i, j int) bool { return open[i].PlacedAt.Before(open[j].PlacedAt) })
		out[table] = open
	}
	return out
}

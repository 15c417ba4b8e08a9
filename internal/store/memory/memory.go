// Package memory 是未配置数据库时使用的临时订单存储，
// 重启后数据丢失。
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"qr_menu/internal/apperr"
	"qr_menu/internal/model"
)

// Store 把订单保存在实例自己的切片中。
type Store struct {
	mu     sync.RWMutex
	orders []model.Record
	nextID int64
}

func New() *Store {
	return &Store{nextID: 1}
}

func (s *Store) Name() string { return "Memory" }

func (s *Store) Capabilities(context.Context) (model.Capabilities, error) {
	return model.FullCapabilities(), nil
}

func (s *Store) Insert(_ context.Context, d model.OrderDraft) (model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := d.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	rec := model.Record{
		ID:        s.nextID,
		QRID:      d.QRID,
		MenuID:    d.MenuID,
		TableID:   d.TableID,
		Price:     float64(d.Price),
		Timestamp: ts,
		Schema:    model.FullCapabilities(),
	}
	s.nextID++
	s.orders = append(s.orders, rec)
	return rec, nil
}

func (s *Store) List(_ context.Context, f model.Filter) ([]model.Record, error) {
	s.mu.RLock()
	out := make([]model.Record, 0, len(s.orders))
	for _, o := range s.orders {
		if f.QRID != "" && o.QRID != f.QRID {
			continue
		}
		if f.UnpaidOnly && o.Paid {
			continue
		}
		out = append(out, o)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) MarkPaid(_ context.Context, tableID string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for i := range s.orders {
		o := &s.orders[i]
		if o.Paid || !atTable(*o, tableID) {
			continue
		}
		paidAt := at
		o.Paid = true
		o.PaidAt = &paidAt
		n++
	}
	return n, nil
}

// atTable 把空的 table_id 视为 qr_id。
func atTable(o model.Record, tableID string) bool {
	if o.TableID == "" {
		return o.QRID == tableID
	}
	return o.TableID == tableID
}

func (s *Store) DeleteByQR(_ context.Context, qrID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.orders[:0]
	var n int64
	for _, o := range s.orders {
		if o.QRID == qrID {
			n++
			continue
		}
		kept = append(kept, o)
	}
	s.orders = kept
	return n, nil
}

func (s *Store) SetServed(_ context.Context, id int64, served bool, at time.Time) (model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		o := &s.orders[i]
		if o.ID != id {
			continue
		}
		o.Served = served
		if served {
			servedAt := at
			o.ServedAt = &servedAt
		} else {
			o.ServedAt = nil
		}
		return *o, nil
	}
	return model.Record{}, apperr.New(apperr.KindNotFound, "memory.SetServed", "order not found")
}

func (s *Store) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.orders)), nil
}

func (s *Store) Close() error { return nil }

package service

import (
	"context"

	"qr_menu/internal/model"
)

// ToggleServed 设置单笔订单的出餐状态，重复设置无副作用。
func (s *OrderService) ToggleServed(ctx context.Context, id int64, served bool) (model.Order, error) {
	if err := s.check("service.ToggleServed", toggleInput{ID: id}); err != nil {
		return model.Order{}, err
	}

	rec, err := s.store.SetServed(ctx, id, served, s.opts.Now())
	if err != nil {
		return model.Order{}, err
	}

	var lookup model.PriceLookup
	if !rec.Schema.Price {
		lookup = s.menu.PriceLookup(ctx)
	}
	order := rec.Normalize(lookup)

	s.publish(ctx, model.OrderEvent{
		Type:    model.EventOrderServed,
		OrderID: order.ID,
		QRID:    order.QRID,
		TableID: order.TableID,
		MenuID:  order.MenuID,
		Served:  order.Served,
	})
	return order, nil
}

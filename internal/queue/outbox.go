package queue

import (
	"context"
	"fmt"

	"qr_menu/internal/model"

	rd "github.com/redis/go-redis/v9"
)

// Outbox 把订单事件追加到 Redis Stream，由 relay 异步转发到 Kafka，
// broker 故障不会拖慢下单。
type Outbox struct {
	rdb    *rd.Client
	stream string
	maxLen int64
}

func NewOutbox(rdb *rd.Client, stream string) *Outbox {
	return &Outbox{rdb: rdb, stream: stream, maxLen: 100000}
}

func (o *Outbox) Publish(ctx context.Context, ev model.OrderEvent) error {
	if err := ev.Validate(); err != nil {
		return fmt.Errorf("outbox: %w", err)
	}
	return o.rdb.XAdd(ctx, &rd.XAddArgs{
		Stream: o.stream,
		MaxLen: o.maxLen,
		Approx: true,
		Values: eventFields(ev),
	}).Err()
}

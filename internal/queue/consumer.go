package queue

import (
	"context"
	"fmt"
	"time"

	"qr_menu/internal/model"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler 处理一条订单事件。失败时按递增间隔重试几次，
// 仍失败则记录日志并提交 offset，不会重新投递，
// handler 不能依赖重投。
type Handler func(ctx context.Context, ev model.OrderEvent) error

const (
	handleAttempts = 3
	handleBackoff  = 200 * time.Millisecond
)

// Consumer 以消费者组方式从 Kafka 读取订单事件。
type Consumer struct {
	r   *kafka.Reader
	log *zap.Logger
}

func NewConsumer(brokers []string, topic, groupID string, log *zap.Logger) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1e3,
			MaxBytes: 1e6,
		}),
		log: log.Named("consumer"),
	}
}

func (c *Consumer) Close() error { return c.r.Close() }

// Run 阻塞直到 ctx 取消。
func (c *Consumer) Run(ctx context.Context, handle Handler) {
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Error("fetch message", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		ev, err := decodeEvent(m.Value)
		if err != nil {
			c.log.Warn("skipping malformed event", zap.Int64("offset", m.Offset), zap.Error(err))
			c.commit(ctx, m)
			continue
		}

		if err := handleWithRetry(ctx, handle, ev, handleAttempts, handleBackoff); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Error("dropping event after retries",
				zap.String("event_id", ev.EventID),
				zap.String("type", string(ev.Type)),
				zap.Int64("offset", m.Offset),
				zap.Error(err))
		}
		c.commit(ctx, m)
	}
}

// handleWithRetry 最多调用 handle attempts 次，每次间隔翻倍；
// ctx 取消时提前返回。
func handleWithRetry(ctx context.Context, handle Handler, ev model.OrderEvent, attempts int, delay time.Duration) error {
	var err error
	for i := 1; i <= attempts; i++ {
		if err = handle(ctx, ev); err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		select {
		case <-time.After(delay):
			delay *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, err)
}

func (c *Consumer) commit(ctx context.Context, m kafka.Message) {
	if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
		c.log.Warn("commit offset", zap.Int64("offset", m.Offset), zap.Error(err))
	}
}

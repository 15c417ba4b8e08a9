package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"qr_menu/internal/model"

	rd "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Publisher 是 relay 的下游，生产环境为 *Producer。
type Publisher interface {
	Publish(ctx context.Context, ev model.OrderEvent) error
}

// Relay 把 outbox 中的条目转发到 Kafka。发布成功后才 ack，
// 失败的条目留在 pending 中等下一轮。
type Relay struct {
	rdb *rd.Client
	pub Publisher
	log *zap.Logger

	stream   string
	group    string
	consumer string
}

func NewRelay(rdb *rd.Client, pub Publisher, stream, group, consumer string, log *zap.Logger) *Relay {
	if log == nil {
		log = zap.NewNop()
	}
	return &Relay{
		rdb:      rdb,
		pub:      pub,
		log:      log.Named("relay"),
		stream:   stream,
		group:    group,
		consumer: consumer,
	}
}

func (r *Relay) Run(ctx context.Context) error {
	if err := r.ensureGroup(ctx); err != nil {
		return fmt.Errorf("relay ensure group: %w", err)
	}
	r.log.Info("relay started", zap.String("stream", r.stream), zap.String("group", r.group))

	for {
		if ctx.Err() != nil {
			return nil
		}

		// 先处理本消费者的 pending 条目，再读新条目
		msgs, err := r.readGroup(ctx, "0", 0)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			r.log.Warn("read pending", zap.Error(err))
			time.Sleep(300 * time.Millisecond)
			continue
		}
		if len(msgs) == 0 {
			msgs, err = r.readGroup(ctx, ">", 2*time.Second)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) {
					return nil
				}
				r.log.Warn("read new", zap.Error(err))
				time.Sleep(300 * time.Millisecond)
				continue
			}
		}

		for _, xm := range msgs {
			if err := r.processOne(ctx, xm); err != nil {
				r.log.Warn("forward entry", zap.String("id", xm.ID), zap.Error(err))
				time.Sleep(200 * time.Millisecond)
				break
			}
		}
	}
}

func (r *Relay) ensureGroup(ctx context.Context) error {
	err := r.rdb.XGroupCreateMkStream(ctx, r.stream, r.group, "0").Err()
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "BUSYGROUP") {
		return nil
	}
	return err
}

func (r *Relay) readGroup(ctx context.Context, streamID string, block time.Duration) ([]rd.XMessage, error) {
	streams, err := r.rdb.XReadGroup(ctx, &rd.XReadGroupArgs{
		Group:    r.group,
		Consumer: r.consumer,
		Streams:  []string{r.stream, streamID},
		Count:    16,
		Block:    block,
		NoAck:    false,
	}).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]rd.XMessage, 0, 16)
	for _, s := range streams {
		out = append(out, s.Messages...)
	}
	return out, nil
}

func (r *Relay) processOne(ctx context.Context, xm rd.XMessage) error {
	ev, err := parseOrderEvent(xm.Values)
	if err != nil {
		// 格式错误的条目直接丢弃，避免堵住 stream
		r.log.Warn("dropping malformed entry", zap.String("id", xm.ID), zap.Error(err))
		if ackErr := r.ackAndDelete(ctx, xm.ID); ackErr != nil {
			return fmt.Errorf("parse failed: %v, ack failed: %w", err, ackErr)
		}
		return nil
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.pub.Publish(pubCtx, ev); err != nil {
		return err
	}
	return r.ackAndDelete(ctx, xm.ID)
}

func (r *Relay) ackAndDelete(ctx context.Context, id string) error {
	pipe := r.rdb.TxPipeline()
	pipe.XAck(ctx, r.stream, r.group, id)
	pipe.XDel(ctx, r.stream, id)
	_, err := pipe.Exec(ctx)
	return err
}

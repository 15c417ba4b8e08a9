package queue

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"qr_menu/internal/model"
)

// Stream 条目把事件拆成平铺字段，方便用 redis-cli XRANGE 查看；
// relay 再从字段还原事件。
func eventFields(ev model.OrderEvent) map[string]any {
	return map[string]any{
		"event_id":    ev.EventID,
		"type":        string(ev.Type),
		"order_id":    ev.OrderID,
		"qr_id":       ev.QRID,
		"table_id":    ev.TableID,
		"menu_id":     ev.MenuID,
		"price":       ev.Price,
		"served":      strconv.FormatBool(ev.Served),
		"affected":    ev.Affected,
		"degraded":    strconv.FormatBool(ev.Degraded),
		"occurred_at": ev.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}

func parseOrderEvent(values map[string]interface{}) (model.OrderEvent, error) {
	var ev model.OrderEvent
	var err error

	if ev.EventID, err = getStreamString(values, "event_id"); err != nil {
		return model.OrderEvent{}, err
	}
	typ, err := getStreamString(values, "type")
	if err != nil {
		return model.OrderEvent{}, err
	}
	ev.Type = model.OrderEventType(typ)
	if ev.TableID, err = getStreamString(values, "table_id"); err != nil {
		return model.OrderEvent{}, err
	}
	ev.QRID, _ = getStreamString(values, "qr_id")
	ev.MenuID, _ = getStreamString(values, "menu_id")

	if ev.OrderID, err = streamInt(values, "order_id"); err != nil {
		return model.OrderEvent{}, err
	}
	if ev.Price, err = streamInt(values, "price"); err != nil {
		return model.OrderEvent{}, err
	}
	if ev.Affected, err = streamInt(values, "affected"); err != nil {
		return model.OrderEvent{}, err
	}
	if ev.Served, err = streamBool(values, "served"); err != nil {
		return model.OrderEvent{}, err
	}
	if ev.Degraded, err = streamBool(values, "degraded"); err != nil {
		return model.OrderEvent{}, err
	}

	at, err := getStreamString(values, "occurred_at")
	if err != nil {
		return model.OrderEvent{}, err
	}
	if ev.OccurredAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
		return model.OrderEvent{}, fmt.Errorf("invalid occurred_at %q", at)
	}

	if err := ev.Validate(); err != nil {
		return model.OrderEvent{}, err
	}
	return ev, nil
}

// decodeEvent 解析 Kafka 消息体。
func decodeEvent(b []byte) (model.OrderEvent, error) {
	var ev model.OrderEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return model.OrderEvent{}, err
	}
	if err := ev.Validate(); err != nil {
		return model.OrderEvent{}, err
	}
	return ev, nil
}

// streamInt 缺失字段按 0 处理。
func streamInt(values map[string]interface{}, key string) (int64, error) {
	if _, ok := values[key]; !ok {
		return 0, nil
	}
	s, err := getStreamString(values, key)
	if err != nil {
		return 0, err
	}
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return n, nil
}

func streamBool(values map[string]interface{}, key string) (bool, error) {
	if _, ok := values[key]; !ok {
		return false, nil
	}
	s, err := getStreamString(values, key)
	if err != nil {
		return false, err
	}
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, s)
	}
	return b, nil
}

func getStreamString(values map[string]interface{}, key string) (string, error) {
	v, ok := values[key]
	if !ok {
		return "", fmt.Errorf("missing field %s", key)
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return strconv.FormatInt(int64(x), 10), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return "", fmt.Errorf("unsupported field type %s: %T", key, v)
	}
}

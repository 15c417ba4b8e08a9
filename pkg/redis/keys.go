package redis

import "fmt"

const keyPrefix = "qr_menu"

// RateLimitKey 单个客户端地址的滑动窗口 key。
func RateLimitKey(scope, clientIP string) string {
	return fmt.Sprintf("%s:rate_limit:%s:ip:%s", keyPrefix, scope, clientIP)
}

// OrderEventStream 默认的 outbox stream 名。
func OrderEventStream() string {
	return keyPrefix + ":order_events"
}

package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "qr_menu:rate_limit:api:ip:10.0.0.7", RateLimitKey("api", "10.0.0.7"))
	assert.Equal(t, "qr_menu:order_events", OrderEventStream())
}

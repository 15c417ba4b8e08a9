package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"qr_menu/internal/middleware"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func engine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/x", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSecurityHeaders(t *testing.T) {
	w := do(engine(middleware.SecurityHeaders()), httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
	assert.NotEmpty(t, w.Header().Get("Referrer-Policy"))
}

func TestRequestID(t *testing.T) {
	r := engine(middleware.RequestID(), middleware.AccessLog(zap.NewNop()))

	w := do(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, w.Header().Get(middleware.RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	w = do(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))
}

func TestAdminToken(t *testing.T) {
	open := engine(middleware.AdminToken(""))
	assert.Equal(t, http.StatusOK, do(open, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)

	guarded := engine(middleware.AdminToken("hunter2"))
	assert.Equal(t, http.StatusUnauthorized, do(guarded, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(middleware.AdminTokenHeader, "hunter2")
	assert.Equal(t, http.StatusOK, do(guarded, req).Code)
}

func TestCORS_Allowlist(t *testing.T) {
	r := engine(middleware.CORS([]string{"https://menu.example.com"}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://menu.example.com")
	w := do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://menu.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = do(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRedisRateLimit_FailsOpen(t *testing.T) {
	rdb := rd.NewClient(&rd.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	r := engine(middleware.RedisRateLimit(rdb, "api", 1, time.Minute, nil))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	}
}

func TestLocalRateLimit_PerClientIP(t *testing.T) {
	r := engine(middleware.LocalRateLimit(2, time.Minute))
	from := func(ip string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = ip + ":40000"
		return req
	}

	assert.Equal(t, http.StatusOK, do(r, from("10.0.0.1")).Code)
	assert.Equal(t, http.StatusOK, do(r, from("10.0.0.1")).Code)
	w := do(r, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do(r, from("10.0.0.2")).Code)
}

func TestLocalRateLimit_DisabledWithoutLimit(t *testing.T) {
	r := engine(middleware.LocalRateLimit(0, time.Minute))
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	}
}

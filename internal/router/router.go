package router

import (
	"net/http"
	"strings"

	"qr_menu/internal/apperr"
	"qr_menu/internal/config"
	"qr_menu/internal/middleware"
	"qr_menu/internal/service"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deps 是 HTTP 层依赖的组件，Redis 可选。
type Deps struct {
	Orders *service.OrderService
	Menu   service.Menu
	Redis  *rd.Client
	Config config.AppConfig
	Log    *zap.Logger
}

// Setup 在 r 上注册中间件和全部路由。
func Setup(r *gin.Engine, d Deps) {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(log.Named("http")),
		middleware.SecurityHeaders(),
		middleware.CORS(d.Config.AllowedOrigins()),
	)

	api := r.Group("/api")
	if d.Redis != nil {
		api.Use(middleware.RedisRateLimit(d.Redis, "api", d.Config.RateLimit, d.Config.RateWindow, log))
	} else {
		api.Use(middleware.LocalRateLimit(d.Config.RateLimit, d.Config.RateWindow))
	}

	api.GET("", apiInfo(d.Config))
	api.GET("/health", health(d.Orders))
	api.GET("/menu", listMenu(d.Menu, log))
	if !d.Config.Restricted {
		api.GET("/debug", debugEcho())
	}

	api.POST("/orders", placeOrder(d.Orders, log))
	api.GET("/orders", listAllOrders(d.Orders, log))
	api.GET("/orders/:qrId", listTableOrders(d.Orders, log))

	admin := api.Group("/admin", middleware.AdminToken(d.Config.AdminToken))
	admin.GET("/orders", adminOrders(d.Orders, log))
	admin.GET("/tables", adminTables(d.Orders, log))
	admin.POST("/checkout", checkout(d.Orders, log))
	admin.POST("/toggle-served", toggleServed(d.Orders, log))

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// respondError 把 err 映射为状态码和可公开的响应体，底层原因只写日志。
func respondError(c *gin.Context, log *zap.Logger, err error, fallback string) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	fields := []zap.Field{
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("kind", kind.String()),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		log.Error(fallback, fields...)
	} else {
		log.Info(fallback, fields...)
	}

	body := gin.H{"error": fallback}
	switch kind {
	case apperr.KindValidation, apperr.KindNotFound, apperr.KindForbidden:
		body["error"] = apperr.Message(err, fallback)
	case apperr.KindMigrationRequired:
		body["error"] = apperr.Message(err, fallback)
		body["needsMigration"] = true
	}
	c.JSON(status, body)
}

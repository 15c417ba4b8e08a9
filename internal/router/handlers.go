package router

import (
	"net/http"
	"time"

	"qr_menu/internal/config"
	"qr_menu/internal/middleware"
	"qr_menu/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func apiInfo(cfg config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoints := []string{
			"GET /api/menu",
			"POST /api/orders",
			"GET /api/orders/:qrId",
			"GET /api/admin/orders",
			"GET /api/admin/tables",
			"POST /api/admin/checkout",
			"POST /api/admin/toggle-served",
			"GET /api/health",
		}
		if !cfg.Restricted {
			endpoints = append(endpoints, "GET /api/orders", "GET /api/debug")
		}
		c.JSON(http.StatusOK, gin.H{
			"name":        "qr-menu",
			"environment": cfg.AppEnv,
			"restricted":  cfg.Restricted,
			"endpoints":   endpoints,
		})
	}
}

// debugEcho 返回服务端看到的请求信息。不回显请求头，
// 避免泄露令牌。
func debugEcho() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":    "debug endpoint working",
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"request_id": middleware.GetRequestID(c),
		})
	}
}

func health(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Health(c.Request.Context()))
	}
}

func listMenu(menu service.Menu, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := menu.Load(c.Request.Context())
		if err != nil {
			respondError(c, log, err, "Failed to load menu")
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func placeOrder(svc *service.OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			QRID   string `json:"qr_id"`
			MenuID string `json:"menu_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "qr_id and menu_id are required"})
			return
		}
		order, err := svc.PlaceOrder(c.Request.Context(), req.QRID, req.MenuID)
		if err != nil {
			respondError(c, log, err, "Failed to create order")
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func listTableOrders(svc *service.OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.ListForTable(c.Request.Context(), c.Param("qrId"))
		if err != nil {
			respondError(c, log, err, "Failed to fetch orders")
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func listAllOrders(svc *service.OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.ListAll(c.Request.Context())
		if err != nil {
			respondError(c, log, err, "Failed to fetch orders")
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func adminOrders(svc *service.OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.ListAdminView(c.Request.Context())
		if err != nil {
			respondError(c, log, err, "Failed to fetch orders")
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func adminTables(svc *service.OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tables, err := svc.TableSummaries(c.Request.Context())
		if err != nil {
			respondError(c, log, err, "Failed to fetch tables")
			return
		}
		c.JSON(http.StatusOK, tables)
	}
}

func checkout(svc *service.OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			TableID string `json:"table_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "table_id is required"})
			return
		}
		res, err := svc.Checkout(c.Request.Context(), req.TableID)
		if err != nil {
			respondError(c, log, err, "Checkout failed")
			return
		}
		body := gin.H{
			"success":  true,
			"message":  res.Message(),
			"affected": res.Affected,
		}
		if res.Warning != "" {
			body["warning"] = res.Warning
		}
		c.JSON(http.StatusOK, body)
	}
}

func toggleServed(svc *service.OrderService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			OrderID int64 `json:"order_id"`
			Served  *bool `json:"served"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Served == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "order_id and served are required"})
			return
		}
		order, err := svc.ToggleServed(c.Request.Context(), req.OrderID, *req.Served)
		if err != nil {
			respondError(c, log, err, "Failed to update served status")
			return
		}
		msg := "Order marked as not served"
		if order.Served {
			msg = "Order marked as served"
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": msg,
			"served":  order.Served,
			"order":   order,
		})
	}
}

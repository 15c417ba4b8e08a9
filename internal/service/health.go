package service

import (
	"context"
	"time"

	"qr_menu/internal/model"

	"go.uber.org/zap"
)

// Health 返回诊断快照，自身不会失败，问题体现在 Status 中。
type Health struct {
	Status       string             `json:"status"`
	Timestamp    time.Time          `json:"timestamp"`
	Environment  string             `json:"environment"`
	OrdersCount  int64              `json:"ordersCount"`
	Database     string             `json:"database"`
	RemoteStatus string             `json:"remoteStatus"`
	HasRemoteURL bool               `json:"hasRemoteUrl"`
	HasRemoteKey bool               `json:"hasRemoteKey"`
	Capabilities model.Capabilities `json:"capabilities"`
	Restricted   bool               `json:"restricted"`
	MenuLoaded   bool               `json:"menuLoaded"`
	Error        string             `json:"error,omitempty"`
}

func (s *OrderService) Health(ctx context.Context) Health {
	h := Health{
		Status:       "ok",
		Timestamp:    s.opts.Now(),
		Environment:  s.opts.Env,
		Database:     s.store.Name(),
		RemoteStatus: "not configured",
		HasRemoteURL: s.opts.HasRemoteURL,
		HasRemoteKey: s.opts.HasRemoteKey,
		Restricted:   s.opts.Restricted,
		MenuLoaded:   s.menu.Loaded(),
	}
	if h.HasRemoteURL && h.HasRemoteKey {
		h.RemoteStatus = "configured"
	}

	n, err := s.store.Count(ctx)
	if err != nil {
		s.log.Warn("health: count orders", zap.Error(err))
		h.Status = "degraded"
		h.Error = "order store unavailable"
		if h.RemoteStatus == "configured" {
			h.RemoteStatus = "error"
		}
		return h
	}
	h.OrdersCount = n
	if h.RemoteStatus == "configured" {
		h.RemoteStatus = "connected"
	}

	caps, err := s.store.Capabilities(ctx)
	if err != nil {
		s.log.Warn("health: capabilities", zap.Error(err))
		h.Status = "degraded"
		h.Error = "schema probe failed"
		return h
	}
	h.Capabilities = caps
	return h
}

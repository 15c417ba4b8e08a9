// Package logging 创建各组件共用的 zap logger。
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config 对应 LOG_* 环境变量。
type Config struct {
	Level       string
	Encoding    string // console | json
	Development bool
}

// New 创建 logger。开发模式下级别带颜色，warn 及以上输出堆栈。
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "timestamp"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}
	if zc.Encoding == "json" {
		zc.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	}
	return zc.Build()
}

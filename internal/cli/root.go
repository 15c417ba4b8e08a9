// Package cli 把配置、日志和订单组件组装成
// 服务端的各个子命令。
package cli

import (
	"context"
	"fmt"

	"qr_menu/internal/config"
	"qr_menu/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "qr-menu",
		Short:         "QR code table ordering backend",
		Long:          "Serves the menu, accepts orders scanned from table QR codes and drives the admin checkout view.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newRelayCmd())
	cmd.AddCommand(newKitchenCmd())
	return cmd
}

// Execute 执行命令行；不带子命令时启动 HTTP 服务。
func Execute(ctx context.Context) error {
	root := newRootCmd()
	root.RunE = newServeCmd().RunE
	return root.ExecuteContext(ctx)
}

// bootstrap 加载配置并创建各命令共用的 logger。
func bootstrap() (config.AppConfig, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.AppConfig{}, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(logging.Config{
		Level:       cfg.LogLevel,
		Encoding:    cfg.LogEncoding,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		return config.AppConfig{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

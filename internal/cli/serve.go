package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"qr_menu/internal/catalog"
	"qr_menu/internal/config"
	"qr_menu/internal/queue"
	"qr_menu/internal/router"
	"qr_menu/internal/service"
	"qr_menu/internal/store"
	rediskey "qr_menu/pkg/redis"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg config.AppConfig, log *zap.Logger) error {
	st, err := store.Open(ctx, cfg.Store, log)
	if err != nil {
		log.Fatal("open order store", zap.Error(err))
	}
	defer st.Close()

	var rdb *rd.Client
	if cfg.RedisAddr != "" {
		rdb, err = rediskey.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			log.Warn("redis unavailable, rate limiting and event outbox disabled", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	var events service.EventPublisher
	switch {
	case rdb != nil:
		events = queue.NewOutbox(rdb, cfg.OrderEventStream)
	case cfg.KafkaEnabled():
		producer := queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		events = producer
	}

	menu := catalog.NewProvider(cfg.MenuPath, log)
	orders := service.New(st, menu, events, service.Options{
		Env:            cfg.AppEnv,
		Restricted:     cfg.Restricted,
		DeleteFallback: cfg.CheckoutDeleteFallback,
		HasRemoteURL:   cfg.Store.RemoteURL != "",
		HasRemoteKey:   cfg.Store.RemoteKey != "",
	}, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	router.Setup(r, router.Deps{Orders: orders, Menu: menu, Redis: rdb, Config: cfg, Log: log})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("store", st.Name()),
			zap.Bool("restricted", cfg.Restricted),
			zap.Bool("events", events != nil))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

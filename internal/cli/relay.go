package cli

import (
	"fmt"

	"qr_menu/internal/queue"
	rediskey "qr_menu/pkg/redis"

	"github.com/spf13/cobra"
)

func newRelayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relay",
		Short: "Forward order events from the Redis outbox to Kafka",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if cfg.RedisAddr == "" || !cfg.KafkaEnabled() {
				return fmt.Errorf("relay needs REDIS_ADDR and KAFKA_BROKERS")
			}
			rdb, err := rediskey.Connect(cmd.Context(), cfg.RedisAddr, cfg.RedisDB)
			if err != nil {
				return err
			}
			defer rdb.Close()

			producer := queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
			defer producer.Close()

			relay := queue.NewRelay(rdb, producer, cfg.OrderEventStream, cfg.OrderEventGroup, cfg.OrderEventConsumer, log)
			return relay.Run(cmd.Context())
		},
	}
}

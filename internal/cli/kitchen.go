package cli

import (
	"fmt"
	"time"

	"qr_menu/internal/kitchen"
	"qr_menu/internal/queue"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newKitchenCmd() *cobra.Command {
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "kitchen",
		Short: "Consume order events and log what each table is waiting for",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if !cfg.KafkaEnabled() {
				return fmt.Errorf("kitchen needs KAFKA_BROKERS")
			}
			if every <= 0 {
				return fmt.Errorf("--summary-every must be positive")
			}
			consumer := queue.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, log)
			defer consumer.Close()

			board := kitchen.NewBoard(log)
			go func() {
				t := time.NewTicker(every)
				defer t.Stop()
				for {
					select {
					case <-cmd.Context().Done():
						return
					case <-t.C:
						for table, tickets := range board.Pending() {
							log.Info("waiting", zap.String("table_id", table), zap.Int("tickets", len(tickets)),
								zap.Duration("oldest", time.Since(tickets[0].PlacedAt).Round(time.Second)))
						}
					}
				}
			}()

			consumer.Run(cmd.Context(), board.Handle)
			return nil
		},
	}
	cmd.Flags().DurationVar(&every, "summary-every", 30*time.Second, "interval between pending ticket summaries")
	return cmd
}

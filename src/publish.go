package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tweet-corpus/src/publish"
)

func (a *app) publishCmd(flags *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Send the deduplicated tweets to a RabbitMQ queue as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.RabbitMQ.Validate(); err != nil {
				return fmt.Errorf("%w: rabbitmq: %v", ErrInvalidConfig, err)
			}
			collector, err := a.collect(cmd.Context())
			if err != nil {
				return err
			}

			p, err := publish.NewPublisher(a.cfg.RabbitMQ, a.logger)
			if err != nil {
				return err
			}
			defer p.Close()

			sent, err := p.Publish(cmd.Context(), collector.Records(), a.runID)
			if err != nil {
				return fmt.Errorf("published %d of %d tweets: %w", sent, collector.Len(), err)
			}
			if info, err := p.QueueInfo(); err == nil {
				a.logger.Info("queue state", zap.Any("queue", info))
			}
			fmt.Fprintf(a.out, "%d tweets published to %s\n", sent, a.cfg.RabbitMQ.Queue)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.RabbitMQ.Queue, "queue", "", "Queue name (default tweet_in)")
	cmd.Flags().StringVar(&flags.RabbitMQ.Exchange, "exchange", "", "Optional direct exchange bound to the queue")
	return cmd
}

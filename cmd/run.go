package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hirewire/loadgen/internal/metrics"
	"github.com/hirewire/loadgen/internal/runner"
)

func newRunCmd(app *app) *cobra.Command {
	var (
		users          int
		duration       time.Duration
		scenarioPath   string
		reportInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive persona traffic against the target API",
		Long:  "run spawns the configured mix of candidate and employer virtual users against the target host and keeps them iterating their journeys until the duration elapses or the process is interrupted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(scenarioPath)
			if err != nil {
				return err
			}
			if cfg.Host == "" {
				return fmt.Errorf("no target host configured: set LOADGEN_HOST (or LOCUST_HOST)")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			stats := metrics.NewRegistry()
			reporterDone := make(chan struct{})
			reporterStop := make(chan struct{})
			go func() {
				defer close(reporterDone)
				stats.ReportEvery(reportInterval, reporterStop)
			}()

			log.WithFields(log.Fields{
				"host":   cfg.Host,
				"users":  users,
				"worker": fmt.Sprintf("%d/%d", cfg.WorkerIndex, cfg.WorkerCount),
			}).Info("starting load run")

			runErr := runner.New(cfg, stats).Run(ctx, users)

			close(reporterStop)
			<-reporterDone
			return runErr
		},
	}

	cmd.Flags().IntVar(&users, "users", 10, "total concurrent virtual users on this worker")
	cmd.Flags().DurationVar(&duration, "duration", 0, "run length (0 = until interrupted)")
	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "optional TOML scenario file with configuration defaults")
	cmd.Flags().DurationVar(&reportInterval, "report-interval", 30*time.Second, "interval between request stat summaries")

	return cmd
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/attendance-engine/internal/publisher"
	"github.com/frahmantamala/attendance-engine/pkg/logger"
	"github.com/frahmantamala/attendance-engine/pkg/telemetry"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers that consume attendance events forwarded off-process.`,
}

var eventWorkerCmd = &cobra.Command{
	Use:   "events",
	Short: "Start the attendance event consumer",
	Long:  `Poll the attendance events queue and log every clock-in and clock-out.`,
	Run: func(cmd *cobra.Command, args []string) {
		startEventWorker()
	},
}

var workerConcurrency int

func startEventWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg := logger.LoggerWrapper()
	if !config.Events.Enabled {
		lg.Error("events are disabled; set events.enabled to consume the queue")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, config.Observability.Tracing)
	if err != nil {
		lg.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			lg.Error("tracer shutdown error", "error", err)
		}
	}()

	client, err := newSQSClient(ctx, config.Events, lg)
	if err != nil {
		lg.Error("failed to create SQS client", "error", err)
		os.Exit(1)
	}

	consumer := publisher.NewConsumer(client, config.Events.QueueURL, publisher.NewLogProcessor(lg), lg)
	if workerConcurrency > 0 {
		consumer.Concurrency = workerConcurrency
	}

	lg.Info("event worker is running. Press Ctrl+C to stop.")
	consumer.Start(ctx)
	lg.Info("event worker shutdown complete")
}

func init() {
	eventWorkerCmd.Flags().IntVar(&workerConcurrency, "concurrency", 0, "Number of concurrent message processors (overrides default)")

	workerCmd.AddCommand(eventWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}

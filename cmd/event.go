package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/frahmantamala/attendance-engine/internal/core/events"
	"github.com/frahmantamala/attendance-engine/internal/publisher"
	"github.com/frahmantamala/attendance-engine/pkg/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish sample attendance events to check forwarding end to end`,
}

var publishEventCmd = &cobra.Command{
	Use:       "publish [clocked-in|clocked-out]",
	Short:     "Publish a sample attendance event",
	Long:      `Publish a sample attendance event through the event bus. With events enabled it is forwarded to the queue.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"clocked-in", "clocked-out"},
	Run: func(cmd *cobra.Command, args []string) {
		publishTestEvent(args[0])
	},
}

var eventEmployeeID string

func publishTestEvent(kind string) {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg := logger.LoggerWrapper()
	ctx := context.Background()
	bus := events.NewEventBus(lg)

	if config.Events.Enabled {
		client, err := newSQSClient(ctx, config.Events, lg)
		if err != nil {
			lg.Error("failed to create SQS client", "error", err)
			os.Exit(1)
		}
		publisher.NewForwarder(client, config.Events.QueueURL, lg).Register(bus)
	} else {
		for _, eventType := range events.AttendanceTypes {
			bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
				lg.Info("events disabled; event handled locally",
					"event_id", event.EventID(),
					"event_type", event.EventType(),
					"payload", event.Payload())
				return nil
			})
		}
	}

	now := time.Now()
	attendanceID := uuid.New().String()

	var event events.Event
	switch kind {
	case "clocked-out":
		event = events.NewClockedOutEvent(attendanceID, eventEmployeeID, "RFID", "COMPLETED", now, 480, 0, true)
	default:
		event = events.NewClockedInEvent(attendanceID, eventEmployeeID, "RFID", "ON_TIME", now)
	}

	lg.Info("publishing test event", "event_type", event.EventType(), "event_id", event.EventID())
	if err := bus.PublishSync(ctx, event); err != nil {
		lg.Error("failed to publish event", "error", err)
		os.Exit(1)
	}
	lg.Info("test event published successfully")
}

func init() {
	publishEventCmd.Flags().StringVar(&eventEmployeeID, "employee", "EMP001", "Employee id carried by the sample event")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}

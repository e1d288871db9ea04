package cmd

import (
	"context"
	"fmt"
	"slices"

	"github.com/frahmantamala/worklog/internal/audit"
	"github.com/frahmantamala/worklog/internal/core/events"
	"github.com/frahmantamala/worklog/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect and exercise domain events",
	Long:  `Domain event tools: list the published event types and publish a test event through the audit log`,
}

var listEventsCmd = &cobra.Command{
	Use:   "list",
	Short: "List event types",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range events.All() {
			fmt.Println(t)
		}
	},
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long:  `Publish a test event to the in-process bus with the audit logger subscribed`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(cmd.Context(), args[0])
	},
}

var (
	eventData    string
	eventActorID int64
)

func publishTestEvent(ctx context.Context, eventType string) error {
	if !slices.Contains(events.All(), eventType) {
		return fmt.Errorf("unknown event type %q, see `worklog events list`", eventType)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	lg := logger.LoggerWrapper()
	bus := events.NewEventBus(lg)
	audit.NewLogger(lg).Register(bus)

	event := events.New(eventType, eventActorID, map[string]interface{}{
		"message": eventData,
		"source":  "cli",
	})

	lg.Info("publishing test event", "event_type", eventType, "event_id", event.EventID())
	if err := bus.PublishSync(ctx, event); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	lg.Info("test event published", "event_id", event.EventID())
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")
	publishEventCmd.Flags().Int64Var(&eventActorID, "actor", 0, "Actor user id recorded on the event")

	eventCmd.AddCommand(listEventsCmd)
	eventCmd.AddCommand(publishEventCmd)
}

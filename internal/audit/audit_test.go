package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/worklog/internal/audit"
	"github.com/frahmantamala/worklog/internal/core/events"
)

type subscriptions map[string]int

func (s subscriptions) Subscribe(eventType string, _ events.Handler) {
	s[eventType]++
}

var _ = Describe("Logger", func() {
	It("subscribes to every event type", func() {
		subs := subscriptions{}
		audit.NewLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).Register(subs)

		Expect(subs).To(HaveLen(len(events.All())))
		for _, t := range events.All() {
			Expect(subs).To(HaveKeyWithValue(t, 1))
		}
	})

	It("writes one structured record per event", func() {
		var out bytes.Buffer
		lg := slog.New(slog.NewJSONHandler(&out, nil))
		bus := events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
		audit.NewLogger(lg).Register(bus)

		event := events.NewWorkEntryEvent(events.WorkEntryDeleted, 5, 99, 2)
		Expect(bus.Publish(context.Background(), event)).To(Succeed())
		bus.Wait()

		var record map[string]interface{}
		Expect(json.Unmarshal(out.Bytes(), &record)).To(Succeed())
		Expect(record).To(HaveKeyWithValue("msg", "audit"))
		Expect(record).To(HaveKeyWithValue("component", "audit"))
		Expect(record).To(HaveKeyWithValue("event_type", events.WorkEntryDeleted))
		Expect(record).To(HaveKeyWithValue("event_id", event.ID))
		Expect(record).To(HaveKeyWithValue("work_entry_id", float64(99)))
		Expect(record).To(HaveKeyWithValue("actor_id", float64(5)))
	})
})

package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/worklog/internal/core/events"
)

var _ = Describe("EventBus", func() {
	var (
		bus      *events.EventBus
		mu       sync.Mutex
		received []string
	)

	record := func(name string) events.Handler {
		return func(ctx context.Context, e events.Event) error {
			mu.Lock()
			defer mu.Unlock()
			received = append(received, name+":"+e.EventType())
			return nil
		}
	}

	BeforeEach(func() {
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
		received = nil
	})

	It("fans an event out to every handler of its type", func() {
		bus.Subscribe(events.WorkEntryCreated, record("a"))
		bus.Subscribe(events.WorkEntryCreated, record("b"))
		bus.Subscribe(events.WorkEntryDeleted, record("c"))

		Expect(bus.Publish(context.Background(), events.NewWorkEntryEvent(events.WorkEntryCreated, 1, 10, 2))).To(Succeed())
		bus.Wait()

		Expect(received).To(ConsistOf("a:work_entry.created", "b:work_entry.created"))
	})

	It("delivers after the publishing request is cancelled", func() {
		var handlerErr error
		bus.Subscribe(events.SettingsUpdated, func(ctx context.Context, e events.Event) error {
			handlerErr = ctx.Err()
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(bus.Publish(ctx, events.NewSettingsUpdatedEvent(1, []string{"timezone"}))).To(Succeed())
		bus.Wait()

		Expect(handlerErr).NotTo(HaveOccurred())
	})

	It("keeps handler failures away from async publishers", func() {
		bus.Subscribe(events.AttachmentDeleted, func(context.Context, events.Event) error {
			return errors.New("disk full")
		})
		Expect(bus.Publish(context.Background(), events.NewAttachmentEvent(events.AttachmentDeleted, 1, 2, 3))).To(Succeed())
		bus.Wait()
	})

	It("reports the first handler failure on PublishSync", func() {
		bus.Subscribe(events.AttachmentUploaded, func(context.Context, events.Event) error {
			return errors.New("disk full")
		})
		bus.Subscribe(events.AttachmentUploaded, record("never"))

		err := bus.PublishSync(context.Background(), events.NewAttachmentEvent(events.AttachmentUploaded, 1, 2, 3))
		Expect(err).To(MatchError(ContainSubstring("disk full")))
		Expect(received).To(BeEmpty())
	})

	It("is a no-op without subscribers", func() {
		Expect(bus.Publish(context.Background(), events.New(events.WorkEntryUpdated, 1, nil))).To(Succeed())
		bus.Wait()
		Expect(received).To(BeEmpty())
	})
})

var _ = Describe("event constructors", func() {
	It("stamps id, time and actor", func() {
		e := events.NewWorkEntryEvent(events.WorkEntryUpdated, 7, 42, 3)
		Expect(e.EventID()).To(HaveLen(36))
		Expect(e.OccurredAt().Location().String()).To(Equal("UTC"))
		Expect(e.Payload()).To(Equal(map[string]interface{}{
			"actor_id":      int64(7),
			"work_entry_id": int64(42),
			"department_id": int64(3),
		}))
	})

	It("lists every published type once", func() {
		Expect(events.All()).To(HaveLen(6))
		Expect(events.All()).To(ContainElement(events.SettingsUpdated))
	})
})

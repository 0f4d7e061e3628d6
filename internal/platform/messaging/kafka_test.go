package messaging

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	contractsv1 "warden/contracts/gen/events/v1"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus, _ := NewKafka(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan string, 1)
	if err := bus.Subscribe(ctx, "asset.created", "test-cg", func(_ context.Context, event contractsv1.Envelope) error {
		received <- event.EventID
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if err := bus.Publish(ctx, "asset.created", contractsv1.Envelope{EventID: "evt-1"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case id := <-received:
		if id != "evt-1" {
			t.Fatalf("unexpected event %s", id)
		}
	case <-time.After(time.Second):
		t.Fatalf("event was not delivered")
	}
}

func TestFailingHandlerIsRetriedThenDeadLettered(t *testing.T) {
	bus, _ := NewKafka(nil, nil)
	bus.WithRetry(3, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var attempts atomic.Int32
	if err := bus.Subscribe(ctx, "asset.created", "test-cg", func(context.Context, contractsv1.Envelope) error {
		attempts.Add(1)
		return errors.New("boom")
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	parked := make(chan string, 1)
	if err := bus.Subscribe(ctx, "asset.created.dlq", "dlq-cg", func(_ context.Context, event contractsv1.Envelope) error {
		parked <- event.EventID
		return nil
	}); err != nil {
		t.Fatalf("dlq subscribe failed: %v", err)
	}

	if err := bus.Publish(ctx, "asset.created", contractsv1.Envelope{EventID: "evt-2"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	select {
	case id := <-parked:
		if id != "evt-2" {
			t.Fatalf("unexpected dead letter %s", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event was not dead-lettered")
	}
	if got := attempts.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestClosedBusRejectsPublish(t *testing.T) {
	bus, _ := NewKafka(nil, nil)
	_ = bus.Close()
	if err := bus.Publish(context.Background(), "asset.created", contractsv1.Envelope{}); err != nil {
		t.Fatalf("publish without subscribers should be a no-op, got %v", err)
	}
	if err := bus.Subscribe(context.Background(), "asset.created", "cg", func(context.Context, contractsv1.Envelope) error { return nil }); !errors.Is(err, ErrBusClosed) {
		t.Fatalf("expected closed bus, got %v", err)
	}
}

func TestPublishSkipsStoppedSubscriberWithFullBuffer(t *testing.T) {
	bus, _ := NewKafka(nil, nil)
	stale := subscription{
		group:   "gone-cg",
		ch:      make(chan contractsv1.Envelope, 1),
		stopped: make(chan struct{}),
	}
	stale.ch <- contractsv1.Envelope{EventID: "queued"}
	close(stale.stopped)
	bus.subscribers["asset.published"] = []subscription{stale}

	done := make(chan error, 1)
	go func() {
		done <- bus.Publish(context.Background(), "asset.published", contractsv1.Envelope{EventID: "evt-3"})
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("publish failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("publish blocked on a stopped subscriber")
	}
}

func TestCancelledSubscriptionStopsAndUnregisters(t *testing.T) {
	bus, _ := NewKafka(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	if err := bus.Subscribe(ctx, "asset.published", "test-cg", func(context.Context, contractsv1.Envelope) error {
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	bus.mu.RLock()
	sub := bus.subscribers["asset.published"][0]
	bus.mu.RUnlock()

	cancel()
	select {
	case <-sub.stopped:
	case <-time.After(time.Second):
		t.Fatalf("subscription loop did not stop")
	}
	deadline := time.Now().Add(time.Second)
	for {
		bus.mu.RLock()
		remaining := len(bus.subscribers["asset.published"])
		bus.mu.RUnlock()
		if remaining == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("subscription still registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

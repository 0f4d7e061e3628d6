package messaging

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	contractsv1 "warden/contracts/gen/events/v1"
)

const (
	subscriberBuffer = 256
	deadLetterSuffix = ".dlq"
)

var ErrBusClosed = errors.New("event bus closed")

type subscription struct {
	group string
	ch    chan contractsv1.Envelope
	// stopped is closed once the delivery loop exits; nothing drains ch after that.
	stopped chan struct{}
}

// Kafka is the event bus used by the asset consumer and the outbox relay.
// Delivery is in-process and keyed by topic. A failing handler is retried
// with backoff and the event is then parked on "<topic>.dlq".
type Kafka struct {
	mu           sync.RWMutex
	subscribers  map[string][]subscription
	done         chan struct{}
	closeOnce    sync.Once
	maxAttempts  uint64
	retryBackoff time.Duration
	logger       *slog.Logger
}

func NewKafka(_ []string, logger *slog.Logger) (*Kafka, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &Kafka{
		subscribers:  make(map[string][]subscription),
		done:         make(chan struct{}),
		maxAttempts:  5,
		retryBackoff: 200 * time.Millisecond,
		logger:       logger,
	}, nil
}

// WithRetry overrides the per-event redelivery policy.
func (k *Kafka) WithRetry(maxAttempts uint64, backoff time.Duration) *Kafka {
	if maxAttempts > 0 {
		k.maxAttempts = maxAttempts
	}
	if backoff > 0 {
		k.retryBackoff = backoff
	}
	return k
}

func (k *Kafka) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	k.mu.RLock()
	subs := append([]subscription(nil), k.subscribers[topic]...)
	k.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-k.done:
			return ErrBusClosed
		case <-sub.stopped:
			k.logger.Warn("dropping event for stopped subscriber",
				"event", "bus_subscriber_stopped",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"consumer_group", sub.group,
				"event_id", event.EventID,
			)
		case sub.ch <- event:
		}
	}

	k.logger.Debug("event published",
		"event", "bus_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"subscriber_count", len(subs),
	)
	return nil
}

// Subscribe registers handler for topic until ctx is done. Handlers should be
// idempotent: an event is redelivered until the handler returns nil or the
// attempts run out.
func (k *Kafka) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, contractsv1.Envelope) error,
) error {
	sub := subscription{
		group:   consumerGroup,
		ch:      make(chan contractsv1.Envelope, subscriberBuffer),
		stopped: make(chan struct{}),
	}

	select {
	case <-k.done:
		return ErrBusClosed
	default:
	}
	k.mu.Lock()
	k.subscribers[topic] = append(k.subscribers[topic], sub)
	k.mu.Unlock()

	go func() {
		defer k.removeSubscriber(topic, sub.ch)
		defer close(sub.stopped)
		for {
			select {
			case <-ctx.Done():
				return
			case <-k.done:
				return
			case event := <-sub.ch:
				k.deliver(ctx, topic, consumerGroup, event, handler)
			}
		}
	}()
	return nil
}

func (k *Kafka) deliver(
	ctx context.Context,
	topic string,
	consumerGroup string,
	event contractsv1.Envelope,
	handler func(context.Context, contractsv1.Envelope) error,
) {
	attempts := 0
	backoff := retry.WithMaxRetries(k.maxAttempts-1, retry.NewExponential(k.retryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		if err := handler(ctx, event); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err == nil {
		return
	}
	if ctx.Err() != nil {
		return
	}

	k.logger.Error("consumer handler failed, dead-lettering event",
		"event", "bus_consume_failed",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"consumer_group", consumerGroup,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"attempts", attempts,
		"error", err.Error(),
	)
	if strings.HasSuffix(topic, deadLetterSuffix) {
		return
	}
	if err := k.Publish(ctx, topic+deadLetterSuffix, event); err != nil {
		k.logger.Warn("dead-letter publish failed",
			"event", "bus_dead_letter_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic+deadLetterSuffix,
			"event_id", event.EventID,
			"error", err.Error(),
		)
	}
}

// Close stops accepting publishes and ends every subscription.
func (k *Kafka) Close() error {
	k.closeOnce.Do(func() { close(k.done) })
	return nil
}

func (k *Kafka) removeSubscriber(topic string, target chan contractsv1.Envelope) {
	k.mu.Lock()
	defer k.mu.Unlock()

	items := k.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]subscription, 0, len(items))
	for _, item := range items {
		if item.ch != target {
			filtered = append(filtered, item)
		}
	}
	k.subscribers[topic] = filtered
}

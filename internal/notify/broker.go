package notify

import (
	"context"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/reverse-tutor/internal/observability"
)

const subscriberBufferSize = 16

// Broker fans notifications out to sinks and in-process subscribers.
type Broker struct {
	mu          sync.RWMutex
	sinks       []Sink
	subscribers map[chan Notification]struct{}
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewBroker constructs a broker delivering to the given sinks.
func NewBroker(logger zerolog.Logger, sinks ...Sink) *Broker {
	return &Broker{
		sinks:       sinks,
		subscribers: make(map[chan Notification]struct{}),
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "notification_broker").Logger(),
		now:         time.Now,
	}
}

// AddSink registers another sink.
func (b *Broker) AddSink(sink Sink) {
	if sink == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, sink)
}

// Notify delivers n everywhere. It never fails; a misbehaving sink is logged and skipped.
func (b *Broker) Notify(ctx context.Context, n Notification) {
	if ctx == nil {
		ctx = context.Background()
	}

	n.Title = b.clean(n.Title)
	n.Description = b.clean(n.Description)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = b.now().UTC()
	}

	observability.Notifications().WithLabelValues(string(n.Kind)).Inc()

	b.mu.RLock()
	sinks := make([]Sink, len(b.sinks))
	copy(sinks, b.sinks)
	b.mu.RUnlock()

	for _, sink := range sinks {
		b.deliver(ctx, sink, n)
	}
	b.broadcast(n)
}

// Subscribe returns a channel of future notifications and a function that cancels the subscription.
func (b *Broker) Subscribe() (<-chan Notification, func()) {
	channel := make(chan Notification, subscriberBufferSize)

	b.mu.Lock()
	b.subscribers[channel] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, channel)
			b.mu.Unlock()
			close(channel)
		})
	}

	return channel, cleanup
}

// clean strips markup while keeping the text readable on a terminal.
func (b *Broker) clean(text string) string {
	return strings.TrimSpace(html.UnescapeString(b.sanitizer.Sanitize(text)))
}

func (b *Broker) deliver(ctx context.Context, sink Sink, n Notification) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Str("kind", string(n.Kind)).Msg("notification sink panicked")
		}
	}()
	sink.Notify(ctx, n)
}

func (b *Broker) broadcast(n Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for channel := range b.subscribers {
		select {
		case channel <- n:
		default:
			b.logger.Warn().Str("kind", string(n.Kind)).Msg("dropping notification for slow subscriber")
		}
	}
}

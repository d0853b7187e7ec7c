package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// WriterSink prints notices as a single toast line.
type WriterSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriterSink writes notices to out.
func NewWriterSink(out io.Writer) *WriterSink {
	return &WriterSink{out: out}
}

// Notify implements Sink.
func (s *WriterSink) Notify(_ context.Context, n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.out, "\n[!] %s: %s\n", n.Title, n.Description)
}

// LogSink records notices in the diagnostic log.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink logs notices at warn level.
func NewLogSink(logger zerolog.Logger) LogSink {
	return LogSink{logger: logger.With().Str("component", "notifications").Logger()}
}

// Notify implements Sink.
func (s LogSink) Notify(_ context.Context, n Notification) {
	s.logger.Warn().
		Str("kind", string(n.Kind)).
		Str("title", n.Title).
		Str("description", n.Description).
		Msg("notification raised")
}

// Event is the envelope published to external brokers.
type Event struct {
	Source       string       `json:"source"`
	Notification Notification `json:"notification"`
}

// Publisher is the subset of *nats.Conn the NATS sink needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

var _ Publisher = (*nats.Conn)(nil)

// NATSSink publishes notices on a NATS subject.
type NATSSink struct {
	conn    Publisher
	subject string
	source  string
	logger  zerolog.Logger
}

// NewNATSSink publishes on subject derived from channelBase (colons become dots).
func NewNATSSink(conn Publisher, channelBase string, logger zerolog.Logger) *NATSSink {
	return &NATSSink{
		conn:    conn,
		subject: strings.ReplaceAll(channelBase, ":", "."),
		source:  uuid.NewString(),
		logger:  logger.With().Str("component", "nats_notifications").Logger(),
	}
}

// Subject reports where notices are published.
func (s *NATSSink) Subject() string {
	return s.subject
}

// Notify implements Sink.
func (s *NATSSink) Notify(_ context.Context, n Notification) {
	payload, err := json.Marshal(Event{Source: s.source, Notification: n})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal notification")
		return
	}
	if err := s.conn.Publish(s.subject, payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish notification to nats")
	}
}

// RedisSink publishes notices on a Redis pub/sub channel.
type RedisSink struct {
	client  *redis.Client
	channel string
	source  string
	logger  zerolog.Logger
}

// NewRedisSink publishes on channel.
func NewRedisSink(client *redis.Client, channel string, logger zerolog.Logger) *RedisSink {
	return &RedisSink{
		client:  client,
		channel: channel,
		source:  uuid.NewString(),
		logger:  logger.With().Str("component", "redis_notifications").Logger(),
	}
}

// Notify implements Sink.
func (s *RedisSink) Notify(ctx context.Context, n Notification) {
	payload, err := json.Marshal(Event{Source: s.source, Notification: n})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal notification")
		return
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish notification to redis")
	}
}

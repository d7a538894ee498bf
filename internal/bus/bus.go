// Package bus implements the Message Bus: three durable, at-least-once
// queues (articles, events, signals) backed by Redis Streams consumer
// groups, giving consumers explicit acknowledgment and redelivery.
package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Queue names for the three pipeline stages.
const (
	QueueArticles = "articles"
	QueueEvents   = "events"
	QueueSignals  = "signals"
)

// Bus wraps a Redis client used both to publish (XADD) and to build
// Consumers (XREADGROUP/XACK/XAUTOCLAIM) over the three queues above.
type Bus struct {
	client *redis.Client
	log    zerolog.Logger
}

// Config configures the Redis connection backing the bus.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// New connects to Redis and returns a Bus. Addr accepts either a
// redis:// URL (the MSG_BUS_URL form) or a bare host:port.
func New(cfg Config, log zerolog.Logger) *Bus {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if parsed, err := redis.ParseURL(cfg.Addr); err == nil {
		opts = parsed
	}
	client := redis.NewClient(opts)
	return &Bus{client: client, log: log.With().Str("component", "bus").Logger()}
}

// Ping verifies connectivity, used by /health.
func (b *Bus) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("bus ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (b *Bus) Close() error {
	return b.client.Close()
}

// Publish appends payload as a single-field JSON message to stream. The
// stream is created automatically (MKSTREAM semantics via XAdd).
func (b *Bus) Publish(ctx context.Context, stream string, payload []byte) (string, error) {
	id, err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{"payload": payload},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to publish to stream %s: %w", stream, err)
	}
	return id, nil
}

// EnsureGroup creates the consumer group for stream if it doesn't already
// exist, creating the stream itself (MKSTREAM) if necessary.
func (b *Bus) EnsureGroup(ctx context.Context, stream, group string) error {
	err := b.client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !isBusyGroupErr(err) {
		return fmt.Errorf("failed to create consumer group %s on stream %s: %w", group, stream, err)
	}
	return nil
}

func isBusyGroupErr(err error) bool {
	return err != nil && (err.Error() == "BUSYGROUP Consumer Group name already exists")
}

// Message is a single delivered bus entry.
type Message struct {
	ID      string
	Payload []byte
}

// Consumer reads from one stream under one consumer group/name.
type Consumer struct {
	bus          *Bus
	stream       string
	group        string
	consumerName string
}

// NewConsumer builds a Consumer, ensuring the group exists first.
func NewConsumer(ctx context.Context, b *Bus, stream, group, consumerName string) (*Consumer, error) {
	if err := b.EnsureGroup(ctx, stream, group); err != nil {
		return nil, err
	}
	return &Consumer{bus: b, stream: stream, group: group, consumerName: consumerName}, nil
}

// Read fetches up to count new messages, blocking up to block for new
// entries to arrive.
func (c *Consumer) Read(ctx context.Context, count int64, block time.Duration) ([]Message, error) {
	res, err := c.bus.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.consumerName,
		Streams:  []string{c.stream, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read from stream %s: %w", c.stream, err)
	}

	var out []Message
	for _, stream := range res {
		for _, entry := range stream.Messages {
			payload, _ := entry.Values["payload"].(string)
			out = append(out, Message{ID: entry.ID, Payload: []byte(payload)})
		}
	}
	return out, nil
}

// Ack acknowledges successful processing of a message.
func (c *Consumer) Ack(ctx context.Context, id string) error {
	if err := c.bus.client.XAck(ctx, c.stream, c.group, id).Err(); err != nil {
		return fmt.Errorf("failed to ack message %s on stream %s: %w", id, c.stream, err)
	}
	return nil
}

// ReclaimStale claims pending entries idle for at least minIdle, giving
// them to this consumer for redelivery. This backs the extraction and
// scoring processors' nack-with-delay behavior: a message that isn't acked
// simply waits out minIdle before being handed back out.
func (c *Consumer) ReclaimStale(ctx context.Context, minIdle time.Duration, count int64) ([]Message, error) {
	msgs, _, err := c.bus.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   c.stream,
		Group:    c.group,
		Consumer: c.consumerName,
		MinIdle:  minIdle,
		Start:    "0",
		Count:    count,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to reclaim stale entries on stream %s: %w", c.stream, err)
	}

	out := make([]Message, 0, len(msgs))
	for _, entry := range msgs {
		payload, _ := entry.Values["payload"].(string)
		out = append(out, Message{ID: entry.ID, Payload: []byte(payload)})
	}
	return out, nil
}

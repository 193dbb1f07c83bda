package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ev-dashboard/internal/ledger"
)

// DefaultStream is the stream ledger events are written to.
const DefaultStream = "bets.events"

// streamAdder is the part of redis.Cmdable the publisher needs.
type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// StreamPublisher publishes ledger events to Redis Streams
type StreamPublisher struct {
	client streamAdder
	stream string
	maxLen int64
}

// NewStreamPublisher creates a new stream publisher. An empty stream name
// selects DefaultStream.
func NewStreamPublisher(client streamAdder, stream string) *StreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamPublisher{
		client: client,
		stream: stream,
		maxLen: 10000,
	}
}

// Connect parses a redis:// URL and verifies the server is reachable.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return client, nil
}

// Publish writes ev to the configured stream and to a per-sport stream when
// the bet carries a sport.
func (p *StreamPublisher) Publish(ctx context.Context, ev ledger.Event) error {
	betJSON, err := json.Marshal(ev.Bet)
	if err != nil {
		return fmt.Errorf("failed to marshal bet: %w", err)
	}

	values := map[string]interface{}{
		"event_id": uuid.NewString(),
		"type":     string(ev.Type),
		"at":       ev.At.UTC().Format(time.RFC3339Nano),
		"bet":      string(betJSON),
	}

	streams := []string{p.stream}
	if ev.Bet.Sport != "" {
		streams = append(streams, fmt.Sprintf("%s.%s", p.stream, ev.Bet.Sport))
	}

	for _, stream := range streams {
		_, err := p.client.XAdd(ctx, &redis.XAddArgs{
			Stream: stream,
			MaxLen: p.maxLen,
			Approx: true,
			Values: values,
		}).Result()
		if err != nil {
			return fmt.Errorf("failed to publish to stream %s: %w", stream, err)
		}
	}
	return nil
}

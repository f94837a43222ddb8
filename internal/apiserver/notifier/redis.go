package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/storecrew/storecrew/internal/common/config"
)

// RedisNotifier implements Notifier using Redis streams, so multiple
// server instances see each other's writes.
type RedisNotifier struct {
	logger     *zap.Logger
	client     redis.UniversalClient
	streamName string
}

// NewRedisNotifier creates a new Redis-based notifier
func NewRedisNotifier(logger *zap.Logger, cfg *config.NotifierRedisConfig) (*RedisNotifier, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{cfg.Addr},
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisNotifier{
		logger:     logger.Named("notifier.redis"),
		client:     client,
		streamName: cfg.Stream,
	}, nil
}

// Publish implements Notifier.Publish
func (r *RedisNotifier) Publish(ctx context.Context, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.streamName,
		MaxLen: 1024,
		Approx: true,
		Values: map[string]interface{}{
			"event":     string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to add message to stream: %w", err)
	}

	return nil
}

// Subscribe implements Notifier.Subscribe
func (r *RedisNotifier) Subscribe(ctx context.Context) (<-chan *Event, error) {
	ch := make(chan *Event, 16)

	go func() {
		defer close(ch)

		// Start from the latest message ($ means read only new messages)
		lastID := "$"

		for {
			select {
			case <-ctx.Done():
				return
			default:
				// XREAD rather than XREADGROUP: every instance reads the
				// full stream independently.
				streams, err := r.client.XRead(ctx, &redis.XReadArgs{
					Streams: []string{r.streamName, lastID},
					Count:   16,
					Block:   1 * time.Second,
				}).Result()

				if err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return
					}
					if !errors.Is(err, redis.Nil) {
						r.logger.Error("failed to read from stream", zap.Error(err))
					}
					continue
				}

				for _, stream := range streams {
					for _, message := range stream.Messages {
						lastID = message.ID

						data, exists := message.Values["event"]
						if !exists {
							continue
						}
						var event Event
						if err := json.Unmarshal([]byte(data.(string)), &event); err != nil {
							r.logger.Error("failed to unmarshal event", zap.Error(err))
							continue
						}
						select {
						case ch <- &event:
						case <-ctx.Done():
							return
						}
					}
				}
			}
		}
	}()

	return ch, nil
}

// Close releases the underlying Redis client
func (r *RedisNotifier) Close() error {
	return r.client.Close()
}

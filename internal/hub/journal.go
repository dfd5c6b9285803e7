package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/agoraops/agora/conversation"
)

// Journal appends conversation events to a per-conversation Redis list so
// late subscribers and other processes can replay a conversation's
// history. Entries expire with the conversation.
type Journal struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// JournalConfig configures the event journal.
type JournalConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	// TTL is how long a conversation's journal survives after the last
	// write. Zero means 24 hours.
	TTL time.Duration
}

// NewJournal connects to Redis and verifies the connection.
func NewJournal(ctx context.Context, cfg JournalConfig, logger *zap.Logger) (*Journal, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Journal{
		client: client,
		logger: logger.With(zap.String("component", "event_journal")),
		ttl:    ttl,
	}, nil
}

func journalKey(conversationID string) string {
	return "agora:events:" + conversationID
}

// Publish appends ev to the conversation's journal. Implements
// conversation.Sink.
func (j *Journal) Publish(ctx context.Context, ev conversation.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	key := journalKey(ev.ConversationID)
	pipe := j.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, j.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("journal event: %w", err)
	}
	return nil
}

// Replay returns every journaled event for a conversation in append order.
func (j *Journal) Replay(ctx context.Context, conversationID string) ([]conversation.Event, error) {
	raw, err := j.client.LRange(ctx, journalKey(conversationID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("replay journal: %w", err)
	}
	events := make([]conversation.Event, 0, len(raw))
	for _, item := range raw {
		var ev conversation.Event
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			j.logger.Warn("skipping malformed journal entry", zap.Error(err))
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// Ping verifies the Redis connection.
func (j *Journal) Ping(ctx context.Context) error {
	return j.client.Ping(ctx).Err()
}

// Close releases the Redis client.
func (j *Journal) Close() error {
	return j.client.Close()
}

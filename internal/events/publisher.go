// Package events publishes cycle notifications for other services.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"jobmate/jobhunter-service/internal/model"
)

// ChannelJobsSynced is the Redis pub/sub channel a finished cycle is announced on.
const ChannelJobsSynced = "EVENT_JOBS_SYNCED"

// Publisher announces finished cycles.
type Publisher interface {
	PublishCycle(ctx context.Context, report model.CycleReport) error
}

// JobsSyncedEvent is the payload sent on ChannelJobsSynced.
type JobsSyncedEvent struct {
	Type   string            `json:"type"`
	Report model.CycleReport `json:"report"`
}

// RedisPublisher publishes on a go-redis client.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher returns a Publisher backed by rdb.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) PublishCycle(ctx context.Context, report model.CycleReport) error {
	payload, err := json.Marshal(JobsSyncedEvent{Type: ChannelJobsSynced, Report: report})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ChannelJobsSynced, err)
	}
	if err := p.rdb.Publish(ctx, ChannelJobsSynced, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ChannelJobsSynced, err)
	}
	return nil
}

// Nop discards events. Used when REDIS_URL is not configured.
type Nop struct{}

func (Nop) PublishCycle(context.Context, model.CycleReport) error { return nil }

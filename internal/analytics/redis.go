// Package analytics records report request counts in Redis, bucketed by
// minute. Best effort: a write failure never affects request handling.
package analytics

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRetention = 7 * 24 * time.Hour

// RedisSink counts report lookups per key and outcome.
type RedisSink struct {
	client    *redis.Client
	retention time.Duration
	clock     func() time.Time
}

// NewRedisSink creates a sink with the default 7-day retention.
func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{
		client:    client,
		retention: defaultRetention,
		clock:     time.Now,
	}
}

// Record increments the counter for (key, outcome) in the current
// minute bucket. Errors are logged, never returned: analytics must not
// affect the request path.
func (s *RedisSink) Record(ctx context.Context, key string, outcome string) {
	bucket := s.clock().UTC().Format("200601021504")
	counter := fmt.Sprintf("report:%s:%s:%s", key, outcome, bucket)

	pipe := s.client.Pipeline()
	pipe.Incr(ctx, counter)
	pipe.Expire(ctx, counter, s.retention)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("analytics: record %s failed: %v", counter, err)
	}
}

package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper guards event handlers against redelivered MQ messages. One outbox
// event may be delivered more than once; the first SetNX wins.
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	return &Deduper{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// AcquireOnce tries to acquire a dedup lock for a handler + event id pair.
// Returns true if this is the first time the event is processed, false on a
// duplicate. When Redis is unavailable the event is allowed through; a
// duplicate notification is preferable to a dropped one.
func (d *Deduper) AcquireOnce(ctx context.Context, handler string, eventID int64) bool {
	key := fmt.Sprintf("dedup:%s:%d", handler, eventID)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("Redis dedup check failed, allowing processing",
				zap.String("handler", handler),
				zap.Int64("event_id", eventID),
				zap.Error(err),
			)
		}
		return true
	}

	if !ok && d.logger != nil {
		d.logger.Info("Skipped duplicated event",
			zap.String("handler", handler),
			zap.Int64("event_id", eventID),
			zap.String("dedup_key", key),
		)
	}

	return ok
}

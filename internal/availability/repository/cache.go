package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hostavail/pkg/logger"
	"hostavail/pkg/model"
)

const eventTypeKeyPrefix = "hostavail:event_type:"

// RedisClient is the subset of *redis.Client the cache uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

type CacheRecorder interface {
	RecordCacheLookup(hit bool)
}

type cachedEventTypeRepository struct {
	next     EventTypeRepository
	client   RedisClient
	ttl      time.Duration
	log      *logger.Logger
	recorder CacheRecorder
}

// NewCachedEventTypeRepository puts a read-through Redis cache in front of
// next. Cache failures are logged and the lookup falls through to next. A nil
// client disables caching.
func NewCachedEventTypeRepository(next EventTypeRepository, client RedisClient, ttl time.Duration, log *logger.Logger, recorder CacheRecorder) EventTypeRepository {
	if client == nil {
		return next
	}
	return &cachedEventTypeRepository{
		next:     next,
		client:   client,
		ttl:      ttl,
		log:      log,
		recorder: recorder,
	}
}

func eventTypeKey(id string) string {
	return eventTypeKeyPrefix + id
}

func (r *cachedEventTypeRepository) FindByID(ctx context.Context, id string) (*model.EventType, error) {
	key := eventTypeKey(id)

	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var et model.EventType
		jsonErr := json.Unmarshal(raw, &et)
		if jsonErr == nil {
			r.record(true)
			return &et, nil
		}
		r.log.Warn("Discarding undecodable cached event type", "key", key, "error", jsonErr)
	case errors.Is(err, redis.Nil):
	default:
		r.log.Warn("Event type cache lookup failed", "key", key, "error", err)
	}
	r.record(false)

	et, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.store(ctx, key, et); err != nil {
		r.log.Warn("Failed to cache event type", "key", key, "error", err)
	}
	return et, nil
}

func (r *cachedEventTypeRepository) store(ctx context.Context, key string, et *model.EventType) error {
	payload, err := json.Marshal(et)
	if err != nil {
		return fmt.Errorf("marshal event type: %w", err)
	}
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *cachedEventTypeRepository) record(hit bool) {
	if r.recorder != nil {
		r.recorder.RecordCacheLookup(hit)
	}
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mamatrack/mamatrack-api/internal/domain"
)

const weekCacheOpTimeout = 200 * time.Millisecond

// CachedWeekSource is a read-through redis cache in front of a
// WeekStateSource. Week content is immutable reference data, so entries
// only expire by TTL. A nil client or any redis failure degrades to the
// underlying source.
type CachedWeekSource struct {
	inner  WeekStateSource
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewCachedWeekSource(inner WeekStateSource, client redis.UniversalClient, prefix string, ttl time.Duration) *CachedWeekSource {
	if prefix == "" {
		prefix = "week"
	}
	return &CachedWeekSource{
		inner:  inner,
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *CachedWeekSource) FindBabyState(weekNumber int) (*domain.WeekBabyState, error) {
	key := fmt.Sprintf("%s:baby:%d", c.prefix, weekNumber)
	var cached domain.WeekBabyState
	if c.lookup(key, &cached) {
		return &cached, nil
	}
	state, err := c.inner.FindBabyState(weekNumber)
	if err != nil {
		return nil, err
	}
	c.store(key, state)
	return state, nil
}

func (c *CachedWeekSource) FindMomState(weekNumber int) (*domain.WeekMomState, error) {
	key := fmt.Sprintf("%s:mom:%d", c.prefix, weekNumber)
	var cached domain.WeekMomState
	if c.lookup(key, &cached) {
		return &cached, nil
	}
	state, err := c.inner.FindMomState(weekNumber)
	if err != nil {
		return nil, err
	}
	c.store(key, state)
	return state, nil
}

func (c *CachedWeekSource) lookup(key string, dest any) bool {
	if c.client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), weekCacheOpTimeout)
	defer cancel()
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *CachedWeekSource) store(key string, value any) {
	if c.client == nil || c.ttl <= 0 {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), weekCacheOpTimeout)
	defer cancel()
	_ = c.client.Set(ctx, key, payload, c.ttl).Err()
}

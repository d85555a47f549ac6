package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"finmgmt/internal/domain/summary"
)

const summaryKey = "financial:summary:" + summary.DocumentID

// Connect opens a Redis client and verifies it with a ping.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}

	log.Printf("Redis connected at %s", addr)
	return client, nil
}

// SummaryRepository caches the materialized summary in front of another
// summary.Repository. Redis failures fall through to the inner repository.
type SummaryRepository struct {
	inner  summary.Repository
	client *redis.Client
	ttl    time.Duration
}

func NewSummaryRepository(inner summary.Repository, client *redis.Client, ttl time.Duration) *SummaryRepository {
	return &SummaryRepository{inner: inner, client: client, ttl: ttl}
}

func (r *SummaryRepository) Get(ctx context.Context) (*summary.Summary, error) {
	data, err := r.client.Get(ctx, summaryKey).Bytes()
	switch {
	case err == nil:
		var s summary.Summary
		decodeErr := json.Unmarshal(data, &s)
		if decodeErr == nil {
			return &s, nil
		}
		log.Printf("Discarding unreadable cached summary: %v", decodeErr)
	case errors.Is(err, redis.Nil):
	default:
		log.Printf("Warning: summary cache read failed: %v", err)
	}

	s, err := r.inner.Get(ctx)
	if err != nil {
		return nil, err
	}

	r.store(ctx, s)
	return s, nil
}

// Save writes through to the inner repository and refreshes the cache.
func (r *SummaryRepository) Save(ctx context.Context, s *summary.Summary) error {
	if err := r.inner.Save(ctx, s); err != nil {
		return err
	}

	r.store(ctx, s)
	return nil
}

func (r *SummaryRepository) store(ctx context.Context, s *summary.Summary) {
	data, err := json.Marshal(s)
	if err != nil {
		log.Printf("Warning: failed to encode summary for cache: %v", err)
		return
	}
	if err := r.client.Set(ctx, summaryKey, data, r.ttl).Err(); err != nil {
		log.Printf("Warning: summary cache write failed: %v", err)
	}
}

// README: Quote store backed by Redis; quotes live for a bounded TTL until booked.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chauffeur/internal/types"
)

const quoteKeyPrefix = "pricing:quote:%s"

type QuoteStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewQuoteStore(redis *redis.Client, ttl time.Duration) *QuoteStore {
	return &QuoteStore{redis: redis, ttl: ttl}
}

func (s *QuoteStore) TTL() time.Duration {
	return s.ttl
}

func (s *QuoteStore) Save(ctx context.Context, q *Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, quoteKey(q.ID), string(data), s.ttl).Err()
}

func (s *QuoteStore) Get(ctx context.Context, id types.ID) (*Quote, error) {
	val, err := s.redis.Get(ctx, quoteKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrQuoteNotFound
	}
	if err != nil {
		return nil, err
	}
	var q Quote
	if err := json.Unmarshal([]byte(val), &q); err != nil {
		return nil, fmt.Errorf("decode quote %s: %w", id, err)
	}
	return &q, nil
}

func (s *QuoteStore) Delete(ctx context.Context, id types.ID) error {
	return s.redis.Del(ctx, quoteKey(id)).Err()
}

func quoteKey(id types.ID) string {
	return fmt.Sprintf(quoteKeyPrefix, string(id))
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"iqai-quiz-service/internal/domain"
)

// DefaultResultsKey is the list holding serialized game results.
const DefaultResultsKey = "iqai:results"

// ResultStore keeps game results in a Redis list, newest first.
type ResultStore struct {
	client *redis.Client
	key    string
}

func NewResultStore(client *redis.Client, key string) *ResultStore {
	if key == "" {
		key = DefaultResultsKey
	}
	return &ResultStore{client: client, key: key}
}

func (s *ResultStore) Save(ctx context.Context, result domain.GameResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := s.client.LPush(ctx, s.key, data).Err(); err != nil {
		return fmt.Errorf("lpush result: %w", err)
	}
	return nil
}

func (s *ResultStore) List(ctx context.Context) ([]domain.GameResult, error) {
	rows, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange results: %w", err)
	}
	results := make([]domain.GameResult, 0, len(rows))
	for _, row := range rows {
		var result domain.GameResult
		if err := json.Unmarshal([]byte(row), &result); err != nil {
			// Skip rows written by older clients rather than failing the read.
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *ResultStore) DeleteAll(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("del results: %w", err)
	}
	return nil
}

// DeleteIndexes removes the entries at the given list positions and reports
// how many were dropped. The list is rewritten in one shot; a concurrent
// writer can race the rewrite and lose its entry.
func (s *ResultStore) DeleteIndexes(ctx context.Context, indexes []int) (int, error) {
	rows, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("lrange results: %w", err)
	}

	drop := make(map[int]struct{}, len(indexes))
	for _, idx := range indexes {
		drop[idx] = struct{}{}
	}

	kept := make([]interface{}, 0, len(rows))
	deleted := 0
	for i, row := range rows {
		if _, gone := drop[i]; gone {
			deleted++
			continue
		}
		kept = append(kept, row)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key)
	if len(kept) > 0 {
		pipe.RPush(ctx, s.key, kept...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rewrite results: %w", err)
	}
	return deleted, nil
}

package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"iqai-quiz-service/internal/domain"
)

// BankLoader fetches the question bank from a backing store.
type BankLoader interface {
	LoadBank(ctx context.Context) ([]domain.Question, error)
}

const bankCacheKey = "bank:questions"

// BankRepository caches the serialized question bank in Redis and falls back
// to a loader on cache miss. Concurrent misses collapse into a single load.
type BankRepository struct {
	client *redis.Client
	loader BankLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewBankRepository(client *redis.Client, loader BankLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *BankRepository) GetBank(ctx context.Context) ([]domain.Question, error) {
	if cached, ok := r.fromCache(ctx); ok {
		return cached, nil
	}

	result, err, _ := r.sf.Do(bankCacheKey, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if cached, ok := r.fromCache(ctx); ok {
			return cached, nil
		}

		questions, err := r.loader.LoadBank(ctx)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(questions); err == nil {
			// Cache write failures are not load failures.
			_ = r.client.Set(ctx, bankCacheKey, data, r.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *BankRepository) fromCache(ctx context.Context) ([]domain.Question, bool) {
	data, err := r.client.Get(ctx, bankCacheKey).Bytes()
	if err != nil || len(data) == 0 {
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil || len(questions) == 0 {
		return nil, false
	}
	return questions, true
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

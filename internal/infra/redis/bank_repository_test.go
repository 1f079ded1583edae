package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"iqai-quiz-service/internal/domain"
)

type countingLoader struct {
	loads int
	pool  []domain.Question
	err   error
}

func (l *countingLoader) LoadBank(ctx context.Context) ([]domain.Question, error) {
	l.loads++
	if l.err != nil {
		return nil, l.err
	}
	return l.pool, nil
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func TestBankRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{pool: []domain.Question{
		{ID: "1", Text: "Q1", Options: []string{"a", "b", "c", "d"}, Answer: "a"},
	}}
	repo := NewBankRepository(newClient(mr), loader, time.Minute)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		pool, err := repo.GetBank(ctx)
		if err != nil {
			t.Fatalf("GetBank: %v", err)
		}
		if len(pool) != 1 || pool[0].ID != "1" {
			t.Fatalf("unexpected pool: %+v", pool)
		}
	}
	if loader.loads != 1 {
		t.Fatalf("loader called %d times, want 1", loader.loads)
	}
	if !mr.Exists(bankCacheKey) {
		t.Fatalf("cache key not written")
	}
}

func TestBankRepositoryReloadsAfterEviction(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{pool: []domain.Question{
		{ID: "1", Text: "Q1", Options: []string{"a", "b", "c", "d"}, Answer: "a"},
	}}
	repo := NewBankRepository(newClient(mr), loader, time.Minute)

	ctx := context.Background()
	if _, err := repo.GetBank(ctx); err != nil {
		t.Fatalf("GetBank: %v", err)
	}
	mr.Del(bankCacheKey)
	if _, err := repo.GetBank(ctx); err != nil {
		t.Fatalf("GetBank after eviction: %v", err)
	}
	if loader.loads != 2 {
		t.Fatalf("loader called %d times, want 2", loader.loads)
	}
}

func TestBankRepositoryIgnoresCorruptCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	if err := mr.Set(bankCacheKey, "not json"); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	loader := &countingLoader{pool: []domain.Question{
		{ID: "1", Text: "Q1", Options: []string{"a", "b", "c", "d"}, Answer: "a"},
	}}
	repo := NewBankRepository(newClient(mr), loader, time.Minute)

	pool, err := repo.GetBank(context.Background())
	if err != nil {
		t.Fatalf("GetBank: %v", err)
	}
	if len(pool) != 1 {
		t.Fatalf("corrupt cache not bypassed: %+v", pool)
	}
	if loader.loads != 1 {
		t.Fatalf("loader called %d times, want 1", loader.loads)
	}
}

func TestBankRepositoryPropagatesLoadError(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	wantErr := errors.New("store down")
	repo := NewBankRepository(newClient(mr), &countingLoader{err: wantErr}, time.Minute)

	if _, err := repo.GetBank(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("expected load error, got %v", err)
	}
}

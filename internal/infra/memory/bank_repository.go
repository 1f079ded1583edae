package memory

import (
	"context"
	"math/rand"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"iqai-quiz-service/internal/bank"
	"iqai-quiz-service/internal/domain"
)

// BankLoader fetches the question bank from a backing store.
type BankLoader interface {
	LoadBank(ctx context.Context) ([]domain.Question, error)
}

// BankRepository caches the loaded bank with a TTL to avoid re-reading the
// backing store on every request.
type BankRepository struct {
	loader BankLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	cached    []domain.Question
	expiresAt time.Time
}

func NewBankRepository(loader BankLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *BankRepository) GetBank(ctx context.Context) ([]domain.Question, error) {
	now := r.clock()

	r.mu.RLock()
	if r.cached != nil && r.expiresAt.After(now) {
		cached := r.cached
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("bank", func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if r.cached != nil && r.expiresAt.After(now) {
			cached := r.cached
			r.mu.RUnlock()
			return cached, nil
		}
		r.mu.RUnlock()

		questions, err := r.loader.LoadBank(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cached = questions
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter so expirations spread out
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticBankLoader serves a fixed in-memory bank (tests/demos).
type StaticBankLoader struct {
	questions []domain.Question
}

func NewStaticBankLoader(questions []domain.Question) *StaticBankLoader {
	return &StaticBankLoader{questions: questions}
}

func (l *StaticBankLoader) LoadBank(_ context.Context) ([]domain.Question, error) {
	if len(l.questions) == 0 {
		return nil, domain.ErrBankEmpty
	}
	return l.questions, nil
}

// FileBankLoader reads the bank from a JSON file on disk.
type FileBankLoader struct {
	path string
}

func NewFileBankLoader(path string) *FileBankLoader {
	return &FileBankLoader{path: path}
}

func (l *FileBankLoader) LoadBank(_ context.Context) ([]domain.Question, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, err
	}
	return bank.Decode(data)
}

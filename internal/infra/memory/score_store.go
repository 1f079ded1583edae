package memory

import (
	"context"
	"sort"
	"sync"

	"iqai-quiz-service/internal/domain"
)

// Leaderboard is an in-memory ranked score store, used when Redis is not
// configured.
type Leaderboard struct {
	mu     sync.RWMutex
	scores map[string]float64
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{scores: make(map[string]float64)}
}

// AddScore keeps the best score per pseudo, mirroring sorted-set semantics.
func (l *Leaderboard) AddScore(_ context.Context, pseudo string, score float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if current, ok := l.scores[pseudo]; !ok || score > current {
		l.scores[pseudo] = score
	}
	return nil
}

func (l *Leaderboard) TopN(_ context.Context, n int) ([]domain.LeaderboardEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]domain.LeaderboardEntry, 0, len(l.scores))
	for pseudo, score := range l.scores {
		entries = append(entries, domain.LeaderboardEntry{Pseudo: pseudo, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Pseudo < entries[j].Pseudo
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// ResultStore is an in-memory game-result log.
type ResultStore struct {
	mu      sync.RWMutex
	results []domain.GameResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{}
}

// Save prepends the result, newest first, matching the Redis list order.
func (s *ResultStore) Save(_ context.Context, result domain.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append([]domain.GameResult{result}, s.results...)
	return nil
}

func (s *ResultStore) List(_ context.Context) ([]domain.GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.GameResult, len(s.results))
	copy(out, s.results)
	return out, nil
}

func (s *ResultStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = nil
	return nil
}

func (s *ResultStore) DeleteIndexes(_ context.Context, indexes []int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[int]struct{}, len(indexes))
	for _, idx := range indexes {
		drop[idx] = struct{}{}
	}
	kept := s.results[:0]
	deleted := 0
	for i, result := range s.results {
		if _, gone := drop[i]; gone {
			deleted++
			continue
		}
		kept = append(kept, result)
	}
	s.results = kept
	return deleted, nil
}

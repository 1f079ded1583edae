package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"iqai-quiz-service/internal/domain"
)

// DefaultLeaderboardKey is the sorted set holding player scores.
const DefaultLeaderboardKey = "leaderboard"

// Leaderboard is a thin wrapper over a Redis sorted set: one member per
// pseudo, ranked by score.
type Leaderboard struct {
	client *redis.Client
	key    string
}

func NewLeaderboard(client *redis.Client, key string) *Leaderboard {
	if key == "" {
		key = DefaultLeaderboardKey
	}
	return &Leaderboard{client: client, key: key}
}

// AddScore records a score; ZADD GT keeps each player's best run.
func (l *Leaderboard) AddScore(ctx context.Context, pseudo string, score float64) error {
	if err := l.client.ZAddGT(ctx, l.key, redis.Z{Score: score, Member: pseudo}).Err(); err != nil {
		return fmt.Errorf("zadd leaderboard: %w", err)
	}
	return nil
}

// TopN returns the n best entries, highest score first.
func (l *Leaderboard) TopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if n <= 0 {
		n = 3
	}
	rows, err := l.client.ZRevRangeWithScores(ctx, l.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange leaderboard: %w", err)
	}
	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		pseudo, _ := row.Member.(string)
		entries = append(entries, domain.LeaderboardEntry{Pseudo: pseudo, Score: row.Score})
	}
	return entries, nil
}

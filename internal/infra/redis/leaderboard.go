package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// LeaderboardStore persists score records in Redis while reusing the
// in-process app.Board for ranking and subscriber fan-out. Entries are
// appended as JSON to a single list key, namespaced by the application
// identifier, and hydrated on construction so a restarted instance serves
// the same ranking.
type LeaderboardStore struct {
	client *redis.Client
	key    string
	board  *app.Board
}

// NewLeaderboardStore hydrates the board from Redis. A hydration failure is
// returned so the caller can degrade to another store.
func NewLeaderboardStore(ctx context.Context, client *redis.Client, appID string) (*LeaderboardStore, error) {
	store := &LeaderboardStore{
		client: client,
		key:    "leaderboard:" + appID + ":entries",
		board:  app.NewBoard(),
	}
	if err := store.hydrate(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *LeaderboardStore) hydrate(ctx context.Context) error {
	raw, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("hydrate leaderboard: %w", err)
	}
	entries := make([]domain.LeaderboardEntry, 0, len(raw))
	for _, item := range raw {
		var entry domain.LeaderboardEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return fmt.Errorf("decode leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
	}
	s.board.Seed(entries)
	return nil
}

// Submit persists the entry before publishing it, so a failed write is
// never visible on the board.
func (s *LeaderboardStore) Submit(ctx context.Context, entry domain.LeaderboardEntry) (domain.LeaderboardEntry, error) {
	stored := s.board.Stamp(entry)
	data, err := json.Marshal(stored)
	if err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("encode leaderboard entry: %w", err)
	}
	if err := s.client.RPush(ctx, s.key, data).Err(); err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("persist leaderboard entry: %w", err)
	}
	s.board.Record(stored)
	return stored, nil
}

func (s *LeaderboardStore) Subscribe(_ context.Context, limit int) (<-chan []domain.LeaderboardEntry, func(), error) {
	ch, cancel := s.board.Subscribe(limit)
	return ch, cancel, nil
}

package memory

import (
	"context"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// LeaderboardStore is the in-memory implementation of app.LeaderboardStore.
// It is a thin wrapper over app.Board, which owns ranking and fan-out.
type LeaderboardStore struct {
	board *app.Board
}

func NewLeaderboardStore() *LeaderboardStore {
	return &LeaderboardStore{board: app.NewBoard()}
}

// NewLeaderboardStoreWithBoard is used by tests that need an injected clock.
func NewLeaderboardStoreWithBoard(board *app.Board) *LeaderboardStore {
	return &LeaderboardStore{board: board}
}

func (s *LeaderboardStore) Submit(_ context.Context, entry domain.LeaderboardEntry) (domain.LeaderboardEntry, error) {
	return s.board.Append(entry), nil
}

func (s *LeaderboardStore) Subscribe(_ context.Context, limit int) (<-chan []domain.LeaderboardEntry, func(), error) {
	ch, cancel := s.board.Subscribe(limit)
	return ch, cancel, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// LeaderboardStore persists score records in Postgres while reusing the
// in-process app.Board for ranking and subscriber fan-out.
type LeaderboardStore struct {
	pool  *pgxpool.Pool
	board *app.Board
}

// NewLeaderboardStore hydrates the board from the leaderboard table.
func NewLeaderboardStore(ctx context.Context, pool *pgxpool.Pool) (*LeaderboardStore, error) {
	store := &LeaderboardStore{pool: pool, board: app.NewBoard()}
	if err := store.hydrate(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *LeaderboardStore) hydrate(ctx context.Context) error {
	rows, err := s.pool.Query(ctx, `SELECT id, player_name, score, total_questions, user_id, submitted_at
		FROM leaderboard ORDER BY submitted_at ASC`)
	if err != nil {
		return fmt.Errorf("hydrate leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var entry domain.LeaderboardEntry
		if err := rows.Scan(&entry.ID, &entry.PlayerName, &entry.Score, &entry.TotalQuestions, &entry.UserID, &entry.SubmittedAt); err != nil {
			return fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read leaderboard rows: %w", err)
	}
	s.board.Seed(entries)
	return nil
}

// Submit persists the row before publishing it, so a failed insert is never
// visible on the board.
func (s *LeaderboardStore) Submit(ctx context.Context, entry domain.LeaderboardEntry) (domain.LeaderboardEntry, error) {
	entry.ID = uuid.NewString()
	stored := s.board.Stamp(entry)
	_, err := s.pool.Exec(ctx, `INSERT INTO leaderboard (id, player_name, score, total_questions, user_id, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		stored.ID, stored.PlayerName, stored.Score, stored.TotalQuestions, stored.UserID, stored.SubmittedAt)
	if err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("persist leaderboard entry: %w", err)
	}
	s.board.Record(stored)
	return stored, nil
}

func (s *LeaderboardStore) Subscribe(_ context.Context, limit int) (<-chan []domain.LeaderboardEntry, func(), error) {
	ch, cancel := s.board.Subscribe(limit)
	return ch, cancel, nil
}

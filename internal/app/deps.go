package app

import (
	"context"

	"trivia-quiz-service/internal/domain"
)

// QuestionSource fetches quiz content from the external trivia API.
type QuestionSource interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	// FetchQuestions returns domain.ErrNoResults when the filters match
	// nothing and an error wrapping domain.ErrFetchFailed on any other
	// failure. A nil error implies a non-empty batch.
	FetchQuestions(ctx context.Context, amount int, category, difficulty string) ([]domain.Question, error)
}

// LeaderboardStore abstracts how score records are persisted (in-memory,
// Redis, Postgres). Records are append-only; resubmission creates duplicates.
type LeaderboardStore interface {
	// Submit appends one record and returns it with the store-assigned ID
	// and timestamp filled in.
	Submit(ctx context.Context, entry domain.LeaderboardEntry) (domain.LeaderboardEntry, error)
	// Subscribe delivers the full top-limit list on every change, newest
	// snapshot first when the subscriber lags. The caller must invoke the
	// cancel function to stop receiving updates.
	Subscribe(ctx context.Context, limit int) (<-chan []domain.LeaderboardEntry, func(), error)
}

// Identity exposes the per-session user identity and its readiness signal.
type Identity interface {
	Ready() bool
	UserID() string
}

// Notifier displays a single user-facing message; a new message replaces any
// pending one.
type Notifier interface {
	Show(title, text string)
}

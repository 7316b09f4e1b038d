package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/domain"
)

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestSubmitPersistsEntries(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store, err := NewLeaderboardStore(ctx, newClient(mr), "quiz-app")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.Submit(ctx, domain.LeaderboardEntry{PlayerName: "Alice", Score: 7, TotalQuestions: 10, UserID: "u1"}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if !mr.Exists("leaderboard:quiz-app:entries") {
		t.Fatalf("expected entries key to be set")
	}
	items, err := mr.List("leaderboard:quiz-app:entries")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 persisted entry, got %d", len(items))
	}
}

func TestHydrationRestoresRanking(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	client := newClient(mr)

	store, err := NewLeaderboardStore(ctx, client, "quiz-app")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Submit(ctx, domain.LeaderboardEntry{PlayerName: "Alice", Score: 7, TotalQuestions: 10}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := store.Submit(ctx, domain.LeaderboardEntry{PlayerName: "Bob", Score: 9, TotalQuestions: 10}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// A freshly constructed store serves the persisted ranking.
	restarted, err := NewLeaderboardStore(ctx, client, "quiz-app")
	if err != nil {
		t.Fatalf("restart store: %v", err)
	}
	updates, cancel, err := restarted.Subscribe(ctx, 10)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	snapshot := <-updates
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 entries after hydration, got %d", len(snapshot))
	}
	if snapshot[0].PlayerName != "Bob" || snapshot[1].PlayerName != "Alice" {
		t.Fatalf("expected Bob before Alice, got %v", snapshot)
	}
}

func TestFailedSubmitIsNotVisibleOnBoard(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store, err := NewLeaderboardStore(ctx, newClient(mr), "quiz-app")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	updates, cancel, err := store.Subscribe(ctx, 10)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()
	if snapshot := <-updates; len(snapshot) != 0 {
		t.Fatalf("expected empty initial snapshot, got %v", snapshot)
	}

	// Take the backend down; the write must fail before anything is
	// published.
	mr.Close()
	if _, err := store.Submit(ctx, domain.LeaderboardEntry{PlayerName: "Alice", Score: 7, TotalQuestions: 10, UserID: "u1"}); err == nil {
		t.Fatalf("expected submit to fail with the backend down")
	}

	select {
	case snapshot := <-updates:
		t.Fatalf("failed submit must not broadcast, got %v", snapshot)
	default:
	}

	// A retry after recovery records the entry exactly once.
	if err := mr.Restart(); err != nil {
		t.Fatalf("restart miniredis: %v", err)
	}
	if _, err := store.Submit(ctx, domain.LeaderboardEntry{PlayerName: "Alice", Score: 7, TotalQuestions: 10, UserID: "u1"}); err != nil {
		t.Fatalf("retry submit: %v", err)
	}
	snapshot := <-updates
	if len(snapshot) != 1 || snapshot[0].PlayerName != "Alice" {
		t.Fatalf("expected exactly one entry after retry, got %v", snapshot)
	}
}

func TestStoresAreNamespacedByAppID(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	client := newClient(mr)

	first, err := NewLeaderboardStore(ctx, client, "app-a")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := first.Submit(ctx, domain.LeaderboardEntry{PlayerName: "Alice", Score: 7}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	other, err := NewLeaderboardStore(ctx, client, "app-b")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	updates, cancel, err := other.Subscribe(ctx, 10)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	if snapshot := <-updates; len(snapshot) != 0 {
		t.Fatalf("expected empty board for a different app id, got %v", snapshot)
	}
}

package app

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// Board is the in-process ranked score list with subscriber fan-out. The
// infra stores wrap it with their persistence layer and reuse its broadcast
// logic.
type Board struct {
	now    func() time.Time
	lastAt time.Time
	nextID int

	mu          sync.RWMutex
	entries     []domain.LeaderboardEntry
	subscribers map[chan []domain.LeaderboardEntry]int
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return NewBoardWithClock(time.Now)
}

// NewBoardWithClock allows deterministic timestamps in tests.
func NewBoardWithClock(now func() time.Time) *Board {
	return &Board{
		now:         now,
		subscribers: make(map[chan []domain.LeaderboardEntry]int),
	}
}

// Stamp assigns the store-owned fields without recording the entry: an ID
// when the entry has none and a monotonic submission timestamp. Stores that
// persist externally stamp first, write, and only Record once the write
// succeeded, so a failed write leaves the ranking untouched.
func (b *Board) Stamp(entry domain.LeaderboardEntry) domain.LeaderboardEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	at := b.now()
	// Timestamps must be strictly monotonic so that ordering among equal
	// scores is stable.
	if !at.After(b.lastAt) {
		at = b.lastAt.Add(time.Nanosecond)
	}
	b.lastAt = at
	b.nextID++

	entry.SubmittedAt = at
	if entry.ID == "" {
		entry.ID = strconv.Itoa(b.nextID)
	}
	return entry
}

// Record adds a stamped entry to the ranking and broadcasts the updated
// ranking to all subscribers.
func (b *Board) Record(entry domain.LeaderboardEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, entry)
	b.broadcastLocked()
}

// Append stamps and records one entry in a single step.
func (b *Board) Append(entry domain.LeaderboardEntry) domain.LeaderboardEntry {
	stamped := b.Stamp(entry)
	b.Record(stamped)
	return stamped
}

// Seed loads persisted entries without broadcasting; used by infra stores to
// hydrate on startup.
func (b *Board) Seed(entries []domain.LeaderboardEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, entries...)
	for _, e := range entries {
		if e.SubmittedAt.After(b.lastAt) {
			b.lastAt = e.SubmittedAt
		}
		b.nextID++
	}
}

// Top returns the ranked top-limit snapshot: score descending, then
// submission timestamp descending.
func (b *Board) Top(limit int) []domain.LeaderboardEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.topLocked(limit)
}

// Subscribe registers a subscriber for ranked snapshots. The initial
// snapshot is delivered immediately; the returned cancel function is
// idempotent and closes the channel.
func (b *Board) Subscribe(limit int) (<-chan []domain.LeaderboardEntry, func()) {
	ch := make(chan []domain.LeaderboardEntry, 8)

	b.mu.Lock()
	b.subscribers[ch] = limit
	// Deliver the initial snapshot under the lock so a concurrent cancel
	// cannot close the channel first. The buffer makes this non-blocking.
	ch <- b.topLocked(limit)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *Board) broadcastLocked() {
	for ch, limit := range b.subscribers {
		snapshot := b.topLocked(limit)
		select {
		case ch <- snapshot:
		default:
			// Slow subscriber: drop the stale snapshot so the newest
			// ranking always wins.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

func (b *Board) topLocked(limit int) []domain.LeaderboardEntry {
	ranked := make([]domain.LeaderboardEntry, len(b.entries))
	copy(ranked, b.entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].SubmittedAt.After(ranked[j].SubmittedAt)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

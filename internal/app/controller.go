package app

import (
	"context"
	"errors"
	"strings"
	"sync"

	"trivia-quiz-service/internal/domain"
)

const (
	pvpBatchSize = 10
	minBatchSize = 1
	maxBatchSize = 50
	anyFilter    = "any"
	defaultTopN  = 10
)

// SessionController is the single source of truth for which screen a quiz
// session shows and for the cross-screen state (player names, per-player
// scores, whose turn it is). It is the only component that changes the
// active view. All operations are serialized; network calls resolve fully
// inside the operation, so no transition ever happens on a pending fetch.
type SessionController struct {
	source   QuestionSource
	store    LeaderboardStore // nil when no backend is configured
	identity Identity
	notifier Notifier

	mu             sync.Mutex
	view           domain.View
	batch          []domain.Question
	engine         *QuizEngine
	totalQuestions int
	finalScore     int

	player1Name    string
	player2Name    string
	turn           domain.Turn
	player1Score   int
	player2Score   int
	scoreSubmitted bool
}

// Results summarizes a finished run for the results view.
type Results struct {
	PvP            bool                 `json:"pvp"`
	Score          int                  `json:"score"`
	TotalQuestions int                  `json:"totalQuestions"`
	Players        []domain.PlayerScore `json:"players,omitempty"`
	Winner         string               `json:"winner,omitempty"`
	ScoreSubmitted bool                 `json:"scoreSubmitted"`
}

// TurnInfo describes the active player in two-player mode.
type TurnInfo struct {
	PvP        bool   `json:"pvp"`
	Turn       int    `json:"turn,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
}

// NewSessionController builds a controller in the setup view. store may be
// nil when the leaderboard backend is not configured; quiz-taking stays
// fully functional and leaderboard operations degrade to a notice.
func NewSessionController(source QuestionSource, store LeaderboardStore, id Identity, notifier Notifier) *SessionController {
	return &SessionController{
		source:   source,
		store:    store,
		identity: id,
		notifier: notifier,
		view:     domain.ViewSetup,
		turn:     domain.TurnNone,
	}
}

// View returns the active view.
func (c *SessionController) View() domain.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Turn returns the active player designation and name.
func (c *SessionController) Turn() TurnInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.turnLocked()
}

func (c *SessionController) turnLocked() TurnInfo {
	switch c.turn {
	case domain.TurnPlayer1:
		return TurnInfo{PvP: true, Turn: 1, PlayerName: c.player1Name}
	case domain.TurnPlayer2:
		return TurnInfo{PvP: true, Turn: 2, PlayerName: c.player2Name}
	default:
		return TurnInfo{}
	}
}

// LoadCategories returns the category list for the setup view. Failure is
// reported once and yields an empty list; the quiz remains usable with the
// "any" filter.
func (c *SessionController) LoadCategories(ctx context.Context) []domain.Category {
	categories, err := c.source.Categories(ctx)
	if err != nil {
		c.notifier.Show("Error", "Failed to load quiz categories. Please try again later.")
		return nil
	}
	return categories
}

// StartSinglePlayerQuiz validates the amount, fetches a batch, and
// transitions to the quiz view on success. On any failure the session stays
// in setup and the failure is surfaced exactly once.
func (c *SessionController) StartSinglePlayerQuiz(ctx context.Context, amount int, category, difficulty string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view != domain.ViewSetup {
		return domain.ErrWrongView
	}
	if amount < minBatchSize || amount > maxBatchSize {
		c.notifier.Show("Invalid Amount", "Please enter a number of questions between 1 and 50.")
		return domain.ErrInvalidAmount
	}

	batch, err := c.fetchBatch(ctx, amount, category, difficulty)
	if err != nil {
		return err
	}

	c.batch = batch
	c.engine = NewQuizEngine(batch)
	c.totalQuestions = len(batch)
	c.finalScore = 0
	c.turn = domain.TurnNone
	c.view = domain.ViewQuiz
	return nil
}

// StartTwoPlayerSetup transitions to the two-player name entry view.
func (c *SessionController) StartTwoPlayerSetup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = domain.ViewPvPSetup
}

// StartTwoPlayerQuiz validates both names, fetches a fixed 10-question batch
// with no filters, and starts player 1's turn. Both players answer the same
// batch.
func (c *SessionController) StartTwoPlayerQuiz(ctx context.Context, name1, name2 string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view != domain.ViewPvPSetup {
		return domain.ErrWrongView
	}
	name1 = strings.TrimSpace(name1)
	name2 = strings.TrimSpace(name2)
	if name1 == "" || name2 == "" {
		c.notifier.Show("Names Required", "Please enter names for both players.")
		return domain.ErrNamesRequired
	}

	batch, err := c.fetchBatch(ctx, pvpBatchSize, anyFilter, anyFilter)
	if err != nil {
		return err
	}

	c.player1Name = name1
	c.player2Name = name2
	c.player1Score = 0
	c.player2Score = 0
	c.turn = domain.TurnPlayer1
	c.batch = batch
	c.engine = NewQuizEngine(batch)
	c.totalQuestions = len(batch)
	c.finalScore = 0
	c.view = domain.ViewQuiz
	return nil
}

// fetchBatch resolves a question fetch and maps each failure outcome to its
// notice. The caller holds the lock; the session view is left untouched.
func (c *SessionController) fetchBatch(ctx context.Context, amount int, category, difficulty string) ([]domain.Question, error) {
	batch, err := c.source.FetchQuestions(ctx, amount, category, difficulty)
	switch {
	case err == nil:
		return batch, nil
	case errors.Is(err, domain.ErrNoResults):
		c.notifier.Show("No Results", "Could not find questions for your selected criteria. Please try different options.")
	case errors.Is(err, domain.ErrFetchFailed):
		c.notifier.Show("Error", "Failed to fetch questions. Please try again.")
	default:
		c.notifier.Show("Network Error", "Failed to connect to the quiz API. Please check your internet connection.")
	}
	return nil, err
}

// CurrentQuestion presents the active question; the answer order is freshly
// permuted on every call.
func (c *SessionController) CurrentQuestion() (QuestionView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view != domain.ViewQuiz || c.engine == nil {
		return QuestionView{}, domain.ErrNoBatch
	}
	return c.engine.Current()
}

// SubmitAnswer locks in the choice for the active question.
func (c *SessionController) SubmitAnswer(choice string) (AnswerFeedback, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view != domain.ViewQuiz || c.engine == nil {
		return AnswerFeedback{}, domain.ErrNoBatch
	}
	return c.engine.Submit(choice)
}

// NextOutcome reports what NextQuestion decided: either the run continues,
// the same batch restarts for player 2, or the session moved to results.
type NextOutcome struct {
	Finished bool        `json:"finished"`
	NextTurn bool        `json:"nextTurn"`
	View     domain.View `json:"view"`
}

// NextQuestion advances the engine and routes the finish: single-player runs
// go to results; in two-player mode player 1's finish resets the same batch
// for player 2, and player 2's finish goes to results with both scores
// retained.
func (c *SessionController) NextQuestion() (NextOutcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view != domain.ViewQuiz || c.engine == nil {
		return NextOutcome{}, domain.ErrNoBatch
	}
	finished, score, err := c.engine.Advance()
	if err != nil {
		return NextOutcome{}, err
	}
	if !finished {
		return NextOutcome{View: c.view}, nil
	}

	switch c.turn {
	case domain.TurnPlayer1:
		c.player1Score = score
		c.turn = domain.TurnPlayer2
		c.engine.Reset()
		return NextOutcome{Finished: true, NextTurn: true, View: c.view}, nil
	case domain.TurnPlayer2:
		c.player2Score = score
		c.view = domain.ViewResults
		return NextOutcome{Finished: true, View: c.view}, nil
	default:
		c.finalScore = score
		c.view = domain.ViewResults
		return NextOutcome{Finished: true, View: c.view}, nil
	}
}

// Results returns the finished run's scores. In two-player mode the winner
// is the strictly higher score, or "It's a Tie!" when equal.
func (c *SessionController) Results() (Results, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view != domain.ViewResults {
		return Results{}, domain.ErrWrongView
	}
	if c.turn == domain.TurnNone {
		return Results{
			Score:          c.finalScore,
			TotalQuestions: c.totalQuestions,
			ScoreSubmitted: c.scoreSubmitted,
		}, nil
	}

	winner := "It's a Tie!"
	if c.player1Score > c.player2Score {
		winner = c.player1Name
	} else if c.player2Score > c.player1Score {
		winner = c.player2Name
	}
	return Results{
		PvP:            true,
		TotalQuestions: c.totalQuestions,
		Players: []domain.PlayerScore{
			{Name: c.player1Name, Score: c.player1Score, TotalQuestions: c.totalQuestions},
			{Name: c.player2Name, Score: c.player2Score, TotalQuestions: c.totalQuestions},
		},
		Winner: winner,
	}, nil
}

// SubmitScore appends the finished single-player score to the leaderboard.
// It requires the results view, a non-empty name, a configured backend, and
// a ready identity. The one-submission-per-run guard lives here; the store
// itself is append-only and not idempotent.
func (c *SessionController) SubmitScore(ctx context.Context, playerName string) error {
	c.mu.Lock()
	if c.view != domain.ViewResults || c.turn != domain.TurnNone {
		c.mu.Unlock()
		return domain.ErrWrongView
	}
	if c.scoreSubmitted {
		c.mu.Unlock()
		return domain.ErrAlreadySubmitted
	}
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		c.notifier.Show("Name Required", "Please enter your name to submit your score.")
		c.mu.Unlock()
		return domain.ErrNameRequired
	}
	if c.store == nil || !c.identity.Ready() {
		c.notifier.Show("Backend Not Ready", "Leaderboard backend not ready or configured. Cannot submit score.")
		c.mu.Unlock()
		return domain.ErrBackendUnavailable
	}
	entry := domain.LeaderboardEntry{
		PlayerName:     playerName,
		Score:          c.finalScore,
		TotalQuestions: c.totalQuestions,
		UserID:         c.identity.UserID(),
	}
	c.mu.Unlock()

	if _, err := c.store.Submit(ctx, entry); err != nil {
		c.notifier.Show("Submission Failed", "Failed to submit score. Please try again.")
		return err
	}

	c.mu.Lock()
	c.scoreSubmitted = true
	c.mu.Unlock()
	c.notifier.Show("Success!", "Score submitted successfully!")
	return nil
}

// ShowLeaderboard transitions to the leaderboard view. The subscription
// itself is opened separately via WatchTopScores so the transport can tear
// it down when the view is left.
func (c *SessionController) ShowLeaderboard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = domain.ViewLeaderboard
}

// WatchTopScores opens a live top-10 subscription. Both leaderboard
// operations fail immediately when the backend is missing or identity is
// not ready, with no partial work.
func (c *SessionController) WatchTopScores(ctx context.Context) (<-chan []domain.LeaderboardEntry, func(), error) {
	if c.store == nil || !c.identity.Ready() {
		c.notifier.Show("Backend Not Ready", "Leaderboard backend not ready or configured. Cannot load leaderboard.")
		return nil, nil, domain.ErrBackendUnavailable
	}
	updates, cancel, err := c.store.Subscribe(ctx, defaultTopN)
	if err != nil {
		c.notifier.Show("Error", "Failed to load leaderboard. Please try again.")
		return nil, nil, err
	}
	return updates, cancel, nil
}

// PlayAgain clears all session state and returns to setup.
func (c *SessionController) PlayAgain() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batch = nil
	c.engine = nil
	c.totalQuestions = 0
	c.finalScore = 0
	c.player1Name = ""
	c.player2Name = ""
	c.player1Score = 0
	c.player2Score = 0
	c.turn = domain.TurnNone
	c.scoreSubmitted = false
	c.view = domain.ViewSetup
}

// GoHome returns to setup. Unlike PlayAgain it keeps entered player names.
func (c *SessionController) GoHome() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = domain.ViewSetup
}

package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
)

type stubSource struct {
	batch      []domain.Question
	err        error
	fetchCalls int
	lastAmount int
	lastCat    string
	lastDiff   string
	categories []domain.Category
	catErr     error
}

func (s *stubSource) Categories(context.Context) ([]domain.Category, error) {
	return s.categories, s.catErr
}

func (s *stubSource) FetchQuestions(_ context.Context, amount int, category, difficulty string) ([]domain.Question, error) {
	s.fetchCalls++
	s.lastAmount = amount
	s.lastCat = category
	s.lastDiff = difficulty
	if s.err != nil {
		return nil, s.err
	}
	return s.batch, nil
}

type stubIdentity struct {
	ready  bool
	userID string
}

func (s stubIdentity) Ready() bool    { return s.ready }
func (s stubIdentity) UserID() string { return s.userID }

type recordingNotifier struct {
	messages []domain.Message
}

func (n *recordingNotifier) Show(title, text string) {
	n.messages = append(n.messages, domain.Message{Title: title, Text: text})
}

func (n *recordingNotifier) lastTitle() string {
	if len(n.messages) == 0 {
		return ""
	}
	return n.messages[len(n.messages)-1].Title
}

func makeBatch(n int) []domain.Question {
	batch := make([]domain.Question, n)
	for i := range batch {
		batch[i] = domain.Question{
			Prompt:           fmt.Sprintf("Question %d?", i+1),
			CorrectAnswer:    "right",
			IncorrectAnswers: []string{"a", "b", "c"},
		}
	}
	return batch
}

func newController(source *stubSource, notifier *recordingNotifier) *app.SessionController {
	return app.NewSessionController(source, memory.NewLeaderboardStore(), stubIdentity{ready: true, userID: "u1"}, notifier)
}

func TestStartSinglePlayerValidatesAmount(t *testing.T) {
	ctx := context.Background()
	for _, amount := range []int{0, -3, 51, 1000} {
		source := &stubSource{batch: makeBatch(5)}
		notifier := &recordingNotifier{}
		controller := newController(source, notifier)

		err := controller.StartSinglePlayerQuiz(ctx, amount, "any", "any")
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
		if source.fetchCalls != 0 {
			t.Fatalf("amount %d: expected no fetch, got %d", amount, source.fetchCalls)
		}
		if controller.View() != domain.ViewSetup {
			t.Fatalf("amount %d: expected setup view, got %s", amount, controller.View())
		}
		if notifier.lastTitle() != "Invalid Amount" {
			t.Fatalf("amount %d: expected validation notice, got %q", amount, notifier.lastTitle())
		}
	}
}

func TestStartSinglePlayerTransitionsOnSuccess(t *testing.T) {
	source := &stubSource{batch: makeBatch(5)}
	notifier := &recordingNotifier{}
	controller := newController(source, notifier)

	if err := controller.StartSinglePlayerQuiz(context.Background(), 5, "9", "easy"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if source.lastAmount != 5 || source.lastCat != "9" || source.lastDiff != "easy" {
		t.Fatalf("unexpected fetch request: %d %s %s", source.lastAmount, source.lastCat, source.lastDiff)
	}
	if controller.View() != domain.ViewQuiz {
		t.Fatalf("expected quiz view, got %s", controller.View())
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("expected no notices, got %v", notifier.messages)
	}
}

func TestStartSinglePlayerNoResultsStaysOnSetup(t *testing.T) {
	source := &stubSource{err: domain.ErrNoResults}
	notifier := &recordingNotifier{}
	controller := newController(source, notifier)

	err := controller.StartSinglePlayerQuiz(context.Background(), 5, "9", "easy")
	if !errors.Is(err, domain.ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
	if controller.View() != domain.ViewSetup {
		t.Fatalf("expected setup view, got %s", controller.View())
	}
	if notifier.lastTitle() != "No Results" {
		t.Fatalf("expected No Results notice, got %q", notifier.lastTitle())
	}
}

func TestStartSinglePlayerFetchFailureStaysOnSetup(t *testing.T) {
	source := &stubSource{err: fmt.Errorf("%w: response code 2", domain.ErrFetchFailed)}
	notifier := &recordingNotifier{}
	controller := newController(source, notifier)

	if err := controller.StartSinglePlayerQuiz(context.Background(), 5, "any", "any"); err == nil {
		t.Fatalf("expected error")
	}
	if controller.View() != domain.ViewSetup {
		t.Fatalf("expected setup view, got %s", controller.View())
	}
	if notifier.lastTitle() != "Error" {
		t.Fatalf("expected Error notice, got %q", notifier.lastTitle())
	}

	source.err = fmt.Errorf("dial tcp: connection refused")
	if err := controller.StartSinglePlayerQuiz(context.Background(), 5, "any", "any"); err == nil {
		t.Fatalf("expected error")
	}
	if notifier.lastTitle() != "Network Error" {
		t.Fatalf("expected Network Error notice, got %q", notifier.lastTitle())
	}
}

func TestTwoPlayerRequiresBothNames(t *testing.T) {
	source := &stubSource{batch: makeBatch(10)}
	notifier := &recordingNotifier{}
	controller := newController(source, notifier)

	controller.StartTwoPlayerSetup()
	if controller.View() != domain.ViewPvPSetup {
		t.Fatalf("expected pvp_setup view, got %s", controller.View())
	}

	for _, names := range [][2]string{{"", "Bob"}, {"Alice", ""}, {"   ", "Bob"}} {
		err := controller.StartTwoPlayerQuiz(context.Background(), names[0], names[1])
		if !errors.Is(err, domain.ErrNamesRequired) {
			t.Fatalf("names %q/%q: expected ErrNamesRequired, got %v", names[0], names[1], err)
		}
		if controller.View() != domain.ViewPvPSetup {
			t.Fatalf("expected no transition, got %s", controller.View())
		}
	}
	if source.fetchCalls != 0 {
		t.Fatalf("expected no fetch on validation errors, got %d", source.fetchCalls)
	}
}

// playThrough answers every question of the active batch with choice and
// returns the final NextOutcome.
func playThrough(t *testing.T, controller *app.SessionController, choice string, total int) app.NextOutcome {
	t.Helper()
	var outcome app.NextOutcome
	for i := 0; i < total; i++ {
		if _, err := controller.SubmitAnswer(choice); err != nil {
			t.Fatalf("submit answer %d: %v", i, err)
		}
		var err error
		outcome, err = controller.NextQuestion()
		if err != nil {
			t.Fatalf("next question %d: %v", i, err)
		}
	}
	return outcome
}

func TestTwoPlayerFlowSameBatchAndWinner(t *testing.T) {
	source := &stubSource{batch: makeBatch(10)}
	notifier := &recordingNotifier{}
	controller := newController(source, notifier)

	controller.StartTwoPlayerSetup()
	if err := controller.StartTwoPlayerQuiz(context.Background(), "  Alice ", "Bob"); err != nil {
		t.Fatalf("start pvp: %v", err)
	}
	if source.lastAmount != 10 || source.lastCat != "any" || source.lastDiff != "any" {
		t.Fatalf("expected fixed pvp fetch 10/any/any, got %d/%s/%s", source.lastAmount, source.lastCat, source.lastDiff)
	}
	if turn := controller.Turn(); !turn.PvP || turn.Turn != 1 || turn.PlayerName != "Alice" {
		t.Fatalf("expected Alice's turn, got %+v", turn)
	}
	firstQuestion, err := controller.CurrentQuestion()
	if err != nil {
		t.Fatalf("current: %v", err)
	}

	// Player 1 answers everything correctly.
	outcome := playThrough(t, controller, "right", 10)
	if !outcome.Finished || !outcome.NextTurn || outcome.View != domain.ViewQuiz {
		t.Fatalf("expected turn switch within quiz view, got %+v", outcome)
	}
	if turn := controller.Turn(); turn.Turn != 2 || turn.PlayerName != "Bob" {
		t.Fatalf("expected Bob's turn, got %+v", turn)
	}

	// Player 2 replays the identical batch from the start.
	replayed, err := controller.CurrentQuestion()
	if err != nil {
		t.Fatalf("current for player 2: %v", err)
	}
	if replayed.Number != 1 || replayed.Prompt != firstQuestion.Prompt {
		t.Fatalf("expected same batch from index 0, got %+v", replayed)
	}
	if source.fetchCalls != 1 {
		t.Fatalf("expected a single fetch for both turns, got %d", source.fetchCalls)
	}

	// Player 2 answers everything wrong.
	outcome = playThrough(t, controller, "a", 10)
	if !outcome.Finished || outcome.NextTurn || outcome.View != domain.ViewResults {
		t.Fatalf("expected results after second turn, got %+v", outcome)
	}

	results, err := controller.Results()
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if !results.PvP || len(results.Players) != 2 {
		t.Fatalf("expected two player results, got %+v", results)
	}
	if results.Players[0].Score != 10 || results.Players[1].Score != 0 {
		t.Fatalf("expected 10 vs 0, got %d vs %d", results.Players[0].Score, results.Players[1].Score)
	}
	if results.Winner != "Alice" {
		t.Fatalf("expected Alice to win, got %q", results.Winner)
	}
}

func TestTwoPlayerTie(t *testing.T) {
	source := &stubSource{batch: makeBatch(4)}
	notifier := &recordingNotifier{}
	controller := newController(source, notifier)

	controller.StartTwoPlayerSetup()
	if err := controller.StartTwoPlayerQuiz(context.Background(), "Alice", "Bob"); err != nil {
		t.Fatalf("start pvp: %v", err)
	}
	playThrough(t, controller, "right", 4)
	playThrough(t, controller, "right", 4)

	results, err := controller.Results()
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if results.Winner != "It's a Tie!" {
		t.Fatalf("expected tie, got %q", results.Winner)
	}
}

func TestSinglePlayerFinishAndSubmitScore(t *testing.T) {
	source := &stubSource{batch: makeBatch(3)}
	notifier := &recordingNotifier{}
	controller := newController(source, notifier)

	if err := controller.StartSinglePlayerQuiz(context.Background(), 3, "any", "any"); err != nil {
		t.Fatalf("start: %v", err)
	}
	outcome := playThrough(t, controller, "right", 3)
	if !outcome.Finished || outcome.View != domain.ViewResults {
		t.Fatalf("expected results, got %+v", outcome)
	}

	results, err := controller.Results()
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if results.Score != 3 || results.TotalQuestions != 3 {
		t.Fatalf("expected 3/3, got %d/%d", results.Score, results.TotalQuestions)
	}

	if err := controller.SubmitScore(context.Background(), "  "); !errors.Is(err, domain.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if err := controller.SubmitScore(context.Background(), "Alice"); err != nil {
		t.Fatalf("submit score: %v", err)
	}
	if notifier.lastTitle() != "Success!" {
		t.Fatalf("expected success notice, got %q", notifier.lastTitle())
	}

	// The control is disabled after one successful submission for this run.
	if err := controller.SubmitScore(context.Background(), "Alice"); !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}
}

func TestSubmitScoreRequiresBackendAndIdentity(t *testing.T) {
	source := &stubSource{batch: makeBatch(1)}
	notifier := &recordingNotifier{}
	controller := app.NewSessionController(source, nil, stubIdentity{ready: true}, notifier)

	if err := controller.StartSinglePlayerQuiz(context.Background(), 1, "any", "any"); err != nil {
		t.Fatalf("start: %v", err)
	}
	playThrough(t, controller, "right", 1)

	if err := controller.SubmitScore(context.Background(), "Alice"); !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	if notifier.lastTitle() != "Backend Not Ready" {
		t.Fatalf("expected backend notice, got %q", notifier.lastTitle())
	}

	notReady := app.NewSessionController(source, memory.NewLeaderboardStore(), stubIdentity{ready: false}, notifier)
	if _, _, err := notReady.WatchTopScores(context.Background()); !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestPlayAgainClearsStateGoHomeKeepsNames(t *testing.T) {
	source := &stubSource{batch: makeBatch(2)}
	notifier := &recordingNotifier{}
	controller := newController(source, notifier)

	controller.StartTwoPlayerSetup()
	if err := controller.StartTwoPlayerQuiz(context.Background(), "Alice", "Bob"); err != nil {
		t.Fatalf("start pvp: %v", err)
	}

	controller.GoHome()
	if controller.View() != domain.ViewSetup {
		t.Fatalf("expected setup view, got %s", controller.View())
	}
	if turn := controller.Turn(); turn.PlayerName != "Alice" {
		t.Fatalf("expected names retained after GoHome, got %+v", turn)
	}

	controller.PlayAgain()
	if controller.View() != domain.ViewSetup {
		t.Fatalf("expected setup view, got %s", controller.View())
	}
	if turn := controller.Turn(); turn.PvP {
		t.Fatalf("expected cleared session after PlayAgain, got %+v", turn)
	}
	if _, err := controller.CurrentQuestion(); !errors.Is(err, domain.ErrNoBatch) {
		t.Fatalf("expected ErrNoBatch after PlayAgain, got %v", err)
	}
}

func TestLoadCategoriesFailureNotifiesOnce(t *testing.T) {
	source := &stubSource{catErr: fmt.Errorf("boom")}
	notifier := &recordingNotifier{}
	controller := newController(source, notifier)

	if categories := controller.LoadCategories(context.Background()); categories != nil {
		t.Fatalf("expected nil categories, got %v", categories)
	}
	if len(notifier.messages) != 1 || notifier.lastTitle() != "Error" {
		t.Fatalf("expected a single Error notice, got %v", notifier.messages)
	}
}

package app

import (
	"html"
	"math/rand"
	"time"

	"trivia-quiz-service/internal/domain"
)

// QuizEngine runs exactly one pass over a question batch, one question at a
// time with immediate feedback. It performs no I/O; the SessionController
// owns its lifecycle.
type QuizEngine struct {
	batch    []domain.Question
	index    int
	score    int
	selected *string
	revealed bool
	correct  bool
	rnd      *rand.Rand
}

// QuestionView is the presentation form of the current question: decoded
// prompt and the shuffled union of correct and incorrect answers.
type QuestionView struct {
	Number  int      `json:"number"` // 1-based
	Total   int      `json:"total"`
	Prompt  string   `json:"prompt"`
	Answers []string `json:"answers"`
}

// AnswerFeedback reports the locked-in outcome for the current question.
type AnswerFeedback struct {
	Choice        string `json:"choice"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
	Score         int    `json:"score"`
}

// NewQuizEngine builds an engine over a non-empty batch.
func NewQuizEngine(batch []domain.Question) *QuizEngine {
	return newQuizEngineWithRand(batch, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// newQuizEngineWithRand allows deterministic shuffles in tests.
func newQuizEngineWithRand(batch []domain.Question, rnd *rand.Rand) *QuizEngine {
	return &QuizEngine{batch: batch, rnd: rnd}
}

// Current presents the active question. The answer set is freshly permuted
// on every call with a uniform Fisher-Yates shuffle.
func (e *QuizEngine) Current() (QuestionView, error) {
	if len(e.batch) == 0 {
		return QuestionView{}, domain.ErrNoBatch
	}
	if e.index >= len(e.batch) {
		return QuestionView{}, domain.ErrQuizFinished
	}

	q := e.batch[e.index]
	answers := make([]string, 0, len(q.IncorrectAnswers)+1)
	for _, a := range q.IncorrectAnswers {
		answers = append(answers, html.UnescapeString(a))
	}
	answers = append(answers, html.UnescapeString(q.CorrectAnswer))
	for i := len(answers) - 1; i > 0; i-- {
		j := e.rnd.Intn(i + 1)
		answers[i], answers[j] = answers[j], answers[i]
	}

	return QuestionView{
		Number:  e.index + 1,
		Total:   len(e.batch),
		Prompt:  html.UnescapeString(q.Prompt),
		Answers: answers,
	}, nil
}

// Submit locks in choice for the current question. A second call for the
// same question is a silent no-op that returns the first recorded outcome.
// Comparison is a case-sensitive exact match on decoded text.
func (e *QuizEngine) Submit(choice string) (AnswerFeedback, error) {
	if len(e.batch) == 0 {
		return AnswerFeedback{}, domain.ErrNoBatch
	}
	if e.index >= len(e.batch) {
		return AnswerFeedback{}, domain.ErrQuizFinished
	}

	correctAnswer := html.UnescapeString(e.batch[e.index].CorrectAnswer)
	if e.revealed {
		return AnswerFeedback{
			Choice:        *e.selected,
			Correct:       e.correct,
			CorrectAnswer: correctAnswer,
			Score:         e.score,
		}, nil
	}

	e.selected = &choice
	e.correct = choice == correctAnswer
	e.revealed = true
	if e.correct {
		e.score++
	}
	return AnswerFeedback{
		Choice:        choice,
		Correct:       e.correct,
		CorrectAnswer: correctAnswer,
		Score:         e.score,
	}, nil
}

// Advance moves to the next question, or finalizes the run and returns the
// cumulative score when the batch is exhausted. It is only valid after
// Submit has been called for the current question.
func (e *QuizEngine) Advance() (finished bool, score int, err error) {
	if len(e.batch) == 0 {
		return false, 0, domain.ErrNoBatch
	}
	if e.index >= len(e.batch) {
		return false, 0, domain.ErrQuizFinished
	}
	if !e.revealed {
		return false, 0, domain.ErrAnswerRequired
	}

	e.selected = nil
	e.revealed = false
	e.correct = false
	e.index++
	if e.index < len(e.batch) {
		return false, e.score, nil
	}
	return true, e.score, nil
}

// Reset rewinds the engine to the start of the same batch with a zero score.
// Used for the second player's turn over identical questions.
func (e *QuizEngine) Reset() {
	e.index = 0
	e.score = 0
	e.selected = nil
	e.revealed = false
	e.correct = false
}

// Score returns the cumulative score so far.
func (e *QuizEngine) Score() int { return e.score }

// Answered reports whether the current question has a locked-in answer.
func (e *QuizEngine) Answered() bool { return e.revealed }

package domain

import "errors"

var (
	// ErrNoResults indicates a valid question request matched zero questions.
	// It is an outcome, not a failure; callers stay on the originating view.
	ErrNoResults = errors.New("no questions for the selected criteria")
	// ErrFetchFailed indicates a network failure or an unexpected response
	// code from the question API.
	ErrFetchFailed = errors.New("question fetch failed")
	// ErrInvalidAmount is returned when the requested amount is outside [1,50].
	ErrInvalidAmount = errors.New("amount must be between 1 and 50")
	// ErrNamesRequired is returned when a two-player game is started without
	// both player names.
	ErrNamesRequired = errors.New("both player names are required")
	// ErrNameRequired is returned when a score is submitted without a name.
	ErrNameRequired = errors.New("player name is required")
	// ErrBackendUnavailable indicates the leaderboard backend is not
	// configured or the identity subsystem is not ready yet.
	ErrBackendUnavailable = errors.New("leaderboard backend unavailable")
	// ErrNoBatch indicates a quiz operation was attempted without an active
	// question batch.
	ErrNoBatch = errors.New("no active question batch")
	// ErrAnswerRequired indicates Advance was called before an answer was
	// submitted for the current question.
	ErrAnswerRequired = errors.New("current question has no submitted answer")
	// ErrQuizFinished indicates the batch is already exhausted.
	ErrQuizFinished = errors.New("quiz already finished")
	// ErrWrongView indicates an operation that is invalid for the active view.
	ErrWrongView = errors.New("operation not valid for the current view")
	// ErrAlreadySubmitted indicates a score was already submitted for this run.
	ErrAlreadySubmitted = errors.New("score already submitted for this run")
)

package domain

import "time"

// Category is one entry of the trivia API's category listing.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Question is a single multiple-choice question as fetched from the trivia
// API. Text fields may contain HTML entities; they are stored as-fetched and
// decoded at presentation time.
type Question struct {
	Category         string   `json:"category"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Prompt           string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// PlayerScore is one player's final result for a quiz run.
type PlayerScore struct {
	Name           string `json:"name"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
}

// LeaderboardEntry is one immutable score record. SubmittedAt is assigned by
// the store on submission and is monotonic per submission.
type LeaderboardEntry struct {
	ID             string    `json:"id"`
	PlayerName     string    `json:"playerName"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	SubmittedAt    time.Time `json:"submittedAt"`
	UserID         string    `json:"userId"`
}

// Message is a user-facing notification. Only one message is pending at a
// time; a newer message replaces the previous one.
type Message struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// View identifies the active screen of a quiz session.
type View string

const (
	ViewSetup       View = "setup"
	ViewQuiz        View = "quiz"
	ViewResults     View = "results"
	ViewLeaderboard View = "leaderboard"
	ViewPvPSetup    View = "pvp_setup"
)

// Turn designates which player is answering the active batch.
type Turn int

const (
	TurnNone Turn = iota
	TurnPlayer1
	TurnPlayer2
)

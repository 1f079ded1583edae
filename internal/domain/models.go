package domain

import "time"

// QuizSize is the fixed length of a finished quiz.
const QuizSize = 10

// OptionCount is the number of answer options every question carries.
const OptionCount = 4

// DefaultTrapCount is the number of adversarial questions injected per quiz
// unless the caller asks for a different count.
const DefaultTrapCount = 2

// DefaultCategory labels bank questions that carry no category of their own.
const DefaultCategory = "general"

// Kind marks the provenance of a question.
type Kind string

const (
	// KindSafe marks a question sourced from the vetted static bank.
	KindSafe Kind = "safe"
	// KindTrap marks a generated question with a deliberate, detectable flaw.
	KindTrap Kind = "trap"
)

// Question is the canonical quiz unit: a prompt with exactly four distinct
// options, one of which is the answer.
type Question struct {
	ID          string   `json:"id,omitempty"`
	Text        string   `json:"text"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
	Category    string   `json:"category,omitempty"`
	Kind        Kind     `json:"kind"`
}

// QuizRequest carries the caller's assembly parameters. Exclusions are
// session state owned by the caller; the service never persists them.
type QuizRequest struct {
	ExcludeIDs   []string `json:"playedIds,omitempty"`
	ExcludeTexts []string `json:"playedTexts,omitempty"`
	TrapCount    int      `json:"trapCount,omitempty"`
}

// LeaderboardEntry is one ranked row of the score board.
type LeaderboardEntry struct {
	Pseudo string  `json:"pseudo"`
	Score  float64 `json:"score"`
}

// GameResult records a finished game, including trap-vigilance stats.
type GameResult struct {
	ID             string    `json:"id,omitempty"`
	Name           string    `json:"name"`
	Score          int       `json:"score"`
	Total          int       `json:"total"`
	Vigilance      int       `json:"vigilance"`
	TotalTraps     int       `json:"totalTraps"`
	Duration       int       `json:"duration"`
	TrapDetections []string  `json:"trapDetections,omitempty"`
	Date           time.Time `json:"date"`
}

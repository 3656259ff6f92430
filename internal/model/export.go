package model

import "time"

// ResultRow is one finalized attempt flattened for the tabular sink:
// student identity, attempt timestamps, score, and the selected option
// for every answered question keyed by question ID.
type ResultRow struct {
	RollNo     string           `json:"roll_no"`
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	AttemptID  int64            `json:"attempt_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
	Score      *int             `json:"score,omitempty"`
	ExportedAt time.Time        `json:"exported_at"`
	Answers    map[int64]string `json:"answers"`
}

// ResultSummary is one row of the admin results listing.
type ResultSummary struct {
	AttemptID  int64      `json:"attempt_id"`
	RollNo     string     `json:"roll_no"`
	Name       string     `json:"name"`
	Score      *int       `json:"score,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Duration   string     `json:"duration,omitempty"`
}

// AnswerVerdict classifies one answer on the admin detail view.
type AnswerVerdict string

const (
	VerdictCorrect AnswerVerdict = "Correct"
	VerdictWrong   AnswerVerdict = "Wrong"
	VerdictSkipped AnswerVerdict = "Skipped"
)

// AnswerDetail is one per-question line of the admin detail view.
type AnswerDetail struct {
	QuestionID int64         `json:"question_id"`
	Question   string        `json:"question"`
	Correct    string        `json:"correct"`
	Selected   string        `json:"selected"`
	Verdict    AnswerVerdict `json:"status"`
}

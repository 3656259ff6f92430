package model

import (
	"time"
)

// OptionLabels are the valid choices for a multiple-choice question.
var OptionLabels = []string{"A", "B", "C", "D"}

// ValidOption reports whether label names one of the four options.
func ValidOption(label string) bool {
	for _, l := range OptionLabels {
		if label == l {
			return true
		}
	}
	return false
}

// Student is an exam candidate. Records are created by the roster import,
// never during an exam; RollNo is unique and immutable.
type Student struct {
	ID           int64     `json:"id"`
	RollNo       string    `json:"roll_no"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Question is one multiple-choice question in the catalog.
type Question struct {
	ID              int64  `json:"id"`
	Text            string `json:"text"`
	OptA            string `json:"opt_a"`
	OptB            string `json:"opt_b"`
	OptC            string `json:"opt_c"`
	OptD            string `json:"opt_d"`
	Correct         string `json:"correct"` // one of A, B, C, D
	PerQuestionTime int    `json:"per_question_time"`
	OrderIndex      int    `json:"order_index"`
}

// Option returns the text of the option with the given label, or "".
func (q Question) Option(label string) string {
	switch label {
	case "A":
		return q.OptA
	case "B":
		return q.OptB
	case "C":
		return q.OptC
	case "D":
		return q.OptD
	}
	return ""
}

// Attempt is a student's single exam-taking session. FinishedAt and Score
// stay nil until the attempt is finalized, then are set together exactly once.
type Attempt struct {
	ID         int64      `json:"id"`
	StudentID  int64      `json:"student_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Score      *int       `json:"score,omitempty"`
}

// Finalized reports whether the attempt has left the open state.
func (a Attempt) Finalized() bool {
	return a.FinishedAt != nil
}

// Answer is one selected option recorded for an (attempt, question) pair.
// An empty Selected means the question was skipped.
type Answer struct {
	ID         int64     `json:"id"`
	AttemptID  int64     `json:"attempt_id"`
	QuestionID int64     `json:"question_id"`
	Selected   string    `json:"selected"`
	AnsweredAt time.Time `json:"answered_at"`
}

// AuthSession is a bearer token for an authenticated administrator.
type AuthSession struct {
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// CatalogQuestion is the question shape served to exam clients.
// The correct option is never included.
type CatalogQuestion struct {
	ID              int64             `json:"id"`
	Text            string            `json:"text"`
	Options         map[string]string `json:"options"`
	PerQuestionTime int               `json:"per_question_time"`
}

// Catalog is the question delivery payload: ordered questions plus the
// total time budget used by the client to size the exam timer.
type Catalog struct {
	Questions []CatalogQuestion `json:"questions"`
	TotalTime int               `json:"total_time"`
}

// CatalogFromQuestions builds the client payload from ordered questions.
func CatalogFromQuestions(qs []Question) Catalog {
	c := Catalog{Questions: []CatalogQuestion{}}
	for _, q := range qs {
		c.Questions = append(c.Questions, CatalogQuestion{
			ID:   q.ID,
			Text: q.Text,
			Options: map[string]string{
				"A": q.OptA, "B": q.OptB, "C": q.OptC, "D": q.OptD,
			},
			PerQuestionTime: q.PerQuestionTime,
		})
		c.TotalTime += q.PerQuestionTime
	}
	return c
}

// QuestionImport is the shape accepted when loading questions from JSON.
type QuestionImport struct {
	Text            string `json:"text"`
	OptA            string `json:"opt_a"`
	OptB            string `json:"opt_b"`
	OptC            string `json:"opt_c"`
	OptD            string `json:"opt_d"`
	Correct         string `json:"correct"`
	PerQuestionTime int    `json:"per_question_time"`
	OrderIndex      int    `json:"order_index"`
}

// ServerConfig holds runtime parameters set via CLI flags.
type ServerConfig struct {
	Addr        string
	ResultsPath string // CSV sink for finalized attempts
	SessionTTL  time.Duration
}

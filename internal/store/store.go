package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/model"

	_ "modernc.org/sqlite"
)

// Sentinel errors surfaced by the store. Handlers translate these into
// client-visible statuses.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyAttempted   = errors.New("attempt already exists for student")
	ErrAlreadyFinalized   = errors.New("attempt already finalized")
)

type Store struct {
	db *sql.DB

	// now is the clock used for every timestamp the store assigns.
	// Tests replace it to get deterministic times.
	now func() time.Time
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SetClock replaces the store's time source.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Now returns the current time from the store's clock.
func (s *Store) Now() time.Time {
	return s.now()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS students (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		roll_no TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		opt_a TEXT NOT NULL DEFAULT '',
		opt_b TEXT NOT NULL DEFAULT '',
		opt_c TEXT NOT NULL DEFAULT '',
		opt_d TEXT NOT NULL DEFAULT '',
		correct TEXT NOT NULL CHECK (correct IN ('A','B','C','D')),
		per_question_time INTEGER NOT NULL DEFAULT 30,
		order_index INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER NOT NULL UNIQUE,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		score INTEGER,
		FOREIGN KEY (student_id) REFERENCES students(id)
	);

	CREATE TABLE IF NOT EXISTS answers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		attempt_id INTEGER NOT NULL,
		question_id INTEGER NOT NULL,
		selected TEXT NOT NULL DEFAULT '',
		answered_at DATETIME NOT NULL,
		FOREIGN KEY (attempt_id) REFERENCES attempts(id)
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS exam_metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// InsertQuestion stores a question. The correct label is normalized to
// upper case before the CHECK constraint sees it.
func (s *Store) InsertQuestion(q model.Question) (int64, error) {
	if q.PerQuestionTime <= 0 {
		q.PerQuestionTime = 30
	}
	res, err := s.db.Exec(
		`INSERT INTO questions (text, opt_a, opt_b, opt_c, opt_d, correct, per_question_time, order_index)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		q.Text, q.OptA, q.OptB, q.OptC, q.OptD, strings.ToUpper(q.Correct), q.PerQuestionTime, q.OrderIndex,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListQuestionsOrdered returns the full catalog sorted by order_index,
// ties broken by ID so the ordering is stable.
func (s *Store) ListQuestionsOrdered() ([]model.Question, error) {
	rows, err := s.db.Query(
		`SELECT id, text, opt_a, opt_b, opt_c, opt_d, correct, per_question_time, order_index
		 FROM questions ORDER BY order_index ASC, id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.OptA, &q.OptB, &q.OptC, &q.OptD, &q.Correct, &q.PerQuestionTime, &q.OrderIndex); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetQuestion returns a question by ID.
func (s *Store) GetQuestion(id int64) (model.Question, error) {
	var q model.Question
	err := s.db.QueryRow(
		`SELECT id, text, opt_a, opt_b, opt_c, opt_d, correct, per_question_time, order_index
		 FROM questions WHERE id = ?`, id,
	).Scan(&q.ID, &q.Text, &q.OptA, &q.OptB, &q.OptC, &q.OptD, &q.Correct, &q.PerQuestionTime, &q.OrderIndex)
	if err == sql.ErrNoRows {
		return q, ErrNotFound
	}
	return q, err
}

// DeleteQuestion removes a question from the catalog. Answers referencing
// it stay in the log and score zero from then on.
func (s *Store) DeleteQuestion(id int64) error {
	res, err := s.db.Exec(`DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// TotalTime returns the sum of per-question time budgets across the catalog.
func (s *Store) TotalTime() (int, error) {
	var total int
	err := s.db.QueryRow(`SELECT COALESCE(SUM(per_question_time), 0) FROM questions`).Scan(&total)
	return total, err
}

// QuestionCount returns the number of questions in the catalog.
func (s *Store) QuestionCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM questions`).Scan(&count)
	return count, err
}

// QuestionsByID returns the catalog keyed by question ID, for scoring.
func (s *Store) QuestionsByID() (map[int64]model.Question, error) {
	qs, err := s.ListQuestionsOrdered()
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.Question, len(qs))
	for _, q := range qs {
		byID[q.ID] = q
	}
	return byID, nil
}

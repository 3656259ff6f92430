package store

import (
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/model"
)

// CreateAttempt records the start of a student's one and only exam attempt.
// The UNIQUE constraint on student_id makes the existence check and the
// insert a single atomic step: concurrent entries by the same student
// cannot both succeed, and a prior attempt blocks entry whether or not it
// was ever finished.
func (s *Store) CreateAttempt(studentID int64) (model.Attempt, error) {
	started := s.now()
	res, err := s.db.Exec(
		`INSERT INTO attempts (student_id, started_at) VALUES (?, ?)`,
		studentID, started,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return model.Attempt{}, ErrAlreadyAttempted
		}
		slog.Error("failed to create attempt", "student_id", studentID, "error", err)
		return model.Attempt{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Attempt{}, err
	}
	slog.Info("created attempt", "id", id, "student_id", studentID)
	return model.Attempt{ID: id, StudentID: studentID, StartedAt: started}, nil
}

// GetAttempt returns an attempt by ID.
func (s *Store) GetAttempt(id int64) (model.Attempt, error) {
	var a model.Attempt
	err := s.db.QueryRow(
		`SELECT id, student_id, started_at, finished_at, score FROM attempts WHERE id = ?`, id,
	).Scan(&a.ID, &a.StudentID, &a.StartedAt, &a.FinishedAt, &a.Score)
	if err == sql.ErrNoRows {
		return a, ErrNotFound
	}
	return a, err
}

// GetAttemptForStudent returns the student's attempt, if any.
func (s *Store) GetAttemptForStudent(studentID int64) (model.Attempt, error) {
	var a model.Attempt
	err := s.db.QueryRow(
		`SELECT id, student_id, started_at, finished_at, score FROM attempts WHERE student_id = ?`, studentID,
	).Scan(&a.ID, &a.StudentID, &a.StartedAt, &a.FinishedAt, &a.Score)
	if err == sql.ErrNoRows {
		return a, ErrNotFound
	}
	return a, err
}

// FinalizeAttempt sets the finish timestamp and score together, exactly
// once. The condition on finished_at makes the transition safe under
// client retries: a second call affects zero rows and reports
// ErrAlreadyFinalized without touching the stored score.
func (s *Store) FinalizeAttempt(id int64, finish time.Time, score int) (model.Attempt, error) {
	res, err := s.db.Exec(
		`UPDATE attempts SET finished_at = ?, score = ? WHERE id = ? AND finished_at IS NULL`,
		finish, score, id,
	)
	if err != nil {
		return model.Attempt{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Attempt{}, err
	}
	if n == 0 {
		a, err := s.GetAttempt(id)
		if err != nil {
			return model.Attempt{}, err
		}
		return a, ErrAlreadyFinalized
	}
	slog.Info("finalized attempt", "id", id, "score", score)
	return s.GetAttempt(id)
}

// ListAttempts returns all attempts, most recent first.
func (s *Store) ListAttempts() ([]model.Attempt, error) {
	rows, err := s.db.Query(
		`SELECT id, student_id, started_at, finished_at, score FROM attempts ORDER BY id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(&a.ID, &a.StudentID, &a.StartedAt, &a.FinishedAt, &a.Score); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// ResetAttempt deletes an attempt and its answers. Administrative use only;
// it hands the student back their one-time entry right.
func (s *Store) ResetAttempt(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM answers WHERE attempt_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.Exec(`DELETE FROM attempts WHERE id = ?`, id)
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
	return tx.Commit()
}

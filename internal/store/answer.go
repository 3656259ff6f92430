package store

import (
	"log/slog"
	"strconv"

	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/model"
)

// RecordAnswers persists one answer row per submitted entry. Keys that do
// not parse as question IDs are skipped, not treated as errors. Returns
// the number of rows inserted. The rows stay durable regardless of what
// happens to the attempt afterwards.
func (s *Store) RecordAnswers(attemptID int64, selections map[string]string) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := s.now()
	count := 0
	for key, selected := range selections {
		qid, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			slog.Debug("skipping malformed question key", "attempt_id", attemptID, "key", key)
			continue
		}
		if _, err := tx.Exec(
			`INSERT INTO answers (attempt_id, question_id, selected, answered_at) VALUES (?, ?, ?, ?)`,
			attemptID, qid, selected, now,
		); err != nil {
			return 0, err
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

// AnswersForAttempt returns all answers recorded for one attempt.
func (s *Store) AnswersForAttempt(attemptID int64) ([]model.Answer, error) {
	rows, err := s.db.Query(
		`SELECT id, attempt_id, question_id, selected, answered_at FROM answers WHERE attempt_id = ? ORDER BY id`,
		attemptID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.ID, &a.AttemptID, &a.QuestionID, &a.Selected, &a.AnsweredAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

package store

import (
	"fmt"

	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/model"
)

// BuildResultRow flattens one attempt into the tabular export shape:
// student identity, timestamps, score, and one entry per answered question.
// When the same question was answered more than once the last recorded
// selection wins.
func (s *Store) BuildResultRow(attemptID int64) (model.ResultRow, error) {
	att, err := s.GetAttempt(attemptID)
	if err != nil {
		return model.ResultRow{}, fmt.Errorf("get attempt %d: %w", attemptID, err)
	}
	student, err := s.GetStudentByID(att.StudentID)
	if err != nil {
		return model.ResultRow{}, fmt.Errorf("get student %d: %w", att.StudentID, err)
	}
	answers, err := s.AnswersForAttempt(attemptID)
	if err != nil {
		return model.ResultRow{}, fmt.Errorf("answers for attempt %d: %w", attemptID, err)
	}

	selected := make(map[int64]string, len(answers))
	for _, a := range answers {
		selected[a.QuestionID] = a.Selected
	}

	return model.ResultRow{
		RollNo:     student.RollNo,
		Name:       student.Name,
		Email:      student.Email,
		AttemptID:  att.ID,
		StartedAt:  att.StartedAt,
		FinishedAt: att.FinishedAt,
		Score:      att.Score,
		ExportedAt: s.now(),
		Answers:    selected,
	}, nil
}

// BuildAllResultRows flattens every attempt, most recent first.
func (s *Store) BuildAllResultRows() ([]model.ResultRow, error) {
	attempts, err := s.ListAttempts()
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	var rows []model.ResultRow
	for _, att := range attempts {
		row, err := s.BuildResultRow(att.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ListResultSummaries builds the admin results listing, most recent first.
func (s *Store) ListResultSummaries() ([]model.ResultSummary, error) {
	attempts, err := s.ListAttempts()
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	var results []model.ResultSummary
	for _, att := range attempts {
		student, err := s.GetStudentByID(att.StudentID)
		if err != nil {
			return nil, fmt.Errorf("get student %d: %w", att.StudentID, err)
		}
		summary := model.ResultSummary{
			AttemptID:  att.ID,
			RollNo:     student.RollNo,
			Name:       student.Name,
			Score:      att.Score,
			StartedAt:  att.StartedAt,
			FinishedAt: att.FinishedAt,
		}
		if att.FinishedAt != nil {
			summary.Duration = att.FinishedAt.Sub(att.StartedAt).String()
		}
		results = append(results, summary)
	}
	return results, nil
}

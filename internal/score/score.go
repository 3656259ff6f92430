// Package score computes exam scores from recorded answers.
// It is pure: the same answers and catalog always produce the same result.
package score

import (
	"strings"

	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/model"
)

// Tally counts correct answers. An answer is correct when its selected
// option matches the question's correct option ignoring case. A skipped
// answer (empty selection) never matches, even against an empty correct
// label. An answer whose question no longer exists in the catalog counts
// zero. When several answers target the same question, the last recorded
// selection is the one scored; a question never earns more than one point.
func Tally(answers []model.Answer, questions map[int64]model.Question) int {
	selected := make(map[int64]string, len(answers))
	for _, a := range answers {
		selected[a.QuestionID] = a.Selected
	}

	total := 0
	for qid, sel := range selected {
		if sel == "" {
			continue
		}
		q, ok := questions[qid]
		if !ok {
			continue
		}
		if strings.EqualFold(sel, q.Correct) {
			total++
		}
	}
	return total
}

// Verdict classifies one answer for the admin detail view.
func Verdict(selected, correct string) model.AnswerVerdict {
	if selected == "" {
		return model.VerdictSkipped
	}
	if strings.EqualFold(selected, correct) {
		return model.VerdictCorrect
	}
	return model.VerdictWrong
}

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/model"
	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/score"
	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/store"
)

// handleResults lists all attempts, most recent first, with student
// identity and duration.
func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.store.ListResultSummaries()
	if err != nil {
		slog.Error("list results failed", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
		return
	}
	if results == nil {
		results = []model.ResultSummary{}
	}
	h.respondJSON(w, http.StatusOK, results)
}

type resultDetailResponse struct {
	Attempt model.Attempt        `json:"attempt"`
	Student model.Student        `json:"student"`
	Answers []model.AnswerDetail `json:"answers"`
}

// handleResultDetail shows one attempt's answers with per-question
// verdicts. A question deleted after being answered is reported with
// empty text and a verdict computed against an empty correct label.
func (h *Handler) handleResultDetail(w http.ResponseWriter, r *http.Request) {
	attemptID, err := strconv.ParseInt(chi.URLParam(r, "attemptID"), 10, 64)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid_request", "")
		return
	}

	attempt, err := h.store.GetAttempt(attemptID)
	if errors.Is(err, store.ErrNotFound) {
		h.respondError(w, r, http.StatusNotFound, "attempt_not_found", "")
		return
	}
	if err != nil {
		slog.Error("get attempt failed", "attempt_id", attemptID, "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
		return
	}

	student, err := h.store.GetStudentByID(attempt.StudentID)
	if err != nil {
		slog.Error("get student failed", "student_id", attempt.StudentID, "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
		return
	}
	answers, err := h.store.AnswersForAttempt(attemptID)
	if err != nil {
		slog.Error("read answers failed", "attempt_id", attemptID, "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
		return
	}
	questions, err := h.store.QuestionsByID()
	if err != nil {
		slog.Error("load catalog failed", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
		return
	}

	details := []model.AnswerDetail{}
	for _, a := range answers {
		q := questions[a.QuestionID]
		details = append(details, model.AnswerDetail{
			QuestionID: a.QuestionID,
			Question:   q.Text,
			Correct:    q.Correct,
			Selected:   a.Selected,
			Verdict:    score.Verdict(a.Selected, q.Correct),
		})
	}

	h.respondJSON(w, http.StatusOK, resultDetailResponse{
		Attempt: attempt,
		Student: student,
		Answers: details,
	})
}

func (h *Handler) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.store.ListQuestionsOrdered()
	if err != nil {
		slog.Error("list questions failed", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
		return
	}
	if questions == nil {
		questions = []model.Question{}
	}
	h.respondJSON(w, http.StatusOK, questions)
}

// handleAddQuestion inserts a question into the catalog.
func (h *Handler) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	var qi model.QuestionImport
	if err := json.NewDecoder(r.Body).Decode(&qi); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid_request", "")
		return
	}
	if qi.Text == "" || !model.ValidOption(qi.Correct) {
		h.respondError(w, r, http.StatusBadRequest, "invalid_question", "")
		return
	}

	id, err := h.store.InsertQuestion(model.Question{
		Text:            qi.Text,
		OptA:            qi.OptA,
		OptB:            qi.OptB,
		OptC:            qi.OptC,
		OptD:            qi.OptD,
		Correct:         qi.Correct,
		PerQuestionTime: qi.PerQuestionTime,
		OrderIndex:      qi.OrderIndex,
	})
	if err != nil {
		slog.Error("insert question failed", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]any{"status": "ok", "id": id})
}

func (h *Handler) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "questionID"), 10, 64)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid_request", "")
		return
	}
	if err := h.store.DeleteQuestion(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, r, http.StatusNotFound, "question_not_found", "")
			return
		}
		slog.Error("delete question failed", "id", id, "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.store.ListStudents()
	if err != nil {
		slog.Error("list students failed", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
		return
	}
	if students == nil {
		students = []model.Student{}
	}
	h.respondJSON(w, http.StatusOK, students)
}

// handleResetAttempt deletes an attempt and its answers, restoring the
// student's entry right. Administrative escape hatch only.
func (h *Handler) handleResetAttempt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "attemptID"), 10, 64)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid_request", "")
		return
	}
	if err := h.store.ResetAttempt(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, r, http.StatusNotFound, "attempt_not_found", "")
			return
		}
		slog.Error("reset attempt failed", "id", id, "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
		return
	}
	slog.Info("reset attempt", "id", id)
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

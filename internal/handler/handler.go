package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	appI18n "github.com/shravyanakshatri-a11y/Online-exam-tool/internal/i18n"
	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/model"
	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/score"
	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/store"
)

// ResultExporter mirrors finalized attempts into the external sink.
type ResultExporter interface {
	Export(attemptID int64) error
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	exporter ResultExporter
	config   model.ServerConfig
}

// New creates a new Handler.
func New(s *store.Store, e ResultExporter, cfg model.ServerConfig) *Handler {
	return &Handler{store: s, exporter: e, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/login", h.handleLogin)
	r.Get("/api/questions", h.handleQuestions)
	r.Post("/api/submit", h.handleSubmit)

	r.Post("/api/admin/login", h.handleAdminLogin)
	r.Group(func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Post("/api/admin/logout", h.handleAdminLogout)
		r.Get("/api/admin/results", h.handleResults)
		r.Get("/api/admin/results/{attemptID}", h.handleResultDetail)
		r.Get("/api/admin/questions", h.handleListQuestions)
		r.Post("/api/admin/questions", h.handleAddQuestion)
		r.Delete("/api/admin/questions/{questionID}", h.handleDeleteQuestion)
		r.Get("/api/admin/students", h.handleListStudents)
		r.Delete("/api/admin/attempts/{attemptID}", h.handleResetAttempt)
	})
}

type loginRequest struct {
	RollNo   string `json:"roll_no"`
	Password string `json:"password"`
}

type loginResponse struct {
	Status    string `json:"status"`
	AttemptID int64  `json:"attempt_id"`
	Name      string `json:"name"`
}

// handleLogin authenticates a student and passes the entry gate: the
// attempt is created here, so logging in consumes the one-time exam right.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid_request", appI18n.T(r.Context(), "InvalidRequest"))
		return
	}

	student, err := h.store.Authenticate(req.RollNo, req.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		h.respondError(w, r, http.StatusUnauthorized, "invalid_credentials", appI18n.T(r.Context(), "InvalidCredentials"))
		return
	}
	if err != nil {
		slog.Error("authenticate failed", "roll_no", req.RollNo, "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
		return
	}

	attempt, err := h.store.CreateAttempt(student.ID)
	if errors.Is(err, store.ErrAlreadyAttempted) {
		msg := appI18n.Td(r.Context(), "AlreadyAttempted", map[string]any{"Name": student.Name})
		h.respondError(w, r, http.StatusConflict, "already_attempted", msg)
		return
	}
	if err != nil {
		slog.Error("create attempt failed", "student_id", student.ID, "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
		return
	}

	h.respondJSON(w, http.StatusOK, loginResponse{
		Status:    "ok",
		AttemptID: attempt.ID,
		Name:      student.Name,
	})
}

// handleQuestions serves the ordered catalog with per-question and total
// time budgets. Correct options are never part of the payload.
func (h *Handler) handleQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.store.ListQuestionsOrdered()
	if err != nil {
		slog.Error("list questions failed", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
		return
	}
	h.respondJSON(w, http.StatusOK, model.CatalogFromQuestions(questions))
}

type submitRequest struct {
	AttemptID int64             `json:"attempt_id"`
	Answers   map[string]string `json:"answers"`
}

// handleSubmit runs the finalize pipeline: persist answers, compute the
// score over what was persisted, and commit finish time plus score in one
// conditional update. The export mirror runs afterwards in the background
// and never affects the response.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid_request", appI18n.T(r.Context(), "InvalidRequest"))
		return
	}

	attempt, err := h.store.GetAttempt(req.AttemptID)
	if errors.Is(err, store.ErrNotFound) {
		h.respondError(w, r, http.StatusNotFound, "attempt_not_found", appI18n.T(r.Context(), "AttemptNotFound"))
		return
	}
	if err != nil {
		slog.Error("get attempt failed", "attempt_id", req.AttemptID, "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
		return
	}
	if attempt.Finalized() {
		// Client retry after a committed submission: refuse before
		// recording anything so the stored score stays untouched.
		h.respondError(w, r, http.StatusConflict, "already_finalized", appI18n.T(r.Context(), "AlreadyFinalized"))
		return
	}

	count, err := h.store.RecordAnswers(attempt.ID, req.Answers)
	if err != nil {
		slog.Error("record answers failed", "attempt_id", attempt.ID, "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
		return
	}
	slog.Info("recorded answers", "attempt_id", attempt.ID, "count", count)

	answers, err := h.store.AnswersForAttempt(attempt.ID)
	if err != nil {
		slog.Error("read answers failed", "attempt_id", attempt.ID, "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
		return
	}
	questions, err := h.store.QuestionsByID()
	if err != nil {
		slog.Error("load catalog failed", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
		return
	}

	total := score.Tally(answers, questions)

	if _, err := h.store.FinalizeAttempt(attempt.ID, h.store.Now(), total); err != nil {
		if errors.Is(err, store.ErrAlreadyFinalized) {
			h.respondError(w, r, http.StatusConflict, "already_finalized", appI18n.T(r.Context(), "AlreadyFinalized"))
			return
		}
		slog.Error("finalize failed", "attempt_id", attempt.ID, "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "internal_error", "")
		return
	}

	go func(attemptID int64) {
		if err := h.exporter.Export(attemptID); err != nil {
			slog.Error("result export failed", "attempt_id", attemptID, "error", err)
		}
	}(attempt.ID)

	h.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": appI18n.T(r.Context(), "SubmissionAccepted"),
	})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, _ *http.Request, status int, code, message string) {
	h.respondJSON(w, status, map[string]string{
		"status":  "error",
		"error":   code,
		"message": message,
	})
}

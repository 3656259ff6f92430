package store

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertTestQuestion(t *testing.T, s *Store, text, correct string, orderIndex int) int64 {
	t.Helper()
	id, err := s.InsertQuestion(model.Question{
		Text:            text,
		OptA:            "option a",
		OptB:            "option b",
		OptC:            "option c",
		OptD:            "option d",
		Correct:         correct,
		PerQuestionTime: 30,
		OrderIndex:      orderIndex,
	})
	if err != nil {
		t.Fatalf("insertTestQuestion: %v", err)
	}
	return id
}

func insertTestStudent(t *testing.T, s *Store, rollNo, password string) int64 {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := s.UpsertStudent(model.Student{
		RollNo:       rollNo,
		Name:         "Student " + rollNo,
		Email:        rollNo + "@example.com",
		PasswordHash: string(hash),
	}); err != nil {
		t.Fatalf("insertTestStudent: %v", err)
	}
	st, err := s.GetStudentByRoll(rollNo)
	if err != nil {
		t.Fatalf("GetStudentByRoll: %v", err)
	}
	return st.ID
}

func TestCatalogOrdering(t *testing.T) {
	s := newTestStore(t)

	// Same order key: tie broken by ID ascending.
	first := insertTestQuestion(t, s, "Q first", "A", 2)
	second := insertTestQuestion(t, s, "Q second", "B", 2)
	third := insertTestQuestion(t, s, "Q third", "C", 1)

	qs, err := s.ListQuestionsOrdered()
	if err != nil {
		t.Fatalf("ListQuestionsOrdered: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(qs))
	}
	if qs[0].ID != third || qs[1].ID != first || qs[2].ID != second {
		t.Errorf("unexpected order: %d, %d, %d", qs[0].ID, qs[1].ID, qs[2].ID)
	}
}

func TestTotalTime(t *testing.T) {
	s := newTestStore(t)

	total, err := s.TotalTime()
	if err != nil {
		t.Fatalf("TotalTime: %v", err)
	}
	if total != 0 {
		t.Errorf("expected 0 for empty catalog, got %d", total)
	}

	if _, err := s.InsertQuestion(model.Question{Text: "Q1", Correct: "A", PerQuestionTime: 45}); err != nil {
		t.Fatalf("InsertQuestion: %v", err)
	}
	if _, err := s.InsertQuestion(model.Question{Text: "Q2", Correct: "B", PerQuestionTime: 15}); err != nil {
		t.Fatalf("InsertQuestion: %v", err)
	}

	total, err = s.TotalTime()
	if err != nil {
		t.Fatalf("TotalTime: %v", err)
	}
	if total != 60 {
		t.Errorf("expected total 60, got %d", total)
	}
}

func TestInsertQuestionDefaultsAndNormalization(t *testing.T) {
	s := newTestStore(t)

	id, err := s.InsertQuestion(model.Question{Text: "Q", Correct: "c"})
	if err != nil {
		t.Fatalf("InsertQuestion: %v", err)
	}
	q, err := s.GetQuestion(id)
	if err != nil {
		t.Fatalf("GetQuestion: %v", err)
	}
	if q.Correct != "C" {
		t.Errorf("expected normalized correct 'C', got %q", q.Correct)
	}
	if q.PerQuestionTime != 30 {
		t.Errorf("expected default time 30, got %d", q.PerQuestionTime)
	}
}

func TestDeleteQuestion(t *testing.T) {
	s := newTestStore(t)

	id := insertTestQuestion(t, s, "Q", "A", 0)
	if err := s.DeleteQuestion(id); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}
	if _, err := s.GetQuestion(id); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteQuestion(id); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for missing question, got %v", err)
	}
}

func TestUpsertStudent(t *testing.T) {
	s := newTestStore(t)

	created, err := s.UpsertStudent(model.Student{
		RollNo: "R001", Name: "First", Email: "f@example.com", PasswordHash: "h1",
	})
	if err != nil {
		t.Fatalf("UpsertStudent insert: %v", err)
	}
	if !created {
		t.Error("expected created=true on first upsert")
	}

	created, err = s.UpsertStudent(model.Student{
		RollNo: "R001", Name: "Updated", Email: "u@example.com", PasswordHash: "h2",
	})
	if err != nil {
		t.Fatalf("UpsertStudent update: %v", err)
	}
	if created {
		t.Error("expected created=false on second upsert")
	}

	st, err := s.GetStudentByRoll("R001")
	if err != nil {
		t.Fatalf("GetStudentByRoll: %v", err)
	}
	if st.Name != "Updated" || st.PasswordHash != "h2" {
		t.Errorf("upsert did not overwrite fields: %+v", st)
	}

	count, err := s.StudentCount()
	if err != nil {
		t.Fatalf("StudentCount: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 student, got %d", count)
	}
}

func TestAuthenticate(t *testing.T) {
	s := newTestStore(t)
	insertTestStudent(t, s, "R001", "secret")

	if _, err := s.Authenticate("R001", "secret"); err != nil {
		t.Errorf("expected successful auth, got %v", err)
	}
	if _, err := s.Authenticate("R001", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := s.Authenticate("missing", "secret"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for unknown roll, got %v", err)
	}
}

func TestClockInjection(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return fixed })

	studentID := insertTestStudent(t, s, "R001", "pw")
	att, err := s.CreateAttempt(studentID)
	if err != nil {
		t.Fatalf("CreateAttempt: %v", err)
	}
	if !att.StartedAt.Equal(fixed) {
		t.Errorf("expected started_at %v, got %v", fixed, att.StartedAt)
	}
}

func TestMetadata(t *testing.T) {
	s := newTestStore(t)

	// Missing key reads empty.
	v, err := s.GetMetadata("nope")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if v != "" {
		t.Errorf("expected empty value, got %q", v)
	}

	if err := s.SetAdminPasswordHash("hash1"); err != nil {
		t.Fatalf("SetAdminPasswordHash: %v", err)
	}
	hash, err := s.GetAdminPasswordHash()
	if err != nil {
		t.Fatalf("GetAdminPasswordHash: %v", err)
	}
	if hash != "hash1" {
		t.Errorf("expected 'hash1', got %q", hash)
	}

	if err := s.SetImportedRosterHash("roster.csv", "abc"); err != nil {
		t.Fatalf("SetImportedRosterHash: %v", err)
	}
	if err := s.SetImportedRosterHash("roster.csv", "def"); err != nil {
		t.Fatalf("SetImportedRosterHash update: %v", err)
	}
	got, err := s.GetImportedRosterHash("roster.csv")
	if err != nil {
		t.Fatalf("GetImportedRosterHash: %v", err)
	}
	if got != "def" {
		t.Errorf("expected 'def', got %q", got)
	}
}

func TestAuthSessions(t *testing.T) {
	s := newTestStore(t)

	token, err := s.CreateAuthSession()
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	sess, err := s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess == nil {
		t.Fatal("expected session, got nil")
	}

	// Unknown token.
	sess, err = s.GetAuthSession("bogus")
	if err != nil {
		t.Fatalf("GetAuthSession unknown: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for unknown token")
	}

	// Expired token is treated as missing and removed.
	s.SetClock(func() time.Time { return time.Now().Add(48 * time.Hour) })
	sess, err = s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession expired: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for expired token")
	}

	// Delete is idempotent.
	if err := s.DeleteAuthSession(token); err != nil {
		t.Errorf("DeleteAuthSession: %v", err)
	}
}

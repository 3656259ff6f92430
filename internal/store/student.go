package store

import (
	"database/sql"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/model"
)

// UpsertStudent inserts a student or, when the roll number already exists,
// overwrites the name, email and credential. Returns true when a new row
// was created.
func (s *Store) UpsertStudent(st model.Student) (bool, error) {
	existing, err := s.GetStudentByRoll(st.RollNo)
	if err != nil && err != ErrNotFound {
		return false, err
	}
	if err == ErrNotFound {
		_, err := s.db.Exec(
			`INSERT INTO students (roll_no, name, email, password_hash, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			st.RollNo, st.Name, st.Email, st.PasswordHash, s.now(),
		)
		if err != nil {
			slog.Error("failed to create student", "roll_no", st.RollNo, "error", err)
			return false, err
		}
		return true, nil
	}
	_, err = s.db.Exec(
		`UPDATE students SET name = ?, email = ?, password_hash = ? WHERE id = ?`,
		st.Name, st.Email, st.PasswordHash, existing.ID,
	)
	return false, err
}

// GetStudentByRoll returns a student by roll number.
func (s *Store) GetStudentByRoll(rollNo string) (model.Student, error) {
	var st model.Student
	err := s.db.QueryRow(
		`SELECT id, roll_no, name, email, password_hash, created_at
		 FROM students WHERE roll_no = ?`, rollNo,
	).Scan(&st.ID, &st.RollNo, &st.Name, &st.Email, &st.PasswordHash, &st.CreatedAt)
	if err == sql.ErrNoRows {
		return st, ErrNotFound
	}
	return st, err
}

// GetStudentByID returns a student by ID.
func (s *Store) GetStudentByID(id int64) (model.Student, error) {
	var st model.Student
	err := s.db.QueryRow(
		`SELECT id, roll_no, name, email, password_hash, created_at
		 FROM students WHERE id = ?`, id,
	).Scan(&st.ID, &st.RollNo, &st.Name, &st.Email, &st.PasswordHash, &st.CreatedAt)
	if err == sql.ErrNoRows {
		return st, ErrNotFound
	}
	return st, err
}

// ListStudents returns the full roster ordered by roll number.
func (s *Store) ListStudents() ([]model.Student, error) {
	rows, err := s.db.Query(
		`SELECT id, roll_no, name, email, password_hash, created_at
		 FROM students ORDER BY roll_no`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var students []model.Student
	for rows.Next() {
		var st model.Student
		if err := rows.Scan(&st.ID, &st.RollNo, &st.Name, &st.Email, &st.PasswordHash, &st.CreatedAt); err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

// Authenticate looks up a student by roll number and verifies the password
// against the stored bcrypt hash. Both a missing student and a wrong
// password return ErrInvalidCredentials.
func (s *Store) Authenticate(rollNo, password string) (model.Student, error) {
	st, err := s.GetStudentByRoll(rollNo)
	if err == ErrNotFound {
		return model.Student{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.Student{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(st.PasswordHash), []byte(password)); err != nil {
		return model.Student{}, ErrInvalidCredentials
	}
	return st, nil
}

// StudentCount returns the total number of students.
func (s *Store) StudentCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM students`).Scan(&count)
	return count, err
}

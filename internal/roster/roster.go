// Package roster imports students in bulk from a CSV file.
package roster

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/model"
	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/store"
)

// Entry is one parsed roster line.
type Entry struct {
	RollNo   string
	Name     string
	Email    string
	Password string
}

// Stats summarizes one import run.
type Stats struct {
	Added   int
	Updated int
	Skipped int
}

// Parse reads a roster CSV. The header must contain roll_no and password;
// name and email are optional. Rows with a blank roll number are skipped.
func Parse(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty roster file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"roll_no", "password"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("missing column: %s", required)
		}
	}

	cell := func(rec []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var entries []Entry
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		entries = append(entries, Entry{
			RollNo:   cell(rec, "roll_no"),
			Name:     cell(rec, "name"),
			Email:    cell(rec, "email"),
			Password: cell(rec, "password"),
		})
	}
	return entries, nil
}

// Import upserts parsed entries into the identity store: new roll numbers
// are inserted, existing ones get their name, email and credential
// overwritten.
func Import(s *store.Store, r io.Reader) (Stats, error) {
	entries, err := Parse(r)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, e := range entries {
		if e.RollNo == "" {
			stats.Skipped++
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(e.Password), bcrypt.DefaultCost)
		if err != nil {
			return stats, fmt.Errorf("hash password for %s: %w", e.RollNo, err)
		}
		created, err := s.UpsertStudent(model.Student{
			RollNo:       e.RollNo,
			Name:         e.Name,
			Email:        e.Email,
			PasswordHash: string(hash),
		})
		if err != nil {
			return stats, fmt.Errorf("upsert student %s: %w", e.RollNo, err)
		}
		if created {
			stats.Added++
		} else {
			stats.Updated++
		}
	}
	return stats, nil
}

// ImportFile imports a roster file, skipping the work when the file's
// content hash matches the last import.
func ImportFile(s *store.Store, path string) (Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Stats{}, fmt.Errorf("read %s: %w", path, err)
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	storedHash, err := s.GetImportedRosterHash(path)
	if err != nil {
		return Stats{}, fmt.Errorf("check import status for %s: %w", path, err)
	}
	if storedHash == hash {
		slog.Info("roster file unchanged, skipping", "path", path)
		return Stats{}, nil
	}

	stats, err := Import(s, bytes.NewReader(data))
	if err != nil {
		return stats, err
	}
	if err := s.SetImportedRosterHash(path, hash); err != nil {
		return stats, fmt.Errorf("record import for %s: %w", path, err)
	}
	slog.Info("imported roster", "path", path,
		"added", stats.Added, "updated", stats.Updated, "skipped", stats.Skipped)
	return stats, nil
}

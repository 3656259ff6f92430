package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/model"
)

// fakeSource serves canned rows keyed by attempt ID.
type fakeSource struct {
	rows map[int64]model.ResultRow
}

func (f *fakeSource) BuildResultRow(attemptID int64) (model.ResultRow, error) {
	row, ok := f.rows[attemptID]
	if !ok {
		return model.ResultRow{}, fmt.Errorf("no row for attempt %d", attemptID)
	}
	return row, nil
}

func (f *fakeSource) BuildAllResultRows() ([]model.ResultRow, error) {
	var rows []model.ResultRow
	for _, r := range f.rows {
		rows = append(rows, r)
	}
	return rows, nil
}

func testRow(attemptID int64, rollNo string, score int, answers map[int64]string) model.ResultRow {
	started := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	finished := started.Add(25 * time.Minute)
	return model.ResultRow{
		RollNo:     rollNo,
		Name:       "Student " + rollNo,
		Email:      rollNo + "@example.com",
		AttemptID:  attemptID,
		StartedAt:  started,
		FinishedAt: &finished,
		Score:      &score,
		ExportedAt: finished.Add(time.Second),
		Answers:    answers,
	}
}

func readSink(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read sink: %v", err)
	}
	return records
}

func TestExportCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	src := &fakeSource{rows: map[int64]model.ResultRow{
		1: testRow(1, "R001", 2, map[int64]string{1: "A", 2: "B"}),
	}}
	e := New(path, src)

	if err := e.Export(1); err != nil {
		t.Fatalf("Export: %v", err)
	}

	records := readSink(t, path)
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}
	header := records[0]
	want := []string{"roll_no", "name", "email", "attempt_id", "started_at", "finished_at", "score", "exported_at", "Q_1", "Q_2"}
	if len(header) != len(want) {
		t.Fatalf("unexpected header %v", header)
	}
	for i := range want {
		if header[i] != want[i] {
			t.Errorf("header[%d] = %q, want %q", i, header[i], want[i])
		}
	}
	row := records[1]
	if row[0] != "R001" || row[3] != "1" || row[6] != "2" {
		t.Errorf("unexpected row %v", row)
	}
	if row[8] != "A" || row[9] != "B" {
		t.Errorf("unexpected question cells %v", row[8:])
	}
}

func TestExportAppendsSecondAttempt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	src := &fakeSource{rows: map[int64]model.ResultRow{
		1: testRow(1, "R001", 1, map[int64]string{1: "A"}),
		2: testRow(2, "R002", 2, map[int64]string{1: "B", 3: "C"}),
	}}
	e := New(path, src)

	if err := e.Export(1); err != nil {
		t.Fatalf("Export 1: %v", err)
	}
	if err := e.Export(2); err != nil {
		t.Fatalf("Export 2: %v", err)
	}

	records := readSink(t, path)
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	// Question columns merged across rows: Q_1 and Q_3.
	header := records[0]
	if header[len(header)-2] != "Q_1" || header[len(header)-1] != "Q_3" {
		t.Errorf("expected merged Q_1, Q_3 columns, got %v", header)
	}
	// First row has no Q_3 answer.
	if records[1][len(header)-1] != "" {
		t.Errorf("expected empty Q_3 cell for first row, got %q", records[1][len(header)-1])
	}
}

func TestReExportOverwritesRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	src := &fakeSource{rows: map[int64]model.ResultRow{
		1: testRow(1, "R001", 1, map[int64]string{1: "A"}),
	}}
	e := New(path, src)

	if err := e.Export(1); err != nil {
		t.Fatalf("first Export: %v", err)
	}

	// Same attempt exported again with a different selection.
	src.rows[1] = testRow(1, "R001", 0, map[int64]string{1: "D"})
	if err := e.Export(1); err != nil {
		t.Fatalf("second Export: %v", err)
	}

	records := readSink(t, path)
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row after re-export, got %d records", len(records))
	}
	row := records[1]
	if row[6] != "0" {
		t.Errorf("expected updated score 0, got %q", row[6])
	}
	if row[len(row)-1] != "D" {
		t.Errorf("expected updated selection D, got %q", row[len(row)-1])
	}
}

func TestExportAllEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	e := New(path, &fakeSource{rows: map[int64]model.ResultRow{}})

	if err := e.ExportAll(); err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected no file for empty export, got %v", err)
	}
}

// Package exporter mirrors finalized attempts into a CSV results file.
// The sink is best-effort: callers log failures and move on, an export
// error never blocks or rolls back a submission.
package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/model"
)

// fixedColumns lead every results file; question columns follow.
var fixedColumns = []string{
	"roll_no", "name", "email", "attempt_id",
	"started_at", "finished_at", "score", "exported_at",
}

const questionColumnPrefix = "Q_"

// RowSource supplies export-ready rows. *store.Store satisfies it.
type RowSource interface {
	BuildResultRow(attemptID int64) (model.ResultRow, error)
	BuildAllResultRows() ([]model.ResultRow, error)
}

// Exporter rewrites a CSV sink keyed by attempt ID. Re-exporting an
// attempt replaces its previous row instead of appending a duplicate.
type Exporter struct {
	path string
	src  RowSource

	// mu serializes the read-merge-rewrite cycle on the sink file.
	mu sync.Mutex
}

func New(path string, src RowSource) *Exporter {
	return &Exporter{path: path, src: src}
}

// Export mirrors one attempt into the sink. The file is created with this
// row as its first record when missing; otherwise existing content is read,
// any prior row for the same attempt dropped, and the whole table rewritten.
func (e *Exporter) Export(attemptID int64) error {
	row, err := e.src.BuildResultRow(attemptID)
	if err != nil {
		return fmt.Errorf("build result row: %w", err)
	}
	return e.write([]model.ResultRow{row})
}

// ExportAll mirrors every attempt into the sink.
func (e *Exporter) ExportAll() error {
	rows, err := e.src.BuildAllResultRows()
	if err != nil {
		return fmt.Errorf("build result rows: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	return e.write(rows)
}

func (e *Exporter) write(rows []model.ResultRow) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	existing, err := e.readExisting()
	if err != nil {
		return err
	}

	for _, row := range rows {
		delete(existing.byAttempt, row.AttemptID)
		for qid := range row.Answers {
			existing.questionIDs[qid] = struct{}{}
		}
		existing.byAttempt[row.AttemptID] = row
	}

	return e.rewrite(existing)
}

// table is the in-memory form of the sink between read and rewrite.
type table struct {
	byAttempt   map[int64]model.ResultRow
	questionIDs map[int64]struct{}
}

func (e *Exporter) readExisting() (*table, error) {
	t := &table{
		byAttempt:   make(map[int64]model.ResultRow),
		questionIDs: make(map[int64]struct{}),
	}

	f, err := os.Open(e.path)
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open results file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	if len(records) == 0 {
		return t, nil
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range header {
		if qid, ok := parseQuestionColumn(name); ok {
			t.questionIDs[qid] = struct{}{}
		}
	}

	for _, rec := range records[1:] {
		row, ok := parseRow(rec, header, col)
		if !ok {
			continue
		}
		t.byAttempt[row.AttemptID] = row
	}
	return t, nil
}

func parseRow(rec []string, header []string, col map[string]int) (model.ResultRow, bool) {
	cell := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	attemptID, err := strconv.ParseInt(cell("attempt_id"), 10, 64)
	if err != nil {
		return model.ResultRow{}, false
	}

	row := model.ResultRow{
		RollNo:    cell("roll_no"),
		Name:      cell("name"),
		Email:     cell("email"),
		AttemptID: attemptID,
		Answers:   make(map[int64]string),
	}
	row.StartedAt, _ = time.Parse(time.RFC3339, cell("started_at"))
	if v := cell("finished_at"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			row.FinishedAt = &ts
		}
	}
	if v := cell("score"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			row.Score = &n
		}
	}
	row.ExportedAt, _ = time.Parse(time.RFC3339, cell("exported_at"))

	for i, name := range header {
		qid, ok := parseQuestionColumn(name)
		if !ok || i >= len(rec) {
			continue
		}
		row.Answers[qid] = rec[i]
	}
	return row, true
}

func parseQuestionColumn(name string) (int64, bool) {
	if !strings.HasPrefix(name, questionColumnPrefix) {
		return 0, false
	}
	qid, err := strconv.ParseInt(strings.TrimPrefix(name, questionColumnPrefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return qid, true
}

// rewrite writes the whole table to a temp file, then renames it over the
// sink so readers never see a partially written file.
func (e *Exporter) rewrite(t *table) error {
	questionIDs := make([]int64, 0, len(t.questionIDs))
	for qid := range t.questionIDs {
		questionIDs = append(questionIDs, qid)
	}
	sort.Slice(questionIDs, func(i, j int) bool { return questionIDs[i] < questionIDs[j] })

	header := append([]string{}, fixedColumns...)
	for _, qid := range questionIDs {
		header = append(header, fmt.Sprintf("%s%d", questionColumnPrefix, qid))
	}

	attemptIDs := make([]int64, 0, len(t.byAttempt))
	for id := range t.byAttempt {
		attemptIDs = append(attemptIDs, id)
	}
	sort.Slice(attemptIDs, func(i, j int) bool { return attemptIDs[i] < attemptIDs[j] })

	dir := filepath.Dir(e.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(e.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp results file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, id := range attemptIDs {
		row := t.byAttempt[id]
		rec := []string{
			row.RollNo,
			row.Name,
			row.Email,
			strconv.FormatInt(row.AttemptID, 10),
			row.StartedAt.Format(time.RFC3339),
			formatTimePtr(row.FinishedAt),
			formatScore(row.Score),
			row.ExportedAt.Format(time.RFC3339),
		}
		for _, qid := range questionIDs {
			rec = append(rec, row.Answers[qid])
		}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush results file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp results file: %w", err)
	}
	if err := os.Rename(tmp.Name(), e.path); err != nil {
		return fmt.Errorf("replace results file: %w", err)
	}
	return nil
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatScore(score *int) string {
	if score == nil {
		return ""
	}
	return strconv.Itoa(*score)
}

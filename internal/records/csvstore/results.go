package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"quiz-records/internal/records"
)

const resultFields = 4

var resultHeader = []string{"quiz_id", "student_id", "score", "max_score"}

// ResultTable holds quiz results in file order. The file starts with a header
// row that is skipped on load and written back on save. A table without a
// path lives only in memory.
type ResultTable struct {
	path   string
	logger logrus.FieldLogger
	rows   []records.QuizResult
}

var _ records.ResultRepository = (*ResultTable)(nil)

func NewResultTable(path string, logger logrus.FieldLogger) *ResultTable {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ResultTable{
		path:   path,
		logger: logger,
	}
}

func LoadResults(path string, logger logrus.FieldLogger) (*ResultTable, error) {
	table := NewResultTable(path, logger)

	err := readRows(path, table.logger, true, func(record []string) error {
		result, err := parseResult(record)
		if err != nil {
			return err
		}
		table.rows = append(table.rows, result)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load quiz results from %s: %w", path, err)
	}

	table.logger.WithFields(logrus.Fields{
		"path":         path,
		"quiz_results": len(table.rows),
	}).Info("quiz results loaded")
	return table, nil
}

func parseResult(record []string) (records.QuizResult, error) {
	if len(record) != resultFields {
		return records.QuizResult{}, fmt.Errorf("expected %d fields, got %d", resultFields, len(record))
	}

	values := make([]int, resultFields)
	for idx, field := range record {
		value, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return records.QuizResult{}, fmt.Errorf("invalid %s %q", resultHeader[idx], field)
		}
		values[idx] = value
	}

	result := records.QuizResult{
		QuizID:    values[0],
		StudentID: values[1],
		Score:     values[2],
		MaxScore:  values[3],
	}
	if !result.Valid() {
		return records.QuizResult{}, errors.New("score must be between 0 and a positive max_score")
	}
	return result, nil
}

func (t *ResultTable) Path() string {
	return t.path
}

func (t *ResultTable) All() []records.QuizResult {
	out := make([]records.QuizResult, len(t.rows))
	copy(out, t.rows)
	return out
}

func (t *ResultTable) Append(results ...records.QuizResult) {
	t.rows = append(t.rows, results...)
}

func (t *ResultTable) Replace(results []records.QuizResult) {
	t.rows = make([]records.QuizResult, len(results))
	copy(t.rows, results)
}

func (t *ResultTable) Save() error {
	if t.path == "" {
		return nil
	}

	err := writeRows(t.path, func(w *csv.Writer) error {
		if err := w.Write(resultHeader); err != nil {
			return err
		}
		for _, result := range t.rows {
			if err := w.Write([]string{
				strconv.Itoa(result.QuizID),
				strconv.Itoa(result.StudentID),
				strconv.Itoa(result.Score),
				strconv.Itoa(result.MaxScore),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save quiz results to %s: %w", t.path, err)
	}

	t.logger.WithFields(logrus.Fields{
		"path":         t.path,
		"quiz_results": len(t.rows),
	}).Debug("quiz results saved")
	return nil
}

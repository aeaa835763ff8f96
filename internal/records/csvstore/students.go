package csvstore

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"quiz-records/internal/records"
)

const studentFields = 3

// StudentTable holds students in insertion order. Rows are `id,name,program`
// with no header.
type StudentTable struct {
	path   string
	logger logrus.FieldLogger

	rows  []records.Student
	index map[int]int
}

var _ records.StudentRepository = (*StudentTable)(nil)

func NewStudentTable(path string, logger logrus.FieldLogger) *StudentTable {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &StudentTable{
		path:   path,
		logger: logger,
		index:  make(map[int]int),
	}
}

// LoadStudents reads the file at path. A missing or unreadable file is an
// error; malformed lines are logged and skipped.
func LoadStudents(path string, logger logrus.FieldLogger) (*StudentTable, error) {
	table := NewStudentTable(path, logger)

	err := readRows(path, table.logger, false, func(record []string) error {
		student, err := parseStudent(record)
		if err != nil {
			return err
		}
		if _, exists := table.index[student.ID]; exists {
			table.logger.WithFields(logrus.Fields{
				"path":       path,
				"student_id": student.ID,
			}).Warn("duplicate student id, keeping the later row")
		}
		table.Put(student)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load students from %s: %w", path, err)
	}

	table.logger.WithFields(logrus.Fields{
		"path":     path,
		"students": len(table.rows),
	}).Info("students loaded")
	return table, nil
}

func parseStudent(record []string) (records.Student, error) {
	if len(record) != studentFields {
		return records.Student{}, fmt.Errorf("expected %d fields, got %d", studentFields, len(record))
	}

	id, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil {
		return records.Student{}, fmt.Errorf("invalid student id %q", record[0])
	}

	return records.Student{
		ID:      id,
		Name:    strings.TrimSpace(record[1]),
		Program: strings.TrimSpace(record[2]),
	}, nil
}

func (t *StudentTable) Path() string {
	return t.path
}

func (t *StudentTable) Get(id int) (records.Student, bool) {
	idx, ok := t.index[id]
	if !ok {
		return records.Student{}, false
	}
	return t.rows[idx], true
}

func (t *StudentTable) All() []records.Student {
	out := make([]records.Student, len(t.rows))
	copy(out, t.rows)
	return out
}

// Put replaces an existing student in place or appends a new one.
func (t *StudentTable) Put(student records.Student) {
	if idx, ok := t.index[student.ID]; ok {
		t.rows[idx] = student
		return
	}
	t.index[student.ID] = len(t.rows)
	t.rows = append(t.rows, student)
}

func (t *StudentTable) Remove(id int) (records.Student, bool) {
	idx, ok := t.index[id]
	if !ok {
		return records.Student{}, false
	}

	removed := t.rows[idx]
	t.rows = append(t.rows[:idx:idx], t.rows[idx+1:]...)
	t.reindex()
	return removed, true
}

func (t *StudentTable) Replace(students []records.Student) {
	t.rows = make([]records.Student, 0, len(students))
	t.index = make(map[int]int, len(students))
	for _, student := range students {
		t.Put(student)
	}
}

// NextID is one past the largest id currently stored, or 1 for an empty
// table. It is derived from the rows on every call so deletes are honored.
func (t *StudentTable) NextID() int {
	next := 1
	for _, student := range t.rows {
		if student.ID >= next {
			next = student.ID + 1
		}
	}
	return next
}

func (t *StudentTable) Save() error {
	err := writeRows(t.path, func(w *csv.Writer) error {
		for _, student := range t.rows {
			if err := w.Write([]string{
				strconv.Itoa(student.ID),
				student.Name,
				student.Program,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save students to %s: %w", t.path, err)
	}

	t.logger.WithFields(logrus.Fields{
		"path":     t.path,
		"students": len(t.rows),
	}).Debug("students saved")
	return nil
}

func (t *StudentTable) reindex() {
	t.index = make(map[int]int, len(t.rows))
	for idx, student := range t.rows {
		t.index[student.ID] = idx
	}
}

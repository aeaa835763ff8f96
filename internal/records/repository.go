package records

import (
	"errors"
	"strings"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrInvalidStudent  = errors.New("invalid student")
	ErrNoResults       = errors.New("no results found for student")
	// ErrPersistence wraps backing-file write failures. The in-memory tables
	// have been restored to their previous contents when it is returned.
	ErrPersistence = errors.New("failed to persist changes")
)

type Student struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Program string `json:"program"`
}

type QuizResult struct {
	QuizID    int `json:"quiz_id"`
	StudentID int `json:"student_id"`
	Score     int `json:"score"`
	MaxScore  int `json:"max_score"`
}

// Percentage is score/maxScore*100. Callers only construct results with a
// positive MaxScore, so the division is always defined.
func (r QuizResult) Percentage() float64 {
	return float64(r.Score) / float64(r.MaxScore) * 100
}

func (r QuizResult) Valid() bool {
	return r.MaxScore > 0 && r.Score >= 0 && r.Score <= r.MaxScore
}

// StudentInput carries the mutable fields accepted by create and update.
type StudentInput struct {
	Name    string
	Program string
}

// Stored rows are one line each, so line breaks inside a value become spaces.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func (in StudentInput) normalize() (StudentInput, error) {
	out := StudentInput{
		Name:    strings.TrimSpace(lineBreaks.Replace(in.Name)),
		Program: strings.TrimSpace(lineBreaks.Replace(in.Program)),
	}
	if out.Name == "" || out.Program == "" {
		return StudentInput{}, ErrInvalidStudent
	}
	return out, nil
}

// StudentRepository is one in-memory student table backed by durable storage.
// Implementations are not safe for concurrent use; Service serializes access.
type StudentRepository interface {
	Get(id int) (Student, bool)
	All() []Student
	Put(student Student)
	Remove(id int) (Student, bool)
	Replace(students []Student)
	NextID() int
	Save() error
}

type ResultRepository interface {
	All() []QuizResult
	Replace(results []QuizResult)
	Save() error
}

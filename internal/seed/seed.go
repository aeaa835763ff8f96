// Package seed generates random demo students and quiz results.
package seed

import (
	"errors"
	"fmt"
	"os"

	"github.com/Pallinder/go-randomdata"
	"github.com/sirupsen/logrus"

	"quiz-records/internal/records"
	"quiz-records/internal/records/csvstore"
)

var ErrFileExists = errors.New("file already exists")

var programs = []string{
	"Computer Science",
	"Mathematics",
	"Physics",
	"Information Systems",
	"Electrical Engineering",
}

type Options struct {
	Students int
	Quizzes  int
	FirstID  int
	MaxScore int
	// Participation is the percent chance that a student took a given quiz.
	Participation int
}

func DefaultOptions() Options {
	return Options{
		Students:      20,
		Quizzes:       5,
		FirstID:       101,
		MaxScore:      100,
		Participation: 80,
	}
}

func (o Options) normalized() Options {
	defaults := DefaultOptions()
	if o.Students < 0 {
		o.Students = 0
	}
	if o.Quizzes < 0 {
		o.Quizzes = 0
	}
	if o.FirstID <= 0 {
		o.FirstID = defaults.FirstID
	}
	if o.MaxScore <= 0 {
		o.MaxScore = defaults.MaxScore
	}
	if o.Participation < 0 {
		o.Participation = 0
	}
	if o.Participation > 100 {
		o.Participation = 100
	}
	return o
}

func GenerateStudent(id int) records.Student {
	return records.Student{
		ID:      id,
		Name:    randomdata.FullName(randomdata.RandomGender),
		Program: programs[randomdata.Number(0, len(programs))],
	}
}

func GenerateStudentList(firstID, n int) []records.Student {
	students := make([]records.Student, 0, n)
	for i := 0; i < n; i++ {
		students = append(students, GenerateStudent(firstID+i))
	}
	return students
}

// GenerateResults gives every student a chance at each quiz. Scores are in
// [0, maxScore] and quiz ids start at 1.
func GenerateResults(students []records.Student, quizzes, maxScore, participation int) []records.QuizResult {
	var results []records.QuizResult
	for quizID := 1; quizID <= quizzes; quizID++ {
		for _, student := range students {
			if randomdata.Number(0, 100) >= participation {
				continue
			}
			results = append(results, records.QuizResult{
				QuizID:    quizID,
				StudentID: student.ID,
				Score:     randomdata.Number(0, maxScore+1),
				MaxScore:  maxScore,
			})
		}
	}
	return results
}

func Generate(opts Options) ([]records.Student, []records.QuizResult) {
	opts = opts.normalized()
	students := GenerateStudentList(opts.FirstID, opts.Students)
	return students, GenerateResults(students, opts.Quizzes, opts.MaxScore, opts.Participation)
}

// WriteFiles generates a data set and saves it through the csv tables.
// Existing files are only replaced when overwrite is set.
func WriteFiles(studentsPath, resultsPath string, opts Options, overwrite bool, logger logrus.FieldLogger) error {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if !overwrite {
		for _, path := range []string{studentsPath, resultsPath} {
			if path == "" {
				continue
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%w: %s", ErrFileExists, path)
			}
		}
	}

	students, results := Generate(opts)

	studentTable := csvstore.NewStudentTable(studentsPath, logger)
	studentTable.Replace(students)
	if err := studentTable.Save(); err != nil {
		return err
	}

	resultTable := csvstore.NewResultTable(resultsPath, logger)
	resultTable.Append(results...)
	if err := resultTable.Save(); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"students":      len(students),
		"quiz_results":  len(results),
		"students_file": studentsPath,
		"results_file":  resultsPath,
	}).Info("demo data written")
	return nil
}

// Package report renders quiz and student statistics as an xlsx workbook.
package report

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"quiz-records/internal/records"
)

const (
	QuizSheet    = "Quiz Stats"
	StudentSheet = "Student Stats"

	defaultSheet = "Sheet1"
)

var (
	quizHeader    = []any{"quiz_id", "participants", "average_score", "std_dev", "min_score", "max_score"}
	studentHeader = []any{"student_id", "quizzes_taken", "average_percentage"}
)

type Data struct {
	Quizzes  []records.QuizStats
	Students []records.StudentStats
}

func Write(w io.Writer, data Data) error {
	f, err := build(data)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func WriteFile(path string, data Data) error {
	f, err := build(data)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook to %s: %w", path, err)
	}
	return nil
}

func build(data Data) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(defaultSheet, QuizSheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(StudentSheet); err != nil {
		_ = f.Close()
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	quizRows := make([][]any, 0, len(data.Quizzes))
	for _, quiz := range data.Quizzes {
		quizRows = append(quizRows, []any{
			quiz.QuizID,
			quiz.Participants,
			round2(quiz.AverageScore),
			round2(quiz.StdDev),
			quiz.MinScore,
			quiz.MaxScore,
		})
	}
	if err := writeSheet(f, QuizSheet, headerStyle, quizHeader, quizRows); err != nil {
		_ = f.Close()
		return nil, err
	}

	studentRows := make([][]any, 0, len(data.Students))
	for _, student := range data.Students {
		studentRows = append(studentRows, []any{
			student.StudentID,
			student.QuizzesTaken,
			round2(student.AveragePercentage),
		})
	}
	if err := writeSheet(f, StudentSheet, headerStyle, studentHeader, studentRows); err != nil {
		_ = f.Close()
		return nil, err
	}

	return f, nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}

	for idx := range rows {
		cell, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[idx]); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 18)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

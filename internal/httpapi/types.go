package httpapi

import (
	"math"

	"quiz-records/internal/records"
)

type studentResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Program string `json:"program"`
}

type quizStatsResponse struct {
	QuizID       int     `json:"quiz_id"`
	AverageScore float64 `json:"average_score"`
	StdDev       float64 `json:"std_dev"`
	MinScore     int     `json:"min_score"`
	MaxScore     int     `json:"max_score"`
	Participants int     `json:"participants"`
}

type studentStatsResponse struct {
	StudentID         int     `json:"student_id"`
	QuizzesTaken      int     `json:"quizzes_taken"`
	AveragePercentage float64 `json:"average_percentage"`
}

type healthResponse struct {
	Status      string `json:"status"`
	Students    int    `json:"students"`
	QuizResults int    `json:"quiz_results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toStudentResponse(student records.Student) studentResponse {
	return studentResponse{
		ID:      student.ID,
		Name:    student.Name,
		Program: student.Program,
	}
}

func toQuizStatsResponse(stats records.QuizStats) quizStatsResponse {
	return quizStatsResponse{
		QuizID:       stats.QuizID,
		AverageScore: round2(stats.AverageScore),
		StdDev:       round2(stats.StdDev),
		MinScore:     stats.MinScore,
		MaxScore:     stats.MaxScore,
		Participants: stats.Participants,
	}
}

func toStudentStatsResponse(stats records.StudentStats) studentStatsResponse {
	return studentStatsResponse{
		StudentID:         stats.StudentID,
		QuizzesTaken:      stats.QuizzesTaken,
		AveragePercentage: round2(stats.AveragePercentage),
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

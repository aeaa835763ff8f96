package httpapi

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-records/internal/report"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportFilename  = "quiz-stats.xlsx"
)

func (a *API) HandleListStudents(c *gin.Context) {
	if !a.available(c) {
		return
	}

	students := a.service.ListStudents()
	items := make([]studentResponse, 0, len(students))
	for _, student := range students {
		items = append(items, toStudentResponse(student))
	}
	writeJSON(c, http.StatusOK, items)
}

func (a *API) HandleGetStudent(c *gin.Context) {
	if !a.available(c) {
		return
	}

	id, ok := parseStudentID(c)
	if !ok {
		return
	}

	student, err := a.service.GetStudent(id)
	if err != nil {
		a.writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toStudentResponse(student))
}

func (a *API) HandleCreateStudent(c *gin.Context) {
	if !a.available(c) {
		return
	}

	input, ok := readStudentInput(c)
	if !ok {
		return
	}

	student, err := a.service.CreateStudent(input)
	if err != nil {
		a.writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toStudentResponse(student))
}

func (a *API) HandleUpdateStudent(c *gin.Context) {
	if !a.available(c) {
		return
	}

	id, ok := parseStudentID(c)
	if !ok {
		return
	}
	input, ok := readStudentInput(c)
	if !ok {
		return
	}

	student, err := a.service.UpdateStudent(id, input)
	if err != nil {
		a.writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toStudentResponse(student))
}

func (a *API) HandleDeleteStudent(c *gin.Context) {
	if !a.available(c) {
		return
	}

	id, ok := parseStudentID(c)
	if !ok {
		return
	}

	if err := a.service.DeleteStudent(id); err != nil {
		a.writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) HandleQuizStats(c *gin.Context) {
	if !a.available(c) {
		return
	}

	stats := a.service.QuizStats()
	items := make([]quizStatsResponse, 0, len(stats))
	for _, item := range stats {
		items = append(items, toQuizStatsResponse(item))
	}
	writeJSON(c, http.StatusOK, items)
}

func (a *API) HandleStudentStats(c *gin.Context) {
	if !a.available(c) {
		return
	}

	id, ok := parseStudentID(c)
	if !ok {
		return
	}

	stats, err := a.service.StudentStats(id)
	if err != nil {
		a.writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toStudentStatsResponse(stats))
}

func (a *API) HandleQuizStatsExport(c *gin.Context) {
	if !a.available(c) {
		return
	}

	quizzes, students := a.service.Summary()
	var buf bytes.Buffer
	err := report.Write(&buf, report.Data{
		Quizzes:  quizzes,
		Students: students,
	})
	if err != nil {
		a.logger.WithError(err).Error("failed to build statistics workbook")
		writeJSON(c, http.StatusInternalServerError, errorResponse{Error: "failed to build export"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (a *API) HandleHealth(c *gin.Context) {
	if !a.available(c) {
		return
	}

	students, results := a.service.Counts()
	writeJSON(c, http.StatusOK, healthResponse{
		Status:      "ok",
		Students:    students,
		QuizResults: results,
	})
}

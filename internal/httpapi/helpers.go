package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"quiz-records/internal/records"
)

const maxBodyBytes = 1 << 20

func (a *API) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, records.ErrStudentNotFound):
		writeJSON(c, http.StatusNotFound, errorResponse{Error: "student not found"})
	case errors.Is(err, records.ErrNoResults):
		writeJSON(c, http.StatusNotFound, errorResponse{Error: "no results found for student"})
	case errors.Is(err, records.ErrInvalidStudent):
		writeJSON(c, http.StatusBadRequest, errorResponse{Error: "name and program must not be empty"})
	case errors.Is(err, records.ErrPersistence):
		a.logger.WithError(err).Error("write-through save failed")
		writeJSON(c, http.StatusInternalServerError, errorResponse{Error: "failed to persist changes"})
	default:
		a.logger.WithError(err).Error("request failed")
		writeJSON(c, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

func (a *API) available(c *gin.Context) bool {
	if a.service == nil {
		writeJSON(c, http.StatusInternalServerError, errorResponse{Error: "record service unavailable"})
		return false
	}
	return true
}

func parseStudentID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param("id")))
	if err != nil {
		writeJSON(c, http.StatusBadRequest, errorResponse{Error: "invalid student id"})
		return 0, false
	}
	return id, true
}

func readStudentInput(c *gin.Context) (records.StudentInput, bool) {
	defer c.Request.Body.Close()

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
	if err != nil {
		writeJSON(c, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
		return records.StudentInput{}, false
	}
	if len(body) > maxBodyBytes {
		writeJSON(c, http.StatusBadRequest, errorResponse{Error: "request body too large"})
		return records.StudentInput{}, false
	}

	input, err := parseStudentInput(body)
	if err != nil {
		writeJSON(c, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return records.StudentInput{}, false
	}
	return input, true
}

func writeMethodNotAllowed(c *gin.Context, allowedMethods string) {
	c.Header("Allow", allowedMethods)
	writeJSON(c, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

// writeJSON pins Content-Type to plain application/json; gin only fills the
// header in when it is unset.
func writeJSON(c *gin.Context, statusCode int, payload any) {
	c.Header("Content-Type", "application/json")
	c.JSON(statusCode, payload)
}

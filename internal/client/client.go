// Package client talks to a running records service over HTTP.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"quiz-records/internal/records"
)

var ErrServiceUnavailable = errors.New("records service unavailable")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// NotFound reports whether the service answered 404.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

type studentItem struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Program string `json:"program"`
}

type quizStatsItem struct {
	QuizID       int     `json:"quiz_id"`
	AverageScore float64 `json:"average_score"`
	StdDev       float64 `json:"std_dev"`
	MinScore     int     `json:"min_score"`
	MaxScore     int     `json:"max_score"`
	Participants int     `json:"participants"`
}

type studentStatsItem struct {
	StudentID         int     `json:"student_id"`
	QuizzesTaken      int     `json:"quizzes_taken"`
	AveragePercentage float64 `json:"average_percentage"`
}

type Health struct {
	Status      string `json:"status"`
	Students    int    `json:"students"`
	QuizResults int    `json:"quiz_results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) ListStudents(ctx context.Context) ([]records.Student, error) {
	var payload []studentItem
	if err := c.doJSON(ctx, http.MethodGet, "/students", &payload); err != nil {
		return nil, err
	}

	students := make([]records.Student, 0, len(payload))
	for _, item := range payload {
		students = append(students, records.Student{
			ID:      item.ID,
			Name:    item.Name,
			Program: item.Program,
		})
	}
	return students, nil
}

func (c *HTTPClient) QuizStats(ctx context.Context) ([]records.QuizStats, error) {
	var payload []quizStatsItem
	if err := c.doJSON(ctx, http.MethodGet, "/quiz-stats", &payload); err != nil {
		return nil, err
	}

	stats := make([]records.QuizStats, 0, len(payload))
	for _, item := range payload {
		stats = append(stats, records.QuizStats{
			QuizID:       item.QuizID,
			Participants: item.Participants,
			AverageScore: item.AverageScore,
			StdDev:       item.StdDev,
			MinScore:     item.MinScore,
			MaxScore:     item.MaxScore,
		})
	}
	return stats, nil
}

func (c *HTTPClient) StudentStats(ctx context.Context, studentID int) (records.StudentStats, error) {
	var payload studentStatsItem
	if err := c.doJSON(ctx, http.MethodGet, "/student-stats/"+strconv.Itoa(studentID), &payload); err != nil {
		return records.StudentStats{}, err
	}
	return records.StudentStats{
		StudentID:         payload.StudentID,
		QuizzesTaken:      payload.QuizzesTaken,
		AveragePercentage: payload.AveragePercentage,
	}, nil
}

func (c *HTTPClient) Health(ctx context.Context) (Health, error) {
	var payload Health
	if err := c.doJSON(ctx, http.MethodGet, "/health", &payload); err != nil {
		return Health{}, err
	}
	return payload, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, responseBody any) error {
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		_, _ = io.Copy(io.Discard, response.Body)
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}

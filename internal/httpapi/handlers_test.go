package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"quiz-records/internal/records"
	"quiz-records/internal/records/csvstore"
	"quiz-records/internal/report"
)

type testEnv struct {
	router       *gin.Engine
	studentsPath string
	resultsPath  string
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	dir := t.TempDir()
	env := testEnv{
		studentsPath: filepath.Join(dir, "students.csv"),
		resultsPath:  filepath.Join(dir, "results.csv"),
	}
	writeTestFile(t, env.studentsPath, "101,Ada Lovelace,CS\n102,Grace Hopper,Math\n103,Alan Turing,CS\n")
	writeTestFile(t, env.resultsPath, strings.Join([]string{
		"quiz_id,student_id,score,max_score",
		"2,101,8,10",
		"1,101,80,100",
		"1,102,90,100",
		"1,103,70,100",
		"2,102,6,10",
	}, "\n")+"\n")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	students, err := csvstore.LoadStudents(env.studentsPath, logger)
	if err != nil {
		t.Fatalf("LoadStudents failed: %v", err)
	}
	results, err := csvstore.LoadResults(env.resultsPath, logger)
	if err != nil {
		t.Fatalf("LoadResults failed: %v", err)
	}

	env.router = NewRouter(records.NewService(students, results, logger), logger)
	return env
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func (e testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var payload T
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return payload
}

func TestListStudentsInLoadOrder(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/students", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("content type = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("cors header = %q, want *", got)
	}

	students := decodeBody[[]studentResponse](t, rec)
	if len(students) != 3 {
		t.Fatalf("expected 3 students, got %d", len(students))
	}
	if students[0].ID != 101 || students[2].ID != 103 {
		t.Fatalf("students not in load order: %+v", students)
	}
}

func TestGetStudent(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/students/102", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	student := decodeBody[studentResponse](t, rec)
	if student.Name != "Grace Hopper" || student.Program != "Math" {
		t.Fatalf("unexpected student: %+v", student)
	}

	rec = env.do(http.MethodGet, "/students/999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing student status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if payload := decodeBody[errorResponse](t, rec); payload.Error != "student not found" {
		t.Fatalf("error payload = %q", payload.Error)
	}

	rec = env.do(http.MethodGet, "/students/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid id status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateStudentAssignsNextIDAndPersists(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/students", `{"name":"Barbara Liskov","program":"CS"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	created := decodeBody[studentResponse](t, rec)
	if created.ID != 104 {
		t.Fatalf("created id = %d, want 104", created.ID)
	}

	if got := readTestFile(t, env.studentsPath); !strings.HasSuffix(got, "104,Barbara Liskov,CS\n") {
		t.Fatalf("student file not updated: %q", got)
	}
}

func TestCreateStudentRejectsMalformedBodies(t *testing.T) {
	env := newTestEnv(t)
	before := readTestFile(t, env.studentsPath)

	bodies := []string{
		`{"name":"Ada","program":"CS"`,
		`{"name":"Ada,"program":"CS"}`,
		`"name":"Ada","program":"CS"}`,
		`["Ada","CS"]`,
		`{"name":"Ada"}`,
		`{"name":"","program":"CS"}`,
		`{"name":"Ada","program":{"major":"CS"}}`,
		`{"name":"Ada","program":"CS","tags":["a"]}`,
		`{"name":42,"program":"CS"}`,
		`{"name":"   ","program":"CS"}`,
	}
	for _, body := range bodies {
		rec := env.do(http.MethodPost, "/students", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want %d", body, rec.Code, http.StatusBadRequest)
		}
		if payload := decodeBody[errorResponse](t, rec); payload.Error == "" {
			t.Fatalf("body %s: empty error message", body)
		}
	}

	if after := readTestFile(t, env.studentsPath); after != before {
		t.Fatalf("student file changed after rejected creates:\n%s", after)
	}
	rec := env.do(http.MethodGet, "/students", "")
	if students := decodeBody[[]studentResponse](t, rec); len(students) != 3 {
		t.Fatalf("expected 3 students after rejected creates, got %d", len(students))
	}
}

func TestCreateStudentAcceptsCommasAndColonsInValues(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/students", `{"name":"Hopper, Grace","program":"CS: Systems"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	created := decodeBody[studentResponse](t, rec)
	if created.Name != "Hopper, Grace" || created.Program != "CS: Systems" {
		t.Fatalf("values mangled: %+v", created)
	}

	reloaded, err := csvstore.LoadStudents(env.studentsPath, nil)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got, ok := reloaded.Get(created.ID); !ok || got.Name != "Hopper, Grace" {
		t.Fatalf("reloaded student = %+v, %v", got, ok)
	}
}

func TestUpdateStudentIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	body := `{"name":"Mickey Mouse","program":"CS"}`

	first := env.do(http.MethodPut, "/students/101", body)
	if first.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", first.Code, http.StatusOK)
	}
	afterFirst := readTestFile(t, env.studentsPath)

	second := env.do(http.MethodPut, "/students/101", body)
	if second.Code != http.StatusOK {
		t.Fatalf("second status = %d, want %d", second.Code, http.StatusOK)
	}
	if afterSecond := readTestFile(t, env.studentsPath); afterSecond != afterFirst {
		t.Fatalf("second update changed file:\n%s\nvs\n%s", afterFirst, afterSecond)
	}

	if !strings.HasPrefix(afterFirst, "101,Mickey Mouse,CS\n") {
		t.Fatalf("update not persisted in place: %q", afterFirst)
	}
}

func TestUpdateStudentErrors(t *testing.T) {
	env := newTestEnv(t)

	if rec := env.do(http.MethodPut, "/students/999", `{"name":"A","program":"B"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("missing student status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if rec := env.do(http.MethodPut, "/students/101", `{"name":"A"`); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if rec := env.do(http.MethodPut, "/students/x", `{"name":"A","program":"B"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid id status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec := env.do(http.MethodGet, "/students/101", "")
	if student := decodeBody[studentResponse](t, rec); student.Name != "Ada Lovelace" {
		t.Fatalf("student changed by rejected updates: %+v", student)
	}
}

func TestDeleteStudentCascades(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodDelete, "/students/101", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}

	if rec := env.do(http.MethodGet, "/students/101", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("deleted student status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if rec := env.do(http.MethodGet, "/student-stats/101", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("deleted student stats status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	want := "quiz_id,student_id,score,max_score\n1,102,90,100\n1,103,70,100\n2,102,6,10\n"
	if got := readTestFile(t, env.resultsPath); got != want {
		t.Fatalf("results file = %q, want %q", got, want)
	}

	if rec := env.do(http.MethodDelete, "/students/101", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestQuizStatsOrderedAndRounded(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/quiz-stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	stats := decodeBody[[]quizStatsResponse](t, rec)
	if len(stats) != 2 {
		t.Fatalf("expected 2 quizzes, got %d", len(stats))
	}
	if stats[0].QuizID != 1 || stats[1].QuizID != 2 {
		t.Fatalf("quizzes not ordered by id: %+v", stats)
	}

	want := quizStatsResponse{QuizID: 1, AverageScore: 80, StdDev: 8.16, MinScore: 70, MaxScore: 90, Participants: 3}
	if stats[0] != want {
		t.Fatalf("quiz 1 stats = %+v, want %+v", stats[0], want)
	}
}

func TestStudentStats(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/student-stats/101", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	stats := decodeBody[studentStatsResponse](t, rec)
	want := studentStatsResponse{StudentID: 101, QuizzesTaken: 2, AveragePercentage: 80}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}

	created := env.do(http.MethodPost, "/students", `{"name":"New","program":"CS"}`)
	id := decodeBody[studentResponse](t, created).ID
	rec = env.do(http.MethodGet, "/student-stats/"+strconv.Itoa(id), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("no-results status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if payload := decodeBody[errorResponse](t, rec); payload.Error != "no results found for student" {
		t.Fatalf("error payload = %q", payload.Error)
	}

	if rec := env.do(http.MethodGet, "/student-stats/nope", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid id status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	payload := decodeBody[healthResponse](t, rec)
	if payload.Status != "ok" || payload.Students != 3 || payload.QuizResults != 5 {
		t.Fatalf("unexpected health payload: %+v", payload)
	}
}

func TestQuizStatsExport(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/quiz-stats/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); got != xlsxContentType {
		t.Fatalf("content type = %q", got)
	}

	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(report.QuizSheet)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 3 || rows[1][0] != "1" || rows[2][0] != "2" {
		t.Fatalf("unexpected quiz rows: %v", rows)
	}

	studentRows, err := f.GetRows(report.StudentSheet)
	if err != nil {
		t.Fatalf("GetRows(students) failed: %v", err)
	}
	if len(studentRows) != 4 {
		t.Fatalf("expected header + 3 students with results, got %v", studentRows)
	}
}

func TestPersistenceFailureReturns500AndKeepsState(t *testing.T) {
	env := newTestEnv(t)
	if err := os.RemoveAll(filepath.Dir(env.studentsPath)); err != nil {
		t.Fatalf("remove data dir: %v", err)
	}

	rec := env.do(http.MethodPost, "/students", `{"name":"Ada","program":"CS"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if payload := decodeBody[errorResponse](t, rec); payload.Error != "failed to persist changes" {
		t.Fatalf("error payload = %q", payload.Error)
	}

	rec = env.do(http.MethodGet, "/students", "")
	if students := decodeBody[[]studentResponse](t, rec); len(students) != 3 {
		t.Fatalf("failed create left %d students, want 3", len(students))
	}
}

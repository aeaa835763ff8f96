package httpapi

import (
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quiz-records/internal/records"
)

var routedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

func NewRouter(service *records.Service, logger logrus.FieldLogger) *gin.Engine {
	api := NewAPI(service, logger)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(
		gin.CustomRecoveryWithWriter(io.Discard, api.recoverPanic),
		requestLogger(api.logger),
		allowAnyOrigin(),
	)
	router.NoRoute(func(c *gin.Context) {
		writeJSON(c, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	router.NoMethod(func(c *gin.Context) {
		writeJSON(c, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	root := router.Group("/")
	api.registerStudents(root)
	resource(root, "/quiz-stats", map[string]gin.HandlerFunc{http.MethodGet: api.HandleQuizStats})
	resource(root, "/quiz-stats/export", map[string]gin.HandlerFunc{http.MethodGet: api.HandleQuizStatsExport})
	resource(root, "/student-stats/:id", map[string]gin.HandlerFunc{http.MethodGet: api.HandleStudentStats})
	resource(root, "/health", map[string]gin.HandlerFunc{http.MethodGet: api.HandleHealth})

	// Paths used by earlier clients of the service.
	legacy := router.Group("/api")
	api.registerStudents(legacy)
	resource(legacy, "/analytics/quiz-stats", map[string]gin.HandlerFunc{http.MethodGet: api.HandleQuizStats})
	resource(legacy, "/analytics/student-stats/:id", map[string]gin.HandlerFunc{http.MethodGet: api.HandleStudentStats})

	return router
}

func (a *API) registerStudents(group *gin.RouterGroup) {
	resource(group, "/students", map[string]gin.HandlerFunc{
		http.MethodGet:  a.HandleListStudents,
		http.MethodPost: a.HandleCreateStudent,
	})
	resource(group, "/students/:id", map[string]gin.HandlerFunc{
		http.MethodGet:    a.HandleGetStudent,
		http.MethodPut:    a.HandleUpdateStudent,
		http.MethodDelete: a.HandleDeleteStudent,
	})
}

// resource registers handlers for one path and answers every other routed
// method with 405 and an Allow header listing the supported ones.
func resource(group *gin.RouterGroup, path string, handlers map[string]gin.HandlerFunc) {
	allowed := make([]string, 0, len(handlers))
	for method, handler := range handlers {
		group.Handle(method, path, handler)
		allowed = append(allowed, method)
	}
	sort.Strings(allowed)
	allow := strings.Join(allowed, ", ")

	for _, method := range routedMethods {
		if _, ok := handlers[method]; ok {
			continue
		}
		group.Handle(method, path, func(c *gin.Context) {
			writeMethodNotAllowed(c, allow)
		})
	}
}

func (a *API) recoverPanic(c *gin.Context, recovered any) {
	a.logger.WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
		"panic":  recovered,
	}).Error("handler panicked")
	writeJSON(c, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	c.Abort()
}

package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"quiz-records/internal/config"
	"quiz-records/internal/httpapi"
	"quiz-records/internal/records"
	"quiz-records/internal/records/csvstore"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func (a *app) newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [port] [students.csv] [results.csv]",
		Short: "Load the record files and serve the HTTP API",
		Args:  cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ApplyArgs(args); err != nil {
				return err
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			service, err := loadService(a.cfg, a.logger)
			if err != nil {
				return err
			}

			listener, err := net.Listen("tcp", a.cfg.Addr())
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), newServer(service, a.logger), listener, a.logger)
		},
	}
	cmd.Flags().IntVar(&a.cfg.Port, "port", a.cfg.Port, "HTTP port (env "+config.EnvPort+")")
	return cmd
}

// loadService reads both tables. A missing file is an error; without a
// results path quiz results live in memory only.
func loadService(cfg config.Config, logger logrus.FieldLogger) (*records.Service, error) {
	students, err := csvstore.LoadStudents(cfg.StudentsPath, logger)
	if err != nil {
		return nil, err
	}

	var results *csvstore.ResultTable
	if cfg.ResultsPath == "" {
		results = csvstore.NewResultTable("", logger)
	} else {
		results, err = csvstore.LoadResults(cfg.ResultsPath, logger)
		if err != nil {
			return nil, err
		}
	}

	service := records.NewService(students, results, logger)
	studentCount, resultCount := service.Counts()
	logger.WithFields(logrus.Fields{
		"students":      studentCount,
		"quiz_results":  resultCount,
		"students_file": students.Path(),
		"results_file":  results.Path(),
	}).Info("records loaded")

	if orphans := service.OrphanedResults(); len(orphans) > 0 {
		logger.WithField("count", len(orphans)).Warn("quiz results reference unknown students")
	}
	return service, nil
}

func newServer(service *records.Service, logger logrus.FieldLogger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	return &http.Server{
		Handler:           httpapi.NewRouter(service, logger),
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// runServer serves on listener until ctx is done, then drains in-flight
// requests.
func runServer(ctx context.Context, server *http.Server, listener net.Listener, logger logrus.FieldLogger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", listener.Addr().String()).Info("records-service listening")
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

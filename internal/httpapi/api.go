package httpapi

import (
	"github.com/sirupsen/logrus"

	"quiz-records/internal/records"
)

type API struct {
	service *records.Service
	logger  logrus.FieldLogger
}

func NewAPI(service *records.Service, logger logrus.FieldLogger) *API {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &API{
		service: service,
		logger:  logger,
	}
}

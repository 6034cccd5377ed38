package common

import (
	"encoding/json"
	"net/http"

	"go-auth-api/logger"

	"github.com/sirupsen/logrus"
)

type AppError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Err     error             `json:"-"`
	headers map[string]string `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithHeader attaches a response header to send with the error,
// e.g. Retry-After on 429 responses.
func (e *AppError) WithHeader(key, value string) *AppError {
	if e.headers == nil {
		e.headers = map[string]string{}
	}
	e.headers[key] = value
	return e
}

func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		logger.Log.WithFields(logrus.Fields{
			"status_code":    e.Code,
			"internal_error": e.Err.Error(),
		}).Error(e.Message)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	for k, v := range e.headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(e.Code)
	json.NewEncoder(w).Encode(e)
}

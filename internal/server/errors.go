package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/jimelj/mailApp/internal/ingestion"
	"github.com/jimelj/mailApp/internal/pipeline"
	"github.com/jimelj/mailApp/internal/report"
	"github.com/jimelj/mailApp/internal/schemas"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNoDatabase indicates an endpoint that needs the run store was called
// on a server started without one.
type ErrNoDatabase struct{}

func (e *ErrNoDatabase) Error() string {
	return "run history requires a database; set DATABASE_URL"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		schemaErr     *schemas.ValidationError
		noDB          *ErrNoDatabase
		inputErr      *pipeline.InputError
		reportErr     *report.FileError
		archiveErr    *ingestion.ArchiveError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &schemaErr):
		return http.StatusBadRequest
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.As(err, &inputErr), errors.As(err, &reportErr),
		errors.As(err, &archiveErr), errors.Is(err, ingestion.ErrNoCSM):
		return http.StatusUnprocessableEntity
	case errors.As(err, &noDB):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.opentelemetry.io/otel"

	"github.com/sanLimbu/tasks-api/internal"
)

const otelName = "github.com/sanLimbu/tasks-api/internal/rest"

// debug controls whether concrete error text reaches clients. In production every
// response carries a fixed generic message per status class, details excepted.
var debug bool

// SetDebug toggles debug error reporting, call it once during startup.
func SetDebug(b bool) {
	debug = b
}

// ErrorResponse is the uniform error envelope. Details always carries the structured
// per-field validation errors, the message is generic unless running in debug mode.
type ErrorResponse struct {
	Error      bool              `json:"error"`
	Message    string            `json:"message"`
	StatusCode int               `json:"status_code"`
	Details    map[string]string `json:"details"`
}

func renderErrorResponse(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var ierr *internal.Error
	if errors.As(err, &ierr) {
		switch ierr.Code() {
		case internal.ErrorCodeNotFound:
			status = http.StatusNotFound
		case internal.ErrorCodeInvalidArgument:
			status = http.StatusBadRequest
		case internal.ErrorCodeUnauthorized:
			status = http.StatusUnauthorized
		}
	}

	resp := ErrorResponse{
		Error:      true,
		Message:    genericMessage(status),
		StatusCode: status,
		Details:    fieldDetails(err),
	}

	if debug && err != nil {
		resp.Message = err.Error()
	}

	if err != nil {
		_, span := otel.Tracer(otelName).Start(ctx, "rest.renderErrorResponse")
		defer span.End()

		span.RecordError(err)
	}

	renderResponse(w, resp, status)
}

func genericMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Bad request. Please check your input."
	case http.StatusUnauthorized:
		return "Authentication required."
	case http.StatusForbidden:
		return "You do not have permission to perform this action."
	case http.StatusNotFound:
		return "Resource not found."
	case http.StatusInternalServerError:
		return "An internal server error occurred."
	}

	return "An error occurred."
}

func fieldDetails(err error) map[string]string {
	details := map[string]string{}

	var verr validation.Errors
	if errors.As(err, &verr) {
		for field, fieldErr := range verr {
			details[field] = fieldErr.Error()
		}
	}

	return details
}

func renderResponse(w http.ResponseWriter, res interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")

	content, err := json.Marshal(res)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)

		return
	}

	w.WriteHeader(status)

	_, _ = w.Write(content)
}

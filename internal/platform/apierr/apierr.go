package apierr

import (
	"errors"
	"fmt"
	"net/http"

	domainagg "github.com/yungbote/gymflow-backend/internal/domain/aggregates"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// StatusFor maps an aggregate error code to its HTTP status.
func StatusFor(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusBadRequest
	case domainagg.CodePreconditionFailed, domainagg.CodeInvariantViolation:
		return http.StatusUnprocessableEntity
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeConflict:
		return http.StatusConflict
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromError classifies err for an HTTP response. Internal failures keep their
// cause for logging but expose a generic message.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	var de *domainagg.Error
	if errors.As(err, &de) {
		status := StatusFor(de.Code)
		if status == http.StatusInternalServerError {
			return New(status, string(domainagg.CodeInternal), errors.New("internal error"))
		}
		msg := de.Message
		if msg == "" {
			msg = string(de.Code)
		}
		return New(status, string(de.Code), errors.New(msg))
	}
	return New(http.StatusInternalServerError, string(domainagg.CodeInternal), errors.New("internal error"))
}

// Package errors defines the sentinel errors shared by the discovery pipeline
// and the vocab server, plus an AppError wrapper that carries an HTTP status
// for the serving surface.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrCountingFailed signals a non-zero exit from the external n-gram
	// counter. The pipeline must not retry it.
	ErrCountingFailed = errors.New("counting n-grams failed")
	// ErrDegenerateCorpus signals that no n-gram record passed min_count,
	// leaving the PMI normalizer at zero.
	ErrDegenerateCorpus   = errors.New("degenerate corpus: no n-grams above min count")
	ErrVocabularyNotFound = errors.New("vocabulary not found")
	ErrCorruptRecord      = errors.New("corrupt n-gram record")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInternal           = errors.New("internal error")
	ErrTimeout            = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrVocabularyNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

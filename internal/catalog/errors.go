package catalog

import (
	"errors"
	"fmt"
	"net/http"

	gobreaker "github.com/sony/gobreaker/v2"
)

// APIError is a non-2xx response from the catalog.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: catalog returned %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: catalog returned %d: %s", e.Op, e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrExternalCall
}

// Retryable reports whether the request may succeed if repeated.
func (e *APIError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status/100 == 5
}

// callError wraps transport and decoding failures.
type callError struct {
	op        string
	err       error
	retryable bool
}

func (e *callError) Error() string {
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *callError) Unwrap() error {
	return e.err
}

func (e *callError) Is(target error) bool {
	return target == ErrExternalCall
}

// IsRetryable reports whether err is a catalog failure worth repeating.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var cerr *callError
	if errors.As(err, &cerr) {
		return cerr.retryable
	}
	return false
}

func wrapCall(op string, err error) error {
	if errors.Is(err, ErrExternalCall) {
		return err
	}
	return &callError{op: op, err: err}
}

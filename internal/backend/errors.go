package backend

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/lineboard/internal/domain"
)

var (
	// ErrBackendUnavailable indicates the scheduling backend is unreachable.
	ErrBackendUnavailable = errors.New("scheduling backend unavailable")

	// ErrTimeout indicates a backend call exceeded its deadline.
	ErrTimeout = errors.New("backend request timed out")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("backend retry attempts exhausted")

	// ErrNotFound indicates the backend answered 404. It also wraps
	// ErrUnexpectedStatus.
	ErrNotFound = errors.New("backend resource not found")

	// ErrUnexpectedStatus indicates a non-retryable, non-rejection status.
	ErrUnexpectedStatus = errors.New("unexpected backend status")
)

// RejectedError is returned when the backend refuses a move. It unwraps to
// domain.ErrReassignmentRejected.
type RejectedError struct {
	Status int
	Detail string
}

func (e *RejectedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend rejected move (status %d)", e.Status)
	}
	return fmt.Sprintf("backend rejected move (status %d): %s", e.Status, e.Detail)
}

func (e *RejectedError) Unwrap() error { return domain.ErrReassignmentRejected }

// retryableError marks transient failures (connection errors, 5xx).
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	return errors.As(err, new(*retryableError))
}

func errorCode(err error) string {
	var rejected *RejectedError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &rejected):
		return "REJECTED"
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrBackendUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrRetryExhausted):
		return "RETRY_EXHAUSTED"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrUnexpectedStatus):
		return "STATUS"
	default:
		return "UNKNOWN"
	}
}

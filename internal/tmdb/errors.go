package tmdb

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/listimport/internal/core"
)

// Sentinel errors for classified TMDB responses. ErrNotFound wraps
// core.ErrCatalogNotFound so the engine can recognize it.
var (
	ErrNotFound     = fmt.Errorf("tmdb: %w", core.ErrCatalogNotFound)
	ErrUnauthorized = errors.New("tmdb: unauthorized")
	ErrRateLimited  = errors.New("tmdb: rate limited")
	ErrServer       = errors.New("tmdb: server error")
)

// Error describes a failed TMDB request.
type Error struct {
	Op     string // e.g. "find tt1375666", "movie 27205"
	Status int    // HTTP status, 0 for transport failures
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %v (status %d)", e.Op, e.Err, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify maps a non-200 status to a sentinel.
func classify(status int) error {
	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= 500:
		return ErrServer
	default:
		return fmt.Errorf("tmdb: unexpected status %d", status)
	}
}

// resultLabel is the metrics label for a request outcome.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrServer):
		return "server_error"
	default:
		return "error"
	}
}

package service

import "errors"

// Error taxonomy shared by the recipe, cache, and search services. Callers
// classify failures with errors.Is and map them to transport codes in the
// API layer.
var (
	// ErrValidation marks malformed input. Surfaced immediately, no retry.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks an operation targeting a nonexistent id.
	ErrNotFound = errors.New("not found")

	// ErrCacheRead marks a cache backend or deserialization failure on a
	// read. A plain miss is never an error.
	ErrCacheRead = errors.New("cache read error")

	// ErrCacheWrite marks a cache serialization or backend failure on a
	// write.
	ErrCacheWrite = errors.New("cache write error")

	// ErrSearch marks an unavailable index or malformed query. Never
	// substituted with an empty result set.
	ErrSearch = errors.New("search error")

	// ErrQueue marks a failed index notification after a successful
	// repository mutation. Propagated because downstream consistency can
	// no longer be guaranteed.
	ErrQueue = errors.New("queue error")
)

// ErrorCode returns a stable machine-readable code for an error from the
// taxonomy, or "internal_error" for anything else.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCacheRead):
		return "cache_read_error"
	case errors.Is(err, ErrCacheWrite):
		return "cache_write_error"
	case errors.Is(err, ErrSearch):
		return "search_error"
	case errors.Is(err, ErrQueue):
		return "queue_error"
	default:
		return "internal_error"
	}
}

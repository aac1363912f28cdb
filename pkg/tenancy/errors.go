package tenancy

import "errors"

// Resolution errors. The HTTP layer collapses the first three into a single
// unauthorized response so callers cannot discover which workspaces exist.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("scope not found")
	ErrUpstream        = errors.New("upstream failure")
)

// IsDenied reports whether err is an authorization denial rather than an
// infrastructure failure.
func IsDenied(err error) bool {
	return errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotFound)
}

// Outcome returns the metrics label for a resolution result.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "upstream"
	}
}

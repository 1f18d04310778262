package snippet

import "errors"

// Error kinds surfaced by the store and planner layers. The MCP facade maps
// each kind to a structured failure response; nothing below this layer
// swallows them.
var (
	// ErrValidation is returned for missing required fields, non-positive
	// limits, or malformed input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound is returned when an operation references a snippet id
	// that does not exist.
	ErrNotFound = errors.New("snippet not found")
	// ErrModelUnavailable is returned when the embedding model cannot run.
	ErrModelUnavailable = errors.New("embedding model unavailable")
	// ErrStorage is returned for underlying file or database failures.
	ErrStorage = errors.New("storage error")
	// ErrUnsupported is returned when a semantic operation is invoked on a
	// backend without embedding support.
	ErrUnsupported = errors.New("operation not supported by this backend")
)

// Kind returns the wire name for an error kind, used by the facade when
// shaping failure responses. Unrecognized errors report as storage errors.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, ErrUnsupported):
		return "unsupported_operation"
	default:
		return "storage_error"
	}
}

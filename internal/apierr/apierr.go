// Package apierr carries the error-kind taxonomy used across the
// control plane. Internal subsystems return plain wrapped errors;
// only the REST boundary inspects Kind to pick a status code.
package apierr

import "fmt"

// Kind classifies an error for the REST boundary. It is not a type
// hierarchy — every subsystem returns a plain error, optionally
// wrapped in *Error when its kind matters to a caller outside the
// subsystem.
type Kind int

const (
	// NotFound: CRUD by id on a missing row.
	NotFound Kind = iota
	// InvalidRequest: non-integer id, malformed JSON, missing
	// required field.
	InvalidRequest
	// PersistenceUnexpected: SQL error, row count mismatch.
	PersistenceUnexpected
	// StartupFatal: directory create, DB open, migration, socket
	// bind failure.
	StartupFatal
	// ProbeLifecycleTransient: spawn failed, signal failed, TOML
	// write failed.
	ProbeLifecycleTransient
	// DeliveryTransient: webhook transport failure, DHT send
	// failure, malformed user header.
	DeliveryTransient
	// DecodeSkip: malformed JSON on the socket or in a stored row.
	DecodeSkip
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case InvalidRequest:
		return "invalid_request"
	case PersistenceUnexpected:
		return "persistence_unexpected"
	case StartupFatal:
		return "startup_fatal"
	case ProbeLifecycleTransient:
		return "probe_lifecycle_transient"
	case DeliveryTransient:
		return "delivery_transient"
	case DecodeSkip:
		return "decode_skip"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with a Kind the REST boundary can
// map to a status code.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with kind.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Newf is New with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

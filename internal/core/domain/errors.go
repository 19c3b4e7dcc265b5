package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent extraction failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Configuration Errors.

	// ErrParametersMissing indicates the parameters file does not exist.
	ErrParametersMissing = errors.New("parameters file missing")

	// ErrCheckpointMissing indicates checkpoints were requested but no
	// checkpoint file exists in the output directory.
	ErrCheckpointMissing = errors.New("checkpoint file missing")

	// Extraction Errors.

	// ErrUnexpectedShape indicates a successful response without the expected data field.
	ErrUnexpectedShape = errors.New("unexpected response shape")

	// ErrMalformedRecord indicates a declared nested field that is not an object.
	ErrMalformedRecord = errors.New("malformed record")
)

// ConfigError is a fatal configuration problem. It is surfaced before any
// network activity and never retried.
type ConfigError struct {
	Op   string
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("config: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// TransportError is a network failure or a non-success HTTP status.
// The extractor retries these with a fixed backoff.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport: %s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("transport: %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ShapeError is a successful response whose body lacks the expected structure.
// The extractor retries these under a bounded budget.
type ShapeError struct {
	Field string
	Err   error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape: field %q: %v", e.Field, e.Err)
}

func (e *ShapeError) Unwrap() error { return e.Err }

// FlattenError reports a declared nested field whose value is not an object.
type FlattenError struct {
	Field string
	Value any
}

func (e *FlattenError) Error() string {
	return fmt.Sprintf("flatten: field %q is %T, want object", e.Field, e.Value)
}

func (e *FlattenError) Unwrap() error { return ErrMalformedRecord }

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsShape reports whether err is a ShapeError.
func IsShape(err error) bool {
	var se *ShapeError
	return errors.As(err, &se)
}

// IsConfig reports whether err is a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

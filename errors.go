package duet

import (
	"errors"
	"fmt"
)

// ConfigurationError indicates no usable backend exists at construction
// or switch time. It is raised before any network call.
type ConfigurationError struct {
	Reason string
}

// Error returns the error message.
func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// UpstreamError indicates the backend was reached but returned a failure
// status or the transport failed mid-call. It propagates unchanged;
// callers decide whether to retry.
type UpstreamError struct {
	Backend BackendKind
	Model   string
	Status  int // HTTP status code when known, 0 otherwise
	Cause   error
}

// Error returns a message naming the offending backend and model.
func (e *UpstreamError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("%s backend error (model %s): %v", e.Backend, e.Model, e.Cause)
	}
	return fmt.Sprintf("%s backend error: %v", e.Backend, e.Cause)
}

// Unwrap returns the underlying error.
func (e *UpstreamError) Unwrap() error { return e.Cause }

// UnsupportedOperationError indicates a capability gate rejected the
// request before any network call: audio on the local backend, or images
// on a model with no vision support.
type UnsupportedOperationError struct {
	Op      string
	Backend BackendKind
	Model   string
	Hint    string
}

// Error returns a message naming the operation, backend, and model.
func (e *UnsupportedOperationError) Error() string {
	msg := fmt.Sprintf("%s is not supported by the %s backend", e.Op, e.Backend)
	if e.Model != "" {
		msg += fmt.Sprintf(" (model %s)", e.Model)
	}
	if e.Hint != "" {
		msg += ": " + e.Hint
	}
	return msg
}

// MalformedResponseError indicates the backend call succeeded but its
// output failed normalization or JSON parsing. Raw carries the offending
// text for diagnostics.
type MalformedResponseError struct {
	Raw   string
	Cause error
}

// Error returns the error message.
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed backend response: %v", e.Cause)
}

// Unwrap returns the underlying parse error.
func (e *MalformedResponseError) Unwrap() error { return e.Cause }

// MediaError represents a failure encoding a media attachment.
type MediaError struct {
	Op   string // "read" or "decode"
	Path string // the file path or "bytes"
	Err  error
}

// Error returns a formatted message describing the encoding failure.
func (e *MediaError) Error() string {
	return fmt.Sprintf("media %s error for %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *MediaError) Unwrap() error { return e.Err }

// IsConfiguration returns true if the error is a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsUpstream returns true if the error is an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// IsUnsupported returns true if the error is an UnsupportedOperationError.
func IsUnsupported(err error) bool {
	var ue *UnsupportedOperationError
	return errors.As(err, &ue)
}

// IsMalformed returns true if the error is a MalformedResponseError.
func IsMalformed(err error) bool {
	var me *MalformedResponseError
	return errors.As(err, &me)
}

// Package bridgeerr provides typed error handling for the spadesocketbridge
// provenance engine.
//
// This package defines domain-specific error types that enable better error
// classification and diagnostics at the component that detects them. All
// errors support the standard errors.Is() and errors.As() functions for
// error inspection.
package bridgeerr

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// KindIO indicates an input-source error (socket connect/read failure,
	// socket closed). Fatal for the process per spec.md §7.
	KindIO ErrorKind = iota
	// KindParse indicates a line or record could not be parsed (e.g. no
	// event id found). Handled locally: the line is skipped.
	KindParse
	// KindOption indicates a bad invocation: an unrecognized command-line
	// option, an unreadable or malformed config file, or an invalid socket
	// path.
	KindOption
	// KindProtocol indicates a protocol violation (a late line arriving
	// for an id already released, a spurious sentinel half-pair).
	KindProtocol
	// KindInternal indicates an invariant violation in the engine itself.
	KindInternal
)

// String returns a human-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io error"
	case KindParse:
		return "parse error"
	case KindOption:
		return "option error"
	case KindProtocol:
		return "protocol error"
	case KindInternal:
		return "internal error"
	default:
		return "unknown error"
	}
}

// BridgeError represents an error detected by one of the bridge's pipeline
// components.
type BridgeError struct {
	// Op is the operation that failed (e.g., "dial", "assemble", "release").
	Op string
	// Component is the pipeline component that detected the error, if
	// applicable (e.g. "ioreader", "record", "reorder", "ubsi").
	Component string
	// Err is the underlying error.
	Err error
	// Kind is the error classification.
	Kind ErrorKind
	// Detail provides additional context about the error.
	Detail string
}

// Error returns the error message.
func (e *BridgeError) Error() string {
	if e == nil {
		return "<nil>"
	}

	var msg string
	if e.Component != "" {
		msg = fmt.Sprintf("%s: ", e.Component)
	}
	if e.Op != "" {
		msg += fmt.Sprintf("%s: ", e.Op)
	}
	if e.Detail != "" {
		msg += e.Detail
	} else {
		msg += e.Kind.String()
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *BridgeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether the error matches the target.
// It matches if the target is a *BridgeError with the same Kind; the
// underlying error is matched by errors.Is through Unwrap, not here.
func (e *BridgeError) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	if t, ok := target.(*BridgeError); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New creates a new BridgeError with the given kind.
func New(kind ErrorKind, op string, detail string) *BridgeError {
	return &BridgeError{
		Op:     op,
		Kind:   kind,
		Detail: detail,
	}
}

// Wrap wraps an error with component context.
func Wrap(err error, kind ErrorKind, op string) *BridgeError {
	return &BridgeError{
		Op:   op,
		Err:  err,
		Kind: kind,
	}
}

// WrapWithComponent wraps an error with component context and name.
func WrapWithComponent(err error, kind ErrorKind, op string, component string) *BridgeError {
	return &BridgeError{
		Op:        op,
		Component: component,
		Err:       err,
		Kind:      kind,
	}
}

// WrapWithDetail wraps an error with additional detail.
func WrapWithDetail(err error, kind ErrorKind, op string, detail string) *BridgeError {
	return &BridgeError{
		Op:     op,
		Err:    err,
		Kind:   kind,
		Detail: detail,
	}
}

// IsKind checks if an error is of a specific kind.
func IsKind(err error, kind ErrorKind) bool {
	var berr *BridgeError
	if errors.As(err, &berr) {
		return berr.Kind == kind
	}
	return false
}

// GetKind returns the error kind if the error is a BridgeError.
func GetKind(err error) (ErrorKind, bool) {
	var berr *BridgeError
	if errors.As(err, &berr) {
		return berr.Kind, true
	}
	return 0, false
}

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

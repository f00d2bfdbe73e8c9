// Package railerr defines the shared error-kind taxonomy used across the
// track, block, interval, kinematics, scenario, sipp, and engine packages.
//
// Every package in this module raises domain errors as plain sentinel values
// (errors.New), wrapped with %w for context. railerr adds one
// thing on top: a Kind classifying whether a given error should abort the
// current planning cycle (fatal) or be logged and tolerated (local), per the
// propagation policy below.
//
// Kinds and their default propagation policy:
//
//	KindSchema    - malformed input JSON; always fatal.
//	KindTopology  - a topology-consistency problem (dangling reference,
//	                unresolved side-switch mirror, ...); local by default.
//	KindInterval  - an interval-anomaly (an unsafe interval with
//	                start > end); local by default.
//	KindSearch    - the downstream search subprocess failed or timed out;
//	                local by default (caller decides whether to retry).
//	KindInvariant - a violated data-model invariant (spec.md §3); always fatal.
package railerr

import (
	"errors"
	"fmt"
)

// Kind classifies a railway-domain error for propagation purposes.
type Kind int

const (
	// KindSchema marks malformed input JSON (topology or scenario documents).
	KindSchema Kind = iota
	// KindTopology marks a topology-consistency problem.
	KindTopology
	// KindInterval marks an interval-anomaly detected during a blocking-time sweep.
	KindInterval
	// KindSearch marks a downstream search-subprocess failure.
	KindSearch
	// KindInvariant marks a violated data-model invariant.
	KindInvariant
)

// String renders a Kind for log lines and error messages.
func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "schema"
	case KindTopology:
		return "topology"
	case KindInterval:
		return "interval"
	case KindSearch:
		return "search"
	case KindInvariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// Fatal reports whether errors of this Kind must abort the planning cycle
// rather than be logged and tolerated, per spec.md §7's propagation policy.
func (k Kind) Fatal() bool {
	switch k {
	case KindSchema, KindInvariant:
		return true
	default:
		return false
	}
}

// Error wraps an underlying cause with a Kind and carries the Fatal verdict
// alongside it, so callers can errors.As into it without recomputing policy.
type Error struct {
	Kind  Kind
	Fatal bool
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("railerr: %s: %v", e.Kind, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Err }

// Wrap attaches Kind's propagation policy to err, producing a *Error.
// Wrap(KindX, nil) returns nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Fatal: kind.Fatal(), Err: err}
}

// Wrapf is Wrap with fmt.Errorf-style formatting applied to err first.
func Wrapf(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(kind, fmt.Errorf(format+": %w", append(args, err)...))
}

// As reports whether err (or one it wraps) is a *Error, writing it into out.
func As(err error, out **Error) bool {
	return errors.As(err, out)
}

// IsFatal reports whether err should abort the current planning cycle. A
// plain error not produced by this package (one no *Error wraps) is always
// treated as fatal, since its propagation policy is unknown.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var re *Error
	if errors.As(err, &re) {
		return re.Fatal
	}
	return true
}

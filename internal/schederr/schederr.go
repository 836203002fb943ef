// Package schederr defines the error kinds of the scheduler core (spec §7)
// and the propagation policy: local errors are counted and dropped inside
// the planner, only Configuration/CatalogInconsistency errors abort a build.
package schederr

import "fmt"

// Kind identifies one of the error categories named in spec §7.
type Kind int

const (
	// Configuration marks a fatal error in the parameter/setup tree.
	Configuration Kind = iota
	// CatalogInconsistency marks a fatal catalog cross-reference error.
	CatalogInconsistency
	// GeometryNotVisible marks a local per-station/per-candidate rejection.
	GeometryNotVisible
	// CableWrapUnreachable marks a local cable-wrap rejection.
	CableWrapUnreachable
	// InsufficientFlux marks a local source rejection.
	InsufficientFlux
	// NoFeasibleScan marks a recoverable-then-fatal clock-advance failure.
	NoFeasibleScan
	// SnrUnreachable marks a source+mode combination skipped for one build.
	SnrUnreachable
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case CatalogInconsistency:
		return "catalog-inconsistency"
	case GeometryNotVisible:
		return "geometry-not-visible"
	case CableWrapUnreachable:
		return "cable-wrap-unreachable"
	case InsufficientFlux:
		return "insufficient-flux"
	case NoFeasibleScan:
		return "no-feasible-scan"
	case SnrUnreachable:
		return "snr-unreachable"
	default:
		return "unknown"
	}
}

// Error wraps a scheduling failure with its kind and exit code, the way the
// teacher's err.go wraps a Cause/Code pair.
type Error struct {
	Kind  Kind
	Cause error
	Code  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Fatal reports whether the build as a whole must abort on this error.
func (e *Error) Fatal() bool {
	switch e.Kind {
	case Configuration, CatalogInconsistency:
		return true
	default:
		return false
	}
}

const (
	genericCode = 5000 + iota
	configCode
	catalogCode
)

// New builds an *Error of the given kind wrapping msg.
func New(k Kind, msg string, args ...interface{}) *Error {
	code := genericCode
	switch k {
	case Configuration:
		code = configCode
	case CatalogInconsistency:
		code = catalogCode
	}
	return &Error{Kind: k, Cause: fmt.Errorf(msg, args...), Code: code}
}

// Local reports whether err (if it is a *Error) is a local, recoverable
// rejection that the planner may count and continue past.
func Local(err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return !e.Fatal()
}

// Package fault classifies failures from external collaborators so the
// pipeline can pick a fallback path instead of treating every error alike.
package fault

import (
	"errors"
	"fmt"
)

// Kind partitions failures by the recovery they allow.
type Kind int

const (
	// Unexpected is anything uncaught; terminates the run.
	Unexpected Kind = iota
	// Transport covers failed or timed-out calls to the detector, segmenter
	// or LLM services; recovered locally with a defined fallback.
	Transport
	// Persistence covers image-upload and row-insert failures; isolated to
	// the current sub-region, never fatal to the run.
	Persistence
	// Authorization rejects the caller before any stream opens.
	Authorization
	// NotFound means the referenced job or source image does not exist.
	NotFound
)

var kindNames = map[Kind]string{
	Unexpected:    "unexpected",
	Transport:     "transport",
	Persistence:   "persistence",
	Authorization: "authorization",
	NotFound:      "not_found",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unexpected"
}

// Fault is the error type returned by every collaborator client. Stage names
// the call that failed ("detect", "segment", "brand_identification", ...).
type Fault struct {
	Kind  Kind
	Stage string
	Err   error
}

func (f *Fault) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s: %s failure", f.Stage, f.Kind)
	}
	return fmt.Sprintf("%s: %s failure: %v", f.Stage, f.Kind, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// New wraps err as a Fault of the given kind.
func New(kind Kind, stage string, err error) *Fault {
	return &Fault{Kind: kind, Stage: stage, Err: err}
}

// Transportf builds a Transport fault with a formatted cause.
func Transportf(stage, format string, args ...any) *Fault {
	return &Fault{Kind: Transport, Stage: stage, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the failure kind from err, defaulting to Unexpected for
// errors that did not come from a collaborator client.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return Unexpected
}

// Is reports whether err is a Fault of the given kind.
func Is(err error, kind Kind) bool {
	var f *Fault
	return errors.As(err, &f) && f.Kind == kind
}

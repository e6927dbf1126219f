package resolver

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoFragments      = errors.New("no configuration fragments")
	ErrUnknownPolicy    = errors.New("unknown merge policy")
	ErrInvalidFragment  = errors.New("fragment was not created with NewFragment")
	ErrEmptySource      = errors.New("fragment source is empty")
	ErrEmptyKey         = errors.New("empty key")
	ErrDuplicateKey     = errors.New("duplicate key after normalization")
	ErrTooDeep          = errors.New("nesting exceeds maximum depth")
	ErrCycle            = errors.New("cyclic value")
	ErrUnsupportedValue = errors.New("unsupported value")
)

// ConflictError reports two fragments setting one key to different values
// under PolicyReject.
type ConflictError struct {
	Key    string
	First  string // source of the value already in the plan
	Second string // source that disagreed with it
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting values for %q from %q and %q", e.Key, e.First, e.Second)
}

// ValidationError lists every required key missing from a plan.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required keys: %s", strings.Join(e.Missing, ", "))
}

// StructureError reports a fragment value that cannot be part of a plan:
// an empty or colliding key, excessive nesting, a cycle or an unsupported type.
type StructureError struct {
	Source string
	Path   []string
	Err    error
	Detail string
}

func (e *StructureError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "fragment %q", e.Source)
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, " at %q", joinPath(e.Path))
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if e.Detail != "" {
		b.WriteString(" (" + e.Detail + ")")
	}
	return b.String()
}

func (e *StructureError) Unwrap() error { return e.Err }

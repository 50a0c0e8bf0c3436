package types

import (
	"errors"
	"fmt"
	"strings"
)

// --- Error kinds ---

var (
	// ErrParameterCountMismatch is the parent kind of ErrTooFewParameters and
	// ErrTooManyParameters.
	ErrParameterCountMismatch = errors.New("parameter count mismatch")
	ErrTooFewParameters       = errors.New("too few parameters")
	ErrTooManyParameters      = errors.New("too many parameters")

	ErrUnsupportedValue      = errors.New("unsupported value")
	ErrNullValueNotAllowed   = errors.New("null value not allowed")
	ErrColumnNotFound        = errors.New("column not found")
	ErrColumnIndexOutOfRange = errors.New("column index out of range")
	ErrEmptyResult           = errors.New("empty result access")
	ErrNotSingleColumn       = errors.New("expected a single column result")

	ErrInvalidConnection = errors.New("invalid connection")
	ErrInvalidStatement  = errors.New("invalid statement")

	// ErrAdapterMismatch is returned when a backend specific operation is
	// handed a connection that belongs to another backend.
	ErrAdapterMismatch = errors.New("adapter mismatch")
)

// ParameterCountError reports how many values were offered for how many
// placeholders. It matches ErrParameterCountMismatch and exactly one of
// ErrTooFewParameters or ErrTooManyParameters.
type ParameterCountError struct {
	Expected int
	Provided int
}

func (e *ParameterCountError) Error() string {
	kind := ErrTooFewParameters
	if e.Provided > e.Expected {
		kind = ErrTooManyParameters
	}
	return fmt.Sprintf("%s: statement has %d placeholders, %d values provided", kind, e.Expected, e.Provided)
}

func (e *ParameterCountError) Is(target error) bool {
	switch target {
	case ErrParameterCountMismatch:
		return true
	case ErrTooFewParameters:
		return e.Provided < e.Expected
	case ErrTooManyParameters:
		return e.Provided > e.Expected
	}
	return false
}

// CheckParameterCount returns a *ParameterCountError when provided differs
// from expected.
func CheckParameterCount(expected, provided int) error {
	if expected == provided {
		return nil
	}
	return &ParameterCountError{Expected: expected, Provided: provided}
}

// ColumnError identifies the column a lookup failed on, by name or by index.
type ColumnError struct {
	Kind  error // ErrColumnNotFound or ErrColumnIndexOutOfRange
	Name  string
	Index int
	Count int
}

func (e *ColumnError) Error() string {
	if e.Kind == ErrColumnIndexOutOfRange {
		return fmt.Sprintf("%s: index %d, result has %d columns", e.Kind, e.Index, e.Count)
	}
	return fmt.Sprintf("%s: %q", e.Kind, e.Name)
}

func (e *ColumnError) Unwrap() error { return e.Kind }

// ValueError describes a value that could not be bound or converted.
type ValueError struct {
	Kind   error // ErrUnsupportedValue or ErrNullValueNotAllowed
	Column string
	Value  any
	Target string
	Reason string
}

func (e *ValueError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Column != "" {
		fmt.Fprintf(&b, ": column %q", e.Column)
	}
	if e.Kind == ErrUnsupportedValue {
		fmt.Fprintf(&b, ": %v (%T)", e.Value, e.Value)
	}
	if e.Target != "" {
		fmt.Fprintf(&b, " as %s", e.Target)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

func (e *ValueError) Unwrap() error { return e.Kind }

// Unsupported builds an ErrUnsupportedValue error for v.
func Unsupported(v any, target, reason string) error {
	return &ValueError{Kind: ErrUnsupportedValue, Value: v, Target: target, Reason: reason}
}

// DriverError carries the native error code and message reported by a backend.
type DriverError struct {
	Op           string
	Code         int
	ExtendedCode int
	Message      string
	Query        string
	Err          error
}

func (e *DriverError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Code != 0 {
		fmt.Fprintf(&b, " (code %d", e.Code)
		if e.ExtendedCode != 0 && e.ExtendedCode != e.Code {
			fmt.Fprintf(&b, ", extended %d", e.ExtendedCode)
		}
		b.WriteString(")")
	}
	if e.Query != "" {
		fmt.Fprintf(&b, " in %q", e.Query)
	}
	return b.String()
}

func (e *DriverError) Unwrap() error { return e.Err }

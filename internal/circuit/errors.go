package circuit

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSpec is matched by every input validation failure.
	ErrInvalidSpec = errors.New("invalid circuit spec")

	// ErrOutOfRange is matched when the demand exceeds a standard ladder.
	ErrOutOfRange = errors.New("out of standard range")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidSpec
}

// RangeKind identifies which standard ladder was exceeded.
type RangeKind int

const (
	Overcurrent RangeKind = iota + 1 // breaker ladder
	Oversection                      // cross-section ladder
)

func (k RangeKind) String() string {
	switch k {
	case Overcurrent:
		return "overcurrent"
	case Oversection:
		return "oversection"
	}
	return fmt.Sprintf("RangeKind(%d)", int(k))
}

// RangeError reports a demand above the largest standard ladder entry.
type RangeError struct {
	Kind     RangeKind
	Required float64 // A for Overcurrent, mm² (or A for ampacity) for Oversection
	Largest  float64 // largest ladder entry
	Detail   string
}

func (e *RangeError) Error() string {
	switch e.Kind {
	case Overcurrent:
		return fmt.Sprintf("design current %.2f A exceeds largest standard breaker %g A", e.Required, e.Largest)
	case Oversection:
		if e.Detail != "" {
			return fmt.Sprintf("%s exceeds largest standard size %g mm²", e.Detail, e.Largest)
		}
		return fmt.Sprintf("required cross-section %.2f mm² exceeds largest standard size %g mm²", e.Required, e.Largest)
	}
	return "out of standard range"
}

func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// Public domain.

package decfmt

import (
	"errors"
	"fmt"
)

var (
	// ErrBadSigFigs is returned for a significant digit count out of range.
	ErrBadSigFigs = errors.New("decfmt: invalid number of significant figures")
	// ErrNotFinite is returned for NaN and infinite values.
	ErrNotFinite = errors.New("decfmt: value is not finite")
	// ErrRoundTrip indicates formatted text that does not parse back to the
	// rounded value.  It is always an implementation bug.
	ErrRoundTrip = errors.New("decfmt: round trip mismatch")
)

// RoundTripError describes a failed round trip check.
type RoundTripError struct {
	Std, Plain string
	Want       float64
}

func (e *RoundTripError) Error() string {
	return fmt.Sprintf("decfmt: round trip mismatch: %q, %q, want %v",
		e.Std, e.Plain, e.Want)
}

func (e *RoundTripError) Is(target error) bool { return target == ErrRoundTrip }

// SyntaxError is returned by Parse for text that is not a number.
type SyntaxError struct {
	Text string
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("decfmt: invalid literal %q", e.Text)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Public domain.

package compact

import "errors"

// ErrPanic wraps a panic recovered while compacting a term.
var ErrPanic = errors.New("compact: panic")

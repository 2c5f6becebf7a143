// Public domain.

package series

import "errors"

var (
	// ErrDuplicateGroup is returned when a body repeats a (coord, alpha) group.
	ErrDuplicateGroup = errors.New("series: duplicate group")
	// ErrShortTerm is returned for a coefficient count that does not fit
	// the model's term width.
	ErrShortTerm = errors.New("series: wrong number of coefficients")
	// ErrBadGroup is returned for a coordinate or power out of range.
	ErrBadGroup = errors.New("series: invalid group")
	// ErrLayout is returned for a file that is neither layout.
	ErrLayout = errors.New("series: unrecognized layout")
)

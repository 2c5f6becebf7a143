// Public domain.

package budget

import "errors"

var (
	// ErrUnknownPreset is returned for a preset name not in Presets.
	ErrUnknownPreset = errors.New("budget: unknown preset")
	// ErrBadTMax is returned when TMax is zero, negative, NaN or infinite.
	ErrBadTMax = errors.New("budget: T_MAX must be positive and finite")
	// ErrBadConfig is returned for negative thresholds, a scale without
	// three positive values, or a body weight that is not positive.
	ErrBadConfig = errors.New("budget: invalid configuration")
)

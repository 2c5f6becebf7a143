// Public domain.

// Package budget turns a nominal error budget into per-coefficient leeways.
//
// Error is measured on a normalized scale: angles on the unit sphere for
// lunar longitude and latitude, distance relative to the mean lunar
// distance, and for planets distance in AU weighted per body.  Scale holds,
// per coordinate, the number of coefficient units in one normalized unit.
//
// For a term a * t^alpha * trig(c1 + c2*t + ... ) and |t| <= TMax, changing
// a by da moves the term by at most |da| * TMax^alpha, and changing the
// phase coefficient of t^k by dc moves it by at most
// |a| * TMax^alpha * |dc| * TMax^k, since the derivative of sin and cos is
// bounded by 1.  Splitting a limit L evenly on these bounds gives the
// leeways L/TMax^alpha for a and L/TMax^alpha/|a|/TMax^k for the phase.
package budget

import (
	"fmt"
	"math"
	"sort"

	"github.com/soniakeys/unit"

	"github.com/soniakeys/ephtrunc/internal/series"
)

// MeanLunarDistance in km normalizes the lunar distance coordinate.
const MeanLunarDistance = 384399.0

// arcsec per radian, the lunar angular coefficient unit
var perRadian = 1 / unit.AngleFromSec(1).Rad()

// Config is the error budget of a compaction run.
type Config struct {
	Preset string `yaml:"preset"`
	// TMax bounds |t| in the series' own time unit, Julian centuries for
	// lunar series and millennia for planetary series.
	TMax float64 `yaml:"t_max"`
	// Threshold is the allowed normalized change per coefficient.
	Threshold float64 `yaml:"threshold"`
	// MaxErrorPerChar is the normalized error allowed per character saved.
	MaxErrorPerChar float64 `yaml:"max_error_per_char"`
	// Scale is coefficient units per normalized unit, per coordinate.
	Scale []float64 `yaml:"scale"`
	// BodyWeight scales the budget per body.  Missing bodies weigh 1.
	BodyWeight map[string]float64 `yaml:"body_weight"`
	// Skip lists bodies left out of the compacted series.
	Skip []string `yaml:"skip"`
}

// Preset is a named pair of thresholds.
type Preset struct {
	Name            string
	Threshold       float64
	MaxErrorPerChar float64
}

// A coefficient list costs around 50 characters per term, so a per
// character budget of Threshold/50 drops a whole term at about the error
// the threshold allows for one coefficient.
const charsPerTerm = 50

// Presets, coarse to fine.
var Presets = []Preset{
	{"coarse", 1e-5, 1e-5 / charsPerTerm},
	{"medium", 1e-7, 1e-7 / charsPerTerm},
	{"fine", 1e-9, 1e-9 / charsPerTerm},
}

// PresetByName looks up a preset.
func PresetByName(name string) (Preset, error) {
	for _, p := range Presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// mean distance from the sun in AU
var meanDistance = map[string]float64{
	"MERCURY": 0.39,
	"VENUS":   0.72,
	"MARS":    1.52,
	"JUPITER": 5.2,
	"SATURN":  9.54,
	"URANUS":  19.2,
	"NEPTUNE": 30.06,
}

// PlanetWeights weighs each planet by min(d, |1-d|) for mean solar distance
// d, relative error as seen from both the Sun and the Earth.  The
// Earth-Moon barycenter weighs 1.
func PlanetWeights() map[string]float64 {
	w := map[string]float64{"EARTH-MOON": 1}
	for b, d := range meanDistance {
		w[b] = math.Min(d, math.Abs(1-d))
	}
	return w
}

// Default returns the configuration for a model at the named preset.
func Default(m series.Model, preset string) (Config, error) {
	p, err := PresetByName(preset)
	if err != nil {
		return Config{}, err
	}
	c := Config{Preset: p.Name, Threshold: p.Threshold, MaxErrorPerChar: p.MaxErrorPerChar}
	switch m {
	case series.Lunar:
		c.TMax = 30
		c.Scale = []float64{perRadian, perRadian, MeanLunarDistance}
	case series.Planetary:
		c.TMax = 5
		c.Scale = []float64{1, 1, 1}
		c.BodyWeight = PlanetWeights()
		// the Earth follows poorly from EARTH-MOON minus EARTH
		c.Skip = []string{"EARTH"}
	default:
		return Config{}, fmt.Errorf("budget: unknown model %v", m)
	}
	return c, nil
}

// WithPreset returns c with the thresholds of the named preset.
func (c Config) WithPreset(name string) (Config, error) {
	p, err := PresetByName(name)
	if err != nil {
		return c, err
	}
	c.Preset, c.Threshold, c.MaxErrorPerChar = p.Name, p.Threshold, p.MaxErrorPerChar
	return c, nil
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	switch {
	case !(c.TMax > 0) || math.IsInf(c.TMax, 0):
		return fmt.Errorf("%w: %v", ErrBadTMax, c.TMax)
	case !(c.Threshold >= 0), !(c.MaxErrorPerChar >= 0):
		return fmt.Errorf("%w: negative threshold", ErrBadConfig)
	case len(c.Scale) != 3:
		return fmt.Errorf("%w: scale needs 3 values, have %d", ErrBadConfig, len(c.Scale))
	}
	for i, s := range c.Scale {
		if !(s > 0) {
			return fmt.Errorf("%w: scale[%d] = %v", ErrBadConfig, i, s)
		}
	}
	for b, w := range c.BodyWeight {
		if !(w > 0) {
			return fmt.Errorf("%w: weight of %s = %v", ErrBadConfig, b, w)
		}
	}
	return nil
}

// Skipped reports whether the body is left out.
func (c Config) Skipped(body string) bool {
	for _, s := range c.Skip {
		if s == body {
			return true
		}
	}
	return false
}

// Norm returns coefficient units per normalized unit for a coordinate of a
// body, the coordinate scale times the body weight.
func (c Config) Norm(body string, coord series.Coordinate) float64 {
	w, ok := c.BodyWeight[body]
	if !ok {
		w = 1
	}
	return c.Scale[coord] * w
}

// Limit is the threshold in coefficient units.
func (c Config) Limit(body string, coord series.Coordinate) float64 {
	return c.Threshold * c.Norm(body, coord)
}

// Leeways computes the allowed perturbation of each coefficient of a term
// for a limit in coefficient units.  coeffs[0] is the amplitude.  A zero
// amplitude leaves the phase unconstrained.
func Leeways(coeffs []float64, alpha int, tMax, limit float64) []float64 {
	l := make([]float64, len(coeffs))
	if len(coeffs) == 0 {
		return l
	}
	l0 := limit / math.Pow(tMax, float64(alpha))
	l[0] = l0
	a := math.Abs(coeffs[0])
	for k := 1; k < len(coeffs); k++ {
		l[k] = l0 / a / math.Pow(tMax, float64(k-1))
	}
	return l
}

// Leeways is Leeways at the configured TMax.
func (c Config) Leeways(coeffs []float64, alpha int, limit float64) []float64 {
	return Leeways(coeffs, alpha, c.TMax, limit)
}

// Sensitivities returns, per coefficient, the bound on normalized error
// per unit change of the coefficient.  The inverse of Leeways at limit norm.
func (c Config) Sensitivities(coeffs []float64, alpha int, norm float64) []float64 {
	s := make([]float64, len(coeffs))
	if len(coeffs) == 0 {
		return s
	}
	ta := math.Pow(c.TMax, float64(alpha))
	s[0] = ta / norm
	a := math.Abs(coeffs[0])
	for k := 1; k < len(coeffs); k++ {
		s[k] = a * ta * math.Pow(c.TMax, float64(k-1)) / norm
	}
	return s
}

// DropError is the normalized error of deleting a term with amplitude a.
func (c Config) DropError(a float64, alpha int, norm float64) float64 {
	return math.Abs(a) * math.Pow(c.TMax, float64(alpha)) / norm
}

// PresetNames lists preset names, coarse to fine.
func PresetNames() []string {
	n := make([]string, len(Presets))
	for i, p := range Presets {
		n[i] = p.Name
	}
	return n
}

// WeightedBodies lists the bodies with an explicit weight, sorted.
func (c Config) WeightedBodies() []string {
	b := make([]string, 0, len(c.BodyWeight))
	for n := range c.BodyWeight {
		b = append(b, n)
	}
	sort.Strings(b)
	return b
}

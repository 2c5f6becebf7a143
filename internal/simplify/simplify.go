// Public domain.

// Package simplify finds the simplest decimal inside an interval: the value
// r with a <= r <= b that takes the fewest characters to write, preferring
// values closer to the given x.
//
// Greedy is the reference strategy.  MagnitudeScan is a constant time
// heuristic that agrees with Greedy on typical coefficient intervals but
// not when x, a and b span several orders of magnitude.
package simplify

import (
	"errors"
	"fmt"
	"math"

	"github.com/soniakeys/ephtrunc/internal/decfmt"
)

// ErrNotInInterval is returned when x does not satisfy a <= x <= b.
var ErrNotInInterval = errors.New("simplify: x not in [a, b]")

// Strategy picks a simple literal in [a, b].  Precondition a <= x <= b.
type Strategy interface {
	Simplest(x, a, b float64) (decfmt.Literal, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(x, a, b float64) (decfmt.Literal, error)

func (f StrategyFunc) Simplest(x, a, b float64) (decfmt.Literal, error) {
	return f(x, a, b)
}

// Greedy is the digit count descent strategy.
var Greedy Strategy = StrategyFunc(InInterval)

// MagnitudeScan is the order of magnitude heuristic.
var MagnitudeScan Strategy = StrategyFunc(scanLiteral)

// ByName returns the strategy for "greedy" or "scan".
func ByName(name string) (Strategy, error) {
	switch name {
	case "greedy", "":
		return Greedy, nil
	case "scan":
		return MagnitudeScan, nil
	}
	return nil, fmt.Errorf("simplify: unknown strategy %q", name)
}

func check(x, a, b float64) error {
	if !(a <= x && x <= b) {
		return fmt.Errorf("%w: x=%v a=%v b=%v", ErrNotInInterval, x, a, b)
	}
	return nil
}

// InInterval rounds x to 17, 16, ... 0 significant digits and returns the
// shortest rounding that lands in [a, b].  Between equally short candidates
// the one with more digits, so closer to x, is kept.  If nothing rounds into
// the interval, the shortest exact literal for x is returned.
func InInterval(x, a, b float64) (decfmt.Literal, error) {
	if err := check(x, a, b); err != nil {
		return decfmt.Literal{}, err
	}
	if x == 0 || (a <= 0 && b >= 0) {
		return decfmt.Zero, nil
	}
	d, err := decfmt.Decompose(x)
	if err != nil {
		return decfmt.Literal{}, err
	}
	best, err := decfmt.Shortest(x)
	if err != nil {
		return decfmt.Literal{}, err
	}
	for n := decfmt.MaxSigFigs; n >= 0; n-- {
		lit, err := d.FormatCompact(n)
		if err != nil {
			return decfmt.Literal{}, err
		}
		if v := lit.Float(); v >= a && v <= b && lit.Len() < best.Len() {
			best = lit
		}
	}
	return best, nil
}

// Scan is the magnitude scan on float64 values.
//
// With m the decimal order of b-a, it tries x floored and ceiled to
// multiples of 10^(m+1), then of 10^m, and returns the first candidate
// inside [a, b], the closer of the 10^m pair when both fit.
//
// Known limitation: the candidates are not compared against x's own
// digits, so when the interval is much wider than x the scan can return a
// round number far from x although x itself is equally simple.
// Scan(1, 0.5, 10000) returns 10000 where InInterval returns 1.
func Scan(x, a, b float64) (float64, error) {
	if err := check(x, a, b); err != nil {
		return 0, err
	}
	if x == 0 || (a <= 0 && b >= 0) {
		return 0, nil
	}
	// too much precision needed, keep x
	if (b-a)/math.Abs(x) < 1e-10 {
		return x, nil
	}
	if x < 0 {
		r, err := Scan(-x, -b, -a)
		return -r, err
	}
	// 0 < a <= x <= b
	scale := math.Pow(10, math.Floor(math.Log10(b-a)))
	scale10 := 10 * scale
	// scale <= b-a < scale10
	const sig = 12
	x1 := roundSig(math.Floor(x/scale10)*scale10, sig)
	x2 := roundSig(math.Ceil(x/scale10)*scale10, sig)
	x3 := roundSig(math.Floor(x/scale)*scale, sig)
	x4 := roundSig(math.Ceil(x/scale)*scale, sig)
	in := func(v float64) bool { return v >= a && v <= b }
	switch {
	case in(x1):
		return x1, nil
	case in(x2):
		return x2, nil
	case in(x3) && in(x4):
		if math.Abs(x-x3) <= math.Abs(x-x4) {
			return x3, nil
		}
		return x4, nil
	case in(x3):
		return x3, nil
	case in(x4):
		return x4, nil
	}
	// rounding noise pushed both out
	return x, nil
}

func scanLiteral(x, a, b float64) (decfmt.Literal, error) {
	r, err := Scan(x, a, b)
	if err != nil {
		return decfmt.Literal{}, err
	}
	return decfmt.Shortest(r)
}

// roundSig rounds x to sig significant digits in floating point.  It only
// cleans up noise from the scaling above and is not correctly rounded.
func roundSig(x float64, sig int) float64 {
	if x == 0 || math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}
	mag := math.Floor(math.Log10(math.Abs(x)))
	scale := math.Pow(10, float64(sig)-mag-1)
	return math.RoundToEven(x*scale) / scale
}

// Public domain.

package compact

import (
	"fmt"
	"math"

	"github.com/soniakeys/ephtrunc/internal/budget"
	"github.com/soniakeys/ephtrunc/internal/series"
)

// TermCompactor compacts single terms under a budget.
type TermCompactor struct {
	Config budget.Config
	Policy Policy
}

// TermResult is a compacted term.
type TermResult struct {
	Term    series.Term
	Dropped bool
	// Bound is the normalized error the change can cause for |t| <= TMax.
	Bound float64
}

// Compact shrinks each coefficient of term within its leeway, then decides
// whether the term is worth keeping at all.
//
// The term is dropped when its amplitude compacts to zero, or when the
// error of deleting it, per character the compacted term would occupy, is
// below the per character budget.  A dropped term comes back as all zero literals.
// term is not modified.
func (tc *TermCompactor) Compact(term series.Term, alpha int, body string,
	coord series.Coordinate) (TermResult, error) {
	cfg := tc.Config
	a := term.Amplitude()
	if a == 0 {
		return TermResult{Term: series.ZeroTerm(len(term)), Dropped: true}, nil
	}
	c := term.Floats()
	norm := cfg.Norm(body, coord)
	lee := cfg.Leeways(c, alpha, cfg.Threshold*norm)
	sens := cfg.Sensitivities(c, alpha, norm)

	out := make(series.Term, len(term))
	for i, x := range c {
		l, err := tc.Policy.Shrink(x, Allowance{lee[i], sens[i], cfg.MaxErrorPerChar})
		if err != nil {
			return TermResult{}, fmt.Errorf("coefficient %d: %w", i, err)
		}
		out[i] = l
	}

	// The compacted length is what deleting the term saves.  CostPerChar
	// trades length against MaxErrorPerChar itself, so it is charged the raw
	// length to keep dropping monotone in the budget.
	chars := out.Chars()
	if _, ok := tc.Policy.(CostPerChar); ok {
		chars = term.Chars()
	}
	dropErr := cfg.DropError(a, alpha, norm)
	if out[0].IsZero() || dropErr < cfg.MaxErrorPerChar*float64(chars) {
		return TermResult{Term: series.ZeroTerm(len(term)), Dropped: true, Bound: dropErr}, nil
	}
	return TermResult{Term: out, Bound: tc.bound(c, out, alpha, norm)}, nil
}

// bound is the first order error of replacing coefficients c by out:
// |a - a'| * T^alpha + |a'| * T^alpha * sum |dc_k| * T^(k-1).
func (tc *TermCompactor) bound(c []float64, out series.Term, alpha int, norm float64) float64 {
	T := tc.Config.TMax
	ta := math.Pow(T, float64(alpha))
	b := math.Abs(c[0] - out[0].Float())
	var phase float64
	tk := 1.
	for k := 1; k < len(c); k++ {
		phase += math.Abs(c[k]-out[k].Float()) * tk
		tk *= T
	}
	b += math.Abs(out[0].Float()) * phase
	return b * ta / norm
}

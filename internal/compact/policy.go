// Public domain.

package compact

import (
	"fmt"
	"math"

	"github.com/soniakeys/ephtrunc/internal/decfmt"
	"github.com/soniakeys/ephtrunc/internal/simplify"
)

// Allowance is what a policy may spend on one coefficient.
type Allowance struct {
	// Leeway is the largest change allowed, in coefficient units.
	Leeway float64
	// Sensitivity is normalized error per unit change of the coefficient.
	Sensitivity float64
	// PerChar is the normalized error allowed per character saved.
	PerChar float64
}

// Policy chooses the literal stored for a coefficient.
type Policy interface {
	Name() string
	Shrink(x float64, a Allowance) (decfmt.Literal, error)
}

// FixedLeeway stores the simplest value within the leeway of x.
type FixedLeeway struct {
	Strategy simplify.Strategy // nil means simplify.Greedy
}

func (p FixedLeeway) Name() string { return "fixed" }

func (p FixedLeeway) Shrink(x float64, a Allowance) (decfmt.Literal, error) {
	s := p.Strategy
	if s == nil {
		s = simplify.Greedy
	}
	return s.Simplest(x, x-a.Leeway, x+a.Leeway)
}

// CostPerChar drops digits one rounding at a time, from the exact literal
// toward zero, as long as each step costs no more than PerChar normalized
// error per character it saves.  No step may leave the leeway.
type CostPerChar struct{}

func (CostPerChar) Name() string { return "cost" }

func (CostPerChar) Shrink(x float64, a Allowance) (decfmt.Literal, error) {
	if x == 0 {
		return decfmt.Zero, nil
	}
	d, err := decfmt.Decompose(x)
	if err != nil {
		return decfmt.Literal{}, err
	}
	cur, err := decfmt.Shortest(x)
	if err != nil {
		return decfmt.Literal{}, err
	}
	var curErr float64
	for n := decfmt.MaxSigFigs; n >= 0; n-- {
		cand, err := d.FormatCompact(n)
		if err != nil {
			return decfmt.Literal{}, err
		}
		saved := cur.Len() - cand.Len()
		dx := math.Abs(x - cand.Float())
		if saved <= 0 || dx > a.Leeway {
			continue
		}
		e := dx * a.Sensitivity
		if (e-curErr)/float64(saved) > a.PerChar {
			break
		}
		cur, curErr = cand, e
	}
	return cur, nil
}

// PolicyByName returns "fixed" with the given interval strategy, or "cost".
func PolicyByName(name string, s simplify.Strategy) (Policy, error) {
	switch name {
	case "fixed", "":
		return FixedLeeway{Strategy: s}, nil
	case "cost":
		return CostPerChar{}, nil
	}
	return nil, fmt.Errorf("compact: unknown policy %q", name)
}

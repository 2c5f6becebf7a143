// Public domain.

// Package series holds the data model of a tabulated trigonometric series:
// bodies, groups of terms sharing a coordinate and time power, and the
// terms' coefficients as literals.
//
// Two series layouts are supported.  The lunar layout has terms
//
//	c0 * t^alpha * sin(c1 + c2*t + c3*t^2 + c4*t^3 + c5*t^4)
//
// with spherical coordinates (longitude and latitude in arc seconds,
// distance in km) plus the secular mean longitude polynomial W.  The
// planetary layout has terms
//
//	a * t^alpha * cos(b + c*t)
//
// with rectangular coordinates in AU, one list of groups per body, and a
// rotation matrix to the equatorial frame.
package series

import (
	"fmt"

	"github.com/soniakeys/ephtrunc/internal/decfmt"
)

// Model identifies the series layout.
type Model int

const (
	Lunar     Model = iota // 6 coefficients per term, sine
	Planetary              // 3 coefficients per term, cosine
)

// LunarBody is the body name under which a lunar series is held.
const LunarBody = "MOON"

// Width is the number of coefficients per term.
func (m Model) Width() int {
	if m == Lunar {
		return 6
	}
	return 3
}

func (m Model) String() string {
	switch m {
	case Lunar:
		return "mpp02"
	case Planetary:
		return "vsop87a"
	}
	return fmt.Sprintf("Model(%d)", int(m))
}

// ParseModel returns the model for the names "mpp02" and "vsop87a".
func ParseModel(s string) (Model, error) {
	switch s {
	case "mpp02", "lunar":
		return Lunar, nil
	case "vsop87a", "planetary":
		return Planetary, nil
	}
	return 0, fmt.Errorf("series: unknown model %q", s)
}

// Coordinate identifies the output axis a group contributes to.  For lunar
// series 0, 1, 2 are longitude, latitude, distance; for planetary series
// they are X, Y, Z.
type Coordinate int

// Term is the coefficient tuple of one term.  Index 0 is the amplitude,
// index k >= 1 multiplies t^(k-1) in the phase.
type Term []decfmt.Literal

// Amplitude returns the value of the term's amplitude.
func (t Term) Amplitude() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[0].Float()
}

// Floats returns the term's coefficient values.
func (t Term) Floats() []float64 {
	f := make([]float64, len(t))
	for i, l := range t {
		f[i] = l.Float()
	}
	return f
}

// Chars is the number of characters the term occupies in a coefficient
// list, counting one separator per coefficient.
func (t Term) Chars() int {
	n := len(t)
	for _, l := range t {
		n += l.Len()
	}
	return n
}

// ZeroTerm returns a term of width zero literals.
func ZeroTerm(width int) Term {
	t := make(Term, width)
	for i := range t {
		t[i] = decfmt.Zero
	}
	return t
}

// TermFromFloats builds a term with the shortest exact literal for each
// value.
func TermFromFloats(c ...float64) (Term, error) {
	t := make(Term, len(c))
	for i, x := range c {
		l, err := decfmt.Shortest(x)
		if err != nil {
			return nil, err
		}
		t[i] = l
	}
	return t, nil
}

// GroupKey identifies a group within a body.
type GroupKey struct {
	Coord Coordinate
	Alpha int
}

func (k GroupKey) String() string { return fmt.Sprintf("(%d,%d)", k.Coord, k.Alpha) }

// Group is the terms of a body sharing a coordinate and power of t.
type Group struct {
	Coord Coordinate
	Alpha int
	Terms []Term
}

// Key returns the group's identity.
func (g *Group) Key() GroupKey { return GroupKey{g.Coord, g.Alpha} }

// Body is a named list of groups.
type Body struct {
	Name   string
	Groups []Group
}

// Series is a complete series file.
//
// W and Matrix are the secular coefficients of the lunar and planetary
// layouts.  They are carried through compaction unchanged.
type Series struct {
	Model   Model
	Comment string
	W       []decfmt.Literal
	Matrix  [][]decfmt.Literal
	Bodies  []Body
}

// Body returns the named body, or nil.
func (s *Series) Body(name string) *Body {
	for i := range s.Bodies {
		if s.Bodies[i].Name == name {
			return &s.Bodies[i]
		}
	}
	return nil
}

// TermCount returns the number of terms in the series.
func (s *Series) TermCount() (n int) {
	for _, b := range s.Bodies {
		for _, g := range b.Groups {
			n += len(g.Terms)
		}
	}
	return
}

// Chars returns the number of characters the series' terms occupy.
func (s *Series) Chars() (n int) {
	for _, b := range s.Bodies {
		for _, g := range b.Groups {
			for _, t := range g.Terms {
				n += t.Chars()
			}
		}
	}
	return
}

// Validate checks term widths and that no group key repeats within a body.
func (s *Series) Validate() error {
	w := s.Model.Width()
	for _, b := range s.Bodies {
		seen := map[GroupKey]bool{}
		for _, g := range b.Groups {
			k := g.Key()
			if seen[k] {
				return fmt.Errorf("%w: body %s group %s", ErrDuplicateGroup, b.Name, k)
			}
			seen[k] = true
			if g.Coord < 0 || g.Coord > 2 || g.Alpha < 0 {
				return fmt.Errorf("%w: body %s group %s", ErrBadGroup, b.Name, k)
			}
			for i, t := range g.Terms {
				if len(t) != w {
					return fmt.Errorf("%w: body %s group %s term %d has %d coefficients",
						ErrShortTerm, b.Name, k, i, len(t))
				}
			}
		}
	}
	return nil
}

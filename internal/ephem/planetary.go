// Public domain.

package ephem

import (
	"fmt"
	"math"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/meeus/v3/base"

	"github.com/soniakeys/ephtrunc/internal/series"
)

// AU in km, the value the planetary series were built with.
const AU = 149597870.691

// Planetary evaluates a planetary series.
type Planetary struct {
	matrix [3][3]float64
	bodies map[string][]evalGroup
	names  []string
}

// NewPlanetary prepares a planetary series for evaluation.  A missing
// matrix means the identity.
func NewPlanetary(s *series.Series) (*Planetary, error) {
	p := &Planetary{bodies: map[string][]evalGroup{}}
	switch len(s.Matrix) {
	case 0:
		p.matrix = [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	case 3:
		for i, row := range s.Matrix {
			if len(row) != 3 {
				return nil, fmt.Errorf("ephem: matrix row %d has %d elements", i, len(row))
			}
			for j, x := range row {
				p.matrix[i][j] = x.Float()
			}
		}
	default:
		return nil, fmt.Errorf("ephem: matrix has %d rows", len(s.Matrix))
	}
	for i := range s.Bodies {
		b := &s.Bodies[i]
		p.bodies[b.Name] = evalGroups(b)
		p.names = append(p.names, b.Name)
	}
	return p, nil
}

func (p *Planetary) Bodies() []string { return p.names }

// PosVel returns the heliocentric position and velocity of a body.
func (p *Planetary) PosVel(body string, t float64) (pos, vel coord.Cart, err error) {
	gs, ok := p.bodies[body]
	if !ok {
		err = fmt.Errorf("%w: %s", ErrUnknownBody, body)
		return
	}
	t *= .1 // millennia
	var x, xp [3]float64
	for _, g := range gs {
		ta, tap := powers(t, g.alpha)
		var sum, sump float64
		for _, c := range g.c {
			s, co := math.Sincos(c[1] + t*c[2])
			sum += c[0] * co
			sump -= c[0] * c[2] * s
		}
		x[g.coord] += ta * sum
		xp[g.coord] += tap*sum + ta*sump
	}
	pos = p.rotate(x)
	vel = p.rotate(xp)
	pos.MulScalar(&pos, AU)
	vel.MulScalar(&vel, AU/(10.*base.JulianCentury))
	return
}

func (p *Planetary) rotate(x [3]float64) coord.Cart {
	m := &p.matrix
	return coord.Cart{
		X: m[0][0]*x[0] + m[0][1]*x[1] + m[0][2]*x[2],
		Y: m[1][0]*x[0] + m[1][1]*x[1] + m[1][2]*x[2],
		Z: m[2][0]*x[0] + m[2][1]*x[1] + m[2][2]*x[2],
	}
}

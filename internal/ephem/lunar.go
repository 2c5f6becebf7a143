// Public domain.

package ephem

import (
	"fmt"
	"math"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/unit"

	"github.com/soniakeys/ephtrunc/internal/series"
)

// precession of the ecliptic, Laskar's P and Q polynomials without the
// leading t.
var (
	pc = []float64{0.10180391e-4, 0.47020439e-6, -0.5417367e-9, -0.2507948e-11, 0.463486e-14}
	qc = []float64{-0.113469002e-3, 0.12372674e-6, 0.1265417e-8, -0.1371808e-11, -0.320334e-14}
)

const (
	obliquity = 0.40909280422232897 // J2000, radians
	distScale = 0.9999999498265191
)

var arcsec = unit.AngleFromSec(1).Rad()

// Lunar evaluates a lunar series.
type Lunar struct {
	w      []float64
	groups []evalGroup
}

// NewLunar prepares a lunar series for evaluation.
func NewLunar(s *series.Series) (*Lunar, error) {
	b := s.Body(series.LunarBody)
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBody, series.LunarBody)
	}
	l := &Lunar{w: make([]float64, len(s.W)), groups: evalGroups(b)}
	for i, x := range s.W {
		l.w[i] = x.Float()
	}
	return l, nil
}

func (l *Lunar) Bodies() []string { return []string{series.LunarBody} }

// PosVel returns the geocentric position and velocity of the Moon.
func (l *Lunar) PosVel(body string, t float64) (pos, vel coord.Cart, err error) {
	if body != series.LunarBody {
		err = fmt.Errorf("%w: %s", ErrUnknownBody, body)
		return
	}
	// spherical coordinates of date and their derivatives
	var v, vp [3]float64
	for _, g := range l.groups {
		ta, tap := powers(t, g.alpha)
		var sum, sump float64
		for _, c := range g.c {
			a := base.Horner(t, c[1:]...)
			ap := 0.
			for k := len(c) - 1; k >= 3; k-- {
				ap = ap*t + float64(k-1)*c[k]
			}
			ap = ap*t + c[2]
			s, co := math.Sincos(a)
			sum += c[0] * s
			sump += c[0] * ap * co
		}
		v[g.coord] += ta * sum
		vp[g.coord] += tap*sum + ta*sump
	}
	v[0] = v[0]*arcsec + base.Horner(t, l.w...)
	v[1] *= arcsec
	v[2] *= distScale
	var wp float64
	for k := len(l.w) - 1; k >= 1; k-- {
		wp = wp*t + float64(k)*l.w[k]
	}
	vp[0] = vp[0]*arcsec + wp
	vp[1] *= arcsec

	sl, cl := math.Sincos(v[0])
	sb, cb := math.Sincos(v[1])
	h := coord.Cart{X: v[2] * cb * cl, Y: v[2] * cb * sl, Z: v[2] * sb}
	rp := vp[2]*cb - vp[1]*v[2]*sb
	hp := coord.Cart{
		X: rp*cl - vp[0]*h.Y,
		Y: rp*sl + vp[0]*h.X,
		Z: vp[2]*sb + vp[1]*v[2]*cb,
	}

	// ecliptic of date to ecliptic of J2000
	p := t * base.Horner(t, pc...)
	q := t * base.Horner(t, qc...)
	var pp, qp float64
	for k := len(pc) - 1; k >= 0; k-- {
		pp = pp*t + float64(k+1)*pc[k]
		qp = qp*t + float64(k+1)*qc[k]
	}
	sc := math.Sqrt(math.Max(1-p*p-q*q, 0))
	pc1 := 1 - 2*p*p
	qc1 := 1 - 2*q*q
	pqp := pp*q + p*qp
	d2p := 2*p*pp + 2*q*qp
	pc2 := pp*sc - p*d2p/sc
	qc2 := qp*sc - q*d2p/sc

	e := coord.Cart{
		X: pc1*h.X + 2*p*q*h.Y + 2*p*sc*h.Z,
		Y: 2*p*q*h.X + qc1*h.Y - 2*q*sc*h.Z,
		Z: -2*p*sc*h.X + 2*q*sc*h.Y + (pc1+qc1-1)*h.Z,
	}
	ev := coord.Cart{
		X: pc1*hp.X + 2*p*q*hp.Y + 2*p*sc*hp.Z -
			4*p*pp*h.X + 2*pqp*h.Y + 2*pc2*h.Z,
		Y: 2*p*q*hp.X + qc1*hp.Y - 2*q*sc*hp.Z +
			2*pqp*h.X - 4*q*qp*h.Y - 2*qc2*h.Z,
		Z: -2*p*sc*hp.X + 2*q*sc*hp.Y + (pc1+qc1-1)*hp.Z -
			2*pc2*h.X + 2*qc2*h.Y - 2*d2p*h.Z,
	}
	pos = toEquatorial(e)
	vel = toEquatorial(ev)
	vel.MulScalar(&vel, 1./base.JulianCentury)
	return
}

// toEquatorial rotates ecliptic J2000 to equatorial J2000.
func toEquatorial(e coord.Cart) coord.Cart {
	s, c := math.Sincos(obliquity)
	return coord.Cart{X: e.X, Y: e.Y*c - e.Z*s, Z: e.Y*s + e.Z*c}
}

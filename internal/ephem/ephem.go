// Public domain.

// Package ephem evaluates series to geocentric or heliocentric position and
// velocity, and measures how far two versions of a series disagree.
//
// Time t is in Julian centuries since J2000.0 for both models.  Positions
// are km in the mean equator and equinox of J2000.0, velocities km/day.
package ephem

import (
	"errors"
	"fmt"
	"math"

	"github.com/soniakeys/coord"

	"github.com/soniakeys/ephtrunc/internal/series"
)

// ErrUnknownBody is returned for a body the series does not have.
var ErrUnknownBody = errors.New("ephem: unknown body")

// Evaluator computes state vectors from a series.
type Evaluator interface {
	PosVel(body string, t float64) (pos, vel coord.Cart, err error)
	Bodies() []string
}

// New returns the evaluator for the series' model.
func New(s *series.Series) (Evaluator, error) {
	switch s.Model {
	case series.Lunar:
		return NewLunar(s)
	case series.Planetary:
		return NewPlanetary(s)
	}
	return nil, fmt.Errorf("ephem: %w", series.ErrLayout)
}

// Centuries converts a time bound in the model's own unit to centuries.
func Centuries(m series.Model, t float64) float64 {
	if m == series.Planetary {
		return t * 10
	}
	return t
}

type evalGroup struct {
	coord, alpha int
	c            [][]float64
}

func evalGroups(b *series.Body) []evalGroup {
	gs := make([]evalGroup, len(b.Groups))
	for i, g := range b.Groups {
		eg := evalGroup{coord: int(g.Coord), alpha: g.Alpha, c: make([][]float64, len(g.Terms))}
		for j, t := range g.Terms {
			eg.c[j] = t.Floats()
		}
		gs[i] = eg
	}
	return gs
}

// CoordinateSums returns the plain term sums per coordinate of one body at
// time t in the series' own time unit, before any secular part, scaling or
// rotation is applied.
func CoordinateSums(s *series.Series, body string, t float64) ([3]float64, error) {
	var v [3]float64
	b := s.Body(body)
	if b == nil {
		return v, fmt.Errorf("%w: %s", ErrUnknownBody, body)
	}
	for _, g := range b.Groups {
		ta := math.Pow(t, float64(g.Alpha))
		for _, term := range g.Terms {
			c := term.Floats()
			var phase float64
			for k := len(c) - 1; k >= 1; k-- {
				phase = phase*t + c[k]
			}
			if s.Model == series.Lunar {
				v[g.Coord] += c[0] * ta * math.Sin(phase)
			} else {
				v[g.Coord] += c[0] * ta * math.Cos(phase)
			}
		}
	}
	return v, nil
}

// powers returns t^alpha and its derivative.
func powers(t float64, alpha int) (ta, tap float64) {
	ta = math.Pow(t, float64(alpha))
	if alpha > 0 {
		tap = float64(alpha) * math.Pow(t, float64(alpha-1))
	}
	return
}

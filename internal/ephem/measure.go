// Public domain.

package ephem

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/soniakeys/coord"
	sexa "github.com/soniakeys/sexagesimal"
	"github.com/soniakeys/unit"
	xrand "golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// IntervalRadii are the half widths, in years, of the sampled intervals
// centered on J2000.
var IntervalRadii = []float64{15000, 10000, 5000, 2000, 1000, 500, 200, 100, 50, 30}

// Interval is a set of sample times in centuries.
type Interval struct {
	Name  string
	Times []float64
}

// Intervals returns num evenly spaced times over each interval of
// IntervalRadii that fits in |t| <= tMax centuries.  When none fits, one
// interval of radius tMax is used.
func Intervals(num int, tMax float64) []Interval {
	if num < 2 {
		num = 2
	}
	var radii []float64
	for _, r := range IntervalRadii {
		if r/100 <= tMax {
			radii = append(radii, r)
		}
	}
	if len(radii) == 0 {
		radii = []float64{tMax * 100}
	}
	ivs := make([]Interval, len(radii))
	for i, r := range radii {
		iv := Interval{Name: fmt.Sprintf("(-%g,%g)", r, r), Times: make([]float64, num)}
		for k := range iv.Times {
			s := float64(k) / float64(num-1)
			iv.Times[k] = (-r + 2*s*r) / 100
		}
		ivs[i] = iv
	}
	return ivs
}

// RandomInterval returns n times uniformly distributed over |t| <= tMax.
func RandomInterval(rnd *xrand.Rand, n int, tMax float64) Interval {
	iv := Interval{Name: "random", Times: make([]float64, n)}
	for i := range iv.Times {
		iv.Times[i] = (2*rnd.Float64() - 1) * tMax
	}
	return iv
}

// Stats are error statistics of one body over one interval.  Position
// errors are relative to the reference distance, so they read as angles.
// MaxVel is relative to the reference speed.
type Stats struct {
	Body     string
	Interval string
	N        int
	MeanPos  float64
	StdDev   float64
	MaxPos   float64
	MaxVel   float64
}

func (s Stats) String() string {
	return fmt.Sprintf("%10s %16s %15s %15s %15s %15.0e", s.Body, s.Interval,
		angle(s.MeanPos), angle(s.StdDev), angle(s.MaxPos), s.MaxVel)
}

// StatsHeader heads a list of Stats lines.
const StatsHeader = "      BODY         INTERVAL    MEAN_POS_ERR  STDDEV_POS_ERR     MAX_POS_ERR     MAX_VEL_ERR"

func angle(rad float64) string {
	return fmt.Sprintf("%.2s", sexa.FmtAngle(unit.Angle(rad)))
}

// Compare evaluates cand against ref for each body over each interval.
// Work is spread over GOMAXPROCS goroutines; the result is in body then
// interval order.
func Compare(ctx context.Context, ref, cand Evaluator, bodies []string, ivs []Interval) ([]Stats, error) {
	out := make([]Stats, len(bodies)*len(ivs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, body := range bodies {
		i, body := i, body
		for j, iv := range ivs {
			j, iv := j, iv
			g.Go(func() error {
				st, err := compare(ctx, ref, cand, body, iv)
				out[i*len(ivs)+j] = st
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func compare(ctx context.Context, ref, cand Evaluator, body string, iv Interval) (Stats, error) {
	st := Stats{Body: body, Interval: iv.Name, N: len(iv.Times)}
	var sum, sumSq float64
	for _, t := range iv.Times {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		p0, v0, err := ref.PosVel(body, t)
		if err != nil {
			return st, err
		}
		p, v, err := cand.PosVel(body, t)
		if err != nil {
			return st, err
		}
		ep := relErr(&p, &p0)
		ev := relErr(&v, &v0)
		sum += ep
		sumSq += ep * ep
		st.MaxPos = math.Max(st.MaxPos, ep)
		st.MaxVel = math.Max(st.MaxVel, ev)
	}
	if st.N > 0 {
		n := float64(st.N)
		st.MeanPos = sum / n
		st.StdDev = math.Sqrt(math.Max(sumSq/n-st.MeanPos*st.MeanPos, 0))
	}
	return st, nil
}

// relErr is |x - ref| / |ref|, or |x - ref| when ref is zero.
func relErr(x, ref *coord.Cart) float64 {
	var d coord.Cart
	d.Sub(x, ref)
	e := math.Sqrt(d.Square())
	if r := math.Sqrt(ref.Square()); r > 0 {
		e /= r
	}
	return e
}

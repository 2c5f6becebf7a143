// Public domain.

package compact_test

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	xrand "golang.org/x/exp/rand"

	"github.com/soniakeys/ephtrunc/internal/budget"
	"github.com/soniakeys/ephtrunc/internal/compact"
	"github.com/soniakeys/ephtrunc/internal/decfmt"
	"github.com/soniakeys/ephtrunc/internal/ephem"
	"github.com/soniakeys/ephtrunc/internal/series"
	"github.com/soniakeys/ephtrunc/internal/simplify"
)

var literalCmp = cmp.Comparer(func(a, b decfmt.Literal) bool {
	return a.String() == b.String()
})

func term(t testing.TB, c ...float64) series.Term {
	tm, err := series.TermFromFloats(c...)
	require.NoError(t, err)
	return tm
}

func unitConfig(tMax, threshold, perChar float64) budget.Config {
	return budget.Config{TMax: tMax, Threshold: threshold, MaxErrorPerChar: perChar,
		Scale: []float64{1, 1, 1}}
}

func TestTinyTermDropped(t *testing.T) {
	tc := compact.TermCompactor{
		Config: unitConfig(10, 1e-7, 1e-7),
		Policy: compact.FixedLeeway{},
	}
	r, err := tc.Compact(term(t, 1e-9, 1.25, 8328.69, 0, 0, 0), 0, "MOON", 0)
	require.NoError(t, err)
	assert.True(t, r.Dropped)
	for _, l := range r.Term {
		assert.True(t, l.IsZero())
	}
	assert.InDelta(t, 1e-9, r.Bound, 1e-24)

	r, err = tc.Compact(series.ZeroTerm(6), 2, "MOON", 1)
	require.NoError(t, err)
	assert.True(t, r.Dropped)
	assert.Zero(t, r.Bound)
}

func TestTermWithinLeeway(t *testing.T) {
	cfg, err := budget.Default(series.Lunar, "medium")
	require.NoError(t, err)
	raw := term(t, 22639.586, 2.3555557262, 8328.69142475915, 1.5298e-4, -3.7e-7, 1.7e-9)
	c := raw.Floats()
	norm := cfg.Norm("MOON", 0)
	lee := cfg.Leeways(c, 0, cfg.Threshold*norm)
	for _, p := range []compact.Policy{
		compact.FixedLeeway{Strategy: simplify.Greedy},
		compact.FixedLeeway{Strategy: simplify.MagnitudeScan},
		compact.CostPerChar{},
	} {
		tc := compact.TermCompactor{Config: cfg, Policy: p}
		r, err := tc.Compact(raw, 0, "MOON", 0)
		require.NoError(t, err, p.Name())
		require.False(t, r.Dropped, p.Name())
		assert.Less(t, r.Term.Chars(), raw.Chars(), p.Name())
		for i, l := range r.Term {
			assert.LessOrEqual(t, math.Abs(l.Float()-c[i]), lee[i], "%s coefficient %d", p.Name(), i)
		}
		assert.LessOrEqual(t, r.Bound, 6*cfg.Threshold, p.Name())
		assert.Equal(t, "22639.586", raw[0].String())
	}
}

func TestCostPerChar(t *testing.T) {
	p := compact.CostPerChar{}
	x := 0.123456789012
	// no budget: nothing is worth a nonzero error
	l, err := p.Shrink(x, compact.Allowance{Leeway: 1, Sensitivity: 1})
	require.NoError(t, err)
	assert.Equal(t, x, l.Float())

	// cheap error goes all the way to the leeway
	l, err = p.Shrink(x, compact.Allowance{Leeway: .005, Sensitivity: 1, PerChar: 1})
	require.NoError(t, err)
	assert.Equal(t, "0.12", l.String())

	// a larger budget never gives a longer literal
	prev := math.MaxInt
	for _, pc := range []float64{0, 1e-12, 1e-9, 1e-6, 1e-3, 1} {
		l, err := p.Shrink(x, compact.Allowance{Leeway: .05, Sensitivity: 1, PerChar: pc})
		require.NoError(t, err)
		assert.LessOrEqual(t, l.Len(), prev, "per char %g", pc)
		assert.LessOrEqual(t, math.Abs(l.Float()-x), .05)
		prev = l.Len()
	}

	l, err = p.Shrink(0, compact.Allowance{})
	require.NoError(t, err)
	assert.Equal(t, "0", l.String())
	_, err = p.Shrink(math.NaN(), compact.Allowance{})
	assert.ErrorIs(t, err, decfmt.ErrNotFinite)
}

func TestPolicyByName(t *testing.T) {
	p, err := compact.PolicyByName("cost", nil)
	require.NoError(t, err)
	assert.Equal(t, "cost", p.Name())
	p, err = compact.PolicyByName("", simplify.MagnitudeScan)
	require.NoError(t, err)
	assert.Equal(t, "fixed", p.Name())
	_, err = compact.PolicyByName("exact", nil)
	assert.Error(t, err)
}

func randomTerm(rnd *xrand.Rand, width int) []float64 {
	c := make([]float64, width)
	c[0] = math.Pow(10, -6+10*rnd.Float64())
	if rnd.Intn(2) == 0 {
		c[0] = -c[0]
	}
	c[1] = 2 * math.Pi * rnd.Float64()
	if width == 3 {
		c[0] *= 1e-3 // AU
		c[2] = 1e4 * rnd.Float64()
		return c
	}
	c[2] = 2e4 * (rnd.Float64() - .5)
	c[3] = 1e-2 * (rnd.Float64() - .5)
	c[4] = 1e-5 * (rnd.Float64() - .5)
	c[5] = 1e-8 * (rnd.Float64() - .5)
	return c
}

// randomLunar builds a lunar series of n terms per group.
func randomLunar(t testing.TB, n int) *series.Series {
	rnd := xrand.New(&xrand.PCGSource{})
	rnd.Seed(3)
	b := series.Body{Name: series.LunarBody}
	for coord := series.Coordinate(0); coord < 3; coord++ {
		for alpha := 0; alpha < 2; alpha++ {
			g := series.Group{Coord: coord, Alpha: alpha}
			for i := 0; i < n; i++ {
				g.Terms = append(g.Terms, term(t, randomTerm(rnd, 6)...))
			}
			b.Groups = append(b.Groups, g)
		}
	}
	return &series.Series{
		Model:   series.Lunar,
		Comment: "ELP/MPP02(LLR)",
		W: []decfmt.Literal{decfmt.MustParse("3.81034409"), decfmt.MustParse("8399.684730"),
			decfmt.MustParse("-2.855e-5"), decfmt.MustParse("3.2e-8"), decfmt.MustParse("-1.5e-10")},
		Bodies: []series.Body{b},
	}
}

func TestDropMonotone(t *testing.T) {
	s := randomLunar(t, 200)
	base, err := budget.Default(series.Lunar, "medium")
	require.NoError(t, err)
	for _, p := range []compact.Policy{compact.FixedLeeway{}, compact.CostPerChar{}} {
		prev := map[[2]int]bool{}
		for _, f := range []float64{.1, 1, 10, 100} {
			cfg := base
			cfg.MaxErrorPerChar = base.MaxErrorPerChar * f
			tc := compact.TermCompactor{Config: cfg, Policy: p}
			for gi, g := range s.Bodies[0].Groups {
				for ti, tm := range g.Terms {
					r, err := tc.Compact(tm, g.Alpha, series.LunarBody, g.Coord)
					require.NoError(t, err)
					k := [2]int{gi, ti}
					if prev[k] {
						assert.True(t, r.Dropped, "%s term %v at %gx", p.Name(), k, f)
					}
					prev[k] = r.Dropped
				}
			}
		}
	}
}

func TestDropChargesCompactedLength(t *testing.T) {
	// deleting saves 55 raw characters but only 22 once compacted
	raw := term(t, 0.12345678901234, 1.2345678901234, 2.3456789012345, 0, 0, 0)
	require.Equal(t, 55, raw.Chars())
	cfg := unitConfig(1, 1e-3, .004)
	dropErr := cfg.DropError(raw[0].Float(), 0, 1)

	tc := compact.TermCompactor{Config: cfg, Policy: compact.FixedLeeway{}}
	r, err := tc.Compact(raw, 0, "MOON", 0)
	require.NoError(t, err)
	require.False(t, r.Dropped)
	assert.Equal(t, 22, r.Term.Chars())
	assert.LessOrEqual(t, cfg.MaxErrorPerChar*float64(r.Term.Chars()), dropErr)

	tc.Policy = compact.CostPerChar{}
	r, err = tc.Compact(raw, 0, "MOON", 0)
	require.NoError(t, err)
	assert.True(t, r.Dropped)
	assert.InDelta(t, dropErr, r.Bound, 1e-15)
}

func TestSeries(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := randomLunar(t, 1000)
	before := s.Chars()
	cfg, err := budget.Default(series.Lunar, "medium")
	require.NoError(t, err)

	core, logs := observer.New(zap.DebugLevel)
	out, rep, err := compact.Series(s, cfg, compact.Options{Logger: zap.New(core)})
	require.NoError(t, err)
	assert.Equal(t, before, s.Chars(), "input modified")
	assert.Equal(t, before, rep.CharsBefore)
	assert.Equal(t, 6000, rep.TermsBefore)
	assert.Less(t, rep.CharsAfter, rep.CharsBefore)
	assert.Less(t, rep.TermsAfter, rep.TermsBefore)
	assert.Equal(t, out.Chars(), rep.CharsAfter)
	assert.Empty(t, rep.Failures)
	require.Len(t, rep.Groups, 6)
	assert.Equal(t, 1, logs.FilterMessage("series compacted").Len())
	assert.Equal(t, 6, logs.FilterMessage("group compacted").Len())

	assert.Empty(t, cmp.Diff(s.W, out.W, literalCmp))
	assert.True(t, strings.HasPrefix(out.Comment, "ELP/MPP02(LLR) :: Truncated (T_MAX=30, threshold=1e-07"))
	require.NoError(t, out.Validate())

	// coordinate sums move no more than the reported bound
	rnd := xrand.New(&xrand.PCGSource{})
	rnd.Seed(3)
	times := append(ephem.RandomInterval(rnd, 40, cfg.TMax).Times, -cfg.TMax, 0, cfg.TMax)
	for _, tc := range times {
		v0, err := ephem.CoordinateSums(s, series.LunarBody, tc)
		require.NoError(t, err)
		v1, err := ephem.CoordinateSums(out, series.LunarBody, tc)
		require.NoError(t, err)
		for c := series.Coordinate(0); c < 3; c++ {
			lim := rep.Bound(series.LunarBody, c) * cfg.Norm(series.LunarBody, c)
			assert.LessOrEqual(t, math.Abs(v1[c]-v0[c]), lim*(1+1e-6)+1e-6,
				"t=%g coordinate %d", tc, c)
		}
	}
}

// lunarModel is a main problem of a few large terms under n small random
// terms per group.
func lunarModel(t testing.TB, n int) *series.Series {
	s := randomLunar(t, 0)
	g := s.Bodies[0].Groups
	g[0].Terms = []series.Term{
		term(t, 22639.586, 2.3555557, 8328.6914, 1.5e-4, 0, 0),
		term(t, 4586.438, 8.04, 7214.063, -2e-5, 0, 0)}
	g[2].Terms = []series.Term{term(t, 18461.24, 1.6279, 8433.466, 0, 0, 0)}
	g[4].Terms = []series.Term{
		term(t, 385000.5, math.Pi/2, 0, 0, 0, 0),
		term(t, -20905.36, 3.9263, 8328.6914, 0, 0, 0)}
	rnd := xrand.New(&xrand.PCGSource{})
	rnd.Seed(11)
	for i := range g {
		for k := 0; k < n; k++ {
			c := randomTerm(rnd, 6)
			c[0] = math.Copysign(math.Pow(10, -6+7*rnd.Float64()), c[0])
			g[i].Terms = append(g[i].Terms, term(t, c...))
		}
	}
	return s
}

func TestSeriesEphemerisError(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := lunarModel(t, 300)
	cfg, err := budget.Default(series.Lunar, "medium")
	require.NoError(t, err)
	out, rep, err := compact.Series(s, cfg, compact.Options{})
	require.NoError(t, err)
	require.Less(t, rep.TermsAfter, rep.TermsBefore)

	ref, err := ephem.New(s)
	require.NoError(t, err)
	cand, err := ephem.New(out)
	require.NoError(t, err)
	st, err := ephem.Compare(context.Background(), ref, cand, ref.Bodies(),
		ephem.Intervals(21, cfg.TMax))
	require.NoError(t, err)
	require.NotEmpty(t, st)

	// angles are already radians; distance is relative to the mean, and
	// the model never comes closer than 360000 km
	lim := rep.Bound(series.LunarBody, 0) + rep.Bound(series.LunarBody, 1) +
		rep.Bound(series.LunarBody, 2)*budget.MeanLunarDistance/360000
	require.Positive(t, lim)
	for _, x := range st {
		assert.Positive(t, x.MaxPos, x.Interval)
		assert.LessOrEqual(t, x.MaxPos, 1.2*lim, x.Interval)
		assert.Positive(t, x.MaxVel, x.Interval)
	}
}

func TestSeriesDeterministic(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := randomLunar(t, 300)
	cfg, err := budget.Default(series.Lunar, "coarse")
	require.NoError(t, err)
	want, wantRep, err := compact.Series(s, cfg, compact.Options{Workers: 1})
	require.NoError(t, err)
	for _, opt := range []compact.Options{
		{Workers: 8},
		{Workers: 3, ChunkSize: 7},
		{Workers: 16, ChunkSize: 1},
	} {
		got, rep, err := compact.Series(s, cfg, opt)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(want, got, literalCmp), "%+v", opt)
		assert.Equal(t, wantRep, rep, "%+v", opt)
	}
}

// panicPolicy fails on one value.
type panicPolicy struct{ bad float64 }

func (panicPolicy) Name() string { return "panic" }

func (p panicPolicy) Shrink(x float64, a compact.Allowance) (decfmt.Literal, error) {
	if x == p.bad {
		panic("bad coefficient")
	}
	return compact.FixedLeeway{}.Shrink(x, a)
}

func TestSeriesFailure(t *testing.T) {
	defer goleak.VerifyNone(t)
	bad := term(t, 1234.5678912, 13, 2, 0, 0, 0)
	s := &series.Series{Model: series.Lunar, Bodies: []series.Body{{
		Name: series.LunarBody,
		Groups: []series.Group{
			{Coord: 0, Alpha: 0, Terms: []series.Term{
				term(t, 100.123456789, 1.23456789, 8328.691424, 0, 0, 0),
				bad,
				term(t, 50.98765432, 2.5, 7214.0629, 0, 0, 0),
			}},
			{Coord: 1, Alpha: 1, Terms: []series.Term{term(t, 1e-9, 1, 2, 0, 0, 0)}},
		},
	}}}
	cfg, err := budget.Default(series.Lunar, "medium")
	require.NoError(t, err)
	out, rep, err := compact.Series(s, cfg, compact.Options{Policy: panicPolicy{13}, Workers: 2, ChunkSize: 1})
	require.NoError(t, err)

	require.Len(t, rep.Failures, 1)
	f := rep.Failures[0]
	assert.Equal(t, 1, f.Index)
	assert.Equal(t, series.GroupKey{Coord: 0, Alpha: 0}, f.Key)
	assert.ErrorIs(t, f.Err, compact.ErrPanic)

	// the failed term is kept as it was, the tiny group is gone
	b := out.Body(series.LunarBody)
	require.NotNil(t, b)
	require.Len(t, b.Groups, 1)
	require.Len(t, b.Groups[0].Terms, 3)
	assert.Empty(t, cmp.Diff(bad, b.Groups[0].Terms[1], literalCmp))
	assert.Less(t, b.Groups[0].Terms[0].Chars(), s.Bodies[0].Groups[0].Terms[0].Chars())
	assert.Equal(t, []compact.GroupCount{
		{Body: "MOON", Key: series.GroupKey{Coord: 0, Alpha: 0}, Before: 3, After: 3,
			Bound: rep.Groups[0].Bound},
		{Body: "MOON", Key: series.GroupKey{Coord: 1, Alpha: 1}, Before: 1, After: 0,
			Bound: rep.Groups[1].Bound},
	}, rep.Groups)
}

func TestSeriesPlanetary(t *testing.T) {
	defer goleak.VerifyNone(t)
	rnd := xrand.New(&xrand.PCGSource{})
	rnd.Seed(5)
	s := &series.Series{Model: series.Planetary,
		Matrix: [][]decfmt.Literal{
			{decfmt.MustParse("1"), decfmt.MustParse("0.000000440360"), decfmt.MustParse("-0.000000190919")},
			{decfmt.MustParse("-0.000000479966"), decfmt.MustParse("0.917482137087"), decfmt.MustParse("-0.397776982902")},
			{decfmt.MustParse("0"), decfmt.MustParse("0.397776982902"), decfmt.MustParse("0.917482137087")},
		}}
	for _, name := range []string{"EARTH", "EARTH-MOON", "VENUS"} {
		b := series.Body{Name: name}
		for coord := series.Coordinate(0); coord < 3; coord++ {
			g := series.Group{Coord: coord}
			for i := 0; i < 100; i++ {
				g.Terms = append(g.Terms, term(t, randomTerm(rnd, 3)...))
			}
			b.Groups = append(b.Groups, g)
		}
		s.Bodies = append(s.Bodies, b)
	}
	cfg, err := budget.Default(series.Planetary, "medium")
	require.NoError(t, err)
	out, rep, err := compact.Series(s, cfg, compact.Options{Policy: compact.CostPerChar{}})
	require.NoError(t, err)
	assert.Nil(t, out.Body("EARTH"))
	require.NotNil(t, out.Body("VENUS"))
	assert.Empty(t, cmp.Diff(s.Matrix, out.Matrix, literalCmp))
	assert.Less(t, rep.CharsAfter, rep.CharsBefore)

	for _, tc := range []float64{-5, -1.3, 0.2, 4.9} {
		for _, body := range []string{"EARTH-MOON", "VENUS"} {
			v0, err := ephem.CoordinateSums(s, body, tc)
			require.NoError(t, err)
			v1, err := ephem.CoordinateSums(out, body, tc)
			require.NoError(t, err)
			for c := series.Coordinate(0); c < 3; c++ {
				lim := rep.Bound(body, c) * cfg.Norm(body, c)
				assert.LessOrEqual(t, math.Abs(v1[c]-v0[c]), lim*(1+1e-6)+1e-9)
			}
		}
	}
}

func TestSeriesBadInput(t *testing.T) {
	s := randomLunar(t, 2)
	cfg, err := budget.Default(series.Lunar, "medium")
	require.NoError(t, err)
	cfg.TMax = 0
	_, _, err = compact.Series(s, cfg, compact.Options{})
	assert.ErrorIs(t, err, budget.ErrBadTMax)

	cfg.TMax = 30
	s.Bodies[0].Groups[1].Terms[0] = s.Bodies[0].Groups[1].Terms[0][:5]
	_, _, err = compact.Series(s, cfg, compact.Options{})
	assert.ErrorIs(t, err, series.ErrShortTerm)
}

// Public domain.

// Package compact rewrites a series with fewer characters and terms while
// keeping the change in the evaluated coordinates within an error budget.
package compact

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/soniakeys/ephtrunc/internal/budget"
	"github.com/soniakeys/ephtrunc/internal/decfmt"
	"github.com/soniakeys/ephtrunc/internal/series"
	"github.com/soniakeys/ephtrunc/internal/simplify"
)

// DefaultChunkSize is the number of terms handed to a worker at a time.
const DefaultChunkSize = 256

// Options control a series compaction.  The zero value is usable.
type Options struct {
	Policy    Policy // nil means FixedLeeway with simplify.Greedy
	Workers   int    // <= 0 means GOMAXPROCS
	ChunkSize int    // <= 0 means DefaultChunkSize
	Logger    *zap.Logger
}

// chunk is a run of terms of one group, with its ticket.
type chunk struct {
	body  string
	group *series.Group
	start int
	terms []series.Term
	rch   chan chunkResult
}

type chunkResult struct {
	c   *chunk
	res []termOutcome
}

type termOutcome struct {
	TermResult
	err error
}

// Series compacts every group of every body in s that cfg does not skip.
//
// Terms are compacted concurrently and reassembled in their original
// order, so the result does not depend on the number of workers.  Groups
// left without terms are omitted.  W and Matrix are copied unchanged and
// the comment gets a note of the budget.  A term that fails to compact is
// kept as it was and listed in the report's Failures.  s is not modified.
func Series(s *series.Series, cfg budget.Config, opt Options) (*series.Series, *Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}
	if opt.Policy == nil {
		opt.Policy = FixedLeeway{Strategy: simplify.Greedy}
	}
	if opt.Workers <= 0 {
		opt.Workers = runtime.GOMAXPROCS(0)
	}
	if opt.ChunkSize <= 0 {
		opt.ChunkSize = DefaultChunkSize
	}
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	tc := &TermCompactor{Config: cfg, Policy: opt.Policy}

	out := &series.Series{
		Model:   s.Model,
		Comment: annotate(s.Comment, cfg, opt.Policy),
		W:       append(s.W[:0:0], s.W...),
	}
	if s.Matrix != nil {
		out.Matrix = make([][]decfmt.Literal, len(s.Matrix))
		for i, row := range s.Matrix {
			out.Matrix[i] = append(row[:0:0], row...)
		}
	}
	rep := &Report{CharsBefore: s.Chars(), TermsBefore: s.TermCount()}

	// tickets keep results in submission order.  the buffer lets fast
	// workers drop off results without waiting on a slow one ahead.
	tickets := make(chan chan chunkResult, opt.Workers*2)
	jobs := make(chan *chunk)
	go func() {
		for i := range s.Bodies {
			b := &s.Bodies[i]
			if cfg.Skipped(b.Name) {
				continue
			}
			for j := range b.Groups {
				g := &b.Groups[j]
				for k := 0; k < len(g.Terms); k += opt.ChunkSize {
					e := min(k+opt.ChunkSize, len(g.Terms))
					rch := make(chan chunkResult, 1)
					jobs <- &chunk{b.Name, g, k, g.Terms[k:e], rch}
					tickets <- rch
				}
			}
		}
		close(jobs)
		close(tickets)
	}()
	for n := 0; n < opt.Workers; n++ {
		go worker(tc, jobs)
	}

	// collect in order.  chunks of a group arrive consecutively.
	var cur *series.Group
	var ng series.Group
	var gc GroupCount
	flush := func(body string) {
		if cur == nil {
			return
		}
		gc.After = len(ng.Terms)
		rep.Groups = append(rep.Groups, gc)
		log.Debug("group compacted", zap.String("body", gc.Body),
			zap.Stringer("group", gc.Key), zap.Int("before", gc.Before),
			zap.Int("after", gc.After), zap.Float64("bound", gc.Bound))
		if len(ng.Terms) > 0 {
			ob := out.Body(body)
			if ob == nil {
				out.Bodies = append(out.Bodies, series.Body{Name: body})
				ob = &out.Bodies[len(out.Bodies)-1]
			}
			ob.Groups = append(ob.Groups, ng)
		}
		cur = nil
	}
	var curBody string
	for rch := range tickets {
		cr := <-rch
		c, res := cr.c, cr.res
		if c.group != cur {
			flush(curBody)
			cur, curBody = c.group, c.body
			ng = series.Group{Coord: cur.Coord, Alpha: cur.Alpha}
			gc = GroupCount{Body: c.body, Key: cur.Key(), Before: len(cur.Terms)}
		}
		for i, r := range res {
			if r.err != nil {
				rep.Failures = append(rep.Failures, Failure{
					Body: c.body, Key: cur.Key(), Index: c.start + i, Err: r.err})
				log.Warn("term not compacted", zap.String("body", c.body),
					zap.Stringer("group", cur.Key()), zap.Int("term", c.start+i),
					zap.Error(r.err))
				ng.Terms = append(ng.Terms, append(series.Term(nil), c.terms[i]...))
				continue
			}
			gc.Bound += r.Bound
			if !r.Dropped {
				ng.Terms = append(ng.Terms, r.Term)
			}
		}
	}
	flush(curBody)

	if s.Model == series.Lunar && out.Body(series.LunarBody) == nil {
		out.Bodies = append(out.Bodies, series.Body{Name: series.LunarBody})
	}
	rep.CharsAfter = out.Chars()
	rep.TermsAfter = out.TermCount()
	rep.Log(log)
	return out, rep, nil
}

// worker compacts chunks until jobs is closed.
func worker(tc *TermCompactor, jobs chan *chunk) {
	for c := range jobs {
		res := make([]termOutcome, len(c.terms))
		for i, t := range c.terms {
			res[i] = compactTerm(tc, c, t)
		}
		c.rch <- chunkResult{c, res} // buffered.  drop off and continue
	}
}

// compactTerm compacts one term, turning a panic into an error.
func compactTerm(tc *TermCompactor, c *chunk, t series.Term) (o termOutcome) {
	defer func() {
		if r := recover(); r != nil {
			o = termOutcome{err: fmt.Errorf("%w: %v", ErrPanic, r)}
		}
	}()
	o.TermResult, o.err = tc.Compact(t, c.group.Alpha, c.body, c.group.Coord)
	return
}

func annotate(comment string, cfg budget.Config, p Policy) string {
	note := fmt.Sprintf("Truncated (T_MAX=%g, threshold=%g, policy=%s)",
		cfg.TMax, cfg.Threshold, p.Name())
	if comment == "" {
		return note
	}
	return comment + " :: " + note
}

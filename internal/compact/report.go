// Public domain.

package compact

import (
	"go.uber.org/zap"

	"github.com/soniakeys/ephtrunc/internal/series"
)

// GroupCount is the outcome for one group.
type GroupCount struct {
	Body          string
	Key           series.GroupKey
	Before, After int
	// Bound sums the normalized error bounds of the group's terms.
	Bound float64
}

// Failure is a term kept unchanged because compacting it failed.
type Failure struct {
	Body  string
	Key   series.GroupKey
	Index int
	Err   error
}

// Report summarizes a series compaction.
type Report struct {
	Groups                  []GroupCount
	TermsBefore, TermsAfter int
	CharsBefore, CharsAfter int
	Failures                []Failure
}

// Bound returns the summed normalized error bound of a body's coordinate.
// It bounds the change of the coordinate for |t| <= TMax, before the
// normalization is undone.
func (r *Report) Bound(body string, coord series.Coordinate) (b float64) {
	for _, g := range r.Groups {
		if g.Body == body && g.Key.Coord == coord {
			b += g.Bound
		}
	}
	return
}

// Log writes the totals at info level.
func (r *Report) Log(l *zap.Logger) {
	l.Info("series compacted",
		zap.Int("terms_before", r.TermsBefore),
		zap.Int("terms_after", r.TermsAfter),
		zap.Int("chars_before", r.CharsBefore),
		zap.Int("chars_after", r.CharsAfter),
		zap.Int("failures", len(r.Failures)))
}

// Public domain.

package series

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/soniakeys/ephtrunc/internal/decfmt"
)

// groupJSON is the file form of a group, coefficients flattened term after
// term.
type groupJSON struct {
	Coord  Coordinate       `json:"coord"`
	Alpha  int              `json:"alpha"`
	Coeffs []decfmt.Literal `json:"coeffs"`
}

type fileJSON struct {
	Comment string                 `json:"_comment,omitempty"`
	W       []decfmt.Literal       `json:"W,omitempty"`
	Matrix  [][]decfmt.Literal     `json:"matrix,omitempty"`
	Groups  []groupJSON            `json:"groups,omitempty"`
	Bodies  map[string][]groupJSON `json:"bodies,omitempty"`
}

// Read decodes a series file.  The layout is recognized by its "groups"
// (lunar) or "bodies" (planetary) member.  Number texts are kept exactly as
// they appear in the input.
func Read(r io.Reader) (*Series, error) {
	var f fileJSON
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, err
	}
	s := &Series{Comment: f.Comment, W: f.W, Matrix: f.Matrix}
	switch {
	case f.Groups != nil && f.Bodies == nil:
		s.Model = Lunar
		b, err := unflatten(LunarBody, f.Groups, Lunar.Width())
		if err != nil {
			return nil, err
		}
		s.Bodies = []Body{b}
	case f.Bodies != nil && f.Groups == nil:
		s.Model = Planetary
		names := make([]string, 0, len(f.Bodies))
		for n := range f.Bodies {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			b, err := unflatten(n, f.Bodies[n], Planetary.Width())
			if err != nil {
				return nil, err
			}
			s.Bodies = append(s.Bodies, b)
		}
	default:
		return nil, ErrLayout
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func unflatten(name string, gj []groupJSON, width int) (Body, error) {
	b := Body{Name: name, Groups: make([]Group, len(gj))}
	for i, g := range gj {
		if len(g.Coeffs)%width != 0 {
			return Body{}, fmt.Errorf("%w: body %s group (%d,%d) has %d coefficients",
				ErrShortTerm, name, g.Coord, g.Alpha, len(g.Coeffs))
		}
		terms := make([]Term, len(g.Coeffs)/width)
		for j := range terms {
			terms[j] = Term(g.Coeffs[j*width : (j+1)*width : (j+1)*width])
		}
		b.Groups[i] = Group{Coord: g.Coord, Alpha: g.Alpha, Terms: terms}
	}
	return b, nil
}

func flatten(groups []Group) []groupJSON {
	gj := make([]groupJSON, len(groups))
	for i, g := range groups {
		c := []decfmt.Literal{}
		for _, t := range g.Terms {
			c = append(c, t...)
		}
		gj[i] = groupJSON{Coord: g.Coord, Alpha: g.Alpha, Coeffs: c}
	}
	return gj
}

// MarshalJSON writes the series in its file layout with every coefficient
// literal copied verbatim.
func (s *Series) MarshalJSON() ([]byte, error) {
	// the layout member is written even when empty so the file reads back
	switch s.Model {
	case Lunar:
		f := struct {
			Comment string             `json:"_comment,omitempty"`
			W       []decfmt.Literal   `json:"W,omitempty"`
			Matrix  [][]decfmt.Literal `json:"matrix,omitempty"`
			Groups  []groupJSON        `json:"groups"`
		}{s.Comment, s.W, s.Matrix, []groupJSON{}}
		if b := s.Body(LunarBody); b != nil {
			f.Groups = flatten(b.Groups)
		}
		return json.Marshal(f)
	case Planetary:
		f := struct {
			Comment string                 `json:"_comment,omitempty"`
			W       []decfmt.Literal       `json:"W,omitempty"`
			Matrix  [][]decfmt.Literal     `json:"matrix,omitempty"`
			Bodies  map[string][]groupJSON `json:"bodies"`
		}{s.Comment, s.W, s.Matrix, map[string][]groupJSON{}}
		for _, b := range s.Bodies {
			f.Bodies[b.Name] = flatten(b.Groups)
		}
		return json.Marshal(f)
	}
	return nil, ErrLayout
}

// Write writes s to w as compact JSON.
func Write(w io.Writer, s *Series) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadFile reads a series file.
func ReadFile(fn string) (*Series, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// WriteFile writes s to the named file and returns the number of bytes
// written.
func WriteFile(fn string, s *Series) (int, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return 0, err
	}
	return len(b), os.WriteFile(fn, b, 0o644)
}

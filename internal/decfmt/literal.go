// Public domain.

package decfmt

import (
	"math"
	"strconv"
)

// Literal is a float64 together with the exact text chosen for it.
//
// The text is what gets stored.  It is never regenerated from the value,
// since the point of the text is that it is shorter than what a general
// float formatter would write.  The zero Literal is the value 0 written "0".
type Literal struct {
	text  string
	value float64
}

// Zero is the shortest zero literal.
var Zero = Literal{text: "0"}

// Parse returns a Literal for text, which must be a finite decimal number.
func Parse(text string) (Literal, error) {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil && !math.IsInf(v, 0) {
		return Literal{}, &SyntaxError{Text: text, Err: err}
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return Literal{}, ErrNotFinite
	}
	return Literal{text: text, value: v}, nil
}

// MustParse is Parse for literals known to be valid.  It panics on error.
func MustParse(text string) Literal {
	l, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return l
}

func (l Literal) String() string {
	if l.text == "" {
		return "0"
	}
	return l.text
}

// Float returns the value of the literal.
func (l Literal) Float() float64 { return l.value }

// Len is the number of characters in the literal text.
func (l Literal) Len() int { return len(l.String()) }

// IsZero reports whether the literal's value is zero, however it is written.
func (l Literal) IsZero() bool { return l.value == 0 }

// MarshalJSON writes the literal text verbatim as a JSON number.
func (l Literal) MarshalJSON() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalJSON keeps the number text exactly as it appears in the input.
func (l *Literal) UnmarshalJSON(b []byte) error {
	p, err := Parse(string(b))
	if err != nil {
		return err
	}
	*l = p
	return nil
}

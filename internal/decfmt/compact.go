// Public domain.

package decfmt

import (
	"math"
	"strconv"
	"strings"
)

// FormatCompact rounds x to n significant digits and returns the shortest
// text found that shows the rounded value.
//
// Two forms are considered, standard form d.ddd e±E and plain decimal
// notation when the exponent is small enough that zero padding stays
// reasonable.  The shorter wins, the plain form on ties.  n = 0 gives the
// zero literal "0".  n > MaxSigFigs is treated as MaxSigFigs.
func FormatCompact(x float64, n int) (Literal, error) {
	d, err := Decompose(x)
	if err != nil {
		return Literal{}, err
	}
	return d.FormatCompact(n)
}

// FormatCompact is FormatCompact for a value already decomposed.  Callers
// formatting one value at many digit counts decompose it once.
func (d Decimal) FormatCompact(n int) (Literal, error) {
	switch {
	case n < 0:
		return Literal{}, ErrBadSigFigs
	case n == 0:
		return Zero, nil
	case n > MaxSigFigs:
		n = MaxSigFigs
	}
	if d.IsZero() {
		if n == 1 {
			return Zero, nil
		}
		return Literal{text: "0." + strings.Repeat("0", n-1)}, nil
	}
	c, err := d.Round(n)
	if err != nil {
		return Literal{}, err
	}
	std, plain := c.forms()
	lit := plain
	if len(std) < len(plain) {
		lit = std
	}
	if err = c.checkRoundTrip(std, plain); err != nil {
		return Literal{}, err
	}
	v, _ := strconv.ParseFloat(lit, 64)
	return Literal{text: lit, value: v}, nil
}

// forms returns the standard form and the exponent-free form if one
// applies.  When none applies plain is the standard form again.
func (c Components) forms() (std, plain string) {
	n := len(c.Mantissa)
	std = compose(c.Sign, c.Mantissa, 1, c.Exp)

	mant, point, exp := c.Mantissa, 1, c.Exp
	expLen := len(strconv.Itoa(exp))
	switch {
	case exp > 0 && exp < n:
		// move the decimal point
		point += exp
		exp = 0
	case exp >= n && exp <= n+expLen+6:
		// pad with zeros on the right
		point += exp
		mant += strings.Repeat("0", exp-n+1)
		exp = 0
	case exp < 0 && exp >= -6-expLen:
		// leading zeros
		mant = strings.Repeat("0", -exp) + mant
		exp = 0
	}
	return std, compose(c.Sign, mant, point, exp)
}

func compose(sign int, mant string, point, exp int) string {
	var b strings.Builder
	if sign < 0 {
		b.WriteByte('-')
	}
	if len(mant) > point {
		b.WriteString(mant[:point])
		b.WriteByte('.')
		b.WriteString(mant[point:])
	} else {
		b.WriteString(mant)
	}
	if exp != 0 {
		b.WriteByte('e')
		b.WriteString(strconv.Itoa(exp))
	}
	return b.String()
}

// checkRoundTrip verifies both candidate texts parse to the same float64
// and that this is the correctly rounded value.
func (c Components) checkRoundTrip(std, plain string) error {
	s, err := strconv.ParseFloat(std, 64)
	if err != nil {
		return err
	}
	p, err := strconv.ParseFloat(plain, 64)
	if err != nil {
		return err
	}
	want := c.Float()
	if s != p || s != want {
		return &RoundTripError{Std: std, Plain: plain, Want: want}
	}
	return nil
}

// Shortest returns the compact literal with the fewest significant digits
// that parses back to exactly x.
func Shortest(x float64) (Literal, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Literal{}, ErrNotFinite
	}
	if x == 0 {
		return Zero, nil
	}
	d, err := Decompose(x)
	if err != nil {
		return Literal{}, err
	}
	// Correct rounding can miss the round trip interval at a power of two
	// boundary, where strconv's shortest digits sit on the wider side.
	for n := SigFigs(x); n < MaxSigFigs; n++ {
		lit, err := d.FormatCompact(n)
		if err != nil {
			return Literal{}, err
		}
		if lit.value == x {
			return lit, nil
		}
	}
	return d.FormatCompact(MaxSigFigs)
}

// SigFigs returns the number of significant digits of the shortest decimal
// that identifies x uniquely.
func SigFigs(x float64) int {
	if x == 0 {
		return 0
	}
	s := strconv.FormatFloat(math.Abs(x), 'e', -1, 64)
	mant := s[:strings.IndexByte(s, 'e')]
	return len(strings.Replace(mant, ".", "", 1))
}

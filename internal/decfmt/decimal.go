// Public domain.

// Package decfmt rounds float64 values to an exact number of significant
// decimal digits and writes them in the most compact text that parses back
// to the rounded value.
//
// Rounding works on the exact decimal expansion of the binary value, so the
// result is the correctly rounded decimal (round half to even), not the
// result of scaling and rounding in floating point.
package decfmt

import (
	"math"
	"strconv"
	"strings"
)

// MaxSigFigs is the number of significant digits that always reproduces a
// float64 exactly.  Requests for more digits are clamped to it.
const MaxSigFigs = 17

// Decimal is the exact decimal expansion of a finite float64.
//
// The first digit is in the 10^Exp place.  Digits has no leading or
// trailing zeros.
// The zero value represents 0.
type Decimal struct {
	Neg    bool
	Digits []byte // digit values 0..9, not ASCII
	Exp    int
}

// Decompose returns the exact decimal expansion of x.
func Decompose(x float64) (Decimal, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Decimal{}, ErrNotFinite
	}
	if x == 0 {
		return Decimal{}, nil
	}
	// 767 digits after the point are enough for any float64, and
	// strconv converts exactly at that precision.
	s := strconv.FormatFloat(math.Abs(x), 'e', 767, 64)
	ePos := strings.LastIndexByte(s, 'e')
	exp, err := strconv.Atoi(s[ePos+1:])
	if err != nil {
		return Decimal{}, err
	}
	mant := strings.TrimRight(s[:ePos], "0")
	d := Decimal{Neg: x < 0, Exp: exp, Digits: make([]byte, 0, len(mant))}
	for i := 0; i < len(mant); i++ {
		if c := mant[i]; c != '.' {
			d.Digits = append(d.Digits, c-'0')
		}
	}
	return d, nil
}

// IsZero reports whether d represents zero.
func (d Decimal) IsZero() bool { return len(d.Digits) == 0 }

// Components is a value rounded to a fixed number of significant digits,
// in standard form.  The value is Sign * M.MMM * 10^Exp where M.MMM is
// Mantissa with the decimal point after the first digit.
//
// Mantissa always has exactly the requested number of digits and starts
// with a nonzero digit, except for zero which has Sign 0.
type Components struct {
	Sign     int
	Mantissa string
	Exp      int
}

// Round rounds d to n significant digits, ties to even.
func (d Decimal) Round(n int) (Components, error) {
	if n < 1 {
		return Components{}, ErrBadSigFigs
	}
	if d.IsZero() {
		return Components{Mantissa: strings.Repeat("0", n)}, nil
	}
	c := Components{Sign: 1, Exp: d.Exp}
	if d.Neg {
		c.Sign = -1
	}
	m := make([]byte, n, n+1)
	for i := range m {
		m[i] = d.digit(i)
	}
	if d.roundUp(n) {
		// propagate the carry
		i := n - 1
		for ; i >= 0 && m[i] == 9; i-- {
			m[i] = 0
		}
		if i < 0 {
			// 99..9 became 100..0: one more digit, renormalize
			m = append([]byte{1}, m[:n-1]...)
			c.Exp++
		} else {
			m[i]++
		}
	}
	b := make([]byte, n)
	for i, v := range m {
		b[i] = '0' + v
	}
	c.Mantissa = string(b)
	return c, nil
}

func (d Decimal) digit(i int) byte {
	if i < len(d.Digits) {
		return d.Digits[i]
	}
	return 0
}

// roundUp decides rounding at position n by the digit there and, for an
// exact 5, by whether anything nonzero follows.
func (d Decimal) roundUp(n int) bool {
	switch r := d.digit(n); {
	case r > 5:
		return true
	case r < 5:
		return false
	}
	if len(d.Digits) > n+1 {
		// Digits has no trailing zeros, so something nonzero follows.
		return true
	}
	// exact tie
	return d.digit(n-1)%2 == 1
}

// RoundSig rounds x to n significant digits, n >= 1, ties to even.
func RoundSig(x float64, n int) (Components, error) {
	if n < 1 {
		return Components{}, ErrBadSigFigs
	}
	d, err := Decompose(x)
	if err != nil {
		return Components{}, err
	}
	return d.Round(n)
}

// Float returns the float64 nearest to the rounded value.
func (c Components) Float() float64 {
	if c.Sign == 0 {
		return 0
	}
	s := c.Mantissa[:1]
	if len(c.Mantissa) > 1 {
		s += "." + c.Mantissa[1:]
	}
	f, _ := strconv.ParseFloat(s+"e"+strconv.Itoa(c.Exp), 64)
	if c.Sign < 0 {
		return -f
	}
	return f
}

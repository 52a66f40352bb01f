package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Float is a decimal number. A Float parsed from a literal remembers how it
// was written so it displays the same way, including its decimal separator
// and any trailing zeros.
type Float struct {
	f float64

	// literal parts, empty for computed values.
	neg   bool
	whole string
	frac  string

	sep rune
}

// NewFloat returns a computed Float that displays with '.' as the decimal
// separator.
func NewFloat(f float64) Float {
	return Float{f: f, sep: '.'}
}

// ParseFloat parses a decimal literal written with either '.' or ',' as the
// decimal separator, with an optional leading sign.
func ParseFloat(s string) (Float, error) {
	lit := s
	neg := false
	if strings.HasPrefix(lit, "-") {
		neg = true
		lit = lit[1:]
	} else if strings.HasPrefix(lit, "+") {
		lit = lit[1:]
	}

	sep := '.'
	idx := strings.IndexRune(lit, '.')
	if idx < 0 {
		sep = ','
		idx = strings.IndexRune(lit, ',')
	}
	if idx < 0 {
		return Float{}, fmt.Errorf("%q is not a decimal number", s)
	}

	whole, frac := lit[:idx], lit[idx+1:]
	if whole == "" && frac == "" || !allDigits(whole) || !allDigits(frac) {
		return Float{}, fmt.Errorf("%q is not a decimal number", s)
	}

	f, err := strconv.ParseFloat(whole+"."+frac, 64)
	if err != nil {
		return Float{}, fmt.Errorf("%q is not a decimal number: %w", s, err)
	}
	if neg {
		f = -f
	}

	return Float{f: f, neg: neg, whole: whole, frac: frac, sep: sep}, nil
}

func allDigits(s string) bool {
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

func (Float) isValue() {}

// Separator returns the decimal separator the Float displays with.
func (f Float) Separator() rune {
	if f.sep == 0 {
		return '.'
	}
	return f.sep
}

func (f Float) Add(o Value) (Value, error) {
	if v, ok := o.(Variable); ok {
		return nil, errNumberWithVariable(OpAdd, f, v)
	}
	return floatOp(OpAdd, f, o)
}

func (f Float) Sub(o Value) (Value, error) {
	if v, ok := o.(Variable); ok {
		return nil, errNumberWithVariable(OpSub, f, v)
	}
	return floatOp(OpSub, f, o)
}

func (f Float) Mul(o Value) (Value, error) {
	if v, ok := o.(Variable); ok {
		return v.Mul(f)
	}
	return floatOp(OpMul, f, o)
}

func (f Float) Div(o Value) (Value, error) {
	if v, ok := o.(Variable); ok {
		return divByVariable(f, v)
	}
	return floatOp(OpDiv, f, o)
}

func (f Float) Exp(o Value) (Value, error) {
	if v, ok := o.(Variable); ok {
		return nil, newError(ErrIncompatible, OpExp, f, v, "a variable cannot be used as an exponent")
	}
	return floatOp(OpExp, f, o)
}

func (f Float) Root() (Value, error) {
	return floatRoot(f, 2)
}

func (f Float) NthRoot(n Value) (Value, error) {
	nf, ok := n.Float64()
	if !ok {
		return nil, newError(ErrIncompatible, OpRoot, f, n, "the degree of a root must be a number")
	}
	return floatRoot(f, nf)
}

func (f Float) Negate() Value {
	neg := f
	neg.f = -f.f
	neg.neg = !f.neg
	return neg
}

func (f Float) IsZero() bool {
	return f.f == 0
}

func (f Float) Float64() (float64, bool) {
	return f.f, true
}

func (f Float) Equal(o any) bool {
	other, ok := o.(Float)
	return ok && f.f == other.f
}

func (f Float) String() string {
	if f.whole != "" || f.frac != "" {
		var sb strings.Builder
		if f.neg {
			sb.WriteRune('-')
		}
		sb.WriteString(f.whole)
		sb.WriteRune(f.Separator())
		sb.WriteString(f.frac)
		return sb.String()
	}

	s := strconv.FormatFloat(f.f, 'f', -1, 64)
	if f.Separator() != '.' {
		s = strings.Replace(s, ".", string(f.Separator()), 1)
	}
	return s
}

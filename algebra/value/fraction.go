package value

import (
	"fmt"
	"math"
)

// Fraction is an exact ratio of two values, almost always Integers. A
// Fraction written as a literal keeps the terms it was written with; the
// result of an operation is in lowest terms with a positive denominator, but
// stays a Fraction even when it is a whole number, so frac{1/2}/frac{1/2} is
// frac{1/1}.
type Fraction struct {
	Num Value
	Den Value
}

// NewFraction returns num/den. It is an error for den to be zero.
func NewFraction(num, den Value) (Fraction, error) {
	if den == nil || den.IsZero() {
		return Fraction{}, newError(ErrDivideByZero, OpDiv, num, den, "the denominator of a fraction cannot be zero")
	}
	if !Numeric(num) || !Numeric(den) {
		return Fraction{}, newError(ErrIncompatible, OpDiv, num, den, "the terms of a fraction must be numbers")
	}
	return Fraction{Num: num, Den: den}, nil
}

func (Fraction) isValue() {}

// ints returns the terms as int64 if both are Integers.
func (f Fraction) ints() (n, d int64, ok bool) {
	ni, nok := f.Num.(Integer)
	di, dok := f.Den.(Integer)
	if !nok || !dok || di == 0 {
		return 0, 0, false
	}
	return int64(ni), int64(di), true
}

func (f Fraction) Add(o Value) (Value, error) {
	return f.addOrSub(OpAdd, o)
}

func (f Fraction) Sub(o Value) (Value, error) {
	return f.addOrSub(OpSub, o)
}

func (f Fraction) addOrSub(op Op, o Value) (Value, error) {
	var r Fraction
	switch v := o.(type) {
	case Integer:
		r = v.asFraction()
	case Fraction:
		r = v
	case Float:
		return floatOp(op, f, v)
	case Variable:
		return nil, errNumberWithVariable(op, f, v)
	default:
		return nil, errUnknownVariant(op, f, o)
	}

	lcd, err := LeastCommonDenominator(f, r)
	if err != nil {
		return floatOp(op, f, r)
	}
	left, err := f.ExpandTo(lcd)
	if err != nil {
		return floatOp(op, f, r)
	}
	right, err := r.ExpandTo(lcd)
	if err != nil {
		return floatOp(op, f, r)
	}

	ln, d, _ := left.ints()
	rn, _, _ := right.ints()
	if op == OpSub {
		if rn == math.MinInt64 {
			return floatOp(op, f, r)
		}
		rn = -rn
	}
	n, ok := addInt(ln, rn)
	if !ok {
		return floatOp(op, f, r)
	}
	return reduce(n, d), nil
}

func (f Fraction) Mul(o Value) (Value, error) {
	var r Fraction
	switch v := o.(type) {
	case Integer:
		r = v.asFraction()
	case Fraction:
		r = v
	case Float:
		return floatOp(OpMul, f, v)
	case Variable:
		return v.Mul(f)
	default:
		return nil, errUnknownVariant(OpMul, f, o)
	}

	ln, ld, lok := f.ints()
	rn, rd, rok := r.ints()
	if !lok || !rok {
		return floatOp(OpMul, f, r)
	}
	n, nok := mulInt(ln, rn)
	d, dok := mulInt(ld, rd)
	if !nok || !dok {
		return floatOp(OpMul, f, r)
	}
	return reduce(n, d), nil
}

func (f Fraction) Div(o Value) (Value, error) {
	var r Fraction
	switch v := o.(type) {
	case Integer:
		r = v.asFraction()
	case Fraction:
		r = v
	case Float:
		return floatOp(OpDiv, f, v)
	case Variable:
		return divByVariable(f, v)
	default:
		return nil, errUnknownVariant(OpDiv, f, o)
	}
	if r.IsZero() {
		return nil, errDivZero(OpDiv, f, o)
	}

	ln, ld, lok := f.ints()
	rn, rd, rok := r.ints()
	if !lok || !rok {
		return floatOp(OpDiv, f, r)
	}
	n, nok := mulInt(ln, rd)
	d, dok := mulInt(ld, rn)
	if !nok || !dok {
		return floatOp(OpDiv, f, r)
	}
	return reduce(n, d), nil
}

func (f Fraction) Exp(o Value) (Value, error) {
	switch v := o.(type) {
	case Integer:
		n, d, ok := f.ints()
		if !ok {
			return floatOp(OpExp, f, v)
		}
		e := int64(v)
		if e < 0 {
			if n == 0 {
				return nil, errDivZero(OpExp, f, v)
			}
			n, d, e = d, n, -e
		}
		pn, nok := powInt(n, e)
		pd, dok := powInt(d, e)
		if !nok || !dok {
			return floatOp(OpExp, f, v)
		}
		return reduce(pn, pd), nil
	case Float, Fraction:
		return floatOp(OpExp, f, v)
	case Variable:
		return nil, newError(ErrIncompatible, OpExp, f, v, "a variable cannot be used as an exponent")
	default:
		return nil, errUnknownVariant(OpExp, f, o)
	}
}

func (f Fraction) Root() (Value, error) {
	return f.NthRoot(Integer(2))
}

func (f Fraction) NthRoot(n Value) (Value, error) {
	nf, ok := n.Float64()
	if !ok {
		return nil, newError(ErrIncompatible, OpRoot, f, n, "the degree of a root must be a number")
	}
	if deg, isInt := n.(Integer); isInt && deg > 0 {
		num, den, ok := f.ints()
		if ok {
			rn, nExact := intRoot(num, int64(deg))
			rd, dExact := intRoot(den, int64(deg))
			if nExact && dExact {
				return reduce(rn, rd), nil
			}
		}
	}
	return floatRoot(f, nf)
}

func (f Fraction) Negate() Value {
	return Fraction{Num: f.Num.Negate(), Den: f.Den}
}

func (f Fraction) IsZero() bool {
	return f.Num.IsZero()
}

func (f Fraction) Float64() (float64, bool) {
	n, nok := f.Num.Float64()
	d, dok := f.Den.Float64()
	if !nok || !dok || d == 0 {
		return 0, false
	}
	return n / d, true
}

// Equal returns whether o is a Fraction with the same terms. frac{1/2} and
// frac{2/4} are not Equal; use Compare to compare magnitudes.
func (f Fraction) Equal(o any) bool {
	other, ok := o.(Fraction)
	return ok && f.Num.Equal(other.Num) && f.Den.Equal(other.Den)
}

func (f Fraction) String() string {
	return fmt.Sprintf("frac{%s/%s}", f.Num, f.Den)
}

// ExpandTo returns the equivalent fraction with denominator den. den must be
// a multiple of the current denominator.
func (f Fraction) ExpandTo(den Value) (Fraction, error) {
	n, d, ok := f.ints()
	target, tok := den.(Integer)
	if !ok || !tok {
		return Fraction{}, newError(ErrIncompatible, OpMul, f, den, "only fractions of integers can be expanded")
	}
	if target == 0 || int64(target)%d != 0 {
		return Fraction{}, newError(ErrIncompatible, OpMul, f, den, "%s is not a multiple of the denominator", den)
	}

	factor := int64(target) / d
	num, mok := mulInt(n, factor)
	if !mok {
		return Fraction{}, newError(ErrIncompatible, OpMul, f, den, "numerator overflows")
	}
	return Fraction{Num: Integer(num), Den: target}, nil
}

// ShrinkTo divides both terms by 2, 3, 5 and 7 for as long as both stay
// divisible and the denominator stays above target. It never changes the
// value of the fraction.
func (f Fraction) ShrinkTo(target Value) Fraction {
	n, d, ok := f.ints()
	limit, lok := target.Float64()
	if !ok || !lok {
		return f
	}

	for _, p := range shrinkPrimes {
		for n%p == 0 && d%p == 0 && float64(d) > limit && float64(d/p) >= limit {
			n /= p
			d /= p
		}
	}
	return Fraction{Num: Integer(n), Den: Integer(d)}
}

var shrinkPrimes = []int64{2, 3, 5, 7}

// LeastCommonDenominator returns a common denominator of fracs that is as
// small as can be found cheaply. If every denominator is the same, it is
// returned. Otherwise the product of the denominators is divided by 2, 3, 5
// and 7 for as long as every denominator still divides it; when nothing
// divides out, the product itself is returned.
func LeastCommonDenominator(fracs ...Fraction) (Value, error) {
	if len(fracs) == 0 {
		return nil, newError(ErrIncompatible, "", nil, nil, "no fractions to find a common denominator of")
	}

	dens := make([]int64, len(fracs))
	allSame := true
	for i, f := range fracs {
		_, d, ok := f.ints()
		if !ok {
			return nil, newError(ErrIncompatible, OpAdd, f, nil, "only fractions of integers have a common denominator")
		}
		if d < 0 {
			d = -d
		}
		dens[i] = d
		if d != dens[0] {
			allSame = false
		}
	}
	if allSame {
		return Integer(dens[0]), nil
	}

	product := int64(1)
	for i, d := range dens {
		var ok bool
		product, ok = mulInt(product, d)
		if !ok {
			return nil, newError(ErrIncompatible, OpMul, fracs[i], nil, "common denominator overflows")
		}
	}

	lcd := product
	for _, p := range shrinkPrimes {
		for lcd%p == 0 && dividesAll(lcd/p, dens) {
			lcd /= p
		}
	}
	return Integer(lcd), nil
}

func dividesAll(n int64, dens []int64) bool {
	for _, d := range dens {
		if n%d != 0 {
			return false
		}
	}
	return true
}

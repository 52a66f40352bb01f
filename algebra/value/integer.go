package value

import (
	"math"
	"strconv"
)

// Integer is a whole number. Results that would overflow an int64 are
// computed in floating point instead.
type Integer int64

func (Integer) isValue() {}

func (i Integer) Add(o Value) (Value, error) {
	switch r := o.(type) {
	case Integer:
		if sum, ok := addInt(int64(i), int64(r)); ok {
			return Integer(sum), nil
		}
		return floatOp(OpAdd, i, r)
	case Float:
		return floatOp(OpAdd, i, r)
	case Fraction:
		return i.asFraction().Add(r)
	case Variable:
		return nil, errNumberWithVariable(OpAdd, i, r)
	default:
		return nil, errUnknownVariant(OpAdd, i, o)
	}
}

func (i Integer) Sub(o Value) (Value, error) {
	switch r := o.(type) {
	case Integer:
		if diff, ok := addInt(int64(i), -int64(r)); ok && r != math.MinInt64 {
			return Integer(diff), nil
		}
		return floatOp(OpSub, i, r)
	case Float:
		return floatOp(OpSub, i, r)
	case Fraction:
		return i.asFraction().Sub(r)
	case Variable:
		return nil, errNumberWithVariable(OpSub, i, r)
	default:
		return nil, errUnknownVariant(OpSub, i, o)
	}
}

func (i Integer) Mul(o Value) (Value, error) {
	switch r := o.(type) {
	case Integer:
		if prod, ok := mulInt(int64(i), int64(r)); ok {
			return Integer(prod), nil
		}
		return floatOp(OpMul, i, r)
	case Float:
		return floatOp(OpMul, i, r)
	case Fraction:
		return i.asFraction().Mul(r)
	case Variable:
		return r.Mul(i)
	default:
		return nil, errUnknownVariant(OpMul, i, o)
	}
}

func (i Integer) Div(o Value) (Value, error) {
	switch r := o.(type) {
	case Integer:
		if r == 0 {
			return nil, errDivZero(OpDiv, i, r)
		}
		if r == -1 && i == math.MinInt64 {
			return floatOp(OpDiv, i, r)
		}
		if i%r == 0 {
			return i / r, nil
		}
		return reduce(int64(i), int64(r)), nil
	case Float:
		return floatOp(OpDiv, i, r)
	case Fraction:
		return i.asFraction().Div(r)
	case Variable:
		return divByVariable(i, r)
	default:
		return nil, errUnknownVariant(OpDiv, i, o)
	}
}

func (i Integer) Exp(o Value) (Value, error) {
	switch r := o.(type) {
	case Integer:
		if r >= 0 {
			if p, ok := powInt(int64(i), int64(r)); ok {
				return Integer(p), nil
			}
			return floatOp(OpExp, i, r)
		}
		if i == 0 {
			return nil, errDivZero(OpExp, i, r)
		}
		p, ok := powInt(int64(i), -int64(r))
		if !ok {
			return floatOp(OpExp, i, r)
		}
		return reduce(1, p), nil
	case Float, Fraction:
		return floatOp(OpExp, i, r)
	case Variable:
		return nil, newError(ErrIncompatible, OpExp, i, r, "a variable cannot be used as an exponent")
	default:
		return nil, errUnknownVariant(OpExp, i, o)
	}
}

func (i Integer) Root() (Value, error) {
	return i.NthRoot(Integer(2))
}

func (i Integer) NthRoot(n Value) (Value, error) {
	nf, ok := n.Float64()
	if !ok {
		return nil, newError(ErrIncompatible, OpRoot, i, n, "the degree of a root must be a number")
	}
	if ni, isInt := n.(Integer); isInt && ni > 0 {
		if root, exact := intRoot(int64(i), int64(ni)); exact {
			return Integer(root), nil
		}
	}
	return floatRoot(i, nf)
}

func (i Integer) Negate() Value {
	if i == math.MinInt64 {
		return Float{f: -float64(i), sep: '.'}
	}
	return -i
}

func (i Integer) IsZero() bool {
	return i == 0
}

func (i Integer) Float64() (float64, bool) {
	return float64(i), true
}

func (i Integer) Equal(o any) bool {
	other, ok := o.(Integer)
	return ok && i == other
}

func (i Integer) String() string {
	return strconv.FormatInt(int64(i), 10)
}

func (i Integer) asFraction() Fraction {
	return Fraction{Num: i, Den: Integer(1)}
}

func addInt(a, b int64) (int64, bool) {
	c := a + b
	if (c > a) != (b > 0) {
		return 0, false
	}
	return c, true
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return c, true
}

func powInt(base, exp int64) (int64, bool) {
	switch base {
	case 0:
		if exp == 0 {
			return 1, true
		}
		return 0, true
	case 1:
		return 1, true
	case -1:
		if exp%2 == 0 {
			return 1, true
		}
		return -1, true
	}

	result := int64(1)
	for k := int64(0); k < exp; k++ {
		var ok bool
		result, ok = mulInt(result, base)
		if !ok {
			return 0, false
		}
	}
	return result, true
}

// intRoot returns the exact n-th root of x if there is one.
func intRoot(x, n int64) (int64, bool) {
	neg := x < 0
	if neg {
		if n%2 == 0 {
			return 0, false
		}
		x = -x
	}
	r := int64(math.Round(math.Pow(float64(x), 1/float64(n))))
	p, ok := powInt(r, n)
	if !ok || p != x {
		return 0, false
	}
	if neg {
		r = -r
	}
	return r, true
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// reduce builds the fraction n/d in lowest terms with a positive denominator.
// d must not be zero.
func reduce(n, d int64) Fraction {
	if d < 0 && n != math.MinInt64 && d != math.MinInt64 {
		n, d = -n, -d
	}
	if g := gcd(n, d); g > 1 {
		n, d = n/g, d/g
	}
	return Fraction{Num: Integer(n), Den: Integer(d)}
}

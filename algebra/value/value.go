// Package value holds the closed set of algebraic values the solver works
// with: Integer, Float, Fraction and Variable.
//
// Values are immutable. Every operation returns a new Value and leaves its
// operands alone, so earlier values can be kept around safely after a rewrite.
// Binary operations dispatch on the variant of the right-hand operand.
package value

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Op is an arithmetic operator.
type Op string

const (
	OpAdd  Op = "+"
	OpSub  Op = "-"
	OpMul  Op = "*"
	OpDiv  Op = "/"
	OpExp  Op = "^"
	OpRoot Op = "√"
)

// Value is one of Integer, Float, Fraction or Variable. The interface is
// sealed; a variant that is missing an operation does not compile.
type Value interface {
	Add(o Value) (Value, error)
	Sub(o Value) (Value, error)
	Mul(o Value) (Value, error)
	Div(o Value) (Value, error)
	Exp(o Value) (Value, error)

	// Root returns the square root.
	Root() (Value, error)

	// NthRoot returns the n-th root.
	NthRoot(n Value) (Value, error)

	// Negate returns the additive inverse.
	Negate() Value

	// IsZero returns whether the value is zero. A Variable is zero when its
	// coefficient is.
	IsZero() bool

	// Float64 returns the numeric value. ok is false for a Variable.
	Float64() (f float64, ok bool)

	// Equal returns whether o is the same variant with the same value.
	Equal(o any) bool

	String() string

	isValue()
}

var (
	// ErrValue is matched by every value Error with errors.Is.
	ErrValue = errors.New("value error")

	// ErrDivideByZero is matched by errors from dividing by zero or building a
	// fraction with a zero denominator.
	ErrDivideByZero = errors.New("division by zero")

	// ErrMismatchedExponent is matched by errors from adding or subtracting
	// like variables whose exponents differ.
	ErrMismatchedExponent = errors.New("mismatched exponents")

	// ErrIncompatible is matched by errors from combining values that cannot
	// be combined by the operation, such as adding a number to a variable.
	ErrIncompatible = errors.New("incompatible operands")

	// ErrDomain is matched by errors from operations with no real result, such
	// as the square root of a negative number.
	ErrDomain = errors.New("no real result")
)

// Error is returned when an operation cannot be carried out on its operands.
// It is an expected outcome of asking for an invalid simplification rather
// than a program fault.
type Error struct {
	Op    Op
	Left  Value
	Right Value

	Reason string

	kind error
}

func (e Error) Error() string {
	switch {
	case e.Left == nil:
		return fmt.Sprintf("cannot compute result: %s", e.Reason)
	case e.Op == "":
		return fmt.Sprintf("cannot compare %s and %s: %s", e.Left, e.Right, e.Reason)
	case e.Right == nil:
		return fmt.Sprintf("cannot compute %s%s: %s", e.Op, e.Left, e.Reason)
	default:
		return fmt.Sprintf("cannot compute %s %s %s: %s", e.Left, e.Op, e.Right, e.Reason)
	}
}

// Is returns whether target is ErrValue or the specific kind of the error.
func (e Error) Is(target error) bool {
	return target == ErrValue || (e.kind != nil && target == e.kind)
}

func newError(kind error, op Op, left, right Value, format string, a ...any) Error {
	return Error{
		Op:     op,
		Left:   left,
		Right:  right,
		Reason: fmt.Sprintf(format, a...),
		kind:   kind,
	}
}

func errDivZero(op Op, left, right Value) Error {
	return newError(ErrDivideByZero, op, left, right, "division by zero")
}

func errNumberWithVariable(op Op, left, right Value) Error {
	return newError(ErrIncompatible, op, left, right, "a number cannot be combined with a variable term this way; only its coefficient can")
}

func errUnknownVariant(op Op, left, right Value) Error {
	return newError(ErrIncompatible, op, left, right, "unknown value type %T", right)
}

// significantDigits is how many significant digits computed floating-point
// results are kept to.
const significantDigits = 15

// Round15 rounds f to 15 significant digits to hide binary floating-point
// representation error and returns the result as an Integer if it is whole
// and a Float otherwise. sep is the decimal separator a Float result displays
// with.
func Round15(f float64, sep rune) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, newError(ErrDomain, "", nil, nil, "result is not a real number")
	}

	rounded, err := strconv.ParseFloat(strconv.FormatFloat(f, 'g', significantDigits, 64), 64)
	if err != nil {
		return nil, err
	}

	if rounded == math.Trunc(rounded) && math.Abs(rounded) < 1<<62 {
		return Integer(int64(rounded)), nil
	}
	return Float{f: rounded, sep: sep}, nil
}

func floatOp(op Op, left, right Value) (Value, error) {
	a, aok := left.Float64()
	b, bok := right.Float64()
	if !aok || !bok {
		return nil, errNumberWithVariable(op, left, right)
	}

	var res float64
	switch op {
	case OpAdd:
		res = a + b
	case OpSub:
		res = a - b
	case OpMul:
		res = a * b
	case OpDiv:
		if b == 0 {
			return nil, errDivZero(op, left, right)
		}
		res = a / b
	case OpExp:
		if a == 0 && b < 0 {
			return nil, errDivZero(op, left, right)
		}
		res = math.Pow(a, b)
		if math.IsNaN(res) {
			return nil, newError(ErrDomain, op, left, right, "negative base with a non-whole exponent")
		}
	default:
		return nil, newError(ErrIncompatible, op, left, right, "unsupported operator")
	}

	return Round15(res, separatorOf(left, right))
}

// floatRoot takes the n-th root of x. Odd roots of negative numbers are
// negative.
func floatRoot(x Value, n float64) (Value, error) {
	f, ok := x.Float64()
	if !ok {
		return nil, errNumberWithVariable(OpRoot, x, nil)
	}
	if n == 0 {
		return nil, newError(ErrDomain, OpRoot, x, nil, "zeroth root")
	}

	if f < 0 {
		if n != math.Trunc(n) || int64(n)%2 == 0 {
			return nil, newError(ErrDomain, OpRoot, x, nil, "even root of a negative number")
		}
		res := -math.Pow(-f, 1/n)
		return Round15(res, separatorOf(x, nil))
	}

	return Round15(math.Pow(f, 1/n), separatorOf(x, nil))
}

func separatorOf(vals ...Value) rune {
	for _, v := range vals {
		if fl, ok := v.(Float); ok && fl.sep != 0 {
			return fl.sep
		}
	}
	return '.'
}

// Display renders v with sep as the decimal separator.
func Display(v Value, sep rune) string {
	s := v.String()
	if sep == 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == '.' || r == ',' {
			return sep
		}
		return r
	}, s)
}

// Compare returns -1, 0 or 1 as a is less than, equal to, or greater than b.
// Variables cannot be compared.
func Compare(a, b Value) (int, error) {
	af, aok := a.Float64()
	bf, bok := b.Float64()
	if !aok || !bok {
		return 0, newError(ErrIncompatible, "", a, b, "variable terms cannot be compared")
	}

	ra, err := Round15(af, '.')
	if err != nil {
		return 0, err
	}
	rb, err := Round15(bf, '.')
	if err != nil {
		return 0, err
	}
	af, _ = ra.Float64()
	bf, _ = rb.Float64()

	switch {
	case af < bf:
		return -1, nil
	case af > bf:
		return 1, nil
	default:
		return 0, nil
	}
}

// Numeric returns whether v is a plain number rather than a Variable.
func Numeric(v Value) bool {
	_, ok := v.Float64()
	return ok
}

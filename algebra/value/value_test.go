package value

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Parse(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expect    Value
		expectStr string
		expectErr bool
	}{
		{name: "integer", input: "42", expect: Integer(42), expectStr: "42"},
		{name: "negative integer", input: "-7", expect: Integer(-7), expectStr: "-7"},
		{name: "decimal point", input: "1.50", expect: Float{f: 1.5}, expectStr: "1.50"},
		{name: "decimal comma", input: "2,25", expect: Float{f: 2.25}, expectStr: "2,25"},
		{name: "fraction", input: "frac{1/2}", expect: Fraction{Integer(1), Integer(2)}, expectStr: "frac{1/2}"},
		{name: "unreduced fraction keeps terms", input: "frac{2/4}", expect: Fraction{Integer(2), Integer(4)}, expectStr: "frac{2/4}"},
		{name: "negative fraction", input: "frac{-1/3}", expect: Fraction{Integer(-1), Integer(3)}, expectStr: "frac{-1/3}"},
		{name: "bare variable", input: "a", expect: NewVariable("a"), expectStr: "a"},
		{name: "negative variable", input: "-b", expect: Variable{"b", Integer(-1), Integer(1)}, expectStr: "-b"},
		{name: "variable with coefficient and exponent", input: "3x^2", expect: Variable{"x", Integer(3), Integer(2)}, expectStr: "3x^2"},
		{name: "zero denominator", input: "frac{1/0}", expectErr: true},
		{name: "garbage", input: "1.2.3", expectErr: true},
		{name: "empty", input: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := Parse(tc.input)
			if tc.expectErr {
				assert.Error(err)
				return
			}
			if !assert.NoError(err) {
				return
			}

			assert.True(tc.expect.Equal(actual), "expected %v, got %v", tc.expect, actual)
			assert.Equal(tc.expectStr, actual.String())
		})
	}
}

func Test_Value_arithmetic(t *testing.T) {
	testCases := []struct {
		name   string
		left   string
		op     Op
		right  string
		expect string
	}{
		{name: "integer add", left: "2", op: OpAdd, right: "3", expect: "5"},
		{name: "integer sub", left: "2", op: OpSub, right: "5", expect: "-3"},
		{name: "integer exact div", left: "12", op: OpDiv, right: "4", expect: "3"},
		{name: "integer inexact div gives fraction", left: "6", op: OpDiv, right: "4", expect: "frac{3/2}"},
		{name: "integer exp", left: "2", op: OpExp, right: "10", expect: "1024"},
		{name: "integer negative exp", left: "2", op: OpExp, right: "-2", expect: "frac{1/4}"},
		{name: "fraction add", left: "frac{1/2}", op: OpAdd, right: "frac{1/4}", expect: "frac{3/4}"},
		{name: "fraction add thirds and halves", left: "frac{1/2}", op: OpAdd, right: "frac{1/3}", expect: "frac{5/6}"},
		{name: "fraction div self stays fraction", left: "frac{1/2}", op: OpDiv, right: "frac{1/2}", expect: "frac{1/1}"},
		{name: "fraction mul", left: "frac{2/3}", op: OpMul, right: "frac{3/4}", expect: "frac{1/2}"},
		{name: "integer promoted to fraction", left: "1", op: OpAdd, right: "frac{1/2}", expect: "frac{3/2}"},
		{name: "fraction minus integer", left: "frac{1/2}", op: OpSub, right: "1", expect: "frac{-1/2}"},
		{name: "fraction squared", left: "frac{2/3}", op: OpExp, right: "2", expect: "frac{4/9}"},
		{name: "float rounding", left: "0.1", op: OpAdd, right: "0.2", expect: "0.3"},
		{name: "float whole result is integer", left: "1.5", op: OpAdd, right: "1.5", expect: "3"},
		{name: "float keeps comma", left: "1,5", op: OpMul, right: "3", expect: "4,5"},
		{name: "like variables add", left: "2a", op: OpAdd, right: "3a", expect: "5a"},
		{name: "like variables cancel", left: "2a", op: OpSub, right: "2a", expect: "0"},
		{name: "variable times number", left: "a", op: OpMul, right: "4", expect: "4a"},
		{name: "number times variable", left: "4", op: OpMul, right: "a^2", expect: "4a^2"},
		{name: "variable times variable", left: "2a", op: OpMul, right: "3a^2", expect: "6a^3"},
		{name: "variable over itself", left: "3a", op: OpDiv, right: "a", expect: "3"},
		{name: "variable over number", left: "3a", op: OpDiv, right: "6", expect: "frac{1/2}a"},
		{name: "number over variable", left: "2", op: OpDiv, right: "a", expect: "2a^-1"},
		{name: "variable to a power", left: "2a", op: OpExp, right: "3", expect: "8a^3"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			left := MustParse(tc.left)
			right := MustParse(tc.right)

			actual, err := apply(left, tc.op, right)
			if !assert.NoError(err) {
				return
			}

			assert.Equal(tc.expect, actual.String())
		})
	}
}

func Test_Value_arithmeticErrors(t *testing.T) {
	testCases := []struct {
		name      string
		left      string
		op        Op
		right     string
		expectErr error
	}{
		{name: "variable plus number", left: "a", op: OpAdd, right: "1", expectErr: ErrIncompatible},
		{name: "number minus variable", left: "1", op: OpSub, right: "a", expectErr: ErrIncompatible},
		{name: "different letters", left: "a", op: OpAdd, right: "b", expectErr: ErrIncompatible},
		{name: "mismatched exponents", left: "a^2", op: OpAdd, right: "a", expectErr: ErrMismatchedExponent},
		{name: "integer divide by zero", left: "1", op: OpDiv, right: "0", expectErr: ErrDivideByZero},
		{name: "fraction divide by zero fraction", left: "frac{1/2}", op: OpDiv, right: "frac{0/3}", expectErr: ErrDivideByZero},
		{name: "float divide by zero", left: "1.5", op: OpDiv, right: "0", expectErr: ErrDivideByZero},
		{name: "variable exponent", left: "2", op: OpExp, right: "a", expectErr: ErrIncompatible},
		{name: "zero to negative power", left: "0", op: OpExp, right: "-1", expectErr: ErrDivideByZero},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := apply(MustParse(tc.left), tc.op, MustParse(tc.right))

			assert.True(errors.Is(err, tc.expectErr), "expected %v, got %v", tc.expectErr, err)
			assert.True(errors.Is(err, ErrValue))
		})
	}
}

func Test_Value_roots(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		degree    Value
		expect    string
		expectErr error
	}{
		{name: "perfect square", input: "16", degree: Integer(2), expect: "4"},
		{name: "irrational square", input: "2", degree: Integer(2), expect: "1.4142135623731"},
		{name: "cube root of negative", input: "-27", degree: Integer(3), expect: "-3"},
		{name: "square root of negative", input: "-4", degree: Integer(2), expectErr: ErrDomain},
		{name: "fraction", input: "frac{4/9}", degree: Integer(2), expect: "frac{2/3}"},
		{name: "variable even exponent", input: "9a^2", degree: Integer(2), expect: "3a"},
		{name: "variable odd exponent", input: "a^3", degree: Integer(2), expectErr: ErrIncompatible},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := MustParse(tc.input).NthRoot(tc.degree)
			if tc.expectErr != nil {
				assert.True(errors.Is(err, tc.expectErr), "expected %v, got %v", tc.expectErr, err)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expect, actual.String())
		})
	}
}

func Test_Values_areNotMutated(t *testing.T) {
	assert := assert.New(t)

	left := MustParse("frac{1/2}")
	right := MustParse("frac{2/4}")

	_, err := left.Add(right)
	assert.NoError(err)

	assert.Equal("frac{1/2}", left.String())
	assert.Equal("frac{2/4}", right.String())
}

func Test_Variable_power(t *testing.T) {
	assert := assert.New(t)

	v := Variable{Letter: "a", Coef: Integer(2)}
	assert.Equal("2a", v.String())

	cubed, err := v.Exp(Integer(3))
	if !assert.NoError(err) {
		return
	}
	assert.Equal(Variable{Letter: "a", Coef: Integer(8), Power: Integer(3)}, cubed)

	parsed := MustParse("-a^4")
	assert.Equal(Integer(4), parsed.(Variable).Power)
	assert.Equal(Integer(-1), parsed.(Variable).Coef)
}

func Test_Round15(t *testing.T) {
	testCases := []struct {
		input  float64
		expect string
	}{
		{input: 0.1 + 0.2, expect: "0.3"},
		{input: 1.0000000000000002, expect: "1"},
		{input: 2.5, expect: "2.5"},
		{input: -4, expect: "-4"},
	}

	for _, tc := range testCases {
		t.Run(tc.expect, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := Round15(tc.input, '.')
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expect, actual.String())
		})
	}
}

func Test_LeastCommonDenominator(t *testing.T) {
	testCases := []struct {
		name   string
		input  []string
		expect Value
	}{
		{name: "same denominators", input: []string{"frac{1/4}", "frac{3/4}"}, expect: Integer(4)},
		{name: "one divides the other", input: []string{"frac{1/2}", "frac{1/4}"}, expect: Integer(4)},
		{name: "shared factor", input: []string{"frac{1/6}", "frac{1/4}"}, expect: Integer(12)},
		{name: "coprime", input: []string{"frac{1/3}", "frac{1/5}"}, expect: Integer(15)},
		{name: "large primes fall back to product", input: []string{"frac{1/11}", "frac{1/22}"}, expect: Integer(242)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			var fracs []Fraction
			for _, s := range tc.input {
				fracs = append(fracs, MustParse(s).(Fraction))
			}

			actual, err := LeastCommonDenominator(fracs...)
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_Fraction_ExpandToShrinkTo(t *testing.T) {
	assert := assert.New(t)

	f := MustParse("frac{3/4}").(Fraction)

	expanded, err := f.ExpandTo(Integer(12))
	assert.NoError(err)
	assert.Equal("frac{9/12}", expanded.String())

	assert.Equal("frac{3/4}", expanded.ShrinkTo(Integer(4)).String())
	assert.Equal("frac{9/12}", expanded.ShrinkTo(Integer(12)).String())

	_, err = f.ExpandTo(Integer(10))
	assert.Error(err)
}

func Test_Compare(t *testing.T) {
	assert := assert.New(t)

	c, err := Compare(MustParse("frac{1/2}"), MustParse("0.5"))
	assert.NoError(err)
	assert.Equal(0, c)

	c, err = Compare(Integer(1), MustParse("frac{3/2}"))
	assert.NoError(err)
	assert.Equal(-1, c)

	_, err = Compare(Integer(1), MustParse("a"))
	assert.True(errors.Is(err, ErrIncompatible))
}

func Test_Display(t *testing.T) {
	assert := assert.New(t)

	v, err := MustParse("1.5").Mul(Integer(3))
	assert.NoError(err)

	assert.Equal("4.5", Display(v, 0))
	assert.Equal("4,5", Display(v, ','))
}

func apply(l Value, op Op, r Value) (Value, error) {
	switch op {
	case OpAdd:
		return l.Add(r)
	case OpSub:
		return l.Sub(r)
	case OpMul:
		return l.Mul(r)
	case OpDiv:
		return l.Div(r)
	default:
		return l.Exp(r)
	}
}

package value

import (
	"strings"
)

// Variable is an algebraic term: a coefficient times a letter raised to an
// exponent, such as 3a^2. Only the coefficient is numeric, so a Variable
// combines with a plain number by multiplication and division only.
type Variable struct {
	Letter string
	Coef   Value
	Power  Value
}

// NewVariable returns the term 1·letter^1.
func NewVariable(letter string) Variable {
	return Variable{Letter: letter, Coef: Integer(1), Power: Integer(1)}
}

func (Variable) isValue() {}

func (v Variable) coef() Value {
	if v.Coef == nil {
		return Integer(1)
	}
	return v.Coef
}

func (v Variable) exp() Value {
	if v.Power == nil {
		return Integer(1)
	}
	return v.Power
}

func (v Variable) Add(o Value) (Value, error) {
	return v.addOrSub(OpAdd, o)
}

func (v Variable) Sub(o Value) (Value, error) {
	return v.addOrSub(OpSub, o)
}

func (v Variable) addOrSub(op Op, o Value) (Value, error) {
	r, ok := o.(Variable)
	if !ok {
		if o == nil {
			return nil, errUnknownVariant(op, v, o)
		}
		return nil, errNumberWithVariable(op, v, o)
	}
	if r.Letter != v.Letter {
		return nil, newError(ErrIncompatible, op, v, r, "%s and %s are different variables", v.Letter, r.Letter)
	}
	if !sameNumber(v.exp(), r.exp()) {
		return nil, newError(ErrMismatchedExponent, op, v, r, "terms with different exponents cannot be combined; factor first")
	}

	var coef Value
	var err error
	if op == OpAdd {
		coef, err = v.coef().Add(r.coef())
	} else {
		coef, err = v.coef().Sub(r.coef())
	}
	if err != nil {
		return nil, err
	}
	if coef.IsZero() {
		return Integer(0), nil
	}
	return Variable{Letter: v.Letter, Coef: coef, Power: v.exp()}, nil
}

func (v Variable) Mul(o Value) (Value, error) {
	switch r := o.(type) {
	case Variable:
		if r.Letter != v.Letter {
			return nil, newError(ErrIncompatible, OpMul, v, r, "%s and %s are different variables", v.Letter, r.Letter)
		}
		coef, err := v.coef().Mul(r.coef())
		if err != nil {
			return nil, err
		}
		exp, err := v.exp().Add(r.exp())
		if err != nil {
			return nil, err
		}
		return v.withTerms(coef, exp), nil
	case Integer, Float, Fraction:
		coef, err := v.coef().Mul(r)
		if err != nil {
			return nil, err
		}
		return v.withTerms(coef, v.exp()), nil
	default:
		return nil, errUnknownVariant(OpMul, v, o)
	}
}

func (v Variable) Div(o Value) (Value, error) {
	switch r := o.(type) {
	case Variable:
		if r.Letter != v.Letter {
			return nil, newError(ErrIncompatible, OpDiv, v, r, "%s and %s are different variables", v.Letter, r.Letter)
		}
		if r.coef().IsZero() {
			return nil, errDivZero(OpDiv, v, r)
		}
		coef, err := v.coef().Div(r.coef())
		if err != nil {
			return nil, err
		}
		exp, err := v.exp().Sub(r.exp())
		if err != nil {
			return nil, err
		}
		return v.withTerms(coef, exp), nil
	case Integer, Float, Fraction:
		if r.IsZero() {
			return nil, errDivZero(OpDiv, v, r)
		}
		coef, err := v.coef().Div(r)
		if err != nil {
			return nil, err
		}
		return v.withTerms(coef, v.exp()), nil
	default:
		return nil, errUnknownVariant(OpDiv, v, o)
	}
}

// divByVariable divides the number n by v, giving a term with a negated
// exponent.
func divByVariable(n Value, v Variable) (Value, error) {
	if v.coef().IsZero() {
		return nil, errDivZero(OpDiv, n, v)
	}
	coef, err := n.Div(v.coef())
	if err != nil {
		return nil, err
	}
	return v.withTerms(coef, v.exp().Negate()), nil
}

func (v Variable) Exp(o Value) (Value, error) {
	switch r := o.(type) {
	case Integer, Float, Fraction:
		coef, err := v.coef().Exp(r)
		if err != nil {
			return nil, err
		}
		exp, err := v.exp().Mul(r)
		if err != nil {
			return nil, err
		}
		return v.withTerms(coef, exp), nil
	case Variable:
		return nil, newError(ErrIncompatible, OpExp, v, r, "a variable cannot be used as an exponent")
	default:
		return nil, errUnknownVariant(OpExp, v, o)
	}
}

func (v Variable) Root() (Value, error) {
	return v.NthRoot(Integer(2))
}

func (v Variable) NthRoot(n Value) (Value, error) {
	if !Numeric(n) {
		return nil, newError(ErrIncompatible, OpRoot, v, n, "the degree of a root must be a number")
	}
	exp, err := v.exp().Div(n)
	if err != nil {
		return nil, err
	}
	if _, whole := exp.(Integer); !whole {
		return nil, newError(ErrIncompatible, OpRoot, v, n, "the exponent %s is not a multiple of %s", v.exp(), n)
	}
	coef, err := v.coef().NthRoot(n)
	if err != nil {
		return nil, err
	}
	return v.withTerms(coef, exp), nil
}

// withTerms returns a term with the same letter. A zero exponent leaves only
// the coefficient and a zero coefficient leaves zero.
func (v Variable) withTerms(coef, exp Value) Value {
	if coef.IsZero() {
		return Integer(0)
	}
	if exp.IsZero() {
		return coef
	}
	return Variable{Letter: v.Letter, Coef: coef, Power: exp}
}

func (v Variable) Negate() Value {
	return Variable{Letter: v.Letter, Coef: v.coef().Negate(), Power: v.exp()}
}

func (v Variable) IsZero() bool {
	return v.coef().IsZero()
}

func (v Variable) Float64() (float64, bool) {
	return 0, false
}

func (v Variable) Equal(o any) bool {
	other, ok := o.(Variable)
	return ok && v.Letter == other.Letter && v.coef().Equal(other.coef()) && v.exp().Equal(other.exp())
}

func (v Variable) String() string {
	var sb strings.Builder

	switch coef := v.coef(); {
	case coef.Equal(Integer(1)):
	case coef.Equal(Integer(-1)):
		sb.WriteRune('-')
	default:
		sb.WriteString(coef.String())
	}
	sb.WriteString(v.Letter)
	if exp := v.exp(); !exp.Equal(Integer(1)) {
		sb.WriteRune('^')
		sb.WriteString(exp.String())
	}

	return sb.String()
}

// Bind returns the value of the term with val substituted for the letter.
func (v Variable) Bind(val Value) (Value, error) {
	if !Numeric(val) {
		return nil, newError(ErrIncompatible, "", v, val, "a variable can only be bound to a number")
	}
	pow, err := val.Exp(v.exp())
	if err != nil {
		return nil, err
	}
	return v.coef().Mul(pow)
}

func sameNumber(a, b Value) bool {
	if a.Equal(b) {
		return true
	}
	c, err := Compare(a, b)
	return err == nil && c == 0
}

package syntax

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/algestep/algebra/value"
	"github.com/dekarrin/algestep/internal/ebnf/lex"
	"github.com/dekarrin/algestep/internal/ebnf/parse"
)

func Test_Parse(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "integer",
			input:  "42",
			expect: `( number "42" )`,
		},
		{
			name:   "decimal comma",
			input:  "3,25",
			expect: `( number "3,25" )`,
		},
		{
			name:   "variable with coefficient and exponent",
			input:  "2a^2",
			expect: `( variable "2a^2" )`,
		},
		{
			name:   "fraction",
			input:  "frac{1/-2}",
			expect: `( fraction "frac{1/-2}" )`,
		},
		{
			name:  "precedence",
			input: "2+3*4",
			expect: `( add "+" )
  |---: ( number "2" )
  \---: ( mul "*" )
          |---: ( number "3" )
          \---: ( number "4" )`,
		},
		{
			name:  "groups joined by implicit multiplication",
			input: "(1+2)(3*4)",
			expect: `( mul )
  |---: ( group )
  |       \---: ( add "+" )
  |               |---: ( number "1" )
  |               \---: ( number "2" )
  \---: ( group )
          \---: ( mul "*" )
                  |---: ( number "3" )
                  \---: ( number "4" )`,
		},
		{
			name:  "subtraction is left associative",
			input: "1-2+4",
			expect: `( add "+" )
  |---: ( sub "-" )
  |       |---: ( number "1" )
  |       \---: ( number "2" )
  \---: ( number "4" )`,
		},
		{
			name:  "exponent is right associative",
			input: "2^3^2",
			expect: `( pow "^" )
  |---: ( number "2" )
  \---: ( pow "^" )
          |---: ( number "3" )
          \---: ( number "2" )`,
		},
		{
			name:  "negation after operator",
			input: "3*-a",
			expect: `( mul "*" )
  |---: ( number "3" )
  \---: ( neg "-" )
          \---: ( variable "a" )`,
		},
		{
			name:  "nth root",
			input: "3√27",
			expect: `( root "√" )
  |---: ( number "27" )
  \---: ( number "3" )`,
		},
		{
			name:  "equation",
			input: "2a ≤ 4",
			expect: `( equation "≤" )
  |---: ( variable "2a" )
  \---: ( number "4" )`,
		},
		{
			name:  "system",
			input: "{@a=1@2=2}",
			expect: `( system )
  |---: ( equation "=" )
  |       |---: ( variable "a" )
  |       \---: ( number "1" )
  \---: ( equation "=" )
          |---: ( number "2" )
          \---: ( number "2" )`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			ast, err := Parse(tc.input)
			if !assert.NoError(err) {
				return
			}

			assert.Equal(tc.expect, ast.String())
		})
	}
}

func Test_Parse_errors(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expectErr error
	}{
		{name: "unknown character", input: "2 $ 3", expectErr: lex.ErrLexical},
		{name: "dangling operator", input: "2+", expectErr: parse.ErrSyntax},
		{name: "unclosed group", input: "(1+2", expectErr: parse.ErrSyntax},
		{name: "empty system", input: "{}", expectErr: parse.ErrSyntax},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.input)

			assert.True(t, errors.Is(err, tc.expectErr), "expected %v, got %v", tc.expectErr, err)
		})
	}
}

func Test_Evaluate(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		bindings  Bindings
		expect    string
		expectErr error
	}{
		{name: "precedence", input: "2+3*4", expect: "14"},
		{name: "implicit multiplication of groups", input: "(1+2)(3*4)", expect: "36"},
		{name: "fractions", input: "frac{1/2} + frac{1/4}", expect: "frac{3/4}"},
		{name: "fraction over itself", input: "frac{1/2} / frac{1/2}", expect: "frac{1/1}"},
		{name: "decimals", input: "0.1+0.2", expect: "0.3"},
		{name: "like terms", input: "2a+3a", expect: "5a"},
		{name: "roots", input: "√16 + 3√27", expect: "7"},
		{name: "negative exponent", input: "2^-1", expect: "frac{1/2}"},
		{name: "binding", input: "3x^2", bindings: Bindings{"x": value.Integer(2)}, expect: "12"},
		{name: "true equation", input: "2+2=4", expect: "1"},
		{name: "false inequality", input: "3 > 4", expect: "0"},
		{name: "system", input: "{@x=2@x<3}", bindings: Bindings{"x": value.Integer(2)}, expect: "1"},
		{name: "variable plus number", input: "a+1", expectErr: value.ErrIncompatible},
		{name: "divide by zero", input: "1/0", expectErr: value.ErrDivideByZero},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			ast, err := Parse(tc.input)
			if !assert.NoError(err) {
				return
			}

			actual, err := Evaluate(ast, tc.bindings)
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

func Test_Normalize(t *testing.T) {
	assert := assert.New(t)

	decomposed := "2 <\u0338 3"

	assert.Equal("2 \u226e 3", Normalize(decomposed))
	assert.Equal("frac{1/2}", Normalize("frac{1/2}"))
}

package algebra

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/algestep/algebra/solve"
	"github.com/dekarrin/algestep/algebra/syntax"
	"github.com/dekarrin/algestep/algebra/value"
	"github.com/dekarrin/algestep/internal/ebnf/lex"
	"github.com/dekarrin/algestep/internal/ebnf/parse"
)

func Test_New_errors(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		opts      []Option
		expectErr []error
		expectMsg string
	}{
		{
			name:      "lexical error",
			input:     "2 # 3",
			expectErr: []error{ErrInvalidExpression, lex.ErrLexical},
		},
		{
			name:      "syntax error",
			input:     "2 + * 3",
			expectErr: []error{ErrInvalidExpression, parse.ErrSyntax},
		},
		{
			name:      "unknown rule",
			input:     "2 + 3",
			opts:      []Option{ExcludeRules("AddSubIntegerz")},
			expectMsg: `no rule named "AddSubIntegerz"; did you mean "AddSubIntegers"?`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := New(tc.input, tc.opts...)
			if !assert.Error(err) {
				return
			}
			for _, want := range tc.expectErr {
				assert.True(errors.Is(err, want), "expected %v in %v", want, err)
			}
			if tc.expectMsg != "" {
				assert.EqualError(err, tc.expectMsg)
			}
		})
	}
}

func Test_Engine_SolveNextStep(t *testing.T) {
	assert := assert.New(t)

	e, err := New("2+3*4")
	if !assert.NoError(err) {
		return
	}
	assert.Equal("2 + 3 * 4", e.String())

	changes, err := e.SolveNextStep()
	assert.NoError(err)
	if assert.Len(changes, 1) {
		assert.Equal("MulDivIntegers", changes[0].Rule)
	}
	assert.Equal("2 + 12", e.String())

	changes, err = e.SolveNextStep()
	assert.NoError(err)
	if assert.Len(changes, 1) {
		assert.Equal("AddSubIntegers", changes[0].Rule)
	}
	assert.Equal("14", e.String())
	assert.False(e.Done())

	changes, err = e.SolveNextStep()
	assert.NoError(err)
	assert.Empty(changes)
	assert.True(e.Done())

	changes, err = e.SolveNextStep()
	assert.NoError(err)
	assert.Empty(changes)

	v, ok := e.Value()
	assert.True(ok)
	assert.Equal(value.Integer(14), v)

	var displays []string
	for _, s := range e.History() {
		displays = append(displays, s.Display)
	}
	assert.Equal([]string{"2 + 12", "14"}, displays)
}

func Test_Engine_Solve(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		opts      []Option
		max       int
		expect    []string
		expectErr error
	}{
		{
			name:   "to the end",
			input:  "(1+2)(3*4)",
			expect: []string{"(1 + 2)(12)", "(3)(12)", "36"},
		},
		{
			name:   "limited",
			input:  "(1+2)(3*4)",
			max:    2,
			expect: []string{"(1 + 2)(12)", "(3)(12)"},
		},
		{
			name:   "cancelled terms",
			input:  "2a-2a",
			expect: []string{""},
		},
		{
			name:   "decomposed symbol",
			input:  "1 + 2 =\u0338 4",
			expect: []string{"3 \u2260 4"},
		},
		{
			name:   "only some rules",
			input:  "2+3*4",
			opts:   []Option{IncludeRules("AddSubIntegers")},
			expect: nil,
		},
		{
			name:      "variable plus number",
			input:     "2+a+3",
			expect:    []string{"5 + a"},
			expectErr: value.ErrIncompatible,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			e, err := New(tc.input, tc.opts...)
			if !assert.NoError(err) {
				return
			}

			steps, err := e.Solve(tc.max)
			if tc.expectErr != nil {
				assert.True(errors.Is(err, tc.expectErr), "expected %v, got %v", tc.expectErr, err)
				assert.True(errors.Is(err, ErrInvalidStep))
				assert.False(errors.Is(err, ErrInvalidExpression))
			} else {
				assert.NoError(err)
			}

			var actual []string
			for i, s := range steps {
				assert.Equal(i+1, s.Number)
				actual = append(actual, s.Display)
			}
			if diff := cmp.Diff(tc.expect, actual); diff != "" {
				t.Errorf("steps mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func Test_Engine_Evaluate(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		bindings  syntax.Bindings
		expect    string
		expectErr error
	}{
		{name: "precedence", input: "2+3*4", expect: "14"},
		{name: "fractions", input: "frac{1/2} + frac{1/4}", expect: "frac{3/4}"},
		{name: "bound variable", input: "2a + 1", bindings: syntax.Bindings{"a": value.Integer(3)}, expect: "7"},
		{name: "unbound variable", input: "2a + 3a", expect: "5a"},
		{name: "variable plus number", input: "a+1", expectErr: value.ErrIncompatible},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := Evaluate(tc.input, tc.bindings)
			if tc.expectErr != nil {
				assert.True(errors.Is(err, tc.expectErr), "expected %v, got %v", tc.expectErr, err)
				assert.True(errors.Is(err, ErrInvalidStep))
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expect, actual.String())
		})
	}
}

func Test_Engine_evaluateAgreesWithSolve(t *testing.T) {
	inputs := []string{
		"2+3*4",
		"(1+2)(3*4)",
		"2 - 5 * 3 + 4",
		"6/2(3)",
		"2^3^2",
		"√16 + 3√27",
		"frac{1/2} / frac{1/2}",
		"0.1 + 0.2",
		"{@1+1=2@2*2=5}",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			assert := assert.New(t)

			e, err := New(input)
			if !assert.NoError(err) {
				return
			}
			expect, err := e.Evaluate(nil)
			if !assert.NoError(err) {
				return
			}
			if _, err := e.Solve(0); !assert.NoError(err) {
				return
			}

			actual, ok := e.Value()
			if !assert.True(ok) {
				return
			}
			c, err := value.Compare(expect, actual)
			assert.NoError(err)
			assert.Zero(c, "evaluate gave %s, solving gave %s", expect, actual)
		})
	}
}

func Test_WithRegistry(t *testing.T) {
	assert := assert.New(t)

	reg := solve.NewRegistry()
	reg.Register(solve.AddSubIntegers)

	e, err := New("1+2*3", WithRegistry(reg))
	if !assert.NoError(err) {
		return
	}
	assert.Equal([]string{"AddSubIntegers"}, e.RuleNames())

	steps, err := e.Solve(0)
	assert.NoError(err)
	assert.Empty(steps)
	assert.Equal("1 + 2 * 3", e.String())
}

func Test_WithFrontend(t *testing.T) {
	assert := assert.New(t)

	fe, err := syntax.NewFrontend(0)
	if !assert.NoError(err) {
		return
	}
	defer fe.Close()

	e, err := New("2 · 3", WithFrontend(fe))
	if !assert.NoError(err) {
		return
	}
	assert.Equal("2 · 3", e.String())
}

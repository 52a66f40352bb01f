package solve

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/algestep/algebra/syntax"
	"github.com/dekarrin/algestep/algebra/value"
)

func allRules(t *testing.T) RuleSet {
	rs, err := DefaultRegistry().Select(nil, nil)
	if err != nil {
		t.Fatalf("selecting default rules: %v", err)
	}
	return rs
}

// solveAll steps until no changes are returned and records the tree after
// every step.
func solveAll(t *testing.T, tree *Tree, rules RuleSet) ([]string, error) {
	var steps []string
	for i := 0; i < 50; i++ {
		changes, err := tree.Step(rules)
		if err != nil {
			return steps, err
		}
		if len(changes) == 0 {
			return steps, nil
		}
		steps = append(steps, tree.String())
	}
	t.Fatalf("tree did not reduce after 50 steps: %s", tree.String())
	return nil, nil
}

func Test_Tree_String(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "chain", input: "1-2+4", expect: "1 - 2 + 4"},
		{name: "implicit multiplication of groups", input: "(1+2)(3*4)", expect: "(1 + 2)(3 * 4)"},
		{name: "coefficient", input: "2a", expect: "2a"},
		{name: "number before group", input: "2(3)", expect: "2(3)"},
		{name: "operator kept as written", input: "6÷2", expect: "6 ÷ 2"},
		{name: "negation", input: "3*-a", expect: "3 * -a"},
		{name: "nth root", input: "3√27", expect: "3√27"},
		{name: "power", input: "(2a)^2", expect: "(2a)^2"},
		{name: "equation", input: "2a ≤ 4", expect: "2a ≤ 4"},
		{name: "system", input: "{@a=1@2=2}", expect: "{@a = 1@2 = 2}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			tree, err := Parse(tc.input)
			if !assert.NoError(err) {
				return
			}

			actual := tree.String()
			assert.Equal(tc.expect, actual)

			// what is rendered must read back the same way
			reparsed, err := Parse(actual)
			if !assert.NoError(err) {
				return
			}
			assert.Equal(actual, reparsed.String())
		})
	}
}

func Test_Tree_Step(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expect    []string
		expectErr error
	}{
		{name: "multiplication before addition", input: "2+3*4", expect: []string{"2 + 12", "14"}},
		{name: "like terms in one step", input: "2a+3a", expect: []string{"5a"}},
		{name: "like terms cancel", input: "2a-2a", expect: []string{""}},
		{name: "cancelled terms leave the rest", input: "2a - 2a + 5", expect: []string{"5"}},
		{name: "cancelled terms in a group leave zero", input: "1 + (2a - 2a)", expect: []string{"1 + 0", "1"}},
		{
			name:   "groups joined by implicit multiplication",
			input:  "(1+2)(3*4)",
			expect: []string{"(1 + 2)(12)", "(3)(12)", "36"},
		},
		{name: "chain in one step", input: "1-2+4", expect: []string{"3"}},
		{name: "terms across a variable", input: "a - 2 + 5", expectErr: value.ErrIncompatible},
		{name: "exponents", input: "2^3^2", expect: []string{"512"}},
		{name: "roots", input: "√16 + 3√27", expect: []string{"4 + 3", "7"}},
		{name: "negative base", input: "(-2)^2", expect: []string{"(-2)^2", "4"}},
		{name: "negated power", input: "-2^2", expect: []string{"-4"}},
		{name: "negated group", input: "-(2+3)", expect: []string{"-5"}},
		{name: "negated negative group", input: "-(2-5)", expect: []string{"-(-3)", "3"}},
		{name: "separate groups", input: "(1+2)*(3+4)", expect: []string{"3 * 7", "21"}},
		{name: "number times group", input: "2(3)", expect: []string{"6"}},
		{name: "group with redundant parentheses", input: "((1+2))", expect: []string{"(1 + 2)", "1 + 2", "3"}},
		{name: "fractions", input: "frac{1/2} + frac{1/4}", expect: []string{"frac{3/4}"}},
		{name: "fraction over itself", input: "frac{1/2} / frac{1/2}", expect: []string{"frac{1/1}"}},
		{name: "decimals", input: "0.1 + 0.2", expect: []string{"0.3"}},
		{name: "algebraic product", input: "2a * 3a", expect: []string{"6a^2"}},
		{name: "equation sides", input: "2+2 = 4", expect: []string{"4 = 4"}},
		{name: "variable plus number", input: "a+1", expectErr: value.ErrIncompatible},
		{name: "mismatched exponents", input: "a^2+a", expectErr: value.ErrMismatchedExponent},
		{name: "divide by zero", input: "1/0", expectErr: value.ErrDivideByZero},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			tree, err := Parse(tc.input)
			if !assert.NoError(err) {
				return
			}

			actual, err := solveAll(t, tree, allRules(t))
			if tc.expectErr != nil {
				assert.True(errors.Is(err, tc.expectErr), "expected %v, got %v", tc.expectErr, err)
				assert.True(errors.Is(err, value.ErrValue))
				return
			}
			if !assert.NoError(err) {
				return
			}

			if diff := cmp.Diff(tc.expect, actual); diff != "" {
				t.Errorf("steps mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func Test_Tree_Step_errorLeavesTreeAsItWas(t *testing.T) {
	assert := assert.New(t)
	rules := allRules(t)

	tree, err := Parse("2+a+3")
	if !assert.NoError(err) {
		return
	}

	changes, err := tree.Step(rules)
	assert.NoError(err)
	assert.Len(changes, 1)
	assert.Equal("5 + a", tree.String())

	changes, err = tree.Step(rules)
	assert.ErrorIs(err, value.ErrIncompatible)
	assert.Empty(changes)
	assert.Equal("5 + a", tree.String())
}

func Test_Tree_Step_changes(t *testing.T) {
	assert := assert.New(t)
	rules := allRules(t)

	tree, err := Parse("2+3*4")
	if !assert.NoError(err) {
		return
	}

	changes, err := tree.Step(rules)
	if !assert.NoError(err) || !assert.Len(changes, 1) {
		return
	}
	c := changes[0]
	assert.Equal("MulDivIntegers", c.Rule)
	assert.Equal("*", c.Op)
	assert.Equal("multiply integers", c.Description)
	assert.Equal([]string{"3", "4"}, c.InputText)
	assert.Equal("12", c.ResultText)
	assert.Equal(value.Integer(12), c.Value)
	assert.True(tree.Attached(c.Result))
	assert.False(tree.Attached(c.Inputs[0]))
	assert.Equal("multiply integers: 3, 4 => 12", c.String())
}

func Test_Tree_Step_coalescesSameRule(t *testing.T) {
	assert := assert.New(t)

	tree, err := Parse("1+2+3")
	if !assert.NoError(err) {
		return
	}

	changes, err := tree.Step(allRules(t))
	if !assert.NoError(err) || !assert.Len(changes, 1) {
		return
	}
	assert.Equal([]string{"1", "2", "3", "3"}, changes[0].InputText)
	assert.Equal("6", changes[0].ResultText)
	assert.Equal("6", tree.String())
}

func Test_Tree_Step_coalescesOnlyConsumedResults(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect []string
	}{
		{
			name:   "separate groups",
			input:  "(1+2)*(3+4)",
			expect: []string{"add integers: 1, 2 => 3", "add integers: 3, 4 => 7"},
		},
		{
			name:   "separate equations",
			input:  "{@1+1=2@2+2=4}",
			expect: []string{"add integers: 1, 1 => 2", "add integers: 2, 2 => 4"},
		},
		{
			name:   "one chain",
			input:  "1+2+3+4",
			expect: []string{"add integers: 1, 2, 3, 3, 6, 4 => 10"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tree, err := Parse(tc.input)
			if !assert.NoError(t, err) {
				return
			}

			changes, err := tree.Step(allRules(t))
			if !assert.NoError(t, err) {
				return
			}

			var actual []string
			for _, c := range changes {
				actual = append(actual, c.String())
			}
			if diff := cmp.Diff(tc.expect, actual); diff != "" {
				t.Errorf("changes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func Test_Tree_Step_flipsSubtractedTerm(t *testing.T) {
	assert := assert.New(t)
	rules := allRules(t)

	tree, err := Parse("a - 2 + 5")
	if !assert.NoError(err) {
		return
	}

	changes, err := tree.Step(rules)
	if !assert.NoError(err) || !assert.Len(changes, 1) {
		return
	}
	assert.Equal("subtract integers: 2, 5 => 3", changes[0].String())
	assert.Equal("a + 3", tree.String())

	_, err = tree.Step(rules)
	assert.ErrorIs(err, value.ErrIncompatible)
	assert.Equal("a + 3", tree.String())
}

func Test_Tree_Step_foldsNegation(t *testing.T) {
	assert := assert.New(t)

	tree, err := Parse("-(2+3)")
	if !assert.NoError(err) {
		return
	}

	changes, err := tree.Step(allRules(t))
	if !assert.NoError(err) || !assert.Len(changes, 2) {
		return
	}
	assert.Equal("add integers: 2, 3 => 5", changes[0].String())
	assert.Equal("negate: 5 => -5", changes[1].String())
	assert.Equal("Negation", changes[1].Rule)
	assert.Equal("-5", tree.String())

	v, ok := tree.Value()
	assert.True(ok)
	assert.Equal(value.Integer(-5), v)

	// without the rule the negation is left for later
	rules, err := DefaultRegistry().Select(nil, []string{"Negation"})
	if !assert.NoError(err) {
		return
	}
	tree, err = Parse("-(2+3)")
	if !assert.NoError(err) {
		return
	}
	changes, err = tree.Step(rules)
	assert.NoError(err)
	assert.Len(changes, 1)
	_, ok = tree.Value()
	assert.False(ok)
}

func Test_Tree_Step_removedTerms(t *testing.T) {
	assert := assert.New(t)

	tree, err := Parse("2a-2a")
	if !assert.NoError(err) {
		return
	}

	changes, err := tree.Step(allRules(t))
	if !assert.NoError(err) || !assert.Len(changes, 1) {
		return
	}
	assert.Equal(NoNode, changes[0].Result)
	assert.Equal("subtract like terms: 2a, 2a => (removed)", changes[0].String())
	assert.True(tree.Empty())

	v, ok := tree.Value()
	assert.True(ok)
	assert.Equal(value.Integer(0), v)
}

func Test_Tree_Step_terminalStateIsIdempotent(t *testing.T) {
	assert := assert.New(t)
	rules := allRules(t)

	for _, input := range []string{"2+3*4", "2a-2a", "a", "1 = 2"} {
		tree, err := Parse(input)
		if !assert.NoError(err, input) {
			continue
		}
		_, err = solveAll(t, tree, rules)
		if !assert.NoError(err, input) {
			continue
		}

		final := tree.String()
		for i := 0; i < 3; i++ {
			changes, err := tree.Step(rules)
			assert.NoError(err, input)
			assert.Empty(changes, input)
			assert.Equal(final, tree.String(), input)
		}
	}
}

func Test_Tree_Step_fallbackRules(t *testing.T) {
	testCases := []struct {
		name         string
		exclude      []string
		expectRule   string
		expectString string
	}{
		{
			name:         "specific rule preferred",
			expectRule:   "MulDivIntegers",
			expectString: "2 + 12",
		},
		{
			name:         "fallback used when nothing else applies",
			exclude:      []string{"MulDivIntegers"},
			expectRule:   "MulDivValues",
			expectString: "2 + 12",
		},
		{
			name:         "no rule for the bucket",
			exclude:      []string{"MulDivIntegers", "MulDivValues"},
			expectString: "2 + 3 * 4",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			rules, err := DefaultRegistry().Select(nil, tc.exclude)
			if !assert.NoError(err) {
				return
			}
			tree, err := Parse("2+3*4")
			if !assert.NoError(err) {
				return
			}

			changes, err := tree.Step(rules)
			if !assert.NoError(err) {
				return
			}
			if tc.expectRule == "" {
				assert.Empty(changes)
			} else if assert.Len(changes, 1) {
				assert.Equal(tc.expectRule, changes[0].Rule)
			}
			assert.Equal(tc.expectString, tree.String())
		})
	}
}

func Test_Tree_Step_agreesWithEvaluate(t *testing.T) {
	inputs := []string{
		"2+3*4",
		"(1+2)(3*4)",
		"1-2+4",
		"2 - 5 * 3 + 4",
		"2*(3+4)-1",
		"6/2(3)",
		"10/4",
		"2^3^2",
		"-2^2",
		"(-2)^2",
		"2^-2",
		"√16 + 3√27",
		"√2 * 2",
		"frac{1/2} + frac{1/4}",
		"frac{1/2} / frac{1/2}",
		"frac{2/3} * 3 - 1",
		"0.1 + 0.2",
		"1,5 * 2",
		"2.5 + frac{1/2}",
		"2 + 2 = 4",
		"3 > 4",
		"{@1+1=2@2*2=4}",
	}

	rules := allRules(t)
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			assert := assert.New(t)

			ast, err := syntax.Parse(input)
			if !assert.NoError(err) {
				return
			}
			expect, err := syntax.Evaluate(ast, nil)
			if !assert.NoError(err) {
				return
			}

			tree, err := FromAST(ast)
			if !assert.NoError(err) {
				return
			}
			_, err = solveAll(t, tree, rules)
			if !assert.NoError(err) {
				return
			}

			actual, ok := tree.Value()
			if !assert.True(ok, "not fully reduced: %s", tree.String()) {
				return
			}
			c, err := value.Compare(expect, actual)
			assert.NoError(err)
			assert.Zero(c, "evaluate gave %s, solving gave %s", expect, actual)
		})
	}
}

func Test_Registry(t *testing.T) {
	assert := assert.New(t)

	reg := NewRegistry()
	reg.Register(PowValues, Roots)
	reg.Register(PowValues)
	assert.Equal([]string{"PowValues", "Roots"}, reg.Names())

	var names []string
	for _, r := range BuiltinRules() {
		names = append(names, r.Name())
	}
	assert.Equal(names, DefaultRegistry().Names())
}

func Test_Registry_Select(t *testing.T) {
	testCases := []struct {
		name         string
		include      []string
		exclude      []string
		expectNames  []string
		expectErrMsg string
	}{
		{
			name:        "include",
			include:     []string{"Roots", "PowValues"},
			expectNames: []string{"PowValues", "Roots"},
		},
		{
			name:        "include and exclude",
			include:     []string{"Roots", "PowValues"},
			exclude:     []string{"Roots"},
			expectNames: []string{"PowValues"},
		},
		{
			name:         "unknown name",
			include:      []string{"PowValue"},
			expectErrMsg: `no rule named "PowValue"; did you mean "PowValues"?`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			reg := NewRegistry()
			reg.Register(RemoveRedundantParentheses, PowValues, Roots)

			rs, err := reg.Select(tc.include, tc.exclude)
			if tc.expectErrMsg != "" {
				assert.EqualError(err, tc.expectErrMsg)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expectNames, rs.Names())
			assert.Equal(len(tc.expectNames), rs.Len())
		})
	}
}

func Test_Registry_Select_isUnaffectedByLaterRegistration(t *testing.T) {
	assert := assert.New(t)

	reg := NewRegistry()
	reg.Register(PowValues)
	rs, err := reg.Select(nil, nil)
	if !assert.NoError(err) {
		return
	}

	reg.Register(Roots)
	assert.Equal([]string{"PowValues"}, rs.Names())
	assert.Len(rs.InBucket(Exponentiation), 1)
	assert.Empty(rs.InBucket(AddAndSub))
}

func Test_Describe(t *testing.T) {
	assert := assert.New(t)

	d := Describe(AddSubIntegers)
	assert.Equal(Descriptor{Name: "AddSubIntegers", Bucket: AddAndSub, Kinds: []string{"add", "sub"}}, d)
	assert.Equal("addition and subtraction", d.Bucket.String())

	assert.True(Describe(AddSubValues).Fallback)
}

package grammar

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/algestep/internal/ebnf/lex"
)

func Test_Compile(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expectStart string
		expectRules []string
		expectErr   bool
	}{
		{
			name:      "empty",
			input:     "  (* nothing here *) ",
			expectErr: true,
		},
		{
			name:        "single terminal rule",
			input:       `plus = '+' ;`,
			expectStart: "plus",
			expectRules: []string{`plus = '+' ;`},
		},
		{
			name: "every primitive",
			input: `
				(* a list of things *)
				list = item, {",", item}, [';'] ;
				item = ('x' | "y"), ? letter ? ;
			`,
			expectStart: "list",
			expectRules: []string{
				`list = item, {',', item}, [';'] ;`,
				`item = ('x' | 'y'), ? letter ? ;`,
			},
		},
		{
			name:      "missing semicolon",
			input:     `a = 'x' b = 'y' ;`,
			expectErr: true,
		},
		{
			name:      "unclosed group",
			input:     `a = ('x' | 'y' ;`,
			expectErr: true,
		},
		{
			name:      "undefined rule",
			input:     `a = b ;`,
			expectErr: true,
		},
		{
			name:      "duplicate rule",
			input:     `a = 'x' ; a = 'y' ;`,
			expectErr: true,
		},
		{
			name:      "empty terminal",
			input:     `a = '' ;`,
			expectErr: true,
		},
		{
			name:      "stray character",
			input:     `a = 'x' # ;`,
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := Compile(tc.input)
			if tc.expectErr {
				assert.Error(err)
				assert.True(errors.Is(err, ErrGrammar))
				return
			}
			if !assert.NoError(err) {
				return
			}

			var rules []string
			for _, r := range actual.Rules() {
				rules = append(rules, r.String())
			}

			assert.Equal(tc.expectStart, actual.Start())
			assert.Equal(tc.expectRules, rules)
		})
	}
}

func Test_Compile_errorPosition(t *testing.T) {
	assert := assert.New(t)

	_, err := Compile("a = 'x' ;\nb = c ;")

	var gErr Error
	if !assert.True(errors.As(err, &gErr)) {
		return
	}
	assert.Equal("b", gErr.Rule())
	assert.Equal(2, gErr.Line())
	assert.Equal(5, gErr.Position())
}

func Test_Compile_undefinedRuleSuggestion(t *testing.T) {
	_, err := Compile("expression = term ;\nterms = 'x' ;")
	assert.ErrorContains(t, err, `did you mean "terms"?`)
}

func Test_Check(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expectErr bool
	}{
		{
			name:      "direct self reference",
			input:     `term = factor | term ; factor = 'x' ;`,
			expectErr: true,
		},
		{
			name:  "consumes before recursing",
			input: `term = factor | ('(' , term , ')') ; factor = 'x' ;`,
		},
		{
			name:      "indirect left recursion",
			input:     `a = b, 'x' ; b = c | 'y' ; c = a, 'z' ;`,
			expectErr: true,
		},
		{
			name:      "recursion after nullable prefix",
			input:     `a = [ 'x' ], a, 'y' | 'z' ;`,
			expectErr: true,
		},
		{
			name:      "recursion after nullable rule",
			input:     `a = e, a | 'z' ; e = { 'q' } ;`,
			expectErr: true,
		},
		{
			name:  "right recursion",
			input: `digits = digit, [digits] ; digit = '0' | '1' ;`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			rt, err := parseRules(tc.input)
			if !assert.NoError(err) {
				return
			}

			err = rt.Check()

			if tc.expectErr {
				assert.Error(err)
				assert.True(errors.Is(err, ErrGrammar))
			} else {
				assert.NoError(err)
			}
		})
	}
}

func Test_RuleTable_Tokens(t *testing.T) {
	rt := MustCompile(`
		cmp = value, relop, value ;
		value = 'frac' | letter | digit ;
		relop = '<=' | '<' | '=' ;
		letter = 'f' | 'r' | 'a' | 'c' ;
		digit = '0' | '1' ;
	`)

	expect := []lex.Matcher{
		lex.Literal("frac", "frac"),
		lex.Literal("relop", "<="),
		lex.Pattern("letter", "[frac]"),
		lex.Pattern("digit", "[01]"),
		lex.Literal("relop", "<"),
		lex.Literal("relop", "="),
	}

	actual := rt.Tokens()

	if diff := cmp.Diff(expect, actual); diff != "" {
		t.Errorf("token table mismatch (-want +got):\n%s", diff)
	}

	stream, err := lex.Tokenize("frac<=fr", actual)
	if !assert.NoError(t, err) {
		return
	}
	var texts []string
	for _, tok := range stream.Tokens() {
		texts = append(texts, tok.Text)
	}
	assert.Equal(t, []string{"frac", "<=", "f", "r"}, texts)
}

func Test_RuleTable_Tokens_metaTerminalCatchAll(t *testing.T) {
	rt := MustCompile(`s = '"', {? printable ?}, '"' ;`)

	toks := rt.Tokens()

	if assert.Len(t, toks, 2) {
		assert.Equal(t, lex.KindChar, toks[1].Kind)
	}
	assert.Equal(t, []string{"printable"}, rt.MetaTerminals())
}

func Test_RuleTable_String_roundTrip(t *testing.T) {
	assert := assert.New(t)

	src := `
		expr = term, {('+' | '-'), term} ;
		term = [sign], (number | '(', expr, ')') ;
		sign = '-' ;
		number = digit, {digit} ;
		digit = '0' | '1' | '2' ;
	`

	first := MustCompile(src)
	second, err := Compile(first.String())
	if !assert.NoError(err) {
		return
	}

	assert.Equal(first.String(), second.String())
	assert.Equal(first.Names(), second.Names())
}

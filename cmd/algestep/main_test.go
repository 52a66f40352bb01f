package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/algestep/internal/msgerr"
)

func Test_runSolve(t *testing.T) {
	testCases := []struct {
		name         string
		expr         string
		max          int
		expectSteps  []string
		expectResult string
		expectDone   bool
		expectErr    string
	}{
		{
			name:         "to the end",
			expr:         "(1+2)(3*4)",
			expectSteps:  []string{"(1 + 2)(12)", "(3)(12)", "36"},
			expectResult: "36",
			expectDone:   true,
		},
		{
			name:         "limited",
			expr:         "(1+2)(3*4)",
			max:          1,
			expectSteps:  []string{"(1 + 2)(12)"},
			expectResult: "(1 + 2)(12)",
		},
		{
			name:         "invalid math",
			expr:         "2+a+3",
			expectSteps:  []string{"5 + a"},
			expectResult: "5 + a",
			expectErr:    "Invalid math step",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			out, err := runSolve(tc.expr, tc.max, '.')
			if !assert.NoError(err) {
				return
			}

			var displays []string
			for _, st := range out.Steps {
				displays = append(displays, st.Display)
			}
			if diff := cmp.Diff(tc.expectSteps, displays); diff != "" {
				t.Errorf("steps mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(tc.expectResult, out.Result)
			assert.Equal(tc.expectDone, out.Done)
			if tc.expectErr != "" {
				assert.Contains(out.Error, tc.expectErr)
			} else {
				assert.Empty(out.Error)
			}
		})
	}
}

func Test_runSolve_badExpression(t *testing.T) {
	_, err := runSolve("2 + * 3", 0, '.')
	assert.Contains(t, msgerr.Message(err), "Invalid expression")
}

func Test_runEval(t *testing.T) {
	testCases := []struct {
		name      string
		expr      string
		binds     []string
		sep       rune
		expect    string
		expectErr bool
	}{
		{name: "no bindings", expr: "2+3*4", sep: '.', expect: "14"},
		{name: "bindings", expr: "3x^2 + y", binds: []string{"x=2", "y=1"}, sep: '.', expect: "13"},
		{name: "decimal comma", expr: "0.5 + 0.25", sep: ',', expect: "0,75"},
		{name: "bad binding", expr: "2a", binds: []string{"a"}, expectErr: true},
		{name: "bad expression", expr: "2 +", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			out, err := runEval(tc.expr, tc.binds, tc.sep)
			if tc.expectErr {
				assert.Error(err)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expect, out.Value)
		})
	}
}

func Test_runTokens(t *testing.T) {
	assert := assert.New(t)

	out, err := runTokens("2 + 3", 0)
	if !assert.NoError(err) {
		return
	}

	expect := []tokenOutput{
		{Kind: "digit", Text: "2", Line: 1, Column: 1},
		{Kind: "addop", Text: "+", Line: 1, Column: 3},
		{Kind: "digit", Text: "3", Line: 1, Column: 5},
	}
	if diff := cmp.Diff(expect, out.Tokens); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}

	_, err = runTokens("2 # 3", 0)
	assert.Contains(msgerr.Message(err), "Invalid expression")
}

func Test_runGrammar(t *testing.T) {
	assert := assert.New(t)

	out, err := runGrammar("list = item, {',', item} ;\nitem = 'x' | 'y' ;")
	if !assert.NoError(err) {
		return
	}

	assert.Equal("list", out.Start)
	assert.Equal([]grammarRuleOutput{
		{Name: "list", Definition: "item, {',', item}"},
		{Name: "item", Definition: "'x' | 'y'", Token: true},
	}, out.Rules)
	assert.NotEmpty(out.Tokens)

	_, err = runGrammar("a = a | 'x' ;")
	assert.Contains(msgerr.Message(err), "Invalid grammar")
}

func Test_RootCommand(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "algestep.toml")
	cfgData := "format = \"v1.0.0\"\n[display]\ndecimal_separator = \".\"\n"
	if err := os.WriteFile(cfgFile, []byte(cfgData), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("text solve", func(t *testing.T) {
		assert := assert.New(t)

		var out bytes.Buffer
		root := newRootCommand()
		root.SetOut(&out)
		root.SetArgs([]string{"-c", cfgFile, "solve", "2+3*4"})

		assert.NoError(root.Execute())
		assert.Contains(out.String(), "Step 1: 2 + 12")
		assert.Contains(out.String(), "[MulDivIntegers]")
		assert.Contains(out.String(), "Result: 14")
	})

	t.Run("json eval", func(t *testing.T) {
		assert := assert.New(t)

		var out bytes.Buffer
		root := newRootCommand()
		root.SetOut(&out)
		root.SetArgs([]string{"-c", cfgFile, "--format", "json", "eval", "2a", "--bind", "a=2"})

		if !assert.NoError(root.Execute()) {
			return
		}
		var actual evalOutput
		if !assert.NoError(json.Unmarshal(out.Bytes(), &actual)) {
			return
		}
		assert.Equal("4", actual.Value)
		assert.Equal(map[string]string{"a": "2"}, actual.Bindings)
	})

	t.Run("cbor solve", func(t *testing.T) {
		assert := assert.New(t)

		var out bytes.Buffer
		root := newRootCommand()
		root.SetOut(&out)
		root.SetArgs([]string{"-c", cfgFile, "-f", "cbor", "solve", "1+1"})

		if !assert.NoError(root.Execute()) {
			return
		}
		var actual solveOutput
		if !assert.NoError(cbor.Unmarshal(out.Bytes(), &actual)) {
			return
		}
		assert.Equal("2", actual.Result)
		assert.True(actual.Done)
	})

	t.Run("bad format", func(t *testing.T) {
		root := newRootCommand()
		root.SetOut(&bytes.Buffer{})
		root.SetArgs([]string{"-c", cfgFile, "-f", "yaml", "solve", "1+1"})

		err := root.Execute()
		assert.Contains(t, msgerr.Message(err), "not an output format")
	})
}

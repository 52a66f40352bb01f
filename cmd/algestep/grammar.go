package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dekarrin/rosed"
	"github.com/spf13/cobra"

	"github.com/dekarrin/algestep/algebra/syntax"
	"github.com/dekarrin/algestep/internal/ebnf/grammar"
	"github.com/dekarrin/algestep/internal/ebnf/parse"
)

type tokenOutput struct {
	Kind   string `json:"kind" cbor:"kind"`
	Text   string `json:"text" cbor:"text"`
	Line   int    `json:"line" cbor:"line"`
	Column int    `json:"column" cbor:"column"`
}

type tokensOutput struct {
	Tokens []tokenOutput `json:"tokens" cbor:"tokens"`
}

func (to tokensOutput) Text(width int) string {
	data := [][]string{{"Kind", "Text", "Position"}}
	for _, t := range to.Tokens {
		data = append(data, []string{t.Kind, t.Text, fmt.Sprintf("%d:%d", t.Line, t.Column)})
	}
	return rosed.Edit("").
		InsertTableOpts(0, data, width, rosed.Options{TableHeaders: true}).
		String()
}

func newTokensCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens EXPR",
		Short: "Print the tokens the math lexer reads from an expression",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := runTokens(strings.Join(args, " "), g.cfg.Limits.ParseBudget)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), g.format, g.cfg.Display.Width, out)
		},
	}
}

func runTokens(expr string, budget int) (tokensOutput, error) {
	p, err := parse.New(syntax.Table(), syntax.Options(budget))
	if err != nil {
		return tokensOutput{}, fmt.Errorf("build math parser: %w", err)
	}

	stream, err := p.Lexer().Tokenize(syntax.Normalize(expr))
	if err != nil {
		return tokensOutput{}, err
	}

	out := tokensOutput{Tokens: []tokenOutput{}}
	for _, t := range stream.Tokens() {
		out.Tokens = append(out.Tokens, tokenOutput{
			Kind:   string(t.Kind),
			Text:   t.Text,
			Line:   t.Line,
			Column: t.Column,
		})
	}
	return out, nil
}

type grammarRuleOutput struct {
	Name       string `json:"name" cbor:"name"`
	Definition string `json:"definition" cbor:"definition"`
	Token      bool   `json:"token" cbor:"token"`
}

type grammarOutput struct {
	Start  string              `json:"start" cbor:"start"`
	Rules  []grammarRuleOutput `json:"rules" cbor:"rules"`
	Tokens []string            `json:"tokens" cbor:"tokens"`

	text string
}

func (gro grammarOutput) Text(width int) string {
	var sb strings.Builder
	sb.WriteString(gro.text)
	sb.WriteString("\n(* start rule: " + gro.Start + " *)\n")
	sb.WriteString("(* derived tokens, in match order: *)\n")
	for _, t := range gro.Tokens {
		sb.WriteString("(*   " + t + " *)\n")
	}
	return sb.String()
}

func newGrammarCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "grammar FILE",
		Short: "Compile and check a grammar file and print its rules and tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read grammar: %w", err)
			}
			out, err := runGrammar(string(data))
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), g.format, g.cfg.Display.Width, out)
		},
	}
}

func runGrammar(text string) (grammarOutput, error) {
	rt, err := grammar.Compile(text)
	if err != nil {
		return grammarOutput{}, err
	}

	out := grammarOutput{Start: rt.Start(), text: rt.String()}
	for _, r := range rt.Rules() {
		out.Rules = append(out.Rules, grammarRuleOutput{
			Name:       r.Name,
			Definition: r.Expr.String(),
			Token:      rt.IsTokenRule(r.Name),
		})
	}
	for _, m := range rt.Tokens() {
		out.Tokens = append(out.Tokens, m.String())
	}
	return out, nil
}

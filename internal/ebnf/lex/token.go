package lex

import "fmt"

// Kind is the kind of lexeme a Token holds. Kinds are named by whoever built
// the matcher table; the grammar package names them after the rule or literal
// they were derived from.
type Kind string

const (
	// KindEndOfText is the kind of the token returned once a Stream has no
	// more visible tokens.
	KindEndOfText Kind = "$"

	// KindChar is the kind of the catch-all single character matcher.
	KindChar Kind = "char"
)

// Token is a lexeme read from source text along with its kind and the
// position it was read from. Tokens are never modified once produced.
type Token struct {
	// Text is the exact text that was lexed.
	Text string

	// Kind is the kind of the matcher that produced the token.
	Kind Kind

	// Line is the 1-indexed line the token starts on.
	Line int

	// Column is the 1-indexed character position within Line that the token
	// starts on.
	Column int

	// FullLine is the complete text of the line the token starts on.
	FullLine string
}

// EndOfText returns whether the token marks the end of the stream.
func (t Token) EndOfText() bool {
	return t.Kind == KindEndOfText
}

func (t Token) String() string {
	if t.EndOfText() {
		return "(END)"
	}
	return fmt.Sprintf("(%s %q)", t.Kind, t.Text)
}

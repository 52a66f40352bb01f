// Package lex turns source text into a stream of tokens using a table of named
// matchers, and gives parsers a transactional cursor over that stream for
// backtracking.
package lex

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dekarrin/algestep/internal/trace"
)

// Matcher recognizes one kind of token. It is either an exact literal or a
// regular expression; patterns are anchored to the cursor automatically.
type Matcher struct {
	Kind    Kind
	Literal string
	Pattern string

	// Ignore makes the matcher consume its text without producing a token.
	Ignore bool
}

// Literal returns a Matcher that matches exactly text.
func Literal(kind Kind, text string) Matcher {
	return Matcher{Kind: kind, Literal: text}
}

// Pattern returns a Matcher that matches the regular expression pat.
func Pattern(kind Kind, pat string) Matcher {
	return Matcher{Kind: kind, Pattern: pat}
}

// Ignored returns a copy of m that produces no token.
func (m Matcher) Ignored() Matcher {
	m.Ignore = true
	return m
}

func (m Matcher) String() string {
	var s string
	if m.Pattern != "" {
		s = fmt.Sprintf("%s /%s/", m.Kind, m.Pattern)
	} else {
		s = fmt.Sprintf("%s %q", m.Kind, m.Literal)
	}
	if m.Ignore {
		s += " (ignored)"
	}
	return s
}

type compiledMatcher struct {
	Matcher
	re *regexp.Regexp
}

// match returns the number of bytes of s the matcher accepts, or 0.
func (cm compiledMatcher) match(s string) int {
	if cm.re != nil {
		loc := cm.re.FindStringIndex(s)
		if loc == nil {
			return 0
		}
		return loc[1]
	}
	if strings.HasPrefix(s, cm.Literal) {
		return len(cm.Literal)
	}
	return 0
}

// Lexer tokenizes source text with a fixed matcher table. A Lexer holds no
// per-call state and can be shared.
type Lexer struct {
	matchers []compiledMatcher
	filtered map[Kind]bool
}

// New creates a Lexer from the given matchers. Matchers are tried in the order
// given and the first one that matches wins. Tokens of a filtered kind are kept
// in the token buffer but are skipped by every Stream traversal method.
func New(matchers []Matcher, filtered ...Kind) (*Lexer, error) {
	lx := &Lexer{filtered: map[Kind]bool{}}

	for i, m := range matchers {
		cm := compiledMatcher{Matcher: m}
		if m.Pattern != "" {
			re, err := regexp.Compile(`^(?:` + m.Pattern + `)`)
			if err != nil {
				return nil, fmt.Errorf("matcher %d (%s): %w", i, m.Kind, err)
			}
			cm.re = re
		} else if m.Literal == "" {
			return nil, fmt.Errorf("matcher %d (%s): neither literal nor pattern given", i, m.Kind)
		}
		lx.matchers = append(lx.matchers, cm)
	}

	for _, k := range filtered {
		lx.filtered[k] = true
	}

	return lx, nil
}

// Matchers returns the matcher table in the order it is tried.
func (lx *Lexer) Matchers() []Matcher {
	ms := make([]Matcher, len(lx.matchers))
	for i := range lx.matchers {
		ms[i] = lx.matchers[i].Matcher
	}
	return ms
}

// Tokenize is a convenience that builds a Lexer and runs it once.
func Tokenize(source string, matchers []Matcher, filtered ...Kind) (*Stream, error) {
	lx, err := New(matchers, filtered...)
	if err != nil {
		return nil, err
	}
	return lx.Tokenize(source)
}

// Tokenize lexes the entire source. If any part of source is not matched by a
// matcher, a LexicalError is returned.
func (lx *Lexer) Tokenize(source string) (*Stream, error) {
	lines := strings.Split(source, "\n")

	var tokens []Token
	line, col := 1, 1
	pos := 0

	for pos < len(source) {
		n, m := lx.firstMatch(source[pos:])
		if n == 0 {
			bad := lx.unmatchedRun(source[pos:])
			return nil, LexicalError{
				sourceLine: lines[line-1],
				source:     bad,
				line:       line,
				pos:        col,
			}
		}

		text := source[pos : pos+n]
		if !m.Ignore {
			tokens = append(tokens, Token{
				Text:     text,
				Kind:     m.Kind,
				Line:     line,
				Column:   col,
				FullLine: lines[line-1],
			})
		}

		for _, ch := range text {
			if ch == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
		pos += n
	}

	trace.Syntax().Debugf("lexed %d token(s) from %d byte(s)", len(tokens), len(source))

	end := Token{Kind: KindEndOfText, Line: line, Column: col, FullLine: lines[line-1]}
	return newStream(source, tokens, end, lx.filtered), nil
}

// firstMatch returns the match length and matcher of the first matcher in
// declaration order that accepts a non-empty prefix of s.
func (lx *Lexer) firstMatch(s string) (int, compiledMatcher) {
	for _, m := range lx.matchers {
		if n := m.match(s); n > 0 {
			return n, m
		}
	}
	return 0, compiledMatcher{}
}

// unmatchedRun returns the run of s, up to the end of the line, that no
// matcher accepts.
func (lx *Lexer) unmatchedRun(s string) string {
	_, end := utf8.DecodeRuneInString(s)
	for end < len(s) && s[end] != '\n' {
		if n, _ := lx.firstMatch(s[end:]); n > 0 {
			break
		}
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return s[:end]
}

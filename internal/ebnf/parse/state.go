package parse

import (
	"fmt"

	"github.com/dekarrin/algestep/internal/ebnf/lex"
	"github.com/dekarrin/algestep/internal/trace"
	"github.com/dekarrin/algestep/internal/util"
)

// state is the working state of a single parse.
type state struct {
	s *lex.Stream

	steps     int
	maxSteps  int
	exhausted bool

	// furthest is the raw token index of the furthest failed match, and
	// expected is what would have been accepted there.
	furthest int
	expected util.StringSet
}

func (st *state) reset(s *lex.Stream, maxSteps int) {
	st.s = s
	st.steps = 0
	st.maxSteps = maxSteps
	st.exhausted = false
	st.furthest = -1
	st.expected = util.NewStringSet()
}

// tick counts one match attempt against the budget and returns whether the
// parse may continue.
func (st *state) tick() bool {
	if st.exhausted {
		return false
	}
	st.steps++
	if st.maxSteps > 0 && st.steps > st.maxSteps {
		st.exhausted = true
		trace.Syntax().Errorf("parse budget of %d match attempts exhausted", st.maxSteps)
	}
	return !st.exhausted
}

// posOf returns the raw buffer index of a token just returned by Next.
func (st *state) posOf(tok lex.Token) int {
	if tok.EndOfText() {
		return st.s.Len()
	}
	return st.s.Pos() - 1
}

func (st *state) fail(pos int, want string) {
	if pos > st.furthest {
		st.furthest = pos
		st.expected = util.NewStringSet()
	}
	if pos == st.furthest {
		st.expected.Add(want)
	}
}

func (st *state) syntaxError() error {
	tok := st.s.At(st.furthest)
	expected := st.expected.Elements()

	var msg string
	if tok.EndOfText() {
		msg = "unexpected end of input"
	} else {
		msg = fmt.Sprintf("unexpected %q", tok.Text)
	}
	if len(expected) > 0 {
		msg += "; expected " + util.MakeTextList(expected, "or")
	}

	return syntaxErrorAt(tok, msg, expected)
}

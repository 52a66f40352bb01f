package parse

import (
	"errors"
	"fmt"

	"github.com/dekarrin/algestep/internal/ebnf/lex"
)

var (
	// ErrSyntax is matched by every SyntaxError with errors.Is.
	ErrSyntax = errors.New("syntax error")

	// ErrBudgetExceeded is returned when a parse gives up after making more
	// match attempts than its step budget allows.
	ErrBudgetExceeded = errors.New("parse step budget exceeded")
)

// SyntaxError is returned when source does not match the grammar or when input
// is left over after the start rule matched. It reports the furthest position
// the parser reached before giving up.
type SyntaxError struct {
	sourceLine string
	source     string

	// line that error occured on, 1-indexed.
	line int

	// position in line of error, 1-indexed.
	pos      int
	message  string
	expected []string
}

func (se SyntaxError) Error() string {
	if se.line == 0 {
		return fmt.Sprintf("syntax error: %s", se.message)
	}

	return fmt.Sprintf("syntax error: around line %d, char %d: %s", se.line, se.pos, se.message)
}

// Is returns whether target is ErrSyntax.
func (se SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// Source returns the exact text of the token the parser could not get past.
// At the end of input this is a blank string.
func (se SyntaxError) Source() string {
	return se.source
}

// Line returns the line the error occured on. Lines are 1-indexed.
func (se SyntaxError) Line() int {
	return se.line
}

// Position returns the character position that the error occured on.
// Character positions are 1-indexed.
func (se SyntaxError) Position() int {
	return se.pos
}

// Expected returns what the parser would have accepted at the error position,
// alphabetized.
func (se SyntaxError) Expected() []string {
	return se.expected
}

// FullMessage shows the complete message of the error string along with the
// offending line and a cursor to the problem position in a formatted way.
func (se SyntaxError) FullMessage() string {
	errMsg := se.Error()

	if se.line != 0 && se.sourceLine != "" {
		errMsg = lex.SourceLineWithCursor(se.sourceLine, se.pos) + "\n" + errMsg
	}

	return errMsg
}

func syntaxErrorAt(tok lex.Token, msg string, expected []string) SyntaxError {
	return SyntaxError{
		sourceLine: tok.FullLine,
		source:     tok.Text,
		line:       tok.Line,
		pos:        tok.Column,
		message:    msg,
		expected:   expected,
	}
}

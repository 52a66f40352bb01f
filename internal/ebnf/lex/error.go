package lex

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLexical is matched by every LexicalError with errors.Is.
var ErrLexical = errors.New("lexical error")

// LexicalError is returned when a range of source text is not matched by any
// matcher in the table.
type LexicalError struct {
	sourceLine string
	source     string

	// line that error occured on, 1-indexed.
	line int

	// position in line of error, 1-indexed.
	pos int
}

func (le LexicalError) Error() string {
	return fmt.Sprintf("lexical error: around line %d, char %d: unrecognized input %q", le.line, le.pos, le.source)
}

// Is returns whether target is ErrLexical.
func (le LexicalError) Is(target error) bool {
	return target == ErrLexical
}

// Source returns the text that could not be lexed.
func (le LexicalError) Source() string {
	return le.source
}

// Line returns the 1-indexed line the error occured on.
func (le LexicalError) Line() int {
	return le.line
}

// Position returns the 1-indexed character position within the line that the
// error occured on.
func (le LexicalError) Position() int {
	return le.pos
}

// FullMessage shows the offending line with a cursor under the problem
// position followed by the error message.
func (le LexicalError) FullMessage() string {
	return SourceLineWithCursor(le.sourceLine, le.pos) + "\n" + le.Error()
}

// SourceLineWithCursor returns the given source line and, directly under it, a
// cursor line pointing at the 1-indexed position pos. Returns a blank string
// if line is blank.
func SourceLineWithCursor(line string, pos int) string {
	if line == "" {
		return ""
	}

	cursor := ""
	if pos > 0 {
		cursor = strings.Repeat(" ", pos-1)
	}
	return line + "\n" + cursor + "^"
}

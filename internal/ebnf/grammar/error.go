package grammar

import (
	"errors"
	"fmt"

	"github.com/dekarrin/algestep/internal/ebnf/lex"
)

// ErrGrammar is matched by every grammar Error with errors.Is.
var ErrGrammar = errors.New("grammar error")

// Error is returned when grammar text is malformed or when the rules it
// defines cannot be used to build a parser. No RuleTable is produced when an
// Error occurs.
type Error struct {
	sourceLine string

	// rule the error is about, if known.
	rule string

	// line that error occured on, 1-indexed. 0 when the error is about the
	// rule graph rather than a place in the text.
	line int

	// position in line of error, 1-indexed.
	pos     int
	message string
}

func (ge Error) Error() string {
	if ge.line == 0 {
		if ge.rule != "" {
			return fmt.Sprintf("grammar error: rule %q: %s", ge.rule, ge.message)
		}
		return fmt.Sprintf("grammar error: %s", ge.message)
	}
	return fmt.Sprintf("grammar error: around line %d, char %d: %s", ge.line, ge.pos, ge.message)
}

// Is returns whether target is ErrGrammar.
func (ge Error) Is(target error) bool {
	return target == ErrGrammar
}

// Rule returns the name of the rule the error is about. It is blank when the
// error occured outside of any rule.
func (ge Error) Rule() string {
	return ge.rule
}

// Line returns the 1-indexed line the error occured on, or 0 if the error is
// not tied to a position.
func (ge Error) Line() int {
	return ge.line
}

// Position returns the 1-indexed character position within the line.
func (ge Error) Position() int {
	return ge.pos
}

// FullMessage shows the complete error message along with the offending line
// and a cursor to the problem position.
func (ge Error) FullMessage() string {
	if ge.line == 0 {
		return ge.Error()
	}
	return lex.SourceLineWithCursor(ge.sourceLine, ge.pos) + "\n" + ge.Error()
}

func errorAt(tok lex.Token, rule string, format string, a ...any) Error {
	return Error{
		sourceLine: tok.FullLine,
		rule:       rule,
		line:       tok.Line,
		pos:        tok.Column,
		message:    fmt.Sprintf(format, a...),
	}
}

func errorInRule(rule string, format string, a ...any) Error {
	return Error{rule: rule, message: fmt.Sprintf(format, a...)}
}

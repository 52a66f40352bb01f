// Package msgerr gives errors a message fit to show a person at a console or
// in an API response alongside the usual technical one.
package msgerr

import (
	"errors"
	"fmt"

	"github.com/dekarrin/algestep/algebra"
	"github.com/dekarrin/algestep/internal/ebnf/grammar"
	"github.com/dekarrin/algestep/internal/ebnf/lex"
	"github.com/dekarrin/algestep/internal/ebnf/parse"
)

// consoleError is an error caused by input that could not be understood or
// that asks for something that cannot be done. It carries a message to show
// the user as well as the technical one.
type consoleError struct {
	msg   string
	human string
	wrap  error
}

func (e *consoleError) Error() string {
	return e.msg
}

// UserMessage is the message that should be shown to describe the error.
func (e *consoleError) UserMessage() string {
	return e.human
}

func (e *consoleError) Unwrap() error {
	return e.wrap
}

// New returns an error with both the message to show the user and the
// technical description of the error.
func New(human, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got consoleError(%q)", human)
	}
	return &consoleError{
		msg:   technical,
		human: human,
	}
}

// Newf is like New but formats the message to show the user and generates
// the technical one.
func Newf(humanFormat string, a ...interface{}) error {
	return New(fmt.Sprintf(humanFormat, a...), "")
}

// Wrap returns an error with both messages that wraps e.
func Wrap(e error, human, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got consoleError(%q): %v", human, e)
	}
	return &consoleError{
		msg:   technical,
		human: human,
		wrap:  e,
	}
}

// Wrapf is like Wrap but formats the message to show the user.
func Wrapf(e error, humanFormat string, a ...interface{}) error {
	return Wrap(e, fmt.Sprintf(humanFormat, a...), "")
}

// Message gets the message to show the user for err. Errors made by this
// package give their user message and grammar errors their full message.
// Errors from parsing math source are described as invalid expressions and
// errors from math that cannot be done as invalid math steps. Anything else
// gives err.Error().
func Message(err error) string {
	var ce *consoleError
	if errors.As(err, &ce) {
		return ce.UserMessage()
	}

	var synErr parse.SyntaxError
	var lexErr lex.LexicalError
	var gramErr grammar.Error
	switch {
	case errors.As(err, &gramErr):
		return "Invalid grammar:\n" + gramErr.FullMessage()
	case errors.As(err, &synErr):
		return "Invalid expression:\n" + synErr.FullMessage()
	case errors.As(err, &lexErr):
		return "Invalid expression:\n" + lexErr.FullMessage()
	case errors.Is(err, algebra.ErrInvalidStep):
		return "Invalid math step: " + cause(err, algebra.ErrInvalidStep).Error()
	case errors.Is(err, algebra.ErrInvalidExpression):
		return "Invalid expression: " + cause(err, algebra.ErrInvalidExpression).Error()
	}
	return err.Error()
}

// cause returns the error that err joins with the sentinel, or err itself if
// it has no such error.
func cause(err error, sentinel error) error {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return err
	}
	for _, e := range joined.Unwrap() {
		if e != sentinel {
			return e
		}
	}
	return err
}

// Package command defines the commands of the interactive solver console and
// parses them from lines of input.
package command

import "github.com/dekarrin/algestep/algebra/syntax"

// Command is a valid command read from the console.
type Command struct {

	// Verb is the canonical name of the command, such as "SOLVE", "STEP" or
	// "QUIT". Shorthand forms are expanded, so typing "N" or "NEXT" gives a
	// Command with a Verb of "STEP". A line that does not start with a verb is
	// taken to be an expression to solve.
	Verb string

	// Argument is the rest of the line after the verb with its case kept, such
	// as the expression for SOLVE and EVAL or the topic for HELP. For EVAL it
	// does not include the WITH clause.
	Argument string

	// Bindings are the variable values given in the WITH clause of EVAL.
	Bindings syntax.Bindings
}

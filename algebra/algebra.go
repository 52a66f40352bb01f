// Package algebra solves math expressions one step at a time.
//
// An Engine is made from math source. Each call to SolveNextStep applies the
// rewrite rules of one precedence level to the expression and reports what
// changed; once it reports no changes the expression is as simple as the
// rules can make it. Evaluate computes the final value directly instead.
package algebra

import (
	"errors"
	"fmt"

	"github.com/dekarrin/algestep/algebra/solve"
	"github.com/dekarrin/algestep/algebra/syntax"
	"github.com/dekarrin/algestep/algebra/value"
	"github.com/dekarrin/algestep/internal/ebnf"
	"github.com/dekarrin/algestep/internal/ebnf/parse"
	"github.com/dekarrin/algestep/internal/trace"
)

var (
	// ErrInvalidExpression is wrapped by errors caused by source that is not
	// a math expression.
	ErrInvalidExpression = errors.New("invalid expression")

	// ErrInvalidStep is wrapped by errors caused by math that cannot be done,
	// such as dividing by zero or adding a number to a variable term.
	ErrInvalidStep = errors.New("invalid math step")
)

// Step is one completed step of a solve.
type Step struct {
	// Number counts from 1.
	Number int

	Changes []solve.Change

	// Display is the expression as it reads after the step.
	Display string
}

type options struct {
	include  []string
	exclude  []string
	registry *solve.Registry
	frontend *ebnf.Frontend
}

// Option configures an Engine.
type Option func(*options)

// IncludeRules limits the rules an Engine uses to the named ones.
func IncludeRules(names ...string) Option {
	return func(o *options) {
		o.include = append(o.include, names...)
	}
}

// ExcludeRules stops an Engine from using the named rules.
func ExcludeRules(names ...string) Option {
	return func(o *options) {
		o.exclude = append(o.exclude, names...)
	}
}

// WithRegistry makes an Engine select its rules from reg instead of from
// solve.DefaultRegistry.
func WithRegistry(reg *solve.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithFrontend makes an Engine parse its source with fe, which must have
// been built by syntax.NewFrontend.
func WithFrontend(fe *ebnf.Frontend) Option {
	return func(o *options) {
		o.frontend = fe
	}
}

// Engine holds one expression being solved. It is not safe for concurrent
// use.
type Engine struct {
	source  string
	ast     *parse.AST
	tree    *solve.Tree
	rules   solve.RuleSet
	history []Step
	done    bool
}

// New parses source and returns an Engine ready to solve it. The source is
// NFC-normalized before it is parsed. Errors in the source wrap
// ErrInvalidExpression; unknown rule names are reported as they are.
func New(source string, opts ...Option) (*Engine, error) {
	o := options{registry: solve.DefaultRegistry()}
	for _, opt := range opts {
		opt(&o)
	}

	rules, err := o.registry.Select(o.include, o.exclude)
	if err != nil {
		return nil, err
	}

	source = syntax.Normalize(source)
	var ast *parse.AST
	if o.frontend != nil {
		ast, err = o.frontend.ParseAST(source)
	} else {
		ast, err = syntax.Parse(source)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExpression, err)
	}

	tree, err := solve.FromAST(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExpression, err)
	}

	trace.Core().Debugf("new engine for %q with %d rule(s)", source, rules.Len())
	return &Engine{
		source: source,
		ast:    ast,
		tree:   tree,
		rules:  rules,
	}, nil
}

// Source returns the normalized source the Engine was made from.
func (e *Engine) Source() string {
	return e.source
}

// String returns the expression as it currently reads.
func (e *Engine) String() string {
	return e.tree.String()
}

// RuleNames returns the names of the rules the Engine uses.
func (e *Engine) RuleNames() []string {
	return e.rules.Names()
}

// SolveNextStep makes one step of progress and returns what changed. An empty
// result means there is nothing more to do, and further calls keep returning
// an empty result. Math that cannot be done gives an error wrapping
// ErrInvalidStep, and the expression is left as it was.
func (e *Engine) SolveNextStep() ([]solve.Change, error) {
	if e.done {
		return nil, nil
	}

	changes, err := e.tree.Step(e.rules)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStep, err)
	}
	if len(changes) == 0 {
		e.done = true
		return nil, nil
	}

	e.history = append(e.history, Step{
		Number:  len(e.history) + 1,
		Changes: changes,
		Display: e.tree.String(),
	})
	return changes, nil
}

// Solve calls SolveNextStep until it returns no changes or max steps have
// been made, and returns the steps made by this call. A max of 0 or less means
// no limit.
func (e *Engine) Solve(max int) ([]Step, error) {
	start := len(e.history)
	for max <= 0 || len(e.history)-start < max {
		changes, err := e.SolveNextStep()
		if err != nil {
			return e.stepsSince(start), err
		}
		if len(changes) == 0 {
			break
		}
	}
	return e.stepsSince(start), nil
}

func (e *Engine) stepsSince(start int) []Step {
	steps := make([]Step, len(e.history)-start)
	copy(steps, e.history[start:])
	return steps
}

// History returns every step made so far.
func (e *Engine) History() []Step {
	return e.stepsSince(0)
}

// Done returns whether SolveNextStep has found nothing more to do.
func (e *Engine) Done() bool {
	return e.done
}

// Value returns the value the expression has been reduced to. ok is false if
// it has not been reduced to a single value.
func (e *Engine) Value() (v value.Value, ok bool) {
	return e.tree.Value()
}

// Evaluate computes the value of the expression as it was given, with the
// given variable bindings, without stepping. Math that cannot be done gives an
// error wrapping ErrInvalidStep.
func (e *Engine) Evaluate(bindings syntax.Bindings) (value.Value, error) {
	v, err := syntax.Evaluate(e.ast, bindings)
	if err != nil {
		if errors.Is(err, value.ErrValue) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidStep, err)
		}
		return nil, err
	}
	return v, nil
}

// Evaluate parses source and computes its value with the given bindings.
func Evaluate(source string, bindings syntax.Bindings) (value.Value, error) {
	e, err := New(source)
	if err != nil {
		return nil, err
	}
	return e.Evaluate(bindings)
}

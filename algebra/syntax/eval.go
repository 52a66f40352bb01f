package syntax

import (
	"fmt"

	"github.com/dekarrin/algestep/algebra/value"
	"github.com/dekarrin/algestep/internal/ebnf/parse"
)

// Bindings gives values for variable letters.
type Bindings map[string]value.Value

// Relational operators as written in equations, mapped to the comparison
// results that make them true.
var relops = map[string][]int{
	"=":  {0},
	"!=": {-1, 1},
	"≠":  {-1, 1},
	"<":  {-1},
	">":  {1},
	"<=": {-1, 0},
	"≤":  {-1, 0},
	">=": {0, 1},
	"≥":  {0, 1},
}

// Actions returns the evaluation actions for every kind of math AST node.
// Equations evaluate to 1 when they hold and 0 when they do not; a system
// evaluates to 1 only when all of its equations hold.
func Actions() map[string]parse.Action {
	return map[string]parse.Action{
		KindNumber:   parse.ActionFunc(evalLiteral),
		KindFraction: parse.ActionFunc(evalLiteral),
		KindVariable: parse.ActionFunc(evalVariable),
		KindGroup:    parse.ActionFunc(evalGroup),
		KindNeg:      parse.ActionFunc(evalNeg),
		KindAdd:      binaryAction(value.Value.Add),
		KindSub:      binaryAction(value.Value.Sub),
		KindMul:      binaryAction(value.Value.Mul),
		KindDiv:      binaryAction(value.Value.Div),
		KindPow:      binaryAction(value.Value.Exp),
		KindRoot:     parse.ActionFunc(evalRoot),
		KindEquation: parse.ActionFunc(evalEquation),
		KindSystem:   parse.ActionFunc(evalSystem),
	}
}

// Evaluate computes the value of a math AST with the given variable bindings.
// Unbound variables are left as variable terms.
func Evaluate(ast *parse.AST, bindings Bindings) (value.Value, error) {
	env := map[string]any{}
	for letter, v := range bindings {
		env[letter] = v
	}

	res, err := ast.Evaluate(env)
	if err != nil {
		return nil, err
	}
	v, ok := res.(value.Value)
	if !ok {
		return nil, fmt.Errorf("evaluation produced %T, not a value", res)
	}
	return v, nil
}

func visitValue(ctx *parse.VisitContext, id parse.NodeID) (value.Value, error) {
	res, err := ctx.Visit(id)
	if err != nil {
		return nil, err
	}
	v, ok := res.(value.Value)
	if !ok {
		return nil, fmt.Errorf("%s node evaluated to %T, not a value", ctx.Node(id).Kind, res)
	}
	return v, nil
}

func evalLiteral(ctx *parse.VisitContext, id parse.NodeID) (any, error) {
	return value.Parse(ctx.Node(id).Value)
}

func evalVariable(ctx *parse.VisitContext, id parse.NodeID) (any, error) {
	v, err := value.Parse(ctx.Node(id).Value)
	if err != nil {
		return nil, err
	}
	term, ok := v.(value.Variable)
	if !ok {
		return v, nil
	}

	bound, ok := ctx.Env[term.Letter]
	if !ok {
		return term, nil
	}
	bv, ok := bound.(value.Value)
	if !ok {
		return nil, fmt.Errorf("binding for %s is %T, not a value", term.Letter, bound)
	}
	return term.Bind(bv)
}

func evalGroup(ctx *parse.VisitContext, id parse.NodeID) (any, error) {
	return visitValue(ctx, ctx.Node(id).Left)
}

func evalNeg(ctx *parse.VisitContext, id parse.NodeID) (any, error) {
	v, err := visitValue(ctx, ctx.Node(id).Left)
	if err != nil {
		return nil, err
	}
	return v.Negate(), nil
}

func binaryAction(op func(l, r value.Value) (value.Value, error)) parse.Action {
	return parse.ActionFunc(func(ctx *parse.VisitContext, id parse.NodeID) (any, error) {
		n := ctx.Node(id)
		l, err := visitValue(ctx, n.Left)
		if err != nil {
			return nil, err
		}
		r, err := visitValue(ctx, n.Right)
		if err != nil {
			return nil, err
		}
		return op(l, r)
	})
}

func evalRoot(ctx *parse.VisitContext, id parse.NodeID) (any, error) {
	n := ctx.Node(id)
	radicand, err := visitValue(ctx, n.Left)
	if err != nil {
		return nil, err
	}
	if n.Right == parse.NoNode {
		return radicand.Root()
	}
	degree, err := visitValue(ctx, n.Right)
	if err != nil {
		return nil, err
	}
	return radicand.NthRoot(degree)
}

func evalEquation(ctx *parse.VisitContext, id parse.NodeID) (any, error) {
	n := ctx.Node(id)
	l, err := visitValue(ctx, n.Left)
	if err != nil {
		return nil, err
	}
	r, err := visitValue(ctx, n.Right)
	if err != nil {
		return nil, err
	}
	return Holds(n.Value, l, r)
}

// Holds returns Integer 1 if l relop r is true and Integer 0 otherwise.
func Holds(relop string, l, r value.Value) (value.Value, error) {
	want, ok := relops[relop]
	if !ok {
		return nil, fmt.Errorf("unknown relational operator %q", relop)
	}
	c, err := value.Compare(l, r)
	if err != nil {
		return nil, err
	}
	for _, w := range want {
		if c == w {
			return value.Integer(1), nil
		}
	}
	return value.Integer(0), nil
}

func evalSystem(ctx *parse.VisitContext, id parse.NodeID) (any, error) {
	for _, kid := range ctx.AST.Children(id) {
		v, err := visitValue(ctx, kid)
		if err != nil {
			return nil, err
		}
		if v.IsZero() {
			return value.Integer(0), nil
		}
	}
	return value.Integer(1), nil
}

package parse

import "fmt"

// Action is behavior attached to AST nodes of a kind. The same Action type is
// used for evaluation and for any other walk over the tree.
type Action interface {
	Visit(ctx *VisitContext, id NodeID) (any, error)
}

// ActionFunc adapts a function to an Action.
type ActionFunc func(ctx *VisitContext, id NodeID) (any, error)

// Visit calls f.
func (f ActionFunc) Visit(ctx *VisitContext, id NodeID) (any, error) {
	return f(ctx, id)
}

// VisitContext is passed to every Action during a walk.
type VisitContext struct {
	AST *AST

	// Env is caller state shared by the whole walk, such as variable
	// bindings.
	Env map[string]any
}

// Visit runs the Action attached to node id.
func (ctx *VisitContext) Visit(id NodeID) (any, error) {
	if id == NoNode {
		return nil, fmt.Errorf("cannot visit an absent node")
	}
	n := ctx.AST.Node(id)
	if n.Action == nil {
		return nil, fmt.Errorf("no action for %q node", n.Kind)
	}
	return n.Action.Visit(ctx, id)
}

// Node returns the node with the given ID.
func (ctx *VisitContext) Node(id NodeID) Node {
	return ctx.AST.Node(id)
}

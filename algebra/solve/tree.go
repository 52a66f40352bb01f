// Package solve rewrites math ASTs one step at a time.
//
// A Tree is a mutable working copy of an AST stored as an arena of nodes.
// Leaf values are never changed in place. A leaf that is rewritten is detached
// and replaced by a new one, so leaves recorded in earlier Changes keep the
// values they had when the Change was made.
package solve

import (
	"fmt"
	"strings"

	"github.com/dekarrin/algestep/algebra/syntax"
	"github.com/dekarrin/algestep/algebra/value"
	"github.com/dekarrin/algestep/internal/ebnf/parse"
)

// NodeID addresses a node in the arena of one Tree.
type NodeID int

// NoNode is the NodeID of an absent node.
const NoNode NodeID = -1

// Node is one node of a Tree.
type Node struct {
	// Kind is one of the syntax.Kind constants.
	Kind string

	// Op is the operator as written, such as "+" or "÷". It is empty for
	// leaves and for implicit multiplication.
	Op string

	// Value is set for leaves only.
	Value value.Value

	Left   NodeID
	Right  NodeID
	Parent NodeID

	// Depth is the number of groups the node is nested in.
	Depth int

	// Expression is the nearest group that is a strict ancestor of the node,
	// or NoNode.
	Expression NodeID

	// Equation is the nearest equation that is a strict ancestor of the node,
	// or NoNode.
	Equation NodeID
}

// Leaf returns whether the node holds a value.
func (n Node) Leaf() bool {
	return n.Value != nil
}

// Tree is a working tree being solved.
type Tree struct {
	nodes []Node
	root  NodeID
}

// FromAST builds a Tree from a math AST. The AST is not modified.
func FromAST(ast *parse.AST) (*Tree, error) {
	t := &Tree{root: NoNode}
	if ast.Root() == parse.NoNode {
		return t, nil
	}

	var conv func(id parse.NodeID) (NodeID, error)
	conv = func(id parse.NodeID) (NodeID, error) {
		an := ast.Node(id)
		n := Node{Kind: an.Kind, Left: NoNode, Right: NoNode, Parent: NoNode}

		switch an.Kind {
		case syntax.KindNumber, syntax.KindFraction, syntax.KindVariable:
			v, err := value.Parse(an.Value)
			if err != nil {
				return NoNode, fmt.Errorf("%s %q: %w", an.Kind, an.Value, err)
			}
			n.Value = v
			return t.add(n), nil
		default:
			n.Op = an.Value
		}

		if an.Left != parse.NoNode {
			l, err := conv(an.Left)
			if err != nil {
				return NoNode, err
			}
			n.Left = l
		}
		if an.Right != parse.NoNode {
			r, err := conv(an.Right)
			if err != nil {
				return NoNode, err
			}
			n.Right = r
		}
		return t.add(n), nil
	}

	root, err := conv(ast.Root())
	if err != nil {
		return nil, err
	}
	t.root = root
	t.renumber(root)
	return t, nil
}

// Parse parses math source into a Tree.
func Parse(source string) (*Tree, error) {
	ast, err := syntax.Parse(source)
	if err != nil {
		return nil, err
	}
	return FromAST(ast)
}

func (t *Tree) add(n Node) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, n)
	if n.Left != NoNode {
		t.nodes[n.Left].Parent = id
	}
	if n.Right != NoNode {
		t.nodes[n.Right].Parent = id
	}
	return id
}

// Root returns the root of the tree, or NoNode if the tree is empty.
func (t *Tree) Root() NodeID {
	return t.root
}

// Empty returns whether every term of the tree has been removed.
func (t *Tree) Empty() bool {
	return t.root == NoNode
}

// Node returns a copy of the node with the given ID. Detached nodes remain
// readable.
func (t *Tree) Node(id NodeID) Node {
	return t.nodes[id]
}

// Attached returns whether id is still part of the tree.
func (t *Tree) Attached(id NodeID) bool {
	if id == NoNode || t.root == NoNode {
		return false
	}
	for cur := id; cur != t.root; {
		p := t.nodes[cur].Parent
		if p == NoNode {
			return false
		}
		if t.nodes[p].Left != cur && t.nodes[p].Right != cur {
			return false
		}
		cur = p
	}
	return true
}

// PostOrder returns the attached nodes, children before their parents.
func (t *Tree) PostOrder() []NodeID {
	var ids []NodeID
	var walk func(id NodeID)
	walk = func(id NodeID) {
		n := t.nodes[id]
		if n.Left != NoNode {
			walk(n.Left)
		}
		if n.Right != NoNode {
			walk(n.Right)
		}
		ids = append(ids, id)
	}
	if t.root != NoNode {
		walk(t.root)
	}
	return ids
}

// Clone returns an independent copy of the tree.
func (t *Tree) Clone() *Tree {
	c := &Tree{root: t.root, nodes: make([]Node, len(t.nodes))}
	copy(c.nodes, t.nodes)
	return c
}

// Value returns the value the tree has reduced to. An empty tree is zero. An
// equation whose sides are both values is 1 if it holds and 0 if it does not,
// and a system of such equations is 1 only if all of them hold. ok is false
// if the tree is not fully reduced.
func (t *Tree) Value() (v value.Value, ok bool) {
	if t.root == NoNode {
		return value.Integer(0), true
	}
	v, err := t.valueOf(t.root)
	return v, err == nil && v != nil
}

func (t *Tree) valueOf(id NodeID) (value.Value, error) {
	n := t.nodes[id]
	switch {
	case n.Leaf():
		return n.Value, nil
	case n.Kind == syntax.KindGroup:
		return t.valueOf(n.Left)
	case n.Kind == syntax.KindEquation:
		l, err := t.valueOf(n.Left)
		if err != nil || l == nil {
			return nil, err
		}
		r, err := t.valueOf(n.Right)
		if err != nil || r == nil {
			return nil, err
		}
		return syntax.Holds(n.Op, l, r)
	case n.Kind == syntax.KindSystem:
		for _, kid := range []NodeID{n.Left, n.Right} {
			if kid == NoNode {
				continue
			}
			v, err := t.valueOf(kid)
			if err != nil || v == nil {
				return nil, err
			}
			if v.IsZero() {
				return value.Integer(0), nil
			}
		}
		return value.Integer(1), nil
	default:
		return nil, nil
	}
}

// replace puts node repl where old is. old is left detached.
func (t *Tree) replace(old, repl NodeID) {
	p := t.nodes[old].Parent
	t.nodes[repl].Parent = p
	switch {
	case p == NoNode:
		t.root = repl
	case t.nodes[p].Left == old:
		t.nodes[p].Left = repl
	default:
		t.nodes[p].Right = repl
	}
	t.renumber(repl)
}

// replaceWithValue puts a new leaf holding v where old is and returns the new
// leaf.
func (t *Tree) replaceWithValue(old NodeID, v value.Value) NodeID {
	leaf := t.add(Node{Kind: kindOf(v), Value: v, Left: NoNode, Right: NoNode, Parent: NoNode})
	t.replace(old, leaf)
	return leaf
}

// remove takes the subtree at id out of the tree entirely.
func (t *Tree) remove(id NodeID) {
	p := t.nodes[id].Parent
	if p == NoNode {
		t.root = NoNode
		return
	}
	if t.nodes[p].Left == id {
		t.nodes[p].Left = NoNode
	} else {
		t.nodes[p].Right = NoNode
	}
}

// renumber recomputes the depth and enclosing pointers of id and everything
// under it from id's parent.
func (t *Tree) renumber(id NodeID) {
	n := &t.nodes[id]
	n.Depth, n.Expression, n.Equation = 0, NoNode, NoNode

	if p := n.Parent; p != NoNode {
		pn := t.nodes[p]
		n.Depth, n.Expression, n.Equation = pn.Depth, pn.Expression, pn.Equation
		switch pn.Kind {
		case syntax.KindGroup:
			n.Depth++
			n.Expression = p
		case syntax.KindEquation:
			n.Equation = p
		}
	}

	if l := t.nodes[id].Left; l != NoNode {
		t.renumber(l)
	}
	if r := t.nodes[id].Right; r != NoNode {
		t.renumber(r)
	}
}

func kindOf(v value.Value) string {
	switch v.(type) {
	case value.Fraction:
		return syntax.KindFraction
	case value.Variable:
		return syntax.KindVariable
	default:
		return syntax.KindNumber
	}
}

// operand returns the leaf that id stands for, looking through groups that
// hold only a leaf.
func (t *Tree) operand(id NodeID) (NodeID, bool) {
	for id != NoNode {
		n := t.nodes[id]
		if n.Leaf() {
			return id, true
		}
		if n.Kind != syntax.KindGroup {
			return NoNode, false
		}
		id = n.Left
	}
	return NoNode, false
}

// hoist lifts id out of any groups that now hold nothing but id, unless doing
// so would change how the tree reads.
func (t *Tree) hoist(id NodeID) NodeID {
	for {
		p := t.nodes[id].Parent
		if p == NoNode || t.nodes[p].Kind != syntax.KindGroup || !t.canUnwrap(p) {
			return id
		}
		t.replace(p, id)
	}
}

// canUnwrap returns whether group g can be replaced by its contents without
// changing how the tree reads.
func (t *Tree) canUnwrap(g NodeID) bool {
	inner := t.nodes[g].Left
	if inner == NoNode {
		return false
	}

	p := t.nodes[g].Parent
	if p == NoNode {
		return true
	}
	pn := t.nodes[p]

	in := t.nodes[inner]
	if in.Kind == syntax.KindGroup {
		return true
	}
	if in.Leaf() {
		switch pn.Kind {
		case syntax.KindMul:
			return pn.Op != ""
		case syntax.KindNeg, syntax.KindRoot:
			return !negative(in.Value)
		case syntax.KindPow:
			if pn.Left != g {
				return true
			}
			if term, ok := in.Value.(value.Variable); ok {
				return term.Coef == nil || term.Coef.Equal(value.Integer(1))
			}
			return !negative(in.Value)
		}
		return true
	}

	switch pn.Kind {
	case syntax.KindGroup, syntax.KindEquation, syntax.KindSystem:
		return true
	case syntax.KindAdd, syntax.KindSub:
		return pn.Left == g && (in.Kind == syntax.KindAdd || in.Kind == syntax.KindSub)
	case syntax.KindMul, syntax.KindDiv:
		return pn.Left == g && pn.Op != "" && (in.Kind == syntax.KindMul && in.Op != "" || in.Kind == syntax.KindDiv)
	}
	return false
}

func negative(v value.Value) bool {
	if v == nil {
		return false
	}
	if f, ok := v.Float64(); ok {
		return f < 0
	}
	if term, ok := v.(value.Variable); ok {
		return negative(term.Coef)
	}
	return false
}

// String renders the tree as math source that parses back to an equivalent
// tree. An empty tree renders as "".
func (t *Tree) String() string {
	if t.root == NoNode {
		return ""
	}
	return t.Text(t.root)
}

// Text renders the subtree at id, which need not be attached.
func (t *Tree) Text(id NodeID) string {
	var sb strings.Builder
	t.writeText(&sb, id)
	return sb.String()
}

func (t *Tree) writeText(sb *strings.Builder, id NodeID) {
	if id == NoNode {
		return
	}
	n := t.nodes[id]

	switch n.Kind {
	case syntax.KindNumber, syntax.KindFraction, syntax.KindVariable:
		sb.WriteString(n.Value.String())
	case syntax.KindGroup:
		sb.WriteRune('(')
		t.writeText(sb, n.Left)
		sb.WriteRune(')')
	case syntax.KindNeg:
		sb.WriteRune('-')
		t.writeText(sb, n.Left)
	case syntax.KindPow:
		t.writeText(sb, n.Left)
		sb.WriteRune('^')
		t.writeText(sb, n.Right)
	case syntax.KindRoot:
		t.writeText(sb, n.Right)
		sb.WriteString("√")
		t.writeText(sb, n.Left)
	case syntax.KindSystem:
		sb.WriteRune('{')
		for _, eq := range t.systemEquations(id) {
			sb.WriteRune('@')
			t.writeText(sb, eq)
		}
		sb.WriteRune('}')
	case syntax.KindMul:
		if n.Op == "" {
			t.writeText(sb, n.Left)
			if !t.juxtaposable(n.Left, n.Right) {
				sb.WriteString(" * ")
			}
			t.writeText(sb, n.Right)
			return
		}
		fallthrough
	default:
		t.writeText(sb, n.Left)
		sb.WriteRune(' ')
		sb.WriteString(opText(n))
		sb.WriteRune(' ')
		t.writeText(sb, n.Right)
	}
}

// juxtaposable returns whether right can follow left with no operator and
// still read as the product of the two.
func (t *Tree) juxtaposable(left, right NodeID) bool {
	l, r := t.nodes[left], t.nodes[right]
	if r.Kind == syntax.KindGroup {
		return true
	}

	startsWithLetter := false
	if term, ok := r.Value.(value.Variable); ok {
		startsWithLetter = term.Coef == nil || term.Coef.Equal(value.Integer(1))
	}
	if !startsWithLetter && (r.Kind != syntax.KindRoot || r.Right != NoNode) {
		return false
	}

	switch l.Kind {
	case syntax.KindGroup, syntax.KindVariable, syntax.KindFraction:
		return true
	case syntax.KindNumber:
		return r.Kind == syntax.KindVariable && !negative(l.Value)
	}
	return false
}

func opText(n Node) string {
	if n.Op != "" {
		return n.Op
	}
	switch n.Kind {
	case syntax.KindAdd:
		return "+"
	case syntax.KindSub:
		return "-"
	case syntax.KindMul:
		return "*"
	case syntax.KindDiv:
		return "/"
	}
	return n.Kind
}

func (t *Tree) systemEquations(id NodeID) []NodeID {
	n := t.nodes[id]
	var eqs []NodeID
	for _, kid := range []NodeID{n.Left, n.Right} {
		if kid == NoNode {
			continue
		}
		if t.nodes[kid].Kind == syntax.KindSystem {
			eqs = append(eqs, t.systemEquations(kid)...)
		} else {
			eqs = append(eqs, kid)
		}
	}
	return eqs
}

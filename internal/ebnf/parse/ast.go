package parse

import (
	"fmt"
	"strings"

	"github.com/dekarrin/algestep/internal/ebnf/lex"
)

// NodeID addresses a node within the arena of one AST. IDs are stable for the
// life of the tree.
type NodeID int

// NoNode is the NodeID of an absent child or parent.
const NoNode NodeID = -1

// Node is a single AST node. Every node has at most two children.
type Node struct {
	Kind string

	// Value is the display value of the node. For leaves this is the text it
	// was built from; branches built by the default shaping leave it blank.
	Value string

	// Token is the first token the node was built from, if any.
	Token *lex.Token

	Left   NodeID
	Right  NodeID
	Parent NodeID

	Action Action
}

// Leaf returns whether the node has no children.
func (n Node) Leaf() bool {
	return n.Left == NoNode && n.Right == NoNode
}

// AST is an abstract syntax tree stored as an arena of nodes.
type AST struct {
	nodes []Node
	root  NodeID
}

// NewAST creates an empty AST.
func NewAST() *AST {
	return &AST{root: NoNode}
}

// Root returns the ID of the root node, or NoNode if the tree is empty.
func (a *AST) Root() NodeID {
	return a.root
}

// SetRoot makes id the root of the tree.
func (a *AST) SetRoot(id NodeID) {
	a.root = id
	if id != NoNode {
		a.nodes[id].Parent = NoNode
	}
}

// Node returns a copy of the node with the given ID.
func (a *AST) Node(id NodeID) Node {
	return a.nodes[id]
}

// Len returns the number of nodes in the arena, including any that are no
// longer reachable from the root.
func (a *AST) Len() int {
	return len(a.nodes)
}

// Add puts a node into the arena, makes it the parent of its children, and
// returns its ID.
func (a *AST) Add(n Node) NodeID {
	id := NodeID(len(a.nodes))
	n.Parent = NoNode
	a.nodes = append(a.nodes, n)
	if n.Left != NoNode {
		a.nodes[n.Left].Parent = id
	}
	if n.Right != NoNode {
		a.nodes[n.Right].Parent = id
	}
	return id
}

// Children returns the IDs of the present children of id, left first.
func (a *AST) Children(id NodeID) []NodeID {
	n := a.nodes[id]
	var kids []NodeID
	if n.Left != NoNode {
		kids = append(kids, n.Left)
	}
	if n.Right != NoNode {
		kids = append(kids, n.Right)
	}
	return kids
}

// PostOrder returns the IDs of every node reachable from the root, children
// before their parents.
func (a *AST) PostOrder() []NodeID {
	var ids []NodeID
	var walk func(id NodeID)
	walk = func(id NodeID) {
		for _, c := range a.Children(id) {
			walk(c)
		}
		ids = append(ids, id)
	}
	if a.root != NoNode {
		walk(a.root)
	}
	return ids
}

func (a *AST) setAction(id NodeID, act Action) {
	a.nodes[id].Action = act
}

// String returns a prettified representation of the tree suitable for use in
// line-by-line comparisons of tree structure.
func (a *AST) String() string {
	if a.root == NoNode {
		return "(EMPTY)"
	}
	return a.leveledStr(a.root, "", "")
}

func (a *AST) leveledStr(id NodeID, firstPrefix, contPrefix string) string {
	var sb strings.Builder
	n := a.nodes[id]

	sb.WriteString(firstPrefix)
	if n.Value != "" {
		sb.WriteString(fmt.Sprintf("( %s %q )", n.Kind, n.Value))
	} else {
		sb.WriteString(fmt.Sprintf("( %s )", n.Kind))
	}

	kids := a.Children(id)
	for i := range kids {
		sb.WriteRune('\n')
		var leveledFirstPrefix string
		var leveledContPrefix string
		if i+1 < len(kids) {
			leveledFirstPrefix = contPrefix + makeTreeLevelPrefix("")
			leveledContPrefix = contPrefix + treeLevelOngoing
		} else {
			leveledFirstPrefix = contPrefix + makeTreeLevelPrefixLast("")
			leveledContPrefix = contPrefix + treeLevelEmpty
		}
		sb.WriteString(a.leveledStr(kids[i], leveledFirstPrefix, leveledContPrefix))
	}

	return sb.String()
}

// Evaluate visits the root node with the given environment and returns the
// result of its Action.
func (a *AST) Evaluate(env map[string]any) (any, error) {
	if a.root == NoNode {
		return nil, fmt.Errorf("cannot evaluate an empty tree")
	}
	ctx := &VisitContext{AST: a, Env: env}
	return ctx.Visit(a.root)
}

// ToAST projects a CST into an AST according to the Parser's Options and
// attaches actions to the nodes.
func (p *Parser) ToAST(cst *CSTNode) (*AST, error) {
	b := &Builder{AST: NewAST(), p: p}

	root, err := b.Build(cst)
	if err != nil {
		return nil, err
	}
	b.SetRoot(root)

	for _, id := range b.PostOrder() {
		kind := b.nodes[id].Kind
		if act, ok := p.opts.ActionForRules[kind]; ok {
			b.setAction(id, act)
		} else if p.opts.DefaultAction != nil {
			b.setAction(id, p.opts.DefaultAction)
		}
	}

	return b.AST, nil
}

// Builder constructs an AST from a CST. It is handed to every GenerateFunc so
// custom construction can add nodes and fall back to default shaping for
// children.
type Builder struct {
	*AST
	p *Parser
}

// Leaf adds a node with no children.
func (b *Builder) Leaf(kind, value string, tok *lex.Token) NodeID {
	return b.Add(Node{Kind: kind, Value: value, Token: tok, Left: NoNode, Right: NoNode})
}

// Branch adds a node with the given children. Either child may be NoNode.
func (b *Builder) Branch(kind, value string, tok *lex.Token, left, right NodeID) NodeID {
	return b.Add(Node{Kind: kind, Value: value, Token: tok, Left: left, Right: right})
}

// Build shapes n and everything under it into the AST and returns the ID of
// the node n became.
//
// If n's rule has a GenerateFunc, it is called. Otherwise the children of n
// are flattened and stripped of dropped terminals as configured. A bypassed
// rule with one remaining child becomes that child. A node whose remaining
// children are all text becomes a leaf holding the joined text, where text is
// a terminal or a token rule or flattened rule whose own children are all
// text. Any other node becomes a branch; more than two children are folded
// to the left into a chain of nodes of the same kind.
func (b *Builder) Build(n *CSTNode) (NodeID, error) {
	if n.Terminal() {
		return b.Leaf(string(n.Token.Kind), n.Token.Text, n.Token), nil
	}

	if gen, ok := b.p.opts.GenerateFuncs[n.Rule]; ok {
		return gen(n, b)
	}

	kids := b.ShapedChildren(n)

	if b.p.bypass.Has(n.Rule) && len(kids) == 1 {
		return b.Build(kids[0])
	}

	if len(kids) == 0 {
		return b.Leaf(n.Rule, "", n.FirstToken()), nil
	}

	if b.allText(kids) {
		var sb strings.Builder
		for _, k := range kids {
			sb.WriteString(k.Text())
		}
		return b.Leaf(n.Rule, sb.String(), n.FirstToken()), nil
	}

	acc, err := b.Build(kids[0])
	if err != nil {
		return NoNode, err
	}
	if len(kids) == 1 {
		return b.Branch(n.Rule, "", n.FirstToken(), acc, NoNode), nil
	}
	for _, k := range kids[1:] {
		right, err := b.Build(k)
		if err != nil {
			return NoNode, err
		}
		acc = b.Branch(n.Rule, "", n.FirstToken(), acc, right)
	}
	return acc, nil
}

// ShapedChildren returns the children of n after flattening and dropping terminals
// as configured for n's rule.
func (b *Builder) ShapedChildren(n *CSTNode) []*CSTNode {
	var kids []*CSTNode
	if b.p.flatten.Has(n.Rule) {
		kids = flattenInto(nil, n, n.Rule)
	} else {
		kids = n.Children
	}

	dropOn := b.p.dropOn[n.Rule]
	kept := make([]*CSTNode, 0, len(kids))
	for _, k := range kids {
		if k.Terminal() && !b.p.keep.Has(k.Token.Text) {
			if b.p.dropAll.Has(k.Token.Text) || dropOn.Has(k.Token.Text) {
				continue
			}
		}
		kept = append(kept, k)
	}
	return kept
}

func flattenInto(dst []*CSTNode, n *CSTNode, rule string) []*CSTNode {
	for _, c := range n.Children {
		if !c.Terminal() && c.Rule == rule {
			dst = flattenInto(dst, c, rule)
		} else {
			dst = append(dst, c)
		}
	}
	return dst
}

func (b *Builder) allText(kids []*CSTNode) bool {
	for _, k := range kids {
		if !b.isText(k) {
			return false
		}
	}
	return true
}

func (b *Builder) isText(n *CSTNode) bool {
	if n.Terminal() {
		return true
	}
	if _, ok := b.p.opts.GenerateFuncs[n.Rule]; ok {
		return false
	}
	if !b.p.table.IsTokenRule(n.Rule) && !b.p.flatten.Has(n.Rule) {
		return false
	}
	return b.allText(b.ShapedChildren(n))
}

package parse

import (
	"fmt"
	"strings"

	"github.com/dekarrin/algestep/internal/ebnf/lex"
)

const (
	treeLevelEmpty               = "        "
	treeLevelOngoing             = "  |     "
	treeLevelPrefix              = "  |%s: "
	treeLevelPrefixLast          = `  \%s: `
	treeLevelPrefixNamePadChar   = '-'
	treeLevelPrefixNamePadAmount = 3
)

func makeTreeLevelPrefix(msg string) string {
	for len([]rune(msg)) < treeLevelPrefixNamePadAmount {
		msg = string(treeLevelPrefixNamePadChar) + msg
	}
	return fmt.Sprintf(treeLevelPrefix, msg)
}

func makeTreeLevelPrefixLast(msg string) string {
	for len([]rune(msg)) < treeLevelPrefixNamePadAmount {
		msg = string(treeLevelPrefixNamePadChar) + msg
	}
	return fmt.Sprintf(treeLevelPrefixLast, msg)
}

// CSTNode is a node of a concrete syntax tree. A rule node has Rule set and
// one child per item its rule matched; a terminal node has Token set and no
// children.
type CSTNode struct {
	Rule     string
	Token    *lex.Token
	Children []*CSTNode
	Parent   *CSTNode
}

// Terminal returns whether the node is for a matched token.
func (n *CSTNode) Terminal() bool {
	return n.Token != nil
}

// Terminals returns the tokens under n in source order.
func (n *CSTNode) Terminals() []lex.Token {
	if n.Terminal() {
		return []lex.Token{*n.Token}
	}
	var toks []lex.Token
	for _, c := range n.Children {
		toks = append(toks, c.Terminals()...)
	}
	return toks
}

// Text returns the concatenated text of every token under n.
func (n *CSTNode) Text() string {
	var sb strings.Builder
	for _, tok := range n.Terminals() {
		sb.WriteString(tok.Text)
	}
	return sb.String()
}

// FirstToken returns the first token under n, or nil if n matched nothing.
func (n *CSTNode) FirstToken() *lex.Token {
	if n.Terminal() {
		return n.Token
	}
	for _, c := range n.Children {
		if tok := c.FirstToken(); tok != nil {
			return tok
		}
	}
	return nil
}

// String returns a prettified representation of the entire tree suitable for
// use in line-by-line comparisons of tree structure. Two trees are considered
// semantically identical if they produce identical String() output.
func (n *CSTNode) String() string {
	return n.leveledStr("", "")
}

func (n *CSTNode) leveledStr(firstPrefix, contPrefix string) string {
	var sb strings.Builder

	sb.WriteString(firstPrefix)
	if n.Terminal() {
		sb.WriteString(fmt.Sprintf("(TERM %q)", n.Token.Text))
	} else {
		sb.WriteString(fmt.Sprintf("( %s )", n.Rule))
	}

	for i := range n.Children {
		sb.WriteRune('\n')
		var leveledFirstPrefix string
		var leveledContPrefix string
		if i+1 < len(n.Children) {
			leveledFirstPrefix = contPrefix + makeTreeLevelPrefix("")
			leveledContPrefix = contPrefix + treeLevelOngoing
		} else {
			leveledFirstPrefix = contPrefix + makeTreeLevelPrefixLast("")
			leveledContPrefix = contPrefix + treeLevelEmpty
		}
		sb.WriteString(n.Children[i].leveledStr(leveledFirstPrefix, leveledContPrefix))
	}

	return sb.String()
}

// Equal returns whether o is a CSTNode or *CSTNode with the same structure
// and token texts as n.
func (n *CSTNode) Equal(o any) bool {
	var other *CSTNode
	switch v := o.(type) {
	case *CSTNode:
		other = v
	case CSTNode:
		other = &v
	default:
		return false
	}
	if n == nil || other == nil {
		return n == other
	}

	if n.Rule != other.Rule || n.Terminal() != other.Terminal() {
		return false
	}
	if n.Terminal() && n.Token.Text != other.Token.Text {
		return false
	}
	if len(n.Children) != len(other.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

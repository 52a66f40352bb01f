// Package syntax defines the grammar of math expressions and how their parse
// trees are shaped into ASTs for evaluation and stepwise solving.
//
// The AST is made only of binary nodes. Operators are left-associative chains
// of add, sub, mul and div nodes, except for exponentiation which associates
// to the right. Implicit multiplication, as in 2(3+4), is a mul node with an
// empty value.
package syntax

import (
	"fmt"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/dekarrin/algestep/internal/ebnf"
	"github.com/dekarrin/algestep/internal/ebnf/grammar"
	"github.com/dekarrin/algestep/internal/ebnf/parse"
)

// Grammar is the grammar of math statements.
const Grammar = `
	(* a statement is one equation or expression, or a system of equations *)
	statement  = system | equation ;
	system     = '{', '@', equation, {'@', equation}, '}' ;
	equation   = expression, [relop, expression] ;
	expression = term, {addop, term} ;

	(* an operand following an explicit operator may be signed; one that
	   follows another operand directly is multiplied with it *)
	term       = signed, {(mulop, signed) | power} ;
	signed     = [addop], power ;
	power      = atom, ['^', signed] ;
	atom       = root | fraction | group | variable | number ;

	root       = [digits], '√', atom ;
	group      = '(', expression, ')' ;
	fraction   = 'frac', '{', [addop], digits, '/', [addop], digits, '}' ;
	variable   = [number], letter, ['^', [addop], digits] ;
	number     = digits, [decsep, digits] ;
	digits     = digit, {digit} ;

	relop  = '<=' | '>=' | '!=' | '=' | '<' | '>' | '≤' | '≥' | '≠' ;
	addop  = '+' | '-' ;
	mulop  = '*' | '/' | '·' | '×' | '÷' ;
	decsep = '.' | ',' ;
	digit  = '0' | '1' | '2' | '3' | '4' | '5' | '6' | '7' | '8' | '9' ;
	letter = 'a' | 'b' | 'c' | 'd' | 'e' | 'f' | 'g' | 'h' | 'i' | 'j' | 'k' | 'l' | 'm'
	       | 'n' | 'o' | 'p' | 'q' | 'r' | 's' | 't' | 'u' | 'v' | 'w' | 'x' | 'y' | 'z'
	       | 'A' | 'B' | 'C' | 'D' | 'E' | 'F' | 'G' | 'H' | 'I' | 'J' | 'K' | 'L' | 'M'
	       | 'N' | 'O' | 'P' | 'Q' | 'R' | 'S' | 'T' | 'U' | 'V' | 'W' | 'X' | 'Y' | 'Z' ;
`

// Kinds of AST node produced from math source.
const (
	KindNumber   = "number"
	KindFraction = "fraction"
	KindVariable = "variable"
	KindGroup    = "group"
	KindAdd      = "add"
	KindSub      = "sub"
	KindMul      = "mul"
	KindDiv      = "div"
	KindPow      = "pow"
	KindRoot     = "root"
	KindNeg      = "neg"
	KindEquation = "equation"
	KindSystem   = "system"
)

var (
	addKinds = map[string]string{"+": KindAdd, "-": KindSub}
	mulKinds = map[string]string{"*": KindMul, "·": KindMul, "×": KindMul, "/": KindDiv, "÷": KindDiv}
)

var (
	tableOnce sync.Once
	table     *grammar.RuleTable
)

// Table returns the compiled math grammar.
func Table() *grammar.RuleTable {
	tableOnce.Do(func() {
		table = grammar.MustCompile(Grammar)
	})
	return table
}

// Options returns the parser options that shape math parse trees and attach
// the evaluation actions. maxSteps is the backtracking budget; 0 selects the
// default.
func Options(maxSteps int) parse.Options {
	return parse.Options{
		BypassRules: []string{"statement", "atom"},
		DropTerminalsOnRules: map[string][]string{
			"system": {"{", "@", "}"},
			"group":  {"(", ")"},
			"power":  {"^"},
			"root":   {"√"},
		},
		GenerateFuncs: map[string]parse.GenerateFunc{
			"system":     genSystem,
			"equation":   genEquation,
			"expression": genExpression,
			"term":       genTerm,
			"signed":     genSigned,
			"power":      genPower,
			"root":       genRoot,
			"group":      genGroup,
			"fraction":   genLeaf(KindFraction),
			"variable":   genLeaf(KindVariable),
			"number":     genLeaf(KindNumber),
		},
		ActionForRules: Actions(),
		MaxSteps:       maxSteps,
	}
}

// NewFrontend returns a front end for math source with the given backtracking
// budget.
func NewFrontend(maxSteps int) (*ebnf.Frontend, error) {
	return ebnf.NewFrontendFromTable(Table(), Options(maxSteps))
}

var (
	defaultOnce sync.Once
	defaultFE   *ebnf.Frontend
	defaultErr  error
)

// Parse parses math source into an AST using a shared front end with the
// default budget. The source is NFC-normalized first.
func Parse(source string) (*parse.AST, error) {
	defaultOnce.Do(func() {
		defaultFE, defaultErr = NewFrontend(0)
	})
	if defaultErr != nil {
		return nil, fmt.Errorf("building math parser: %w", defaultErr)
	}
	return defaultFE.ParseAST(Normalize(source))
}

// Normalize puts source into Unicode normalization form C so that composed
// and decomposed spellings of the same symbol lex the same way.
func Normalize(source string) string {
	return norm.NFC.String(source)
}

func genLeaf(kind string) parse.GenerateFunc {
	return func(n *parse.CSTNode, b *parse.Builder) (parse.NodeID, error) {
		return b.Leaf(kind, n.Text(), n.FirstToken()), nil
	}
}

func genSystem(n *parse.CSTNode, b *parse.Builder) (parse.NodeID, error) {
	kids := b.ShapedChildren(n)

	acc, err := b.Build(kids[0])
	if err != nil {
		return parse.NoNode, err
	}
	if len(kids) == 1 {
		return b.Branch(KindSystem, "", n.FirstToken(), acc, parse.NoNode), nil
	}
	for _, k := range kids[1:] {
		eq, err := b.Build(k)
		if err != nil {
			return parse.NoNode, err
		}
		acc = b.Branch(KindSystem, "", n.FirstToken(), acc, eq)
	}
	return acc, nil
}

func genEquation(n *parse.CSTNode, b *parse.Builder) (parse.NodeID, error) {
	kids := b.ShapedChildren(n)

	left, err := b.Build(kids[0])
	if err != nil || len(kids) == 1 {
		return left, err
	}
	right, err := b.Build(kids[2])
	if err != nil {
		return parse.NoNode, err
	}
	return b.Branch(KindEquation, kids[1].Text(), kids[1].FirstToken(), left, right), nil
}

func genExpression(n *parse.CSTNode, b *parse.Builder) (parse.NodeID, error) {
	kids := b.ShapedChildren(n)

	acc, err := b.Build(kids[0])
	if err != nil {
		return parse.NoNode, err
	}
	for i := 1; i+1 < len(kids); i += 2 {
		right, err := b.Build(kids[i+1])
		if err != nil {
			return parse.NoNode, err
		}
		op := kids[i].Text()
		acc = b.Branch(addKinds[op], op, kids[i].FirstToken(), acc, right)
	}
	return acc, nil
}

func genTerm(n *parse.CSTNode, b *parse.Builder) (parse.NodeID, error) {
	kids := b.ShapedChildren(n)

	acc, err := b.Build(kids[0])
	if err != nil {
		return parse.NoNode, err
	}
	for i := 1; i < len(kids); i++ {
		kind, op := KindMul, ""
		tok := kids[i].FirstToken()
		if kids[i].Rule == "mulop" {
			op = kids[i].Text()
			kind = mulKinds[op]
			i++
		}
		right, err := b.Build(kids[i])
		if err != nil {
			return parse.NoNode, err
		}
		acc = b.Branch(kind, op, tok, acc, right)
	}
	return acc, nil
}

func genSigned(n *parse.CSTNode, b *parse.Builder) (parse.NodeID, error) {
	kids := b.ShapedChildren(n)
	if len(kids) == 1 {
		return b.Build(kids[0])
	}

	operand, err := b.Build(kids[1])
	if err != nil {
		return parse.NoNode, err
	}
	if kids[0].Text() == "+" {
		return operand, nil
	}
	return b.Branch(KindNeg, "-", kids[0].FirstToken(), operand, parse.NoNode), nil
}

func genPower(n *parse.CSTNode, b *parse.Builder) (parse.NodeID, error) {
	kids := b.ShapedChildren(n)

	base, err := b.Build(kids[0])
	if err != nil || len(kids) == 1 {
		return base, err
	}
	exp, err := b.Build(kids[1])
	if err != nil {
		return parse.NoNode, err
	}
	return b.Branch(KindPow, "^", kids[1].FirstToken(), base, exp), nil
}

// genRoot puts the radicand on the left and the degree, if one was written,
// on the right.
func genRoot(n *parse.CSTNode, b *parse.Builder) (parse.NodeID, error) {
	kids := b.ShapedChildren(n)

	degree := parse.NoNode
	if len(kids) == 2 {
		degree = b.Leaf(KindNumber, kids[0].Text(), kids[0].FirstToken())
		kids = kids[1:]
	}
	radicand, err := b.Build(kids[0])
	if err != nil {
		return parse.NoNode, err
	}
	return b.Branch(KindRoot, "√", n.FirstToken(), radicand, degree), nil
}

func genGroup(n *parse.CSTNode, b *parse.Builder) (parse.NodeID, error) {
	kids := b.ShapedChildren(n)

	inner, err := b.Build(kids[0])
	if err != nil {
		return parse.NoNode, err
	}
	return b.Branch(KindGroup, "", n.FirstToken(), inner, parse.NoNode), nil
}

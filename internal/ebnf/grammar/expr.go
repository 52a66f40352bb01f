package grammar

import (
	"strings"
)

// Expr is one primitive of a rule's right-hand side. The set of primitives is
// closed; every Expr is one of the types in this file. Exprs are built once
// when a grammar is compiled and are never modified afterwards, so a single
// tree is shared by every parser built from the same RuleTable.
type Expr interface {
	// String renders the primitive in grammar DSL syntax.
	String() string

	isExpr()
}

// Alternation matches the first of its alternatives that matches.
type Alternation struct {
	Alts []Expr
}

// Concatenation matches each of its items in order.
type Concatenation struct {
	Items []Expr
}

// Optional matches its inner primitive zero or one times.
type Optional struct {
	Inner Expr
}

// Repetition matches its inner primitive zero or more times.
type Repetition struct {
	Inner Expr
}

// Grouping is a parenthesized primitive.
type Grouping struct {
	Inner Expr
}

// RuleRef refers to another rule by name.
type RuleRef struct {
	Name string
}

// Terminal matches a token whose text is exactly Text.
type Terminal struct {
	Text string
}

// MetaTerminal matches a single character accepted by a callback that the
// parser looks up by Name.
type MetaTerminal struct {
	Name string
}

func (Alternation) isExpr()   {}
func (Concatenation) isExpr() {}
func (Optional) isExpr()      {}
func (Repetition) isExpr()    {}
func (Grouping) isExpr()      {}
func (RuleRef) isExpr()       {}
func (Terminal) isExpr()      {}
func (MetaTerminal) isExpr()  {}

func (e Alternation) String() string {
	parts := make([]string, len(e.Alts))
	for i := range e.Alts {
		parts[i] = e.Alts[i].String()
	}
	return strings.Join(parts, " | ")
}

func (e Concatenation) String() string {
	parts := make([]string, len(e.Items))
	for i := range e.Items {
		parts[i] = e.Items[i].String()
	}
	return strings.Join(parts, ", ")
}

func (e Optional) String() string {
	return "[" + e.Inner.String() + "]"
}

func (e Repetition) String() string {
	return "{" + e.Inner.String() + "}"
}

func (e Grouping) String() string {
	return "(" + e.Inner.String() + ")"
}

func (e RuleRef) String() string {
	return e.Name
}

func (e Terminal) String() string {
	if strings.Contains(e.Text, "'") {
		return `"` + e.Text + `"`
	}
	return "'" + e.Text + "'"
}

func (e MetaTerminal) String() string {
	return "? " + e.Name + " ?"
}

// terminalsOnly returns the texts of e if e is a terminal or a flat
// alternation of terminals, and ok=false otherwise.
func terminalsOnly(e Expr) (texts []string, ok bool) {
	switch v := e.(type) {
	case Terminal:
		return []string{v.Text}, true
	case Alternation:
		for _, alt := range v.Alts {
			term, isTerm := alt.(Terminal)
			if !isTerm {
				return nil, false
			}
			texts = append(texts, term.Text)
		}
		return texts, true
	default:
		return nil, false
	}
}

// walk calls fn on e and every primitive below it, depth first.
func walk(e Expr, fn func(Expr)) {
	fn(e)
	switch v := e.(type) {
	case Alternation:
		for _, alt := range v.Alts {
			walk(alt, fn)
		}
	case Concatenation:
		for _, item := range v.Items {
			walk(item, fn)
		}
	case Optional:
		walk(v.Inner, fn)
	case Repetition:
		walk(v.Inner, fn)
	case Grouping:
		walk(v.Inner, fn)
	}
}

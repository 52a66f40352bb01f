// Package grammar compiles EBNF-like grammar text into a table of rules.
//
// Grammar text is a sequence of rules of the form
//
//	name = alternative {"|" alternative} ;
//
// where an alternative is a comma-separated concatenation of terminals ('x' or
// "x"), rule names, optional parts ([...]), repeated parts ({...}), groups
// ((...)) and meta-terminals (? name ?). Comments are written (* like this *).
// The first rule in the text is the start rule.
package grammar

import (
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/dekarrin/algestep/internal/util"
)

// Rule is a single named production.
type Rule struct {
	Name string
	Expr Expr

	// Line is the line of the grammar text the rule was declared on.
	Line int
}

func (r Rule) String() string {
	return r.Name + " = " + r.Expr.String() + " ;"
}

// RuleTable is a validated set of rules in declaration order. A RuleTable is
// read-only once Compile returns it and may be shared between goroutines.
type RuleTable struct {
	rules *linkedhashmap.Map

	tokenRules util.StringSet
}

func newRuleTable() *RuleTable {
	return &RuleTable{
		rules:      linkedhashmap.New(),
		tokenRules: util.NewStringSet(),
	}
}

func (rt *RuleTable) add(r Rule) {
	rt.rules.Put(r.Name, r)
	if _, ok := terminalsOnly(r.Expr); ok {
		rt.tokenRules.Add(r.Name)
	}
}

// Rule returns the rule with the given name.
func (rt *RuleTable) Rule(name string) (Rule, bool) {
	v, ok := rt.rules.Get(name)
	if !ok {
		return Rule{}, false
	}
	return v.(Rule), true
}

// Names returns the names of all rules in declaration order.
func (rt *RuleTable) Names() []string {
	keys := rt.rules.Keys()
	names := make([]string, len(keys))
	for i := range keys {
		names[i] = keys[i].(string)
	}
	return names
}

// Rules returns all rules in declaration order.
func (rt *RuleTable) Rules() []Rule {
	vals := rt.rules.Values()
	rules := make([]Rule, len(vals))
	for i := range vals {
		rules[i] = vals[i].(Rule)
	}
	return rules
}

// Len returns the number of rules in the table.
func (rt *RuleTable) Len() int {
	return rt.rules.Size()
}

// Start returns the name of the start rule.
func (rt *RuleTable) Start() string {
	names := rt.Names()
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// IsTokenRule returns whether the named rule is a terminal or a flat
// alternation of terminals. Token rules are what the lexer table is derived
// from.
func (rt *RuleTable) IsTokenRule(name string) bool {
	return rt.tokenRules.Has(name)
}

// MetaTerminals returns the names of every meta-terminal used in the grammar,
// alphabetized.
func (rt *RuleTable) MetaTerminals() []string {
	names := util.NewStringSet()
	for _, r := range rt.Rules() {
		walk(r.Expr, func(e Expr) {
			if mt, ok := e.(MetaTerminal); ok {
				names.Add(mt.Name)
			}
		})
	}
	return names.Elements()
}

// String renders the table back into grammar text, one rule per line. The
// output compiles to an equivalent table.
func (rt *RuleTable) String() string {
	var sb strings.Builder
	for _, r := range rt.Rules() {
		sb.WriteString(r.String())
		sb.WriteRune('\n')
	}
	return sb.String()
}

package grammar

import (
	"strings"

	"github.com/dekarrin/algestep/internal/trace"
	"github.com/dekarrin/algestep/internal/util"
)

// Check validates the rule graph. It returns a grammar Error if any rule can
// reach itself through a chain of rule references none of which is guaranteed
// to consume a token first; such a rule would send a recursive-descent parser
// into unbounded recursion. Both direct and indirect left recursion are
// caught.
func (rt *RuleTable) Check() error {
	nullable := rt.Nullable()

	// edges[r] holds every rule that r can invoke before consuming a token.
	edges := map[string][]string{}
	for _, r := range rt.Rules() {
		edges[r.Name] = leftRefs(r.Expr, nullable).Elements()
	}

	const (
		unvisited = iota
		onPath
		done
	)
	state := map[string]int{}
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		state[name] = onPath
		path = append(path, name)

		for _, next := range edges[name] {
			switch state[next] {
			case onPath:
				cycle := cycleFrom(path, next)
				return errorInRule(next, "can recurse into itself without consuming input: %s", strings.Join(cycle, " -> "))
			case unvisited:
				if err := visit(next); err != nil {
					return err
				}
			}
		}

		path = path[:len(path)-1]
		state[name] = done
		return nil
	}

	for _, name := range rt.Names() {
		if state[name] == unvisited {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	trace.Syntax().Debugf("grammar check passed; nullable rules: %s", nullable)
	return nil
}

func cycleFrom(path []string, start string) []string {
	for i := range path {
		if path[i] == start {
			cycle := append([]string{}, path[i:]...)
			return append(cycle, start)
		}
	}
	return []string{start, start}
}

// Nullable returns the set of rules that can match without consuming any
// token.
func (rt *RuleTable) Nullable() util.StringSet {
	nullable := util.NewStringSet()

	for changed := true; changed; {
		changed = false
		for _, r := range rt.Rules() {
			if !nullable.Has(r.Name) && canBeEmpty(r.Expr, nullable) {
				nullable.Add(r.Name)
				changed = true
			}
		}
	}

	return nullable
}

func canBeEmpty(e Expr, nullable util.StringSet) bool {
	switch v := e.(type) {
	case Terminal, MetaTerminal:
		return false
	case RuleRef:
		return nullable.Has(v.Name)
	case Optional, Repetition:
		return true
	case Grouping:
		return canBeEmpty(v.Inner, nullable)
	case Concatenation:
		for _, item := range v.Items {
			if !canBeEmpty(item, nullable) {
				return false
			}
		}
		return true
	case Alternation:
		for _, alt := range v.Alts {
			if canBeEmpty(alt, nullable) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// leftRefs returns the rules e can invoke before it has consumed any token.
func leftRefs(e Expr, nullable util.StringSet) util.StringSet {
	refs := util.NewStringSet()

	var collect func(e Expr)
	collect = func(e Expr) {
		switch v := e.(type) {
		case RuleRef:
			refs.Add(v.Name)
		case Optional:
			collect(v.Inner)
		case Repetition:
			collect(v.Inner)
		case Grouping:
			collect(v.Inner)
		case Alternation:
			for _, alt := range v.Alts {
				collect(alt)
			}
		case Concatenation:
			for _, item := range v.Items {
				collect(item)
				if !canBeEmpty(item, nullable) {
					return
				}
			}
		}
	}
	collect(e)

	return refs
}

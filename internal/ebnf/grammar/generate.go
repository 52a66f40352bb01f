package grammar

import (
	"fmt"
	"math"
	"math/rand"
)

// Generate expands the named rule into a random sentence of the grammar and
// returns its terminals in order. Past maxDepth nested rule expansions, the
// cheapest alternative is always chosen and optional and repeated parts are
// left out, so generation always terminates for a grammar that passes Check.
//
// Meta-terminals are expanded by calling sample with their name; sample may
// be nil if the grammar has none.
func (rt *RuleTable) Generate(rule string, rnd *rand.Rand, maxDepth int, sample func(name string) string) ([]string, error) {
	r, ok := rt.Rule(rule)
	if !ok {
		return nil, fmt.Errorf("no rule named %q", rule)
	}

	g := &generator{
		rt:       rt,
		rnd:      rnd,
		maxDepth: maxDepth,
		sample:   sample,
		cost:     rt.expansionCosts(),
	}
	if err := g.expand(r.Expr, 0); err != nil {
		return nil, err
	}
	return g.out, nil
}

type generator struct {
	rt       *RuleTable
	rnd      *rand.Rand
	maxDepth int
	sample   func(string) string
	cost     map[string]int
	out      []string
}

func (g *generator) expand(e Expr, depth int) error {
	deep := depth >= g.maxDepth

	switch v := e.(type) {
	case Terminal:
		g.out = append(g.out, v.Text)
	case MetaTerminal:
		if g.sample == nil {
			return fmt.Errorf("no sample given for meta-terminal %q", v.Name)
		}
		g.out = append(g.out, g.sample(v.Name))
	case RuleRef:
		r, _ := g.rt.Rule(v.Name)
		return g.expand(r.Expr, depth+1)
	case Grouping:
		return g.expand(v.Inner, depth)
	case Optional:
		if !deep && g.rnd.Intn(2) == 0 {
			return g.expand(v.Inner, depth)
		}
	case Repetition:
		if deep {
			return nil
		}
		for n := g.rnd.Intn(3); n > 0; n-- {
			if err := g.expand(v.Inner, depth); err != nil {
				return err
			}
		}
	case Concatenation:
		for _, item := range v.Items {
			if err := g.expand(item, depth); err != nil {
				return err
			}
		}
	case Alternation:
		pick := v.Alts[g.rnd.Intn(len(v.Alts))]
		if deep {
			best := math.MaxInt
			for _, alt := range v.Alts {
				if c := exprCost(alt, g.cost); c < best {
					best = c
					pick = alt
				}
			}
		}
		return g.expand(pick, depth)
	}
	return nil
}

// expansionCosts returns, per rule, the fewest nested rule expansions needed to
// produce a sentence from it.
func (rt *RuleTable) expansionCosts() map[string]int {
	cost := map[string]int{}
	for _, name := range rt.Names() {
		cost[name] = math.MaxInt / 2
	}

	for changed := true; changed; {
		changed = false
		for _, r := range rt.Rules() {
			if c := exprCost(r.Expr, cost); c < cost[r.Name] {
				cost[r.Name] = c
				changed = true
			}
		}
	}

	return cost
}

func exprCost(e Expr, cost map[string]int) int {
	switch v := e.(type) {
	case RuleRef:
		return cost[v.Name] + 1
	case Grouping:
		return exprCost(v.Inner, cost)
	case Concatenation:
		most := 0
		for _, item := range v.Items {
			if c := exprCost(item, cost); c > most {
				most = c
			}
		}
		return most
	case Alternation:
		least := math.MaxInt / 2
		for _, alt := range v.Alts {
			if c := exprCost(alt, cost); c < least {
				least = c
			}
		}
		return least
	default:
		return 0
	}
}

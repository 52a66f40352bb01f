package solve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/algestep/algebra/syntax"
	"github.com/dekarrin/algestep/algebra/value"
	"github.com/dekarrin/algestep/internal/trace"
)

// Change is one rewrite made during a step. A rewrite that consumes the result
// of the one before it is coalesced into that Change when both were made by
// the same rule with the same operator.
type Change struct {
	Rule        string
	Description string
	Op          string

	// Inputs are the nodes that were consumed, and InputText how each read at
	// the time.
	Inputs    []NodeID
	InputText []string

	// Result is the node that took the place of the inputs, or NoNode when
	// the inputs cancelled out and were removed. ResultText is how it read at
	// the time.
	Result     NodeID
	ResultText string

	// Value is the computed value. It is nil when the rewrite only changed
	// the shape of the tree.
	Value value.Value
}

func (c Change) String() string {
	var sb strings.Builder
	sb.WriteString(c.Description)
	if len(c.InputText) > 0 {
		sb.WriteString(": ")
		sb.WriteString(strings.Join(c.InputText, ", "))
	}
	sb.WriteString(" => ")
	if c.Result == NoNode {
		sb.WriteString("(removed)")
	} else {
		sb.WriteString(c.ResultText)
	}
	return sb.String()
}

// Step makes one step of progress on the tree using the given rules and
// returns what changed. The buckets are tried in order and the first one with
// a rule that applies is the only one used. Within that bucket the nodes are
// visited deepest first, children before parents, and every rewrite in the
// step is made at the same depth as the first. A result left as the only
// operand of a negation is negated in the same step.
//
// Step returns no changes once nothing more can be done, and keeps doing so
// if called again. If a rule applies but its math cannot be done, the tree is
// left as it was before the step and the error is returned.
func (t *Tree) Step(rules RuleSet) ([]Change, error) {
	if t.root == NoNode {
		return nil, nil
	}
	before := t.Clone()

	for _, b := range Buckets {
		var primary, fallback []Rule
		for _, r := range rules.InBucket(b) {
			if r.Fallback() {
				fallback = append(fallback, r)
			} else {
				primary = append(primary, r)
			}
		}

		changes, err := t.sweep(primary)
		if err == nil && len(changes) == 0 {
			changes, err = t.sweep(fallback)
		}
		if err == nil && len(changes) > 0 {
			changes, err = t.foldNegations(changes, rules)
		}
		if err != nil {
			*t = *before
			trace.Core().Debugf("step failed in %s: %v", b, err)
			return nil, err
		}
		if len(changes) > 0 {
			changes = coalesce(changes)
			trace.Core().Debugf("step in %s made %d change(s): %s", b, len(changes), t.String())
			return changes, nil
		}
	}

	trace.Core().Debugf("no rule applies to %s", t.String())
	return nil, nil
}

func (t *Tree) sweep(rules []Rule) ([]Change, error) {
	if len(rules) == 0 || t.root == NoNode {
		return nil, nil
	}

	order := t.PostOrder()
	sort.SliceStable(order, func(i, j int) bool {
		return t.nodes[order[i]].Depth > t.nodes[order[j]].Depth
	})

	var changes []Change
	stepDepth := -1
	for _, id := range order {
		if !t.Attached(id) {
			continue
		}
		n := t.nodes[id]
		if stepDepth >= 0 && n.Depth != stepDepth {
			break
		}

		for _, r := range rules {
			if !appliesTo(r, n.Kind) {
				continue
			}
			m, ok, err := r.Match(t, id)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", r.Name(), err)
			}
			if !ok {
				continue
			}

			stepDepth = n.Depth
			trace.Core().Debugf("%s matched %s node %d at depth %d", r.Name(), n.Kind, id, n.Depth)
			changes = append(changes, t.apply(r, m))
			break
		}
	}
	return changes, nil
}

func appliesTo(r Rule, kind string) bool {
	for _, k := range r.Kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

func (t *Tree) apply(r Rule, m Match) Change {
	c := Change{
		Rule:        r.Name(),
		Description: m.Description,
		Op:          m.Op,
		Inputs:      m.Inputs,
		Value:       m.Result,
	}
	for _, in := range m.Inputs {
		c.InputText = append(c.InputText, t.Text(in))
	}

	c.Result = t.rewrite(m)
	if c.Result != NoNode {
		c.ResultText = t.Text(c.Result)
	}
	return c
}

// rewrite makes the change m describes and returns the node that holds the
// result.
func (t *Tree) rewrite(m Match) NodeID {
	switch {
	case m.Unwrap:
		inner := t.nodes[m.Target].Left
		t.replace(m.Target, inner)
		return inner
	case m.Into == NoNode:
		return t.hoist(t.replaceWithValue(m.Target, m.Result))
	case m.RemoveZero && m.Result.IsZero():
		t.removeTerms(m)
		return NoNode
	}

	if m.Flip {
		slot := &t.nodes[m.Slot]
		slot.Kind, slot.Op = syntax.KindAdd, "+"
	}
	leaf := t.replaceWithValue(m.Into, m.Result)
	t.replace(m.Target, t.nodes[m.Target].Left)
	return t.hoist(leaf)
}

// removeTerms takes both terms of a combination that cancelled out of their
// chain. A chain left with no terms becomes 0, or an empty tree if it was the
// whole tree.
func (t *Tree) removeTerms(m Match) {
	t.replace(m.Target, t.nodes[m.Target].Left)

	if m.Slot != NoNode {
		t.replace(m.Slot, t.nodes[m.Slot].Left)
		return
	}

	p := t.nodes[m.Term].Parent
	if p != NoNode && t.nodes[p].Left == m.Term {
		switch t.nodes[p].Kind {
		case syntax.KindAdd:
			t.replace(p, t.nodes[p].Right)
			return
		case syntax.KindSub:
			neg := t.add(Node{Kind: syntax.KindNeg, Op: "-", Left: t.nodes[p].Right, Right: NoNode, Parent: NoNode})
			t.replace(p, neg)
			return
		}
	}

	if p == NoNode {
		t.root = NoNode
		return
	}
	t.hoist(t.replaceWithValue(m.Term, value.Integer(0)))
}

// foldNegations follows each change whose result was left as the operand of a
// negation with the negation itself. Otherwise the negation would take a step
// of its own that reads the same before and after.
func (t *Tree) foldNegations(changes []Change, rules RuleSet) ([]Change, error) {
	neg, ok := rules.rule(Negation.Name(), Negation.Bucket())
	if !ok {
		return changes, nil
	}

	var folded []Change
	for _, c := range changes {
		folded = append(folded, c)
		if c.Result == NoNode || !t.Attached(c.Result) || !t.nodes[c.Result].Leaf() {
			continue
		}
		p := t.nodes[c.Result].Parent
		if p == NoNode || t.nodes[p].Kind != syntax.KindNeg {
			continue
		}

		m, ok, err := neg.Match(t, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", neg.Name(), err)
		}
		if ok {
			folded = append(folded, t.apply(neg, m))
		}
	}
	return folded, nil
}

func coalesce(changes []Change) []Change {
	var merged []Change
	for _, c := range changes {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.Rule == c.Rule && last.Op == c.Op && last.Description == c.Description && consumes(c, last.Result) {
				last.Inputs = append(last.Inputs, c.Inputs...)
				last.InputText = append(last.InputText, c.InputText...)
				last.Result, last.ResultText, last.Value = c.Result, c.ResultText, c.Value
				continue
			}
		}
		merged = append(merged, c)
	}
	return merged
}

// consumes returns whether c takes the node id as one of its inputs.
func consumes(c Change, id NodeID) bool {
	if id == NoNode {
		return false
	}
	for _, in := range c.Inputs {
		if in == id {
			return true
		}
	}
	return false
}

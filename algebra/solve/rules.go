package solve

import (
	"github.com/dekarrin/algestep/algebra/syntax"
	"github.com/dekarrin/algestep/algebra/value"
)

// Match is a rewrite found by a Rule. There are three shapes of rewrite:
//
//   - Unwrap replaces the group Target with its contents.
//   - With Into set to NoNode, Target is replaced by a leaf holding Result.
//   - Otherwise Target is the operator node of a chain whose right term is
//     combined with the term Into. Into gets Result and Target is replaced by
//     its left side, taking the right term out of the chain.
type Match struct {
	Target NodeID

	// Inputs are the nodes the rewrite consumes, in reading order.
	Inputs []NodeID

	Op          string
	Description string
	Result      value.Value
	Unwrap      bool

	// Into is the leaf that receives Result when combining chain terms.
	Into NodeID

	// Term is the chain term that holds Into; it is Into itself unless Into
	// is inside groups.
	Term NodeID

	// Slot is the chain node that has Term as its right side, or NoNode if
	// Term is the leftmost term of the chain.
	Slot NodeID

	// Flip is set when Slot must turn from subtraction into addition. Result
	// has already been negated to match.
	Flip bool

	// RemoveZero takes both terms out of the chain when Result is zero.
	RemoveZero bool
}

type rule struct {
	name     string
	bucket   Bucket
	kinds    []string
	fallback bool
	match    func(t *Tree, id NodeID) (Match, bool, error)
}

func (r rule) Name() string    { return r.name }
func (r rule) Bucket() Bucket  { return r.bucket }
func (r rule) Kinds() []string { return r.kinds }
func (r rule) Fallback() bool  { return r.fallback }

func (r rule) Match(t *Tree, id NodeID) (Match, bool, error) {
	return r.match(t, id)
}

// Built-in rules.
var (
	RemoveRedundantParentheses Rule = rule{
		name:   "RemoveRedundantParentheses",
		bucket: Parenthesization,
		kinds:  []string{syntax.KindGroup},
		match:  matchRedundantGroup,
	}

	PowValues Rule = rule{
		name:   "PowValues",
		bucket: Exponentiation,
		kinds:  []string{syntax.KindPow},
		match:  matchPow,
	}

	Roots Rule = rule{
		name:   "Roots",
		bucket: Exponentiation,
		kinds:  []string{syntax.KindRoot},
		match:  matchRoot,
	}

	Negation Rule = rule{
		name:   "Negation",
		bucket: MulAndDiv,
		kinds:  []string{syntax.KindNeg},
		match:  matchNeg,
	}

	MulDivIntegers       = mulDivRule("MulDivIntegers", "integers", false, bothIntegers)
	MulDivFractions      = mulDivRule("MulDivFractions", "fractions", false, fractions)
	MulDivFloats         = mulDivRule("MulDivFloats", "decimals", false, floats)
	MulAlgebraicTerms    = mulDivRule("MulAlgebraicTerms", "algebraic terms", false, mulTerms)
	MulDivValues         = mulDivRule("MulDivValues", "values", true, anyValues)
	AddSubIntegers       = addSubRule("AddSubIntegers", "integers", false, false, bothIntegers)
	AddSubFractions      = addSubRule("AddSubFractions", "fractions", false, false, fractions)
	AddSubFloats         = addSubRule("AddSubFloats", "decimals", false, false, floats)
	AddSubAlgebraicTerms = addSubRule("AddSubAlgebraicTerms", "like terms", false, true, likeTerms)
	AddSubValues         = addSubRule("AddSubValues", "values", true, false, anyValues)
)

// BuiltinRules returns every built-in rule in the order they are tried.
func BuiltinRules() []Rule {
	return []Rule{
		RemoveRedundantParentheses,
		PowValues,
		Roots,
		Negation,
		MulDivIntegers,
		MulDivFractions,
		MulDivFloats,
		MulAlgebraicTerms,
		MulDivValues,
		AddSubIntegers,
		AddSubFractions,
		AddSubFloats,
		AddSubAlgebraicTerms,
		AddSubValues,
	}
}

func matchRedundantGroup(t *Tree, id NodeID) (Match, bool, error) {
	if !t.canUnwrap(id) {
		return Match{}, false, nil
	}
	return Match{
		Target:      id,
		Inputs:      []NodeID{id},
		Description: "remove redundant parentheses",
		Unwrap:      true,
		Into:        NoNode,
	}, true, nil
}

func matchPow(t *Tree, id NodeID) (Match, bool, error) {
	n := t.nodes[id]
	base, ok := t.operand(n.Left)
	if !ok {
		return Match{}, false, nil
	}
	exp, ok := t.operand(n.Right)
	if !ok {
		return Match{}, false, nil
	}

	res, err := t.nodes[base].Value.Exp(t.nodes[exp].Value)
	if err != nil {
		return Match{}, false, err
	}
	return Match{
		Target:      id,
		Inputs:      []NodeID{base, exp},
		Op:          "^",
		Description: "evaluate power",
		Result:      res,
		Into:        NoNode,
	}, true, nil
}

func matchRoot(t *Tree, id NodeID) (Match, bool, error) {
	n := t.nodes[id]
	radicand, ok := t.operand(n.Left)
	if !ok {
		return Match{}, false, nil
	}

	if n.Right == NoNode {
		res, err := t.nodes[radicand].Value.Root()
		if err != nil {
			return Match{}, false, err
		}
		return Match{
			Target:      id,
			Inputs:      []NodeID{radicand},
			Op:          "√",
			Description: "take square root",
			Result:      res,
			Into:        NoNode,
		}, true, nil
	}

	degree, ok := t.operand(n.Right)
	if !ok {
		return Match{}, false, nil
	}
	res, err := t.nodes[radicand].Value.NthRoot(t.nodes[degree].Value)
	if err != nil {
		return Match{}, false, err
	}
	return Match{
		Target:      id,
		Inputs:      []NodeID{degree, radicand},
		Op:          "√",
		Description: "take root",
		Result:      res,
		Into:        NoNode,
	}, true, nil
}

func matchNeg(t *Tree, id NodeID) (Match, bool, error) {
	operand, ok := t.operand(t.nodes[id].Left)
	if !ok {
		return Match{}, false, nil
	}
	return Match{
		Target:      id,
		Inputs:      []NodeID{operand},
		Op:          "-",
		Description: "negate",
		Result:      t.nodes[operand].Value.Negate(),
		Into:        NoNode,
	}, true, nil
}

// chain describes one left-associative operator chain family such as
// addition and subtraction.
type chain struct {
	plus, minus         string
	plusOp, minusOp     string
	plusVerb, minusVerb string
	combine             func(l, r value.Value, plus bool) (value.Value, error)

	// flips is set when a negative result in a minus slot can be written as
	// a positive one in a plus slot instead.
	flips bool
}

var (
	addSubChain = chain{
		plus: syntax.KindAdd, minus: syntax.KindSub,
		plusOp: "+", minusOp: "-",
		plusVerb: "add", minusVerb: "subtract",
		flips:    true,
		combine: func(l, r value.Value, plus bool) (value.Value, error) {
			if plus {
				return l.Add(r)
			}
			return l.Sub(r)
		},
	}
	mulDivChain = chain{
		plus: syntax.KindMul, minus: syntax.KindDiv,
		plusOp: "*", minusOp: "/",
		plusVerb: "multiply", minusVerb: "divide",
		combine: func(l, r value.Value, plus bool) (value.Value, error) {
			if plus {
				return l.Mul(r)
			}
			return l.Div(r)
		},
	}
)

func (c chain) has(kind string) bool {
	return kind == c.plus || kind == c.minus
}

func mulDivRule(name, noun string, fallback bool, accept func(l, r value.Value) bool) Rule {
	return chainRule(name, MulAndDiv, mulDivChain, noun, fallback, false, accept)
}

func addSubRule(name, noun string, fallback, removeZero bool, accept func(l, r value.Value) bool) Rule {
	return chainRule(name, AddAndSub, addSubChain, noun, fallback, removeZero, accept)
}

func chainRule(name string, b Bucket, c chain, noun string, fallback, removeZero bool, accept func(l, r value.Value) bool) Rule {
	return rule{
		name:     name,
		bucket:   b,
		kinds:    []string{c.plus, c.minus},
		fallback: fallback,
		match: func(t *Tree, id NodeID) (Match, bool, error) {
			m, ok, err := t.matchChain(id, c, accept)
			if !ok || err != nil {
				return m, ok, err
			}
			m.RemoveZero = removeZero
			m.Description += " " + noun
			return m, true, nil
		},
	}
}

// matchChain looks for a term to combine with the right term of chain node
// id. It scans up the chain from id, trying the right term of each node on
// the way and then the leftmost term, and takes the first term that accept
// allows. Terms are leaves or groups holding only a leaf.
func (t *Tree) matchChain(id NodeID, c chain, accept func(l, r value.Value) bool) (Match, bool, error) {
	n := t.nodes[id]
	right, ok := t.operand(n.Right)
	if !ok {
		return Match{}, false, nil
	}
	rv := t.nodes[right].Value

	for cur := n.Left; cur != NoNode; {
		cn := t.nodes[cur]
		inChain := c.has(cn.Kind)

		term, slot := cur, NoNode
		if inChain {
			term, slot = cn.Right, cur
		}

		if left, ok := t.operand(term); ok && accept(t.nodes[left].Value, rv) {
			leftPlus := slot == NoNode || t.nodes[slot].Kind == c.plus
			rightPlus := n.Kind == c.plus
			plus := leftPlus == rightPlus

			res, err := c.combine(t.nodes[left].Value, rv, plus)
			if err != nil {
				return Match{}, false, err
			}

			m := Match{
				Target:      id,
				Inputs:      []NodeID{left, right},
				Op:          c.plusOp,
				Description: c.plusVerb,
				Result:      res,
				Into:        left,
				Term:        term,
				Slot:        slot,
			}
			if !plus {
				m.Op, m.Description = c.minusOp, c.minusVerb
			}
			if c.flips && !leftPlus && negative(res) {
				m.Result = res.Negate()
				m.Flip = true
			}
			return m, true, nil
		}

		if !inChain {
			break
		}
		cur = cn.Left
	}
	return Match{}, false, nil
}

func bothIntegers(l, r value.Value) bool {
	_, lok := l.(value.Integer)
	_, rok := r.(value.Integer)
	return lok && rok
}

func fractions(l, r value.Value) bool {
	lf, lok := rational(l)
	rf, rok := rational(r)
	return lok && rok && (lf || rf)
}

// rational returns whether v is an Integer or a Fraction, and if so whether
// it is a Fraction.
func rational(v value.Value) (isFraction, ok bool) {
	switch v.(type) {
	case value.Fraction:
		return true, true
	case value.Integer:
		return false, true
	}
	return false, false
}

func floats(l, r value.Value) bool {
	_, lf := l.(value.Float)
	_, rf := r.(value.Float)
	return value.Numeric(l) && value.Numeric(r) && (lf || rf)
}

func likeTerms(l, r value.Value) bool {
	lv, lok := l.(value.Variable)
	rv, rok := r.(value.Variable)
	return lok && rok && lv.Letter == rv.Letter
}

func mulTerms(l, r value.Value) bool {
	lv, lok := l.(value.Variable)
	rv, rok := r.(value.Variable)
	switch {
	case lok && rok:
		return lv.Letter == rv.Letter
	case lok:
		return value.Numeric(r)
	case rok:
		return value.Numeric(l)
	}
	return false
}

func anyValues(l, r value.Value) bool {
	return true
}

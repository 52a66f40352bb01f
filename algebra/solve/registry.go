package solve

import (
	"fmt"
	"sort"
	"sync"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/dekarrin/algestep/internal/util"
)

// Bucket is a precedence level. A step applies the rules of one bucket only,
// the first in Buckets order that has anything to do.
type Bucket int

const (
	Parenthesization Bucket = iota
	Factorial
	Exponentiation
	MulAndDiv
	AddAndSub
)

// Buckets lists every bucket in the order a step tries them.
var Buckets = []Bucket{Parenthesization, Factorial, Exponentiation, MulAndDiv, AddAndSub}

func (b Bucket) String() string {
	switch b {
	case Parenthesization:
		return "parenthesization"
	case Factorial:
		return "factorial"
	case Exponentiation:
		return "exponentiation"
	case MulAndDiv:
		return "multiplication and division"
	case AddAndSub:
		return "addition and subtraction"
	default:
		return fmt.Sprintf("Bucket(%d)", int(b))
	}
}

// Rule is a rewrite rule. Rules hold no state of their own; one Rule value is
// shared by every solve that uses it.
type Rule interface {
	// Name uniquely identifies the rule.
	Name() string

	Bucket() Bucket

	// Kinds are the node kinds the rule is tried on.
	Kinds() []string

	// Fallback rules are only tried when no other rule in the same bucket
	// changed anything.
	Fallback() bool

	// Match checks whether the rule applies at node id and computes the
	// rewrite if so. It must not modify t. A non-nil error means the rule
	// applies but the math it calls for cannot be done.
	Match(t *Tree, id NodeID) (m Match, ok bool, err error)
}

// Descriptor describes a registered rule.
type Descriptor struct {
	Name     string
	Bucket   Bucket
	Kinds    []string
	Fallback bool
}

// Describe returns the Descriptor of r.
func Describe(r Rule) Descriptor {
	kinds := make([]string, len(r.Kinds()))
	copy(kinds, r.Kinds())
	return Descriptor{Name: r.Name(), Bucket: r.Bucket(), Kinds: kinds, Fallback: r.Fallback()}
}

// Registry holds the rules available to solves by name. It is safe for
// concurrent use. Solves use a RuleSet selected from a Registry, so changes
// to the Registry never affect a solve in progress.
type Registry struct {
	mtx   sync.RWMutex
	rules *linkedhashmap.Map
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{rules: linkedhashmap.New()}
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// DefaultRegistry returns the Registry of built-in rules. It is built the
// first time it is needed.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		defaultReg = NewRegistry()
		defaultReg.Register(BuiltinRules()...)
	})
	return defaultReg
}

// Register adds rules to the Registry. Registering a rule with a name that is
// already registered has no effect.
func (reg *Registry) Register(rules ...Rule) {
	reg.mtx.Lock()
	defer reg.mtx.Unlock()

	for _, r := range rules {
		if _, exists := reg.rules.Get(r.Name()); exists {
			continue
		}
		reg.rules.Put(r.Name(), r)
	}
}

// Rules returns every registered rule in registration order.
func (reg *Registry) Rules() []Rule {
	reg.mtx.RLock()
	defer reg.mtx.RUnlock()

	rules := make([]Rule, 0, reg.rules.Size())
	it := reg.rules.Iterator()
	for it.Next() {
		rules = append(rules, it.Value().(Rule))
	}
	return rules
}

// Names returns the names of every registered rule in registration order.
func (reg *Registry) Names() []string {
	var names []string
	for _, r := range reg.Rules() {
		names = append(names, r.Name())
	}
	return names
}

// Select returns the RuleSet of registered rules named in include, or of all
// registered rules if include is empty, less any named in exclude. It is an
// error to name a rule that is not registered.
func (reg *Registry) Select(include, exclude []string) (RuleSet, error) {
	all := reg.Rules()
	names := reg.Names()
	known := util.StringSetOf(names)

	for _, name := range append(append([]string{}, include...), exclude...) {
		if !known.Has(name) {
			return RuleSet{}, fmt.Errorf("no rule named %q%s", name, util.DidYouMean(name, names))
		}
	}

	included := util.StringSetOf(include)
	excluded := util.StringSetOf(exclude)

	rs := RuleSet{byBucket: map[Bucket][]Rule{}}
	for _, r := range all {
		if len(include) > 0 && !included.Has(r.Name()) {
			continue
		}
		if excluded.Has(r.Name()) {
			continue
		}
		rs.byBucket[r.Bucket()] = append(rs.byBucket[r.Bucket()], r)
		rs.names = append(rs.names, r.Name())
	}
	return rs, nil
}

// RuleSet is an immutable selection of rules grouped by bucket.
type RuleSet struct {
	byBucket map[Bucket][]Rule
	names    []string
}

// InBucket returns the rules of bucket b in registration order.
func (rs RuleSet) InBucket(b Bucket) []Rule {
	rules := rs.byBucket[b]
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return cp
}

func (rs RuleSet) rule(name string, b Bucket) (Rule, bool) {
	for _, r := range rs.byBucket[b] {
		if r.Name() == name {
			return r, true
		}
	}
	return nil, false
}

// Names returns the names of the rules in the set, sorted.
func (rs RuleSet) Names() []string {
	names := make([]string, len(rs.names))
	copy(names, rs.names)
	sort.Strings(names)
	return names
}

// Len returns the number of rules in the set.
func (rs RuleSet) Len() int {
	return len(rs.names)
}

// Package parse builds backtracking recursive-descent parsers from compiled
// grammars. A Parser produces a concrete syntax tree for a source string and
// projects it into an abstract syntax tree shaped by caller-supplied Options.
package parse

import (
	"fmt"
	"unicode/utf8"

	"github.com/dekarrin/algestep/internal/ebnf/grammar"
	"github.com/dekarrin/algestep/internal/ebnf/lex"
	"github.com/dekarrin/algestep/internal/trace"
	"github.com/dekarrin/algestep/internal/util"
)

// DefaultMaxSteps is the match-attempt budget used when Options.MaxSteps is 0.
const DefaultMaxSteps = 1 << 20

// GenerateFunc builds the AST for a CST node of one rule, replacing the
// default shaping for that rule. It returns the ID of the node it built.
type GenerateFunc func(n *CSTNode, b *Builder) (NodeID, error)

// Options control tokenizing, parsing, and how a CST is shaped into an AST.
type Options struct {
	// FlattenRules are rules whose nested children of the same rule are
	// spliced into one flat child list.
	FlattenRules []string

	// BypassRules are rules that are elided from the AST when they matched
	// exactly one child; the child takes their place.
	BypassRules []string

	// DropTerminalsOnAllRules are token texts removed from every rule's
	// children.
	DropTerminalsOnAllRules []string

	// DropTerminalsOnRules are token texts removed only from the children of
	// the named rules.
	DropTerminalsOnRules map[string][]string

	// KeepTerminals are token texts that are never dropped, even if listed in
	// one of the drop options.
	KeepTerminals []string

	// GenerateFuncs fully override AST construction for the named rules.
	GenerateFuncs map[string]GenerateFunc

	// DefaultAction is attached to every AST node whose kind has no entry in
	// ActionForRules.
	DefaultAction Action

	// ActionForRules attaches an Action to AST nodes by node kind.
	ActionForRules map[string]Action

	// MetaTerminals gives the acceptance callback for each meta-terminal named
	// in the grammar.
	MetaTerminals map[string]func(r rune) bool

	// Matchers are tried before the matchers derived from the grammar.
	Matchers []lex.Matcher

	// Filter lists token kinds that are lexed but skipped while parsing.
	Filter []lex.Kind

	// KeepWhitespace disables the implicit matcher that discards whitespace
	// between tokens.
	KeepWhitespace bool

	// MaxSteps bounds the number of match attempts one parse may make. 0 means
	// DefaultMaxSteps and a negative value means no bound.
	MaxSteps int
}

// matchFunc tries to match at the stream cursor. On success it appends the
// nodes it matched to out and returns true. On failure it leaves both the
// cursor and out as it found them.
type matchFunc func(st *state, out *[]*CSTNode) bool

// Parser is a compiled grammar. The grammar rule tree it was built from is
// shared, but a Parser reuses its own working state between calls and must
// not be used by more than one goroutine at a time.
type Parser struct {
	table *grammar.RuleTable
	opts  Options
	lexer *lex.Lexer
	rules map[string]matchFunc
	st    state

	flatten util.StringSet
	bypass  util.StringSet
	dropAll util.StringSet
	dropOn  map[string]util.StringSet
	keep    util.StringSet
}

// New compiles table into a Parser. Every rule named in opts must exist in
// the table and every meta-terminal in the grammar must have a callback.
func New(table *grammar.RuleTable, opts Options) (*Parser, error) {
	if table == nil || table.Len() == 0 {
		return nil, fmt.Errorf("no grammar rules given")
	}

	p := &Parser{
		table:   table,
		opts:    opts,
		rules:   map[string]matchFunc{},
		flatten: util.StringSetOf(opts.FlattenRules),
		bypass:  util.StringSetOf(opts.BypassRules),
		dropAll: util.StringSetOf(opts.DropTerminalsOnAllRules),
		dropOn:  map[string]util.StringSet{},
		keep:    util.StringSetOf(opts.KeepTerminals),
	}

	named := append(append([]string{}, opts.FlattenRules...), opts.BypassRules...)
	for name, toks := range opts.DropTerminalsOnRules {
		named = append(named, name)
		p.dropOn[name] = util.StringSetOf(toks)
	}
	for name := range opts.GenerateFuncs {
		named = append(named, name)
	}
	for _, name := range named {
		if _, ok := table.Rule(name); !ok {
			return nil, fmt.Errorf("option refers to undefined rule %q%s", name, util.DidYouMean(name, table.Names()))
		}
	}

	for _, name := range table.MetaTerminals() {
		if opts.MetaTerminals[name] == nil {
			return nil, fmt.Errorf("no callback given for meta-terminal %q", name)
		}
	}

	var matchers []lex.Matcher
	if !opts.KeepWhitespace {
		matchers = append(matchers, lex.Pattern("whitespace", `\s+`).Ignored())
	}
	matchers = append(matchers, opts.Matchers...)
	matchers = append(matchers, table.Tokens()...)

	lx, err := lex.New(matchers, opts.Filter...)
	if err != nil {
		return nil, err
	}
	p.lexer = lx

	for _, r := range table.Rules() {
		p.rules[r.Name] = p.compile(r.Expr)
	}

	return p, nil
}

// Table returns the grammar the Parser was built from.
func (p *Parser) Table() *grammar.RuleTable {
	return p.table
}

// Lexer returns the lexer the Parser tokenizes source with.
func (p *Parser) Lexer() *lex.Lexer {
	return p.lexer
}

// Parse tokenizes source and matches it against the start rule of the
// grammar. The whole source must be consumed. On failure no partial tree is
// returned.
func (p *Parser) Parse(source string) (*CSTNode, error) {
	stream, err := p.lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}

	st := &p.st
	st.reset(stream, p.maxSteps())

	var top []*CSTNode
	ok := p.ruleRef(p.table.Start())(st, &top)

	if st.exhausted {
		return nil, fmt.Errorf("%w: gave up after %d match attempts", ErrBudgetExceeded, st.steps)
	}

	if ok && !stream.HasNext() {
		trace.Syntax().Debugf("parsed %q in %d match attempts", source, st.steps)
		return top[0], nil
	}

	if ok {
		tok := stream.Next()
		st.fail(st.posOf(tok), "end of input")
	}

	return nil, st.syntaxError()
}

// ParseAST is Parse followed by ToAST.
func (p *Parser) ParseAST(source string) (*AST, error) {
	cst, err := p.Parse(source)
	if err != nil {
		return nil, err
	}
	return p.ToAST(cst)
}

func (p *Parser) maxSteps() int {
	if p.opts.MaxSteps == 0 {
		return DefaultMaxSteps
	}
	return p.opts.MaxSteps
}

func (p *Parser) compile(e grammar.Expr) matchFunc {
	switch v := e.(type) {
	case grammar.Terminal:
		return p.terminal(v.Text)
	case grammar.MetaTerminal:
		return p.metaTerminal(v.Name)
	case grammar.RuleRef:
		return p.ruleRef(v.Name)
	case grammar.Grouping:
		return p.compile(v.Inner)
	case grammar.Optional:
		return p.optional(p.compile(v.Inner))
	case grammar.Repetition:
		return p.repetition(p.compile(v.Inner))
	case grammar.Concatenation:
		items := make([]matchFunc, len(v.Items))
		for i := range v.Items {
			items[i] = p.compile(v.Items[i])
		}
		return p.concatenation(items)
	case grammar.Alternation:
		alts := make([]matchFunc, len(v.Alts))
		for i := range v.Alts {
			alts[i] = p.compile(v.Alts[i])
		}
		return p.alternation(alts)
	default:
		panic(fmt.Sprintf("unknown grammar primitive %T", e))
	}
}

func (p *Parser) terminal(text string) matchFunc {
	want := grammar.Terminal{Text: text}.String()

	return func(st *state, out *[]*CSTNode) bool {
		if !st.tick() {
			return false
		}

		st.s.Begin()
		tok := st.s.Next()
		if !tok.EndOfText() && tok.Text == text {
			st.s.Accept()
			*out = append(*out, &CSTNode{Token: &tok})
			return true
		}

		st.fail(st.posOf(tok), want)
		st.s.Reject()
		return false
	}
}

func (p *Parser) metaTerminal(name string) matchFunc {
	want := grammar.MetaTerminal{Name: name}.String()
	accept := p.opts.MetaTerminals[name]

	return func(st *state, out *[]*CSTNode) bool {
		if !st.tick() {
			return false
		}

		st.s.Begin()
		tok := st.s.Next()
		if !tok.EndOfText() && utf8.RuneCountInString(tok.Text) == 1 {
			r, _ := utf8.DecodeRuneInString(tok.Text)
			if accept(r) {
				st.s.Accept()
				*out = append(*out, &CSTNode{Token: &tok})
				return true
			}
		}

		st.fail(st.posOf(tok), want)
		st.s.Reject()
		return false
	}
}

func (p *Parser) ruleRef(name string) matchFunc {
	return func(st *state, out *[]*CSTNode) bool {
		if !st.tick() {
			return false
		}

		st.s.Begin()
		var kids []*CSTNode
		if !p.rules[name](st, &kids) {
			st.s.Reject()
			return false
		}
		st.s.Accept()

		node := &CSTNode{Rule: name, Children: kids}
		for _, k := range kids {
			k.Parent = node
		}
		*out = append(*out, node)
		return true
	}
}

func (p *Parser) concatenation(items []matchFunc) matchFunc {
	return func(st *state, out *[]*CSTNode) bool {
		mark := len(*out)
		st.s.Begin()
		for _, m := range items {
			if !m(st, out) {
				*out = (*out)[:mark]
				st.s.Reject()
				return false
			}
		}
		st.s.Accept()
		return true
	}
}

func (p *Parser) alternation(alts []matchFunc) matchFunc {
	return func(st *state, out *[]*CSTNode) bool {
		for _, m := range alts {
			mark := len(*out)
			st.s.Begin()
			if m(st, out) {
				st.s.Accept()
				return true
			}
			*out = (*out)[:mark]
			st.s.Reject()
		}
		return false
	}
}

func (p *Parser) optional(inner matchFunc) matchFunc {
	return func(st *state, out *[]*CSTNode) bool {
		inner(st, out)
		return true
	}
}

// repetition matches inner greedily. An iteration that succeeds without
// advancing the cursor is discarded and ends the repetition, since repeating
// it could never make progress.
func (p *Parser) repetition(inner matchFunc) matchFunc {
	return func(st *state, out *[]*CSTNode) bool {
		for !st.exhausted {
			start := st.s.Pos()
			mark := len(*out)

			st.s.Begin()
			if !inner(st, out) {
				st.s.Reject()
				break
			}
			if st.s.Pos() == start {
				trace.Syntax().Debugf("zero-width repetition at token %d; ending repetition", start)
				*out = (*out)[:mark]
				st.s.Reject()
				break
			}
			st.s.Accept()
		}
		return true
	}
}

package grammar

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dekarrin/algestep/internal/ebnf/lex"
	"github.com/dekarrin/algestep/internal/trace"
	"github.com/dekarrin/algestep/internal/util"
)

const (
	kindComment  lex.Kind = "comment"
	kindIdent    lex.Kind = "identifier"
	kindTerminal lex.Kind = "terminal"
	kindMeta     lex.Kind = "meta-terminal"
)

var bootstrapMatchers = []lex.Matcher{
	lex.Pattern("whitespace", `\s+`).Ignored(),
	lex.Pattern(kindComment, `\(\*[\s\S]*?\*\)`),
	lex.Pattern(kindIdent, `[A-Za-z_][A-Za-z0-9_\-]*`),
	lex.Pattern(kindTerminal, `'[^']*'|"[^"]*"`),
	lex.Pattern(kindMeta, `\?[^?]*\?`),
	lex.Literal("=", "="),
	lex.Literal(";", ";"),
	lex.Literal("|", "|"),
	lex.Literal(",", ","),
	lex.Literal("{", "{"),
	lex.Literal("}", "}"),
	lex.Literal("[", "["),
	lex.Literal("]", "]"),
	lex.Literal("(", "("),
	lex.Literal(")", ")"),
}

var bootstrapLexer = func() *lex.Lexer {
	lx, err := lex.New(bootstrapMatchers, kindComment)
	if err != nil {
		panic(fmt.Sprintf("bootstrap grammar lexer: %v", err))
	}
	return lx
}()

// Compile parses grammar text into a RuleTable and validates it with Check. A
// grammar Error is returned if the text is malformed, refers to an undefined
// rule, or defines a rule that can recurse without consuming input.
func Compile(text string) (*RuleTable, error) {
	rt, err := parseRules(text)
	if err != nil {
		return nil, err
	}
	if err := rt.Check(); err != nil {
		return nil, err
	}

	trace.Syntax().Debugf("compiled grammar with %d rule(s), start rule %q", rt.Len(), rt.Start())
	return rt, nil
}

// MustCompile is like Compile but panics if the grammar cannot be compiled. It
// is intended for grammars that are part of the program.
func MustCompile(text string) *RuleTable {
	rt, err := Compile(text)
	if err != nil {
		panic(err.Error())
	}
	return rt
}

// parseRules parses grammar text and resolves rule references without running
// Check.
func parseRules(text string) (*RuleTable, error) {
	stream, err := bootstrapLexer.Tokenize(text)
	if err != nil {
		var lexErr lex.LexicalError
		if errors.As(err, &lexErr) {
			return nil, Error{
				sourceLine: lineOf(text, lexErr.Line()),
				line:       lexErr.Line(),
				pos:        lexErr.Position(),
				message:    fmt.Sprintf("unrecognized input %q", lexErr.Source()),
			}
		}
		return nil, err
	}

	c := &compiler{s: stream}
	return c.grammar()
}

func lineOf(text string, line int) string {
	lines := strings.Split(text, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// refSite is a place a rule name was referenced, kept so undefined references
// can be reported where they occur.
type refSite struct {
	name string
	rule string
	tok  lex.Token
}

// compiler is a recursive-descent parser for grammar text:
//
//	grammar       = rule, {rule} ;
//	rule          = identifier, "=", alternation, ";" ;
//	alternation   = concatenation, {"|", concatenation} ;
//	concatenation = factor, {",", factor} ;
//	factor        = identifier | terminal | meta | "[", alternation, "]"
//	              | "{", alternation, "}" | "(", alternation, ")" ;
type compiler struct {
	s    *lex.Stream
	rule string
	refs []refSite
}

func (c *compiler) grammar() (*RuleTable, error) {
	rt := newRuleTable()

	if !c.s.HasNext() {
		return nil, Error{message: "grammar defines no rules"}
	}

	for c.s.HasNext() {
		nameTok := c.s.Peek(1)
		r, err := c.ruleDecl()
		if err != nil {
			return nil, err
		}
		if _, dup := rt.Rule(r.Name); dup {
			return nil, errorAt(nameTok, r.Name, "rule %q is defined more than once", r.Name)
		}
		rt.add(r)
	}

	for _, ref := range c.refs {
		if _, ok := rt.Rule(ref.name); !ok {
			hint := util.DidYouMean(ref.name, rt.Names())
			return nil, errorAt(ref.tok, ref.rule, "undefined rule %q%s", ref.name, hint)
		}
	}

	return rt, nil
}

func (c *compiler) ruleDecl() (Rule, error) {
	nameTok := c.s.Next()
	if nameTok.Kind != kindIdent {
		return Rule{}, errorAt(nameTok, "", "expected rule name but got %s", describe(nameTok))
	}
	c.rule = nameTok.Text

	if tok := c.s.Next(); tok.Kind != "=" {
		return Rule{}, errorAt(tok, c.rule, "expected '=' after rule name but got %s", describe(tok))
	}

	e, err := c.alternation()
	if err != nil {
		return Rule{}, err
	}

	if tok := c.s.Next(); tok.Kind != ";" {
		return Rule{}, errorAt(tok, c.rule, "expected ',', '|', or ';' but got %s", describe(tok))
	}

	return Rule{Name: nameTok.Text, Expr: e, Line: nameTok.Line}, nil
}

func (c *compiler) alternation() (Expr, error) {
	first, err := c.concatenation()
	if err != nil {
		return nil, err
	}

	alts := []Expr{first}
	for c.s.Peek(1).Kind == "|" {
		c.s.Next()
		next, err := c.concatenation()
		if err != nil {
			return nil, err
		}
		alts = append(alts, next)
	}

	if len(alts) == 1 {
		return first, nil
	}
	return Alternation{Alts: alts}, nil
}

func (c *compiler) concatenation() (Expr, error) {
	first, err := c.factor()
	if err != nil {
		return nil, err
	}

	items := []Expr{first}
	for c.s.Peek(1).Kind == "," {
		c.s.Next()
		next, err := c.factor()
		if err != nil {
			return nil, err
		}
		items = append(items, next)
	}

	if len(items) == 1 {
		return first, nil
	}
	return Concatenation{Items: items}, nil
}

func (c *compiler) factor() (Expr, error) {
	tok := c.s.Next()

	switch tok.Kind {
	case kindIdent:
		c.refs = append(c.refs, refSite{name: tok.Text, rule: c.rule, tok: tok})
		return RuleRef{Name: tok.Text}, nil
	case kindTerminal:
		text := tok.Text[1 : len(tok.Text)-1]
		if text == "" {
			return nil, errorAt(tok, c.rule, "empty terminal")
		}
		return Terminal{Text: text}, nil
	case kindMeta:
		name := strings.TrimSpace(tok.Text[1 : len(tok.Text)-1])
		if name == "" {
			return nil, errorAt(tok, c.rule, "meta-terminal has no name")
		}
		return MetaTerminal{Name: name}, nil
	case "[":
		inner, err := c.closed("]")
		if err != nil {
			return nil, err
		}
		return Optional{Inner: inner}, nil
	case "{":
		inner, err := c.closed("}")
		if err != nil {
			return nil, err
		}
		return Repetition{Inner: inner}, nil
	case "(":
		inner, err := c.closed(")")
		if err != nil {
			return nil, err
		}
		return Grouping{Inner: inner}, nil
	default:
		return nil, errorAt(tok, c.rule, "expected terminal, rule name, or group but got %s", describe(tok))
	}
}

// closed parses an alternation followed by the closing bracket end.
func (c *compiler) closed(end lex.Kind) (Expr, error) {
	inner, err := c.alternation()
	if err != nil {
		return nil, err
	}
	if tok := c.s.Next(); tok.Kind != end {
		return nil, errorAt(tok, c.rule, "expected '%s' but got %s", end, describe(tok))
	}
	return inner, nil
}

func describe(tok lex.Token) string {
	if tok.EndOfText() {
		return "end of grammar"
	}
	return fmt.Sprintf("%q", tok.Text)
}

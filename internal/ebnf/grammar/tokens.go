package grammar

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dekarrin/algestep/internal/ebnf/lex"
	"github.com/dekarrin/algestep/internal/trace"
)

// Tokens derives the lexer matcher table for the grammar.
//
// Every terminal in the grammar becomes an exact-match literal. Terminals that
// belong to a token rule are given the rule's name as their kind; all others
// use their own text. A token rule made up only of single-character terminals
// becomes one character-class pattern instead of a literal per character.
//
// Literals are ordered longest first so that no literal can be cut short by
// another that is a prefix of it. If the grammar uses meta-terminals, a final
// catch-all matcher of kind lex.KindChar accepts any single character.
func (rt *RuleTable) Tokens() []lex.Matcher {
	type literal struct {
		text string
		kind lex.Kind
	}

	seen := map[string]bool{}
	var literals []literal
	var classes []lex.Matcher

	for _, r := range rt.Rules() {
		texts, ok := terminalsOnly(r.Expr)
		if !ok {
			continue
		}

		if len(texts) > 1 && allSingleChars(texts) {
			classes = append(classes, lex.Pattern(lex.Kind(r.Name), charClass(texts)))
			for _, t := range texts {
				seen[t] = true
			}
			continue
		}

		for _, t := range texts {
			if !seen[t] {
				seen[t] = true
				literals = append(literals, literal{text: t, kind: lex.Kind(r.Name)})
			}
		}
	}

	for _, r := range rt.Rules() {
		walk(r.Expr, func(e Expr) {
			if term, ok := e.(Terminal); ok && !seen[term.Text] {
				seen[term.Text] = true
				literals = append(literals, literal{text: term.Text, kind: lex.Kind(term.Text)})
			}
		})
	}

	sort.SliceStable(literals, func(i, j int) bool {
		return utf8.RuneCountInString(literals[i].text) > utf8.RuneCountInString(literals[j].text)
	})

	var matchers []lex.Matcher
	var singles []lex.Matcher
	for _, lit := range literals {
		m := lex.Literal(lit.kind, lit.text)
		if utf8.RuneCountInString(lit.text) > 1 {
			matchers = append(matchers, m)
		} else {
			singles = append(singles, m)
		}
	}
	matchers = append(matchers, classes...)
	matchers = append(matchers, singles...)

	if len(rt.MetaTerminals()) > 0 {
		matchers = append(matchers, lex.Pattern(lex.KindChar, `(?s).`))
	}

	trace.Syntax().Debugf("derived %d token matcher(s)", len(matchers))
	return matchers
}

func allSingleChars(texts []string) bool {
	for _, t := range texts {
		if utf8.RuneCountInString(t) != 1 {
			return false
		}
	}
	return true
}

func charClass(chars []string) string {
	var sb strings.Builder
	sb.WriteRune('[')
	for _, ch := range chars {
		if strings.ContainsAny(ch, `\]^-[`) {
			sb.WriteRune('\\')
		}
		sb.WriteString(ch)
	}
	sb.WriteRune(']')
	return sb.String()
}

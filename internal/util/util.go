// Package util holds small helpers shared by the console, the parser and the
// rule registry.
package util

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// MakeTextList gives a human-readable list of items joined with the given
// conjunction ("and", "or"). Lists of three or more use an oxford comma.
func MakeTextList(items []string, conj string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " " + conj + " " + items[1]
	}

	withConj := make([]string, len(items))
	copy(withConj, items)
	withConj[len(withConj)-1] = conj + " " + withConj[len(withConj)-1]
	return strings.Join(withConj, ", ")
}

// OrderedKeys returns the keys of m, ordered a particular way. The order is
// guaranteed to be the same on every run.
//
// As of this writing, the order is alphabetical, but this function does not
// guarantee this will always be the case.
func OrderedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortBy returns a sorted copy of items, ordered by the less function. The
// sort is stable.
func SortBy[E any](items []E, less func(l, r E) bool) []E {
	sorted := make([]E, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	return sorted
}

// maxSuggestDistance is the largest edit distance a candidate may be from the
// misspelled name and still be suggested.
const maxSuggestDistance = 3

// Suggest returns the candidates that name was most likely a misspelling of,
// best match first. Candidates that contain name as a fuzzy subsequence are
// ranked ahead of those that are only a few edits away.
func Suggest(name string, candidates []string) []string {
	if name == "" || len(candidates) == 0 {
		return nil
	}

	ranks := fuzzy.RankFindFold(name, candidates)
	sort.Sort(ranks)

	seen := map[string]bool{}
	var out []string
	for _, r := range ranks {
		if !seen[r.Target] {
			seen[r.Target] = true
			out = append(out, r.Target)
		}
	}

	type near struct {
		target string
		dist   int
	}
	var nears []near
	lowered := strings.ToLower(name)
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		d := fuzzy.LevenshteinDistance(lowered, strings.ToLower(c))
		if d <= maxSuggestDistance {
			nears = append(nears, near{target: c, dist: d})
		}
	}
	sort.SliceStable(nears, func(i, j int) bool {
		return nears[i].dist < nears[j].dist
	})
	for _, n := range nears {
		seen[n.target] = true
		out = append(out, n.target)
	}

	return out
}

// DidYouMean formats the result of Suggest as a trailing hint, or returns a
// blank string if there is nothing to suggest.
func DidYouMean(name string, candidates []string) string {
	sugs := Suggest(name, candidates)
	if len(sugs) == 0 {
		return ""
	}
	if len(sugs) > 3 {
		sugs = sugs[:3]
	}
	quoted := make([]string, len(sugs))
	for i := range sugs {
		quoted[i] = "\"" + sugs[i] + "\""
	}
	return "; did you mean " + MakeTextList(quoted, "or") + "?"
}

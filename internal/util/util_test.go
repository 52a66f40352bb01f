package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_MakeTextList(t *testing.T) {
	testCases := []struct {
		name   string
		items  []string
		expect string
	}{
		{name: "empty", items: nil, expect: ""},
		{name: "one", items: []string{"'+'"}, expect: "'+'"},
		{name: "two", items: []string{"'+'", "'-'"}, expect: "'+' or '-'"},
		{name: "three", items: []string{"'+'", "'-'", "')'"}, expect: "'+', '-', or ')'"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, MakeTextList(tc.items, "or"))
		})
	}
}

func Test_Suggest(t *testing.T) {
	rules := []string{"AddSubIntegers", "AddSubFractions", "MulDivIntegers", "PowValues"}

	testCases := []struct {
		name        string
		input       string
		expectFirst string
	}{
		{name: "subsequence", input: "addsubint", expectFirst: "AddSubIntegers"},
		{name: "typo", input: "PowVaules", expectFirst: "PowValues"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := Suggest(tc.input, rules)

			if assert.NotEmpty(actual) {
				assert.Equal(tc.expectFirst, actual[0])
			}
		})
	}
}

func Test_StringSet(t *testing.T) {
	assert := assert.New(t)

	s := StringSetOf([]string{"b", "a"})
	s.Add("c")

	assert.True(s.Has("a"))
	assert.False(s.Has("d"))
	assert.Equal([]string{"a", "b", "c"}, s.Elements())
	assert.Equal("{a, b, c}", s.String())
	assert.True(s.Equal(StringSetOf([]string{"c", "b", "a"})))
	assert.False(s.Equal(StringSetOf([]string{"a", "b"})))
	assert.False(s.Equal([]string{"a", "b", "c"}))
}

func Test_SortBy(t *testing.T) {
	assert := assert.New(t)

	input := []string{"bb", "a", "ccc", "dd"}
	actual := SortBy(input, func(l, r string) bool {
		return len(l) < len(r)
	})

	assert.Equal([]string{"a", "bb", "dd", "ccc"}, actual)
	assert.Equal([]string{"bb", "a", "ccc", "dd"}, input)
}

func Test_OrderedKeys(t *testing.T) {
	assert := assert.New(t)

	m := map[string]int{"q": 1, "b": 2, "x": 3}
	assert.Equal([]string{"b", "q", "x"}, OrderedKeys(m))
	assert.Empty(OrderedKeys(map[string]bool{}))
}

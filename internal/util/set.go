package util

import (
	"sort"
	"strings"
)

// StringSet is a set of strings backed by a map. The zero value is not usable;
// create one with NewStringSet or StringSetOf.
type StringSet map[string]bool

// NewStringSet creates a StringSet holding every key of the given maps.
func NewStringSet(of ...map[string]bool) StringSet {
	s := StringSet{}
	for _, m := range of {
		for k := range m {
			s.Add(k)
		}
	}
	return s
}

// StringSetOf creates a StringSet holding every element of sl.
func StringSetOf(sl []string) StringSet {
	s := NewStringSet()
	for i := range sl {
		s.Add(sl[i])
	}
	return s
}

func (s StringSet) Has(value string) bool {
	return s[value]
}

func (s StringSet) Add(value string) {
	s[value] = true
}

func (s StringSet) Len() int {
	return len(s)
}

func (s StringSet) Empty() bool {
	return len(s) == 0
}

// Elements returns the elements of s in alphabetical order.
func (s StringSet) Elements() []string {
	sl := make([]string, 0, len(s))
	for k := range s {
		sl = append(sl, k)
	}
	sort.Strings(sl)
	return sl
}

// String shows the contents of the set. Items are alphabetized.
func (s StringSet) String() string {
	return "{" + strings.Join(s.Elements(), ", ") + "}"
}

// Equal returns whether o is a StringSet or *StringSet with exactly the same
// elements as s.
func (s StringSet) Equal(o any) bool {
	other, ok := o.(StringSet)
	if !ok {
		otherPtr, ok := o.(*StringSet)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if s.Len() != other.Len() {
		return false
	}
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

package lex

import (
	"fmt"

	"github.com/emirpasic/gods/stacks/arraystack"
)

// Stream is a cursor over a fully lexed token buffer. Traversal skips tokens
// of filtered kinds without removing them from the buffer, so they can still
// be inspected with Tokens.
//
// Backtracking is done with transactions: Begin saves the cursor, Accept
// discards the most recent save and Reject restores it. Transactions nest.
//
// A Stream is not safe for concurrent use.
type Stream struct {
	source   string
	tokens   []Token
	end      Token
	filtered map[Kind]bool

	cur   int
	marks *arraystack.Stack
}

func newStream(source string, tokens []Token, end Token, filtered map[Kind]bool) *Stream {
	return &Stream{
		source:   source,
		tokens:   tokens,
		end:      end,
		filtered: filtered,
		marks:    arraystack.New(),
	}
}

// Source returns the text the stream was lexed from.
func (s *Stream) Source() string {
	return s.source
}

// Tokens returns every token in the buffer including filtered ones.
func (s *Stream) Tokens() []Token {
	toks := make([]Token, len(s.tokens))
	copy(toks, s.tokens)
	return toks
}

// Len returns the number of tokens in the buffer including filtered ones.
func (s *Stream) Len() int {
	return len(s.tokens)
}

// Pos returns the raw index into the token buffer of the cursor.
func (s *Stream) Pos() int {
	return s.cur
}

// Seek moves the cursor to the raw buffer index pos.
func (s *Stream) Seek(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.tokens) {
		pos = len(s.tokens)
	}
	s.cur = pos
}

// At returns the token at raw buffer index pos, or the end-of-text token if
// pos is past the end of the buffer.
func (s *Stream) At(pos int) Token {
	if pos < 0 || pos >= len(s.tokens) {
		return s.end
	}
	return s.tokens[pos]
}

func (s *Stream) visible(i int) bool {
	return !s.filtered[s.tokens[i].Kind]
}

// Next returns the next visible token and advances past it. At the end of the
// stream it returns a token of KindEndOfText and does not move.
func (s *Stream) Next() Token {
	for s.cur < len(s.tokens) && !s.visible(s.cur) {
		s.cur++
	}
	if s.cur >= len(s.tokens) {
		return s.end
	}
	t := s.tokens[s.cur]
	s.cur++
	return t
}

// Prev moves the cursor back before the most recently passed visible token and
// returns that token. At the start of the stream it returns the end-of-text
// token and does not move.
func (s *Stream) Prev() Token {
	i := s.cur - 1
	for i >= 0 && !s.visible(i) {
		i--
	}
	if i < 0 {
		return s.end
	}
	s.cur = i
	return s.tokens[i]
}

// Peek returns a visible token relative to the cursor without moving it. Peek(1)
// is the token Next would return, Peek(2) the one after it; Peek(-1) is the
// most recently passed token. Peek(0) is the same as Peek(1). Looking past
// either end gives the end-of-text token.
func (s *Stream) Peek(n int) Token {
	if n == 0 {
		n = 1
	}

	if n > 0 {
		for i := s.cur; i < len(s.tokens); i++ {
			if !s.visible(i) {
				continue
			}
			n--
			if n == 0 {
				return s.tokens[i]
			}
		}
		return s.end
	}

	for i := s.cur - 1; i >= 0; i-- {
		if !s.visible(i) {
			continue
		}
		n++
		if n == 0 {
			return s.tokens[i]
		}
	}
	return s.end
}

// HasNext returns whether any visible tokens remain.
func (s *Stream) HasNext() bool {
	return s.Remaining() > 0
}

// Remaining returns the number of visible tokens left after the cursor.
func (s *Stream) Remaining() int {
	count := 0
	for i := s.cur; i < len(s.tokens); i++ {
		if s.visible(i) {
			count++
		}
	}
	return count
}

// Begin opens a transaction by saving the cursor.
func (s *Stream) Begin() {
	s.marks.Push(s.cur)
}

// Accept closes the innermost transaction and keeps the cursor where it is.
func (s *Stream) Accept() {
	if _, ok := s.marks.Pop(); !ok {
		panic("Accept called with no open transaction")
	}
}

// Reject closes the innermost transaction and restores the cursor to where it
// was when the transaction began.
func (s *Stream) Reject() {
	saved, ok := s.marks.Pop()
	if !ok {
		panic("Reject called with no open transaction")
	}
	s.cur = saved.(int)
}

// Depth returns the number of open transactions.
func (s *Stream) Depth() int {
	return s.marks.Size()
}

func (s *Stream) String() string {
	return fmt.Sprintf("<Stream pos=%d/%d depth=%d>", s.cur, len(s.tokens), s.Depth())
}

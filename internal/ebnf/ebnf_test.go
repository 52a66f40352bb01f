package ebnf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/algestep/internal/ebnf/grammar"
	"github.com/dekarrin/algestep/internal/ebnf/parse"
	"github.com/dekarrin/algestep/internal/trace"
)

const listGrammar = `
	list = item, {',', item} ;
	item = letter, {letter} ;
	letter = 'a' | 'b' | 'c' ;
`

func Test_Frontend_ParseAST(t *testing.T) {
	assert := assert.New(t)

	fe, err := NewFrontend(listGrammar, parse.Options{
		DropTerminalsOnAllRules: []string{","},
	})
	if !assert.NoError(err) {
		return
	}
	defer fe.Close()

	ast, err := fe.ParseAST("ab, c")
	if !assert.NoError(err) {
		return
	}

	assert.Equal(`( list )
  |---: ( item "ab" )
  \---: ( item "c" )`, ast.String())
}

func Test_Frontend_rejectsBadGrammar(t *testing.T) {
	_, err := NewFrontend(`term = factor | term ; factor = 'x' ;`, parse.Options{})
	assert.True(t, errors.Is(err, grammar.ErrGrammar))
}

func Test_Frontend_concurrentUse(t *testing.T) {
	fe, err := NewFrontend(listGrammar, parse.Options{})
	if !assert.NoError(t, err) {
		return
	}
	defer fe.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src := "a"
			for j := 0; j < i; j++ {
				src += ", b"
			}
			cst, err := fe.Parse(src)
			if err != nil {
				errs <- err
				return
			}
			if got := len(cst.Terminals()); got != 2*i+1 {
				errs <- fmt.Errorf("parse of %q gave %d tokens", src, got)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func Test_Frontend_giveBack_tracesFailure(t *testing.T) {
	assert := assert.New(t)

	fe, err := NewFrontend(listGrammar, parse.Options{})
	if !assert.NoError(err) {
		return
	}
	defer fe.Close()

	var out bytes.Buffer
	trace.Syntax().SetOutput(&out)
	defer trace.Syntax().SetOutput(os.Stderr)

	// a parser the pool never lent out cannot be given back
	fe.giveBack(&parse.Parser{})
	assert.Contains(out.String(), "could not return parser to pool")

	// and the pool still works
	_, err = fe.ParseAST("a, b")
	assert.NoError(err)
}

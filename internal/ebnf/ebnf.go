// Package ebnf ties the grammar, lexing and parsing packages together into a
// single front end: grammar text in, ASTs out.
//
// The pieces can also be used on their own. Package grammar compiles grammar
// text into a RuleTable and derives a lexer table from it, package lex turns
// source into tokens, and package parse matches tokens against the rules and
// shapes the result.
package ebnf

import (
	"context"
	"fmt"

	pool "github.com/jolestar/go-commons-pool"

	"github.com/dekarrin/algestep/internal/ebnf/grammar"
	"github.com/dekarrin/algestep/internal/ebnf/parse"
	"github.com/dekarrin/algestep/internal/trace"
)

// Frontend parses source text with one grammar and one set of shaping
// options. Parsers keep working state between calls, so the Frontend hands
// each call its own Parser from a pool; a Frontend is safe for concurrent use.
type Frontend struct {
	table *grammar.RuleTable
	opts  parse.Options
	ctx   context.Context
	pool  *pool.ObjectPool
}

// NewFrontend compiles grammarText and checks that a Parser can be built from
// it with opts.
func NewFrontend(grammarText string, opts parse.Options) (*Frontend, error) {
	table, err := grammar.Compile(grammarText)
	if err != nil {
		return nil, err
	}
	return NewFrontendFromTable(table, opts)
}

// NewFrontendFromTable is like NewFrontend but uses an already compiled table.
func NewFrontendFromTable(table *grammar.RuleTable, opts parse.Options) (*Frontend, error) {
	// build one up front so that bad options are reported here rather than on
	// the first parse.
	if _, err := parse.New(table, opts); err != nil {
		return nil, err
	}

	fe := &Frontend{
		table: table,
		opts:  opts,
		ctx:   context.Background(),
	}

	factory := pool.NewPooledObjectFactorySimple(
		func(context.Context) (interface{}, error) {
			return parse.New(table, opts)
		})
	config := pool.NewDefaultPoolConfig()
	config.MaxTotal = -1
	config.BlockWhenExhausted = false
	fe.pool = pool.NewObjectPool(fe.ctx, factory, config)

	return fe, nil
}

// Table returns the compiled grammar.
func (fe *Frontend) Table() *grammar.RuleTable {
	return fe.table
}

// Parse parses source into a concrete syntax tree.
func (fe *Frontend) Parse(source string) (*parse.CSTNode, error) {
	var cst *parse.CSTNode
	err := fe.withParser(func(p *parse.Parser) error {
		var err error
		cst, err = p.Parse(source)
		return err
	})
	return cst, err
}

// ParseAST parses source and shapes it into an abstract syntax tree.
func (fe *Frontend) ParseAST(source string) (*parse.AST, error) {
	var ast *parse.AST
	err := fe.withParser(func(p *parse.Parser) error {
		var err error
		ast, err = p.ParseAST(source)
		return err
	})
	return ast, err
}

func (fe *Frontend) withParser(fn func(p *parse.Parser) error) error {
	obj, err := fe.pool.BorrowObject(fe.ctx)
	if err != nil {
		return fmt.Errorf("borrowing parser: %w", err)
	}
	defer fe.giveBack(obj)

	return fn(obj.(*parse.Parser))
}

func (fe *Frontend) giveBack(obj any) {
	if err := fe.pool.ReturnObject(fe.ctx, obj); err != nil {
		trace.Syntax().Errorf("could not return parser to pool: %v", err)
	}
}

// Close releases every pooled Parser.
func (fe *Frontend) Close() {
	fe.pool.Close(fe.ctx)
}

// Package trace hands out the debug tracers used by the parsing and solving
// packages. Library code never prints; it traces, and tracing is silent unless
// a caller raises the level.
package trace

import (
	"sync"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

var (
	fallbackOnce   sync.Once
	fallbackSyntax tracing.Trace
	fallbackCore   tracing.Trace
)

func fallbacks() {
	fallbackOnce.Do(func() {
		fallbackSyntax = gologadapter.New()
		fallbackSyntax.SetTraceLevel(tracing.LevelError)
		fallbackCore = gologadapter.New()
		fallbackCore.SetTraceLevel(tracing.LevelError)
	})
}

// Syntax returns the tracer for lexing, grammar compilation and parsing.
func Syntax() tracing.Trace {
	if t := gtrace.SyntaxTracer; t != nil {
		return t
	}
	fallbacks()
	return fallbackSyntax
}

// Core returns the tracer for the rewrite engine.
func Core() tracing.Trace {
	if t := gtrace.CoreTracer; t != nil {
		return t
	}
	fallbacks()
	return fallbackCore
}

// SetDebug raises both tracers to debug level when on is true and lowers them
// back to error level otherwise.
func SetDebug(on bool) {
	level := tracing.LevelError
	if on {
		level = tracing.LevelDebug
	}
	Syntax().SetTraceLevel(level)
	Core().SetTraceLevel(level)
}

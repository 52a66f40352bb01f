// Package input reads console lines for the interactive solver, either
// straight from a stream or through readline when attached to a terminal.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/text/unicode/norm"
)

// DefaultPrompt is shown before each line read interactively.
const DefaultPrompt = "∑ "

// DirectReader implements command.Reader and reads lines from any input
// stream. It does not strip control and escape sequences from what it reads.
//
// Create one with [NewDirectReader].
type DirectReader struct {
	r             *bufio.Reader
	blanksAllowed bool
}

// InteractiveReader implements command.Reader and reads lines from stdin
// through readline, which handles line editing and keeps a history of what
// was entered. It should only be used when stdin is a terminal.
//
// Create one with [NewInteractiveReader].
type InteractiveReader struct {
	rl            *readline.Instance
	blanksAllowed bool
	prompt        string
}

// NewDirectReader returns a DirectReader that reads from r.
func NewDirectReader(r io.Reader) *DirectReader {
	return &DirectReader{
		r: bufio.NewReader(r),
	}
}

// NewInteractiveReader starts readline and returns an InteractiveReader. If
// historyFile is not blank, entered lines are saved to it and loaded from it
// on the next start. Close must be called on the returned reader once it is
// no longer needed.
func NewInteractiveReader(historyFile string) (*InteractiveReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            DefaultPrompt,
		HistoryFile:       historyFile,
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}

	return &InteractiveReader{
		rl:     rl,
		prompt: DefaultPrompt,
	}, nil
}

// Close releases resources held by the DirectReader. There currently are
// none, but callers should still call it.
func (dr *DirectReader) Close() error {
	return nil
}

// Close shuts down readline.
func (ir *InteractiveReader) Close() error {
	return ir.rl.Close()
}

// ReadCommand reads the next non-blank line, trimmed and NFC-normalized.
//
// At end of input the returned string is empty and error is io.EOF. A final
// line with no newline is returned normally and io.EOF is given on the call
// after.
func (dr *DirectReader) ReadCommand() (string, error) {
	return readNonBlank(dr.blanksAllowed, func() (string, error) {
		return dr.r.ReadString('\n')
	})
}

// ReadCommand reads the next non-blank line from the terminal, trimmed and
// NFC-normalized. Errors are reported as for DirectReader.ReadCommand; an
// interrupt from the user is returned as readline.ErrInterrupt.
func (ir *InteractiveReader) ReadCommand() (string, error) {
	return readNonBlank(ir.blanksAllowed, ir.rl.Readline)
}

func readNonBlank(blanksAllowed bool, next func() (string, error)) (string, error) {
	for {
		line, err := next()
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = norm.NFC.String(strings.TrimSpace(line))
		if line != "" || blanksAllowed {
			return line, nil
		}
	}
}

// AllowBlank sets whether blank lines are returned. By default they are
// skipped.
func (dr *DirectReader) AllowBlank(allow bool) {
	dr.blanksAllowed = allow
}

// AllowBlank sets whether blank lines are returned. By default they are
// skipped.
func (ir *InteractiveReader) AllowBlank(allow bool) {
	ir.blanksAllowed = allow
}

// SetPrompt changes the prompt.
func (ir *InteractiveReader) SetPrompt(p string) {
	ir.prompt = p
	ir.rl.SetPrompt(p)
}

// Prompt returns the current prompt.
func (ir *InteractiveReader) Prompt() string {
	return ir.prompt
}

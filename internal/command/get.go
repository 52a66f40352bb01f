package command

import (
	"bufio"
	"fmt"

	"github.com/dekarrin/algestep/internal/msgerr"
)

// Reader is a type that can be used for getting command input.
type Reader interface {
	// ReadCommand reads a single line of input. It will block until one is
	// ready. If there is an error or input is at its end (EOF), the returned
	// string will be empty, otherwise it will always be non-empty.
	//
	// When error is io.EOF, string will always be empty. If EOF was
	// encountered on a call but some input was received, the input will be
	// returned and error will be nil, and the next call to ReadCommand will
	// return "", io.EOF.
	ReadCommand() (string, error)

	// Close releases any resources held by the Reader. It should be called at
	// least once when the Reader is no longer needed.
	Close() error
}

// Get reads lines from cmdStream until one of them parses as a Command and
// returns that Command. Each line that does not parse has its problem written
// to ostream.
//
// Get does not check whether the command can be carried out right now, only
// that it is well-formed.
func Get(cmdStream Reader, ostream *bufio.Writer) (Command, error) {
	for {
		input, err := cmdStream.ReadCommand()
		if err != nil {
			return Command{}, fmt.Errorf("could not get input: %w", err)
		}

		cmd, err := Parse(input)
		if err == nil && cmd.Verb != "" {
			return cmd, nil
		}
		if err == nil {
			continue
		}

		errMsg := fmt.Sprintf("%v\nTry HELP for valid commands\n", msgerr.Message(err))
		if _, err := ostream.WriteString(errMsg); err != nil {
			return Command{}, fmt.Errorf("could not write output: %w", err)
		}
		if err := ostream.Flush(); err != nil {
			return Command{}, fmt.Errorf("could not flush output: %w", err)
		}
	}
}

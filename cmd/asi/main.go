/*
Asi starts an interactive algestep console session.

It reads math expressions and console commands from stdin and prints each step
taken to solve them to stdout until the input ends or the "QUIT" command is
given.

Usage:

	asi [flags]

The flags are:

	-v, --version
		Give the current version of algestep and then exit.

	-c, --config FILE
		Use the given TOML config file. Defaults to "algestep.toml" in the
		current working directory if it exists, and to built-in settings if it
		does not.

	-d, --direct
		Force reading directly from the console as opposed to using GNU readline
		based routines for reading command input even if launched in a tty with
		stdin and stdout.

	--debug
		Print trace output of the parser and the solver to stderr. This is also
		turned on by setting "debug = true" in the config file.

Once a session has started, each line is either a console command or an
expression to solve. For an explanation of the commands, type "HELP" once in a
session. To exit the console, type "QUIT".
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/dekarrin/algestep"
	"github.com/dekarrin/algestep/internal/config"
	"github.com/dekarrin/algestep/internal/trace"
	"github.com/dekarrin/algestep/internal/version"
	"github.com/dekarrin/algestep/server"
	"github.com/dekarrin/algestep/server/dao"
)

const (

	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitConsoleError indicates an unsuccessful program execution due to a
	// problem during the session.
	ExitConsoleError

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue initializing the console.
	ExitInitError
)

var (
	returnCode  = ExitSuccess
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of algestep and then exit.")
	flagConfig  = pflag.StringP("config", "c", "", "Use the given TOML config file.")
	flagDirect  = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible.")
	flagDebug   = pflag.Bool("debug", false, "Print parser and solver traces to stderr.")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just because
			// we checked
			panic(panicErr)
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "ERROR: too many arguments\nDo -h for help.\n")
		returnCode = ExitInitError
		return
	}

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	trace.SetDebug(cfg.Debug || *flagDebug)

	var history dao.SolveRepository
	if cfg.History.DB != "" {
		where, err := server.ParseStore(cfg.History.DB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: history db: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
		store, err := where.Open()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: history db: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
		defer store.Close()
		history = store.Solves()
	}

	con, initErr := algestep.New(os.Stdin, os.Stdout, cfg, history, *flagDirect)
	if initErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", initErr.Error())
		returnCode = ExitInitError
		return
	}
	defer con.Close()

	err = con.RunUntilQuit()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitConsoleError
		return
	}
}

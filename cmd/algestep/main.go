/*
Algestep solves math expressions step by step from the command line.

Usage:

	algestep [flags] solve EXPR
	algestep [flags] eval EXPR [--bind a=2 ...]
	algestep [flags] tokens EXPR
	algestep [flags] grammar FILE

Each subcommand prints its result to stdout in the format chosen with
--format. Problems with the input are printed to stderr and the exit status is
non-zero.

The global flags are:

	-c, --config FILE
		Use the given TOML config file. Defaults to "algestep.toml" in the
		current working directory if it exists.

	-f, --format FORMAT
		Print results as "text" (the default), "json", or "cbor".

	--debug
		Print parser and solver traces to stderr.

	-v, --version
		Give the current version of algestep and then exit.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dekarrin/algestep/internal/config"
	"github.com/dekarrin/algestep/internal/msgerr"
	"github.com/dekarrin/algestep/internal/trace"
	"github.com/dekarrin/algestep/internal/version"
)

const (
	ExitSuccess = iota
	ExitError
)

// globals holds the values of the flags every subcommand shares.
type globals struct {
	configFile string
	format     string
	debug      bool

	cfg config.Config
}

func main() {
	root := newRootCommand()

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", msgerr.Message(err))
		os.Exit(ExitError)
	}
}

func newRootCommand() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "algestep",
		Short:         "Solve math expressions one step at a time",
		Version:       version.Current,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(g.format); err != nil {
				return err
			}

			cfg, err := config.Load(g.configFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(nil); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			g.cfg = cfg

			trace.SetDebug(cfg.Debug || g.debug)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&g.configFile, "config", "c", "", "Use the given TOML config file")
	root.PersistentFlags().StringVarP(&g.format, "format", "f", formatText, "Output format: text, json, or cbor")
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "Print parser and solver traces to stderr")

	root.AddCommand(
		newSolveCommand(g),
		newEvalCommand(g),
		newTokensCommand(g),
		newGrammarCommand(g),
	)

	return root
}

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
	"github.com/spf13/cobra"

	"github.com/dekarrin/algestep/algebra"
	"github.com/dekarrin/algestep/algebra/solve"
	"github.com/dekarrin/algestep/algebra/syntax"
	"github.com/dekarrin/algestep/algebra/value"
	"github.com/dekarrin/algestep/internal/command"
	"github.com/dekarrin/algestep/internal/msgerr"
)

type changeOutput struct {
	Rule        string   `json:"rule" cbor:"rule"`
	Description string   `json:"description" cbor:"description"`
	Inputs      []string `json:"inputs" cbor:"inputs"`
	Result      string   `json:"result" cbor:"result"`
}

type stepOutput struct {
	Number  int            `json:"number" cbor:"number"`
	Display string         `json:"display" cbor:"display"`
	Changes []changeOutput `json:"changes" cbor:"changes"`
}

type solveOutput struct {
	Expression string       `json:"expression" cbor:"expression"`
	Steps      []stepOutput `json:"steps" cbor:"steps"`
	Result     string       `json:"result" cbor:"result"`
	Done       bool         `json:"done" cbor:"done"`

	// Error is set when a step could not be done.
	Error string `json:"error,omitempty" cbor:"error,omitempty"`
}

func (so solveOutput) Text(width int) string {
	var sb strings.Builder
	for _, st := range so.Steps {
		sb.WriteString(fmt.Sprintf("Step %d: %s\n", st.Number, orNothing(st.Display)))
		for _, ch := range st.Changes {
			line := fmt.Sprintf("%s: %s => %s [%s]", ch.Description, strings.Join(ch.Inputs, ", "), orNothing(ch.Result), ch.Rule)
			for _, wrapped := range strings.Split(rosed.Edit(line).Wrap(width-2).String(), "\n") {
				sb.WriteString("  " + wrapped + "\n")
			}
		}
	}
	if so.Error != "" {
		sb.WriteString(so.Error + "\n")
	} else if !so.Done {
		sb.WriteString(fmt.Sprintf("Stopped after %d steps\n", len(so.Steps)))
	}
	sb.WriteString(fmt.Sprintf("Result: %s\n", orNothing(so.Result)))
	return sb.String()
}

func orNothing(s string) string {
	if s == "" {
		return "(nothing left)"
	}
	return s
}

func newSolveCommand(g *globals) *cobra.Command {
	var (
		maxSteps int
		include  []string
		exclude  []string
	)

	cmd := &cobra.Command{
		Use:   "solve EXPR",
		Short: "Solve an expression and print every step",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.cfg
			if cmd.Flags().Changed("max-steps") {
				cfg.Limits.MaxSteps = maxSteps
			}
			if len(include) > 0 {
				cfg.Rules.Include = include
			}
			if len(exclude) > 0 {
				cfg.Rules.Exclude = exclude
			}

			out, err := runSolve(strings.Join(args, " "), cfg.Limits.MaxSteps, cfg.Separator(), cfg.EngineOptions(nil)...)
			if err != nil {
				return err
			}
			if err := write(cmd.OutOrStdout(), g.format, cfg.Display.Width, out); err != nil {
				return err
			}
			if out.Error != "" {
				return errors.New("solve did not finish")
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&maxSteps, "max-steps", "m", 0, "Stop after this many steps; 0 means no limit")
	cmd.Flags().StringSliceVarP(&include, "include", "i", nil, "Use only the named rules")
	cmd.Flags().StringSliceVarP(&exclude, "exclude", "x", nil, "Do not use the named rules")

	return cmd
}

// runSolve solves expr and reports every step. Math that cannot be done is
// reported in the output rather than as an error so the steps before it are
// kept.
func runSolve(expr string, maxSteps int, sep rune, opts ...algebra.Option) (solveOutput, error) {
	eng, err := algebra.New(syntax.Normalize(expr), opts...)
	if err != nil {
		return solveOutput{}, err
	}

	out := solveOutput{Expression: eng.String()}

	steps, solveErr := eng.Solve(maxSteps)
	for _, st := range steps {
		out.Steps = append(out.Steps, stepOutput{
			Number:  st.Number,
			Display: st.Display,
			Changes: changeOutputs(st.Changes),
		})
	}
	if solveErr != nil {
		out.Error = msgerr.Message(solveErr)
	}

	out.Done = eng.Done()
	out.Result = eng.String()
	if v, ok := eng.Value(); ok {
		out.Result = value.Display(v, sep)
	}
	return out, nil
}

func changeOutputs(changes []solve.Change) []changeOutput {
	outs := make([]changeOutput, len(changes))
	for i, ch := range changes {
		outs[i] = changeOutput{
			Rule:        ch.Rule,
			Description: ch.Description,
			Inputs:      ch.InputText,
			Result:      ch.ResultText,
		}
	}
	return outs
}

type evalOutput struct {
	Expression string            `json:"expression" cbor:"expression"`
	Bindings   map[string]string `json:"bindings,omitempty" cbor:"bindings,omitempty"`
	Value      string            `json:"value" cbor:"value"`
}

func (eo evalOutput) Text(width int) string {
	return eo.Value + "\n"
}

func newEvalCommand(g *globals) *cobra.Command {
	var binds []string

	cmd := &cobra.Command{
		Use:   "eval EXPR",
		Short: "Compute the value of an expression",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := runEval(strings.Join(args, " "), binds, g.cfg.Separator())
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), g.format, g.cfg.Display.Width, out)
		},
	}

	// StringArray rather than StringSlice so a decimal comma is not split on
	cmd.Flags().StringArrayVarP(&binds, "bind", "b", nil, "Give a variable a value, such as a=2; may be repeated")

	return cmd
}

func runEval(expr string, binds []string, sep rune) (evalOutput, error) {
	var bindings syntax.Bindings
	if len(binds) > 0 {
		var err error
		bindings, err = command.ParseBindings(strings.Join(binds, " "))
		if err != nil {
			return evalOutput{}, err
		}
	}

	v, err := algebra.Evaluate(syntax.Normalize(expr), bindings)
	if err != nil {
		return evalOutput{}, err
	}

	out := evalOutput{Expression: expr, Value: value.Display(v, sep)}
	if len(bindings) > 0 {
		out.Bindings = map[string]string{}
		for name, bv := range bindings {
			out.Bindings[name] = bv.String()
		}
	}
	return out, nil
}

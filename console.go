// Package algestep contains a CLI-driven console for loading math expressions
// and solving them one step at a time until the user quits.
package algestep

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dekarrin/rosed"

	"github.com/dekarrin/algestep/algebra"
	"github.com/dekarrin/algestep/algebra/solve"
	"github.com/dekarrin/algestep/algebra/syntax"
	"github.com/dekarrin/algestep/algebra/value"
	"github.com/dekarrin/algestep/internal/command"
	"github.com/dekarrin/algestep/internal/config"
	"github.com/dekarrin/algestep/internal/ebnf"
	"github.com/dekarrin/algestep/internal/input"
	"github.com/dekarrin/algestep/internal/msgerr"
	"github.com/dekarrin/algestep/internal/trace"
	"github.com/dekarrin/algestep/internal/util"
	"github.com/dekarrin/algestep/server/dao"
)

// Console contains the things needed to solve expressions from an interactive
// shell attached to an input stream and an output stream.
type Console struct {
	cfg     config.Config
	in      command.Reader
	out     *bufio.Writer
	fe      *ebnf.Frontend
	reg     *solve.Registry
	history dao.SolveRepository

	eng      *algebra.Engine
	recorded bool

	width       int
	sep         rune
	forceDirect bool
	running     bool
}

// New creates a new Console ready to operate on the given input and output
// streams. It will immediately open a buffered reader on the input stream and a
// buffered writer on the output stream.
//
// If nil is given for the input stream, a bufio.Reader is opened on stdin. If
// nil is given for the output stream, a bufio.Writer is opened on stdout. If
// history is not nil, every solve that runs to the end is recorded in it.
func New(inputStream io.Reader, outputStream io.Writer, cfg config.Config, history dao.SolveRepository, forceDirectInput bool) (*Console, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}

	cfg = cfg.FillDefaults()
	reg := solve.DefaultRegistry()
	if err := cfg.Validate(reg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	fe, err := syntax.NewFrontend(cfg.Limits.ParseBudget)
	if err != nil {
		return nil, fmt.Errorf("build math parser: %w", err)
	}

	con := &Console{
		cfg:         cfg,
		out:         bufio.NewWriter(outputStream),
		fe:          fe,
		reg:         reg,
		history:     history,
		width:       cfg.Display.Width,
		sep:         cfg.Separator(),
		forceDirect: forceDirectInput,
	}

	useReadline := !forceDirectInput && inputStream == os.Stdin && outputStream == os.Stdout

	if useReadline {
		con.in, err = input.NewInteractiveReader("")
		if err != nil {
			fe.Close()
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
	} else {
		con.in = input.NewDirectReader(inputStream)
	}

	return con, nil
}

// Close closes all resources associated with the Console, including any
// readline-related resources created for interactive mode.
func (con *Console) Close() error {
	if con.running {
		return fmt.Errorf("cannot close a running console")
	}

	con.fe.Close()

	err := con.in.Close()
	if err != nil {
		return fmt.Errorf("close command reader: %w", err)
	}

	return nil
}

// RunUntilQuit begins reading commands from the streams and executing them
// until the QUIT command is received or the input ends.
func (con *Console) RunUntilQuit() error {
	introMsg := "algestep console\n"
	if con.forceDirect {
		introMsg += "(direct input mode)\n"
	}
	introMsg += "================\n"
	introMsg += "Type an expression to solve it, or HELP for commands.\n"

	if err := con.write(introMsg); err != nil {
		return err
	}

	con.running = true
	// so we dont have to remember to do this on every returned error condition
	defer func() {
		con.running = false
	}()

	for con.running {
		cmd, err := command.Get(con.in, con.out)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("get user command: %w", err)
		}

		if cmd.Verb == "QUIT" {
			con.running = false
			break
		}

		if err := con.Execute(cmd); err != nil {
			return err
		}
	}

	return con.write("Goodbye\n")
}

// Execute carries out a single command. Problems with what the command asks
// for are written to the output; only failures to write are returned.
func (con *Console) Execute(cmd command.Command) error {
	var output string
	var err error

	switch cmd.Verb {
	case "":
		return nil
	case "SOLVE":
		output, err = con.solve(cmd.Argument)
	case "LOAD":
		output, err = con.load(cmd.Argument)
	case "STEP":
		output, err = con.step()
	case "SHOW":
		output, err = con.show()
	case "EVAL":
		output, err = con.eval(cmd.Argument, cmd.Bindings)
	case "RULES":
		output = con.rules()
	case "HISTORY":
		output, err = con.listHistory()
	case "HELP":
		output = con.help(cmd.Argument)
	default:
		err = msgerr.Newf("I don't know how to %q", cmd.Verb)
	}

	if err != nil {
		trace.Core().Debugf("%s failed: %v", cmd.Verb, err)
		output = msgerr.Message(err)
	}

	return con.write(output + "\n")
}

func (con *Console) newEngine(expr string) (*algebra.Engine, error) {
	return algebra.New(expr, con.cfg.EngineOptions(con.fe)...)
}

func (con *Console) load(expr string) (string, error) {
	eng, err := con.newEngine(expr)
	if err != nil {
		return "", err
	}
	con.eng = eng
	con.recorded = false

	return con.wrap("Loaded: " + eng.String()), nil
}

func (con *Console) solve(expr string) (string, error) {
	if _, err := con.load(expr); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(con.wrap("Solving: " + con.eng.String()))
	sb.WriteRune('\n')

	steps, err := con.eng.Solve(con.cfg.Limits.MaxSteps)
	for _, st := range steps {
		sb.WriteString(con.formatStep(st))
	}
	if err != nil {
		sb.WriteString(msgerr.Message(err))
		return sb.String(), nil
	}

	if !con.eng.Done() {
		sb.WriteString(con.wrap(fmt.Sprintf("Stopped after %d steps. Use STEP to keep going.", len(steps))))
		return sb.String(), nil
	}

	sb.WriteString(con.finish())
	return sb.String(), nil
}

func (con *Console) step() (string, error) {
	if con.eng == nil {
		return "", msgerr.Newf("Nothing is loaded. Give an expression to LOAD or SOLVE first.")
	}

	changes, err := con.eng.SolveNextStep()
	if err != nil {
		return "", err
	}
	if len(changes) == 0 {
		return con.finish(), nil
	}

	hist := con.eng.History()
	return strings.TrimSuffix(con.formatStep(hist[len(hist)-1]), "\n"), nil
}

func (con *Console) show() (string, error) {
	if con.eng == nil {
		return "", msgerr.Newf("Nothing is loaded. Give an expression to LOAD or SOLVE first.")
	}
	status := "in progress"
	if con.eng.Done() {
		status = "solved"
	}
	return con.wrap(fmt.Sprintf("%s (%s, %d steps taken)", con.display(), status, len(con.eng.History()))), nil
}

func (con *Console) eval(expr string, bindings syntax.Bindings) (string, error) {
	eng, err := con.newEngine(expr)
	if err != nil {
		return "", err
	}
	v, err := eng.Evaluate(bindings)
	if err != nil {
		return "", err
	}
	return con.wrap(eng.String() + " = " + value.Display(v, con.sep)), nil
}

// finish reports the final form of the loaded expression and records the
// solve if it has not been yet.
func (con *Console) finish() string {
	out := con.wrap("Done: " + con.display())

	if con.history != nil && !con.recorded {
		if err := con.record(); err != nil {
			out += "\n" + con.wrap("(the solve could not be saved to history: "+err.Error()+")")
		} else {
			con.recorded = true
		}
	}
	return out
}

func (con *Console) record() error {
	s := dao.Solve{
		Expression: con.eng.Source(),
		Include:    con.cfg.Rules.Include,
		Exclude:    con.cfg.Rules.Exclude,
		Done:       con.eng.Done(),
	}
	for _, st := range con.eng.History() {
		rec := dao.Step{Number: st.Number, Display: st.Display}
		for _, ch := range st.Changes {
			rec.Changes = append(rec.Changes, ch.String())
		}
		s.Steps = append(s.Steps, rec)
	}

	_, err := con.history.Create(context.Background(), s)
	return err
}

// display gives the loaded expression as it reads now, with a single final
// value shown using the configured decimal separator.
func (con *Console) display() string {
	if v, ok := con.eng.Value(); ok {
		return value.Display(v, con.sep)
	}
	if s := con.eng.String(); s != "" {
		return s
	}
	return "(nothing left)"
}

func (con *Console) formatStep(st algebra.Step) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Step %d:\n", st.Number))
	for _, ch := range st.Changes {
		sb.WriteString(con.wrapIndent("  "+ch.String()+" ["+ch.Rule+"]", "    "))
		sb.WriteRune('\n')
	}
	result := st.Display
	if result == "" {
		result = "(nothing left)"
	}
	sb.WriteString(con.wrapIndent("  = "+result, "    "))
	sb.WriteRune('\n')
	return sb.String()
}

func (con *Console) rules() string {
	used := map[string]bool{}
	if set, err := con.reg.Select(con.cfg.Rules.Include, con.cfg.Rules.Exclude); err == nil {
		for _, name := range set.Names() {
			used[name] = true
		}
	}

	data := [][]string{{"Rule", "Level", "Used"}}
	for _, r := range con.reg.Rules() {
		d := solve.Describe(r)
		level := d.Bucket.String()
		if d.Fallback {
			level += " (fallback)"
		}
		usedStr := "no"
		if used[d.Name] {
			usedStr = "yes"
		}
		data = append(data, []string{d.Name, level, usedStr})
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, con.width, tableOptions).
		String()
}

func (con *Console) listHistory() (string, error) {
	if con.eng != nil {
		hist := con.eng.History()
		if len(hist) == 0 {
			return con.wrap("No steps have been taken on " + con.eng.String() + " yet."), nil
		}

		data := [][]string{{"Step", "Expression", "Changes"}}
		for _, st := range hist {
			var changes []string
			for _, ch := range st.Changes {
				changes = append(changes, ch.String())
			}
			display := st.Display
			if display == "" {
				display = "(nothing left)"
			}
			data = append(data, []string{fmt.Sprintf("%d", st.Number), display, strings.Join(changes, "; ")})
		}
		return rosed.Edit("").
			InsertTableOpts(0, data, con.width, tableOptions).
			String(), nil
	}

	if con.history == nil {
		return "", msgerr.Newf("Nothing is loaded and no history is being kept.")
	}

	solves, err := con.history.GetAll(context.Background())
	if err != nil {
		return "", msgerr.Wrapf(err, "Could not read the history: %s", err.Error())
	}
	if len(solves) == 0 {
		return con.wrap("Nothing has been solved yet."), nil
	}

	data := [][]string{{"Expression", "Steps", "Result"}}
	for _, s := range solves {
		data = append(data, []string{s.Expression, fmt.Sprintf("%d", len(s.Steps)), s.Display()})
	}
	return rosed.Edit("").
		InsertTableOpts(0, data, con.width, tableOptions).
		String(), nil
}

func (con *Console) help(topic string) string {
	if topic != "" {
		for _, v := range command.Verbs {
			if v.Verb != topic {
				continue
			}
			var aliases []string
			for _, alias := range util.OrderedKeys(command.VerbAliases) {
				if command.VerbAliases[alias] == topic {
					aliases = append(aliases, alias)
				}
			}
			out := v.Usage + ": " + v.Desc
			if len(aliases) > 0 {
				out += "\nAlso: " + strings.Join(aliases, ", ")
			}
			return con.wrap(out)
		}
	}

	var defs [][2]string
	for _, v := range command.Verbs {
		defs = append(defs, [2]string{v.Usage, v.Desc})
	}

	return rosed.Edit("").
		WithOptions(rosed.Options{ParagraphSeparator: "\n", NoTrailingLineSeparators: true}).
		Insert(rosed.End, "Here are the commands you can use. A line that is not a command is solved as an expression:\n").
		InsertDefinitionsTable(rosed.End, defs, con.width).
		String()
}

var tableOptions = rosed.Options{
	TableHeaders:             true,
	NoTrailingLineSeparators: true,
}

func (con *Console) wrap(s string) string {
	return rosed.Edit(s).
		WithOptions(rosed.Options{ParagraphSeparator: "\n"}).
		Wrap(con.width).
		String()
}

// wrapIndent wraps s and indents every line after the first.
func (con *Console) wrapIndent(s, indent string) string {
	lines := strings.Split(con.wrap(s), "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = indent + lines[i]
	}
	return strings.Join(lines, "\n")
}

func (con *Console) write(s string) error {
	if _, err := con.out.WriteString(s); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	if err := con.out.Flush(); err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}
	return nil
}

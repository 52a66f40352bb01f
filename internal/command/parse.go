package command

import (
	"regexp"
	"strings"

	"github.com/dekarrin/algestep/algebra/syntax"
	"github.com/dekarrin/algestep/algebra/value"
	"github.com/dekarrin/algestep/internal/msgerr"
)

// Verbs lists every canonical verb with a short description of it, in the
// order HELP shows them.
var Verbs = []struct {
	Verb, Usage, Desc string
}{
	{"SOLVE", "SOLVE EXPR", "load EXPR and solve it step by step to the end"},
	{"LOAD", "LOAD EXPR", "load EXPR without solving it"},
	{"STEP", "STEP", "do the next step of the loaded expression"},
	{"SHOW", "SHOW", "show the loaded expression as it currently is"},
	{"EVAL", "EVAL EXPR [WITH a=2 b=3]", "compute the value of EXPR directly"},
	{"RULES", "RULES", "list the rules used to solve expressions"},
	{"HISTORY", "HISTORY", "list the steps taken on the loaded expression"},
	{"HELP", "HELP [VERB]", "show this help, or help for one command"},
	{"QUIT", "QUIT", "exit the console"},
}

var (
	// VerbAliases maps shorthand verbs to their canonical forms. They are all
	// upper case.
	VerbAliases = map[string]string{
		"S":         "SOLVE",
		"L":         "LOAD",
		"N":         "STEP",
		"NEXT":      "STEP",
		"P":         "SHOW",
		"PRINT":     "SHOW",
		"E":         "EVAL",
		"EVALUATE":  "EVAL",
		"R":         "RULES",
		"HIST":      "HISTORY",
		"?":         "HELP",
		"/?":        "HELP",
		"/H":        "HELP",
		"-H":        "HELP",
		"H":         "HELP",
		"BYE":       "QUIT",
		"EXIT":      "QUIT",
		"Q":         "QUIT",
		"SIMPLIFY":  "SOLVE",
		"CALCULATE": "EVAL",
	}
)

var (
	bindingPattern = regexp.MustCompile(`^([a-zA-Z])=(.+)$`)
	spacedEquals   = regexp.MustCompile(`\s*=\s*`)
)

func isVerb(s string) bool {
	for _, v := range Verbs {
		if v.Verb == s {
			return true
		}
	}
	return false
}

// Parse parses a command from the given line. If it cannot, a non-nil error
// is returned that has a message for the user.
//
// A line that does not start with a verb is a SOLVE of the whole line. A
// blank line gives a zero Command and a nil error.
func Parse(line string) (Command, error) {
	var cmd Command

	casedTokens := strings.Fields(line)
	if len(casedTokens) < 1 {
		return cmd, nil
	}

	first := strings.ToUpper(casedTokens[0])
	if alias, ok := VerbAliases[first]; ok {
		first = alias
	}
	if !isVerb(first) {
		return Command{Verb: "SOLVE", Argument: strings.Join(casedTokens, " ")}, nil
	}

	cmd.Verb = first
	args := casedTokens[1:]

	switch cmd.Verb {
	case "SOLVE", "LOAD":
		if len(args) < 1 {
			return cmd, msgerr.Newf("What do you want to %s? Give an expression after %s", strings.ToLower(cmd.Verb), casedTokens[0])
		}
		cmd.Argument = strings.Join(args, " ")
	case "EVAL":
		if len(args) < 1 {
			return cmd, msgerr.Newf("What do you want to evaluate? Give an expression after %s", casedTokens[0])
		}

		withIdx := len(args)
		for i := range args {
			if strings.ToUpper(args[i]) == "WITH" {
				withIdx = i
				break
			}
		}
		if withIdx == 0 {
			return cmd, msgerr.Newf("What do you want to evaluate? Give an expression before WITH")
		}
		cmd.Argument = strings.Join(args[:withIdx], " ")

		if withIdx < len(args) {
			bindings, err := ParseBindings(strings.Join(args[withIdx+1:], " "))
			if err != nil {
				return cmd, err
			}
			cmd.Bindings = bindings
		}
	case "HELP":
		if len(args) > 0 {
			topic := strings.ToUpper(args[0])
			if alias, ok := VerbAliases[topic]; ok {
				topic = alias
			}
			if !isVerb(topic) {
				return cmd, msgerr.Newf("There is no command called %q", args[0])
			}
			cmd.Argument = topic
		}
	default:
		if len(args) > 0 {
			errMsg := "%s does not take anything after it; type %s by itself"
			return cmd, msgerr.Newf(errMsg, casedTokens[0], casedTokens[0])
		}
	}

	return cmd, nil
}

// ParseBindings parses variable values such as those in the WITH clause
// "a=2, b=frac{1/2}". Values are separated by spaces, optionally after a
// comma, so that a comma within a value is read as a decimal separator.
func ParseBindings(clause string) (syntax.Bindings, error) {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return nil, msgerr.Newf("Give at least one variable value after WITH, such as WITH a=2")
	}

	clause = spacedEquals.ReplaceAllString(clause, "=")

	bindings := syntax.Bindings{}
	for _, part := range strings.Fields(clause) {
		part = strings.TrimSuffix(part, ",")
		m := bindingPattern.FindStringSubmatch(part)
		if m == nil {
			return nil, msgerr.Newf("%q is not a variable value; write it like a=2", part)
		}
		v, err := value.Parse(m[2])
		if err != nil {
			return nil, msgerr.Wrapf(err, "%q is not a value for %s", m[2], m[1])
		}
		if !value.Numeric(v) {
			return nil, msgerr.Newf("%s can only be given a number, not %s", m[1], m[2])
		}
		if _, dup := bindings[m[1]]; dup {
			return nil, msgerr.Newf("%s is given a value more than once", m[1])
		}
		bindings[m[1]] = v
	}
	return bindings, nil
}

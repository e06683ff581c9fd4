package cmd

import (
	"fmt"
	"io"
	"strings"
)

// Args is the parsed invocation, echoed to stdout before a command runs.
type Args struct {
	Command string
	Schema  string
	Input   string
	Model   string
	Type    string
	Format  string
	ByAlias bool
	Output  string
	Fields  []string
}

// String renders the fields the invoked command accepts, in flag order,
// e.g. Args(command="generate", schema="models.go", model="Model", ...).
func (a Args) String() string {
	var parts []string
	add := func(key string, value interface{}) {
		switch v := value.(type) {
		case string:
			parts = append(parts, fmt.Sprintf("%s=%q", key, v))
		case []string:
			quoted := make([]string, len(v))
			for i, s := range v {
				quoted[i] = fmt.Sprintf("%q", s)
			}
			parts = append(parts, fmt.Sprintf("%s=[%s]", key, strings.Join(quoted, ", ")))
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", key, v))
		}
	}

	if a.Command != "" {
		add("command", a.Command)
	}
	switch a.Command {
	case "validate":
		add("schema", a.Schema)
		add("input", a.Input)
		add("model", a.Model)
	case "generate":
		add("schema", a.Schema)
		add("model", a.Model)
		add("type", a.Type)
		add("format", a.Format)
		add("by_alias", a.ByAlias)
	case "scaffold":
		add("output", a.Output)
		add("model", a.Model)
		add("fields", a.Fields)
	}

	return fmt.Sprintf("Args(%s)", strings.Join(parts, ", "))
}

// echo prints args unless quiet is set.
func echo(w io.Writer, args Args, quiet bool) {
	if quiet {
		return
	}
	fmt.Fprintln(w, args.String())
}

package cli

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/grovetools/cydantic/errors"
	"github.com/grovetools/cydantic/theme"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoiceValue(t *testing.T) {
	cmd := &cobra.Command{Use: "gen", RunE: func(*cobra.Command, []string) error { return nil }}
	format := ChoiceVarP(cmd.Flags(), "format", "f", "Output format", "json", "json", "yaml")

	assert.Equal(t, "json", format.String())
	assert.Equal(t, []string{"json", "yaml"}, format.Choices())

	require.NoError(t, cmd.Flags().Parse([]string{"-f", "yaml"}))
	assert.Equal(t, "yaml", format.String())

	err := cmd.Flags().Parse([]string{"--format", "xml"})
	require.Error(t, err)
	assert.Equal(t, `invalid argument "xml" for "-f, --format" flag: must be one of json, yaml`, err.Error())
	assert.Equal(t, "yaml", format.String())
}

func TestGetOptions(t *testing.T) {
	cmd := NewStandardCommand("cydantic", "test")
	require.NoError(t, cmd.ParseFlags([]string{"-v", "--json", "-q", "-c", "/tmp/c.yml"}))

	assert.Equal(t, CommandOptions{
		ConfigFile: "/tmp/c.yml",
		Verbose:    true,
		JSONOutput: true,
		Quiet:      true,
	}, GetOptions(cmd))
}

func TestConfigureLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := ConfigureLogger(logrus.New(),
		WithOutput(&buf),
		WithLevel(logrus.DebugLevel),
		WithFormatter(&logrus.JSONFormatter{}),
	)
	logger.Debug("hello")

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestErrorHandler(t *testing.T) {
	buildFailure := errors.ModuleLoadFailed("/m/schema.go",
		errors.CommandFailed("go build", fmt.Errorf("exit status 1")).
			WithDetail("output", "schema.go:3:1: syntax error"))

	tests := []struct {
		name    string
		err     error
		verbose bool
		want    []string
		notWant []string
	}{
		{
			name: "model not found",
			err:  errors.ModelNotFound("Person", "__load_module__"),
			want: []string{
				"Error:",
				"module '__load_module__' has no attribute 'Person'",
				"-m/--model",
			},
			notWant: []string{"MODEL_NOT_FOUND", "Error details"},
		},
		{
			name: "build failure shows compiler output",
			err:  buildFailure,
			want: []string{
				"failed to execute module: /m/schema.go: command failed: go build: exit status 1",
				"syntax error",
			},
		},
		{
			name: "missing toolchain",
			err:  errors.ModuleLoadFailed("/m/schema.go", errors.CommandNotFound("go", fmt.Errorf("not found"))),
			want: []string{"CYDANTIC_GO"},
		},
		{
			name: "toolchain mismatch",
			err: errors.ModuleLoadFailed("/m/schema.go", fmt.Errorf("go toolchain go1.21.6 cannot build plugins")).
				WithDetail("hostVersion", "go1.24.4"),
			want: []string{"CYDANTIC_GO at a go1.24.4 go binary"},
		},
		{
			name: "output exists",
			err:  errors.OutputExists("person.go"),
			want: []string{"person.go already exists", "--force"},
		},
		{
			name: "bad scaffold field",
			err:  errors.ScaffoldInvalid(`invalid field "bad": expected name:type[:alias]`, nil),
			want: []string{"name[?]:type[:alias]", "duration", "[]string"},
		},
		{
			name:    "verbose adds details",
			err:     errors.ModuleNotFound("missing.go"),
			verbose: true,
			want:    []string{"failed to load module from path: missing.go", "Error details", `"code": "MODULE_NOT_FOUND"`},
		},
		{
			name: "plain error",
			err:  fmt.Errorf("boom"),
			want: []string{"Error: boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &ErrorHandler{Verbose: tt.verbose, Out: &buf}

			assert.Equal(t, tt.err, h.Handle(tt.err))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, buf.String(), nw)
			}
		})
	}
}

func TestErrorHandlerNil(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, (&ErrorHandler{Out: &buf}).Handle(nil))
	assert.Empty(t, buf.String())
}

func TestStyledHelpWritesToCommandOutput(t *testing.T) {
	root := NewStandardCommand("cydantic", "Print a model's JSON Schema")
	gen := &cobra.Command{
		Use:     "generate",
		Short:   "Export a model's JSON Schema",
		Example: "# YAML output\ncydantic generate -s models.go -f yaml",
		RunE:    func(*cobra.Command, []string) error { return nil },
	}
	ChoiceVarP(gen.Flags(), "format", "f", "Output format", "json", "json", "yaml")
	root.AddCommand(gen)
	ApplyStyledHelpRecursive(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"generate", "--help"})
	require.NoError(t, root.Execute())

	help := out.String()
	assert.Contains(t, help, "CYDANTIC GENERATE")
	assert.Contains(t, help, "FLAGS")
	assert.Contains(t, help, "--format")
	assert.Contains(t, help, "(default: json)")
	assert.Contains(t, help, "• yaml")
	assert.Contains(t, help, "EXAMPLES")
	assert.Contains(t, help, "Global flags:")
	assert.Contains(t, help, "-q/--quiet")
}

func TestFlagChoices(t *testing.T) {
	fs := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	ChoiceVarP(fs, "format", "f", "Output format", "json", "json", "yaml")
	ChoiceVarP(fs, "type", "t", "Schema type", "json", "json")
	fs.Bool("by-alias", true, "Use field aliases: on by default")

	tests := []struct {
		flag        string
		wantUsage   string
		wantChoices []string
	}{
		{flag: "format", wantUsage: "Output format:", wantChoices: []string{"json", "yaml"}},
		{flag: "type", wantUsage: "Schema type:", wantChoices: []string{"json"}},
		{flag: "by-alias", wantUsage: "Use field aliases: on by default"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			usage, choices := flagChoices(fs.Lookup(tt.flag))
			assert.Equal(t, tt.wantUsage, usage)
			assert.Equal(t, tt.wantChoices, choices)
		})
	}
}

func TestHelpExtrasFollowExamples(t *testing.T) {
	root := NewStandardCommand("cydantic", "Print a model's JSON Schema")
	gen := &cobra.Command{
		Use:  "generate",
		Long: "Export a model.\n\nExamples:\ncydantic generate -s models.go",
		RunE: func(*cobra.Command, []string) error { return nil },
	}
	root.AddCommand(gen)
	ApplyStyledHelpRecursive(root)
	SetStyledHelpWithExtras(gen, func(w io.Writer, t *theme.Theme) {
		fmt.Fprintln(w, "\n SCHEMA MODULES")
	})

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"generate", "--help"})
	require.NoError(t, root.Execute())

	help := out.String()
	assert.Less(t, strings.Index(help, "EXAMPLES"), strings.Index(help, "SCHEMA MODULES"))
	assert.NotContains(t, help, "Examples:")
	assert.Contains(t, help, "Export a model.")
}

func TestWrapText(t *testing.T) {
	wrapped := wrapText(strings.Repeat("word ", 20), 30)
	for _, line := range strings.Split(wrapped, "\n") {
		assert.LessOrEqual(t, len(line), 30)
	}
}

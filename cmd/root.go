package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/grovetools/cydantic/cli"
	"github.com/grovetools/cydantic/config"
	"github.com/grovetools/cydantic/loader"
	"github.com/grovetools/cydantic/model"
	"github.com/grovetools/cydantic/pkg/profiling"
	"github.com/grovetools/cydantic/theme"
	"github.com/grovetools/cydantic/version"
	"github.com/spf13/cobra"
)

// app carries what the subcommands of one invocation share.
type app struct {
	loader *loader.Loader
	stdin  io.Reader
	cfg    *config.Config
	prof   *profiling.CobraProfiler
}

// NewRootCmd builds the cydantic command tree with the default module executors.
func NewRootCmd() *cobra.Command {
	return newRootCmd(loader.NewDefault(), os.Stdin)
}

func newRootCmd(l *loader.Loader, stdin io.Reader) *cobra.Command {
	a := &app{loader: l, stdin: stdin, prof: profiling.NewCobraProfiler()}

	root := cli.NewStandardCommand(
		"cydantic",
		"Print the JSON Schema of a model defined in a schema module",
	)
	root.Long = `Loads a schema module (a Go source file, a Go plugin or a WebAssembly
guest), looks up a model by name and prints its JSON Schema.

Examples:
# Print the schema of the Person model as JSON
cydantic generate -s models.go -m Person

# Same schema as YAML
cydantic generate -s models.go -m Person -f yaml

# Check a document against the model
cydantic validate -s models.go -m Person -i person.yaml`
	root.Args = cobra.NoArgs
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.CompletionOptions.DisableDefaultCmd = true

	a.prof.AddFlags(root)
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := a.prof.PreRun(cmd, args); err != nil {
			return err
		}
		cfg, err := cli.LoadConfig(cmd)
		if err != nil {
			return err
		}
		a.cfg = cfg
		return nil
	}

	root.PersistentPostRun = a.prof.PostRun

	root.RunE = func(cmd *cobra.Command, args []string) error {
		echo(cmd.OutOrStdout(), Args{}, cli.GetOptions(cmd).Quiet)
		return cmd.Help()
	}

	cli.SetVersionTemplate(root, version.GetInfo())

	validate := newValidateCmd(a)
	generate := newGenerateCmd(a)
	root.AddCommand(
		validate,
		generate,
		newScaffoldCmd(a),
		newConfigCmd(a),
		cli.NewVersionCommand("cydantic"),
	)
	cli.ApplyStyledHelpRecursive(root)
	for _, c := range []*cobra.Command{root, generate, validate} {
		cli.SetStyledHelpWithExtras(c, a.moduleHelp)
	}

	return root
}

// exportOptions returns the schema options from the `schema` config section.
func (a *app) exportOptions() model.ExportOptions {
	opts := model.DefaultExportOptions()
	if a.cfg == nil {
		return opts
	}
	opts.ByAlias = config.Bool(a.cfg.Schema.ByAlias)
	opts.AllowAdditionalProperties = config.Bool(a.cfg.Schema.AllowAdditionalProperties)
	opts.RequiredFromJSONSchemaTags = config.Bool(a.cfg.Schema.RequiredFromJSONSchemaTags)
	opts.DoNotReference = config.Bool(a.cfg.Schema.DoNotReference)
	return opts
}

// defaults returns the `defaults` config section, with built-in values when
// no config was loaded.
func (a *app) defaults() config.DefaultsConfig {
	if a.cfg == nil {
		return config.DefaultsConfig{
			Model:  config.DefaultModel,
			Format: config.DefaultFormat,
			Type:   config.DefaultType,
		}
	}
	return a.cfg.Defaults
}

// loadModel loads the schema module at path and resolves name inside it.
// The caller closes the returned module.
func (a *app) loadModel(ctx context.Context, path, name string) (loader.Module, model.Model, error) {
	mod, err := a.load(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	defer a.timer().Start("resolve")()
	symbol, err := mod.Lookup(name)
	if err != nil {
		mod.Close()
		return nil, nil, err
	}

	m, err := model.Resolve(name, symbol)
	if err != nil {
		mod.Close()
		return nil, nil, err
	}

	return mod, m, nil
}

// load executes the schema module at path.
func (a *app) load(ctx context.Context, path string) (loader.Module, error) {
	defer a.timer().Start("load")()
	return a.loader.Load(ctx, path)
}

// moduleHelp lists the schema module extensions the loader can execute.
func (a *app) moduleHelp(w io.Writer, t *theme.Theme) {
	fmt.Fprintln(w, "\n "+t.Header.Render("SCHEMA MODULES"))
	for _, ext := range a.loader.Extensions() {
		fmt.Fprintln(w, " "+t.Accent.Render(ext))
	}
}

func (a *app) timer() *profiling.Timer {
	return a.prof.Timer()
}

package cmd

import (
	"fmt"

	"github.com/grovetools/cydantic/cli"
	"github.com/grovetools/cydantic/config"
	"github.com/grovetools/cydantic/format"
	"github.com/spf13/cobra"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		schemaPath string
		modelName  string
		byAlias    bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print the JSON Schema of a model",
		Long: `Loads the schema module, looks up the model and prints its schema.
Property names follow json tags unless --by-alias=false.

Examples:
cydantic generate -s models.go
cydantic generate -s models.wasm -m Order -f yaml`,
		Args: cobra.NoArgs,
	}

	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "Path to the schema module (.go, .so or .wasm)")
	cmd.Flags().StringVarP(&modelName, "model", "m", config.DefaultModel, "Name of the model in the schema module")
	schemaType := cli.ChoiceVarP(cmd.Flags(), "type", "t", "Schema type", config.DefaultType, config.DefaultType)
	outputFormat := cli.ChoiceVarP(cmd.Flags(), "format", "f", "Output format", config.DefaultFormat, format.Formats()...)
	cmd.Flags().BoolVar(&byAlias, "by-alias", true, "Name properties after json tags")
	_ = cmd.MarkFlagRequired("schema")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		defaults := a.defaults()
		opts := a.exportOptions()

		if !cmd.Flags().Changed("model") && defaults.Model != "" {
			modelName = defaults.Model
		}
		formatName := outputFormat.String()
		if !cmd.Flags().Changed("format") && defaults.Format != "" {
			formatName = defaults.Format
		}
		typeName := schemaType.String()
		if !cmd.Flags().Changed("type") && defaults.Type != "" {
			typeName = defaults.Type
		}
		if cmd.Flags().Changed("by-alias") {
			opts.ByAlias = byAlias
		}

		echo(cmd.OutOrStdout(), Args{
			Command: "generate",
			Schema:  schemaPath,
			Model:   modelName,
			Type:    typeName,
			Format:  formatName,
			ByAlias: opts.ByAlias,
		}, cli.GetOptions(cmd).Quiet)

		logger := cli.GetLogger(cmd)

		mod, m, err := a.loadModel(cmd.Context(), schemaPath, modelName)
		if err != nil {
			return err
		}
		defer mod.Close()

		stopExport := a.timer().Start("export")
		doc, err := m.JSONSchema(opts)
		stopExport()
		if err != nil {
			return err
		}

		stopFormat := a.timer().Start("format")
		text, err := format.Render(doc, format.Format(formatName))
		stopFormat()
		if err != nil {
			return err
		}

		logger.WithField("model", modelName).WithField("format", formatName).Debug("schema exported")
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}

	return cmd
}

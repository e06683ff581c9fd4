package cmd

import (
	"fmt"

	"github.com/grovetools/cydantic/cli"
	"github.com/grovetools/cydantic/config"
	"github.com/grovetools/cydantic/errors"
	"github.com/grovetools/cydantic/input"
	"github.com/grovetools/cydantic/model"
	"github.com/grovetools/cydantic/schema"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		schemaPath string
		inputPath  string
		modelName  string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load a schema module and validate a document against a model",
		Long: `Loads the schema module. Without --input this only checks that the
module loads. With --input the document (JSON, JSONC, YAML or TOML; "-" for
stdin) is checked against the model's JSON Schema and, for struct models,
decoded into the model type so validate tags and Validate methods run.

Examples:
cydantic validate -s models.go
cydantic validate -s models.go -m Person -i person.yaml
cat person.json | cydantic validate -s models.go -m Person -i -`,
		Args: cobra.NoArgs,
	}

	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "Path to the schema module (.go, .so or .wasm)")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Document to validate (- for stdin)")
	cmd.Flags().StringVarP(&modelName, "model", "m", config.DefaultModel, "Name of the model in the schema module")
	_ = cmd.MarkFlagRequired("schema")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("model") {
			if def := a.defaults().Model; def != "" {
				modelName = def
			}
		}

		echo(cmd.OutOrStdout(), Args{
			Command: "validate",
			Schema:  schemaPath,
			Input:   inputPath,
			Model:   modelName,
		}, cli.GetOptions(cmd).Quiet)

		logger := cli.GetLogger(cmd).WithField("schema", schemaPath)

		if inputPath == "" {
			mod, err := a.load(cmd.Context(), schemaPath)
			if err != nil {
				return err
			}
			defer mod.Close()
			logger.Debug("schema module loaded")
			return nil
		}

		mod, m, err := a.loadModel(cmd.Context(), schemaPath, modelName)
		if err != nil {
			return err
		}
		defer mod.Close()

		opts := a.exportOptions()
		opts.ByAlias = true

		doc, err := m.JSONSchema(opts)
		if err != nil {
			return err
		}

		data, err := input.Read(inputPath, a.stdin)
		if err != nil {
			return err
		}

		stopValidate := a.timer().Start("validate")
		err = validateDocument(m, doc, data, opts)
		stopValidate()
		if err != nil {
			if schemaErr, ok := err.(*schema.Error); ok {
				return errors.ValidationFailed(inputPath, schemaErr.Violations)
			}
			return err
		}

		logger.WithField("model", modelName).Debug("document is valid")
		fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", inputPath)
		return nil
	}

	return cmd
}

// validateDocument checks data against the exported schema, then decodes it
// into the model type when the model supports decoding.
func validateDocument(m model.Model, doc, data any, opts model.ExportOptions) error {
	validator, err := schema.NewValidator(doc)
	if err != nil {
		return errors.SchemaExportFailed(m.Name(), err)
	}
	if err := validator.Validate(data); err != nil {
		return err
	}

	if decoder, ok := m.(model.Decoder); ok {
		if _, err := decoder.Decode(data, opts); err != nil {
			return err
		}
	}
	return nil
}

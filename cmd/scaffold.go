package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grovetools/cydantic/cli"
	"github.com/grovetools/cydantic/config"
	"github.com/grovetools/cydantic/errors"
	"github.com/grovetools/cydantic/scaffold"
	"github.com/spf13/cobra"
)

func newScaffoldCmd(a *app) *cobra.Command {
	var (
		outputPath string
		modelName  string
		fieldSpecs []string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "scaffold",
		Short: "Write a Go schema module for a new model",
		Long: `Writes a Go source file declaring a struct type and an exported model
variable, ready for "cydantic generate -s <file>".

Fields are given as name:type[:alias]; a trailing "?" on the name makes the
field optional. Types: string, int, float, bool, time, duration, []string.

Examples:
cydantic scaffold -o person.go -m Person --field name:string --field age?:int`,
		Args: cobra.NoArgs,
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Go source file to write")
	cmd.Flags().StringVarP(&modelName, "model", "m", config.DefaultModel, "Name of the model variable")
	cmd.Flags().StringArrayVar(&fieldSpecs, "field", nil, "Field as name:type[:alias] (repeatable)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	_ = cmd.MarkFlagRequired("output")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("model") {
			if def := a.defaults().Model; def != "" {
				modelName = def
			}
		}

		echo(cmd.OutOrStdout(), Args{
			Command: "scaffold",
			Output:  outputPath,
			Model:   modelName,
			Fields:  fieldSpecs,
		}, cli.GetOptions(cmd).Quiet)

		if filepath.Ext(outputPath) != ".go" {
			return errors.ScaffoldInvalid(fmt.Sprintf("output must be a .go file: %s", outputPath), nil)
		}
		if _, err := os.Stat(outputPath); err == nil && !force {
			return errors.OutputExists(outputPath)
		}

		fields := make([]scaffold.Field, 0, len(fieldSpecs))
		for _, spec := range fieldSpecs {
			f, err := scaffold.ParseField(spec)
			if err != nil {
				return err
			}
			fields = append(fields, f)
		}

		var buf bytes.Buffer
		if err := scaffold.Generate(&buf, scaffold.Options{Model: modelName, Fields: fields}); err != nil {
			return err
		}
		if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
			return errors.OutputWriteFailed(outputPath, err)
		}

		cli.GetLogger(cmd).WithField("output", outputPath).Debug("schema module written")
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outputPath)
		return nil
	}

	return cmd
}

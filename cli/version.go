package cli

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/cydantic/version"
	"github.com/spf13/cobra"
)

// SetVersionTemplate makes `--version` print the one-line version summary
func SetVersionTemplate(cmd *cobra.Command, info version.Info) {
	cmd.Version = info.Version
	cmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} %s\n", info.Short()))
}

// NewVersionCommand creates the standard version command. The persistent
// --json flag switches it to JSON output.
func NewVersionCommand(componentName string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: fmt.Sprintf("Print the version information of %s", componentName),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()
			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", componentName, info)
			return nil
		},
	}
	return cmd
}

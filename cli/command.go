package cli

import (
	"github.com/grovetools/cydantic/config"
	"github.com/grovetools/cydantic/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommandOptions holds the persistent options shared by every cydantic command
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
	Quiet      bool
}

// NewStandardCommand creates a new command with the standard cydantic flags
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to cydantic.yml config file")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Do not echo the parsed arguments")

	SetStyledHelp(cmd)

	return cmd
}

// GetLogger returns the CLI logger adjusted for the --verbose and --json flags
func GetLogger(cmd *cobra.Command) *logrus.Entry {
	entry := logging.NewLogger("cli")

	opts := GetOptions(cmd)
	var loggerOpts []LoggerOption
	if opts.Verbose {
		loggerOpts = append(loggerOpts, WithLevel(logrus.DebugLevel))
	}
	if opts.JSONOutput {
		loggerOpts = append(loggerOpts, WithFormatter(&logrus.JSONFormatter{}))
	}
	ConfigureLogger(entry.Logger, loggerOpts...)

	return entry
}

// GetOptions extracts common options from a command
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quiet, _ := cmd.Flags().GetBool("quiet")

	return CommandOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
		JSONOutput: jsonOutput,
		Quiet:      quiet,
	}
}

// LoadConfig loads the configuration selected by --config, or the layered
// global/project configuration when the flag is empty. Loggers created
// afterwards read their settings from the returned config.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	opts := GetOptions(cmd)

	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigFile != "" {
		cfg, err = config.Load(opts.ConfigFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	logging.UseConfig(cfg)
	return cfg, nil
}

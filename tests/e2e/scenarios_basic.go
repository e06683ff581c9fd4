package main

import (
	"github.com/grovetools/tend/pkg/assert"
	"github.com/grovetools/tend/pkg/command"
	"github.com/grovetools/tend/pkg/harness"
)

// VersionScenario tests the 'version' command.
func VersionScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "cydantic-basic-version",
		Tags: []string{"cydantic", "basic"},
		Steps: []harness.Step{
			harness.NewStep("Run 'cydantic version'", func(ctx *harness.Context) error {
				bin, err := findCydanticBinary()
				if err != nil {
					return err
				}

				cmd := command.New(bin, "version")
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(0, result.ExitCode, "cydantic version should exit successfully"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "Version:", "Output should contain Version"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, "Go Version:", "Output should contain the Go version plugins must match")
			}),
		},
	}
}

// HelpScenario checks that `generate --help` lists the format choices and
// the schema module extensions.
func HelpScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "cydantic-basic-help",
		Tags: []string{"cydantic", "basic"},
		Steps: []harness.Step{
			harness.NewStep("Run 'cydantic generate --help'", func(ctx *harness.Context) error {
				bin, err := findCydanticBinary()
				if err != nil {
					return err
				}

				cmd := command.New(bin, "generate", "--help")
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(0, result.ExitCode, "help should exit successfully"); err != nil {
					return err
				}
				for _, want := range []string{"CYDANTIC GENERATE", "--format", "• yaml", "SCHEMA MODULES", ".wasm"} {
					if err := assert.Contains(result.Stdout, want, "help should mention "+want); err != nil {
						return err
					}
				}
				return nil
			}),
		},
	}
}

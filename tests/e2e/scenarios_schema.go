package main

import (
	"fmt"
	"path/filepath"

	"github.com/grovetools/tend/pkg/assert"
	"github.com/grovetools/tend/pkg/fs"
	"github.com/grovetools/tend/pkg/harness"
)

// SchemaRoundTripScenario scaffolds a Go schema module, exports it as JSON
// and YAML, and validates documents against it.
func SchemaRoundTripScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "cydantic-schema-round-trip",
		Description: "Scaffolds a module, generates its schema in both formats and validates documents.",
		Tags:        []string{"cydantic", "schema"},
		Steps: []harness.Step{
			harness.NewStep("Scaffold the Person module", scaffoldPerson),
			harness.NewStep("Generate JSON Schema", func(ctx *harness.Context) error {
				cmd := ctx.Command(ctx.GetString("bin"), "generate", "-q", "-s", ctx.GetString("module"), "-m", "Person").
					Dir(ctx.GetString("project"))
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
				if result.Error != nil {
					return fmt.Errorf("`cydantic generate` failed: %w", result.Error)
				}

				if err := assert.Contains(result.Stdout, `"title": "Person"`, "schema should be titled after the model"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, `"required": [`, "name is required"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, `"name"`, "name property should be present")
			}),
			harness.NewStep("Generate YAML", func(ctx *harness.Context) error {
				out := filepath.Join(ctx.GetString("project"), "person.yaml")
				cmd := ctx.Command(ctx.GetString("bin"), "generate", "-q", "-s", ctx.GetString("module"), "-m", "Person", "-f", "yaml").
					Dir(ctx.GetString("project"))
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
				if result.Error != nil {
					return fmt.Errorf("`cydantic generate -f yaml` failed: %w", result.Error)
				}
				if err := fs.WriteString(out, result.Stdout); err != nil {
					return err
				}

				if err := assert.Contains(result.Stdout, "title: Person", "YAML should carry the title"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, "type: object", "YAML should describe an object")
			}),
			harness.NewStep("Validate a conforming document", func(ctx *harness.Context) error {
				doc := filepath.Join(ctx.GetString("project"), "ada.json")
				if err := fs.WriteString(doc, `{"name": "Ada", "age": 36}`); err != nil {
					return err
				}

				cmd := ctx.Command(ctx.GetString("bin"), "validate", "-q", "-s", ctx.GetString("module"), "-m", "Person", "-i", doc).
					Dir(ctx.GetString("project"))
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(0, result.ExitCode, "a conforming document should validate"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, doc+": valid", "validate should report the document")
			}),
			harness.NewStep("Reject a non-conforming document", func(ctx *harness.Context) error {
				doc := filepath.Join(ctx.GetString("project"), "nameless.json")
				if err := fs.WriteString(doc, `{"age": "old"}`); err != nil {
					return err
				}

				cmd := ctx.Command(ctx.GetString("bin"), "validate", "-q", "-s", ctx.GetString("module"), "-m", "Person", "-i", doc).
					Dir(ctx.GetString("project"))
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(1, result.ExitCode, "validation failures exit 1"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stderr, "does not conform to the model", "stderr should name the failure"); err != nil {
					return err
				}
				return assert.Contains(result.Stderr, "name", "the missing required field should be listed")
			}),
		},
	}
}

// MissingSchemaScenario points generate at a path that does not exist.
func MissingSchemaScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "cydantic-schema-missing-path",
		Tags: []string{"cydantic", "schema", "errors"},
		Steps: []harness.Step{
			harness.NewStep("Generate from a missing module", func(ctx *harness.Context) error {
				bin, err := findCydanticBinary()
				if err != nil {
					return err
				}
				dir := ctx.NewDir("empty")

				cmd := ctx.Command(bin, "generate", "-q", "-s", "non_existent_file.go").Dir(dir)
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(1, result.ExitCode, "a missing module should exit 1"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stderr, "failed to load module from path: non_existent_file.go", "stderr should name the path"); err != nil {
					return err
				}
				return assert.Equal("", result.Stdout, "nothing should be printed on stdout")
			}),
		},
	}
}

// UnknownModelScenario asks a real module for a model it does not declare.
func UnknownModelScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "cydantic-schema-unknown-model",
		Tags: []string{"cydantic", "schema", "errors"},
		Steps: []harness.Step{
			harness.NewStep("Scaffold the Person module", scaffoldPerson),
			harness.NewStep("Generate with -m NonExistent", func(ctx *harness.Context) error {
				cmd := ctx.Command(ctx.GetString("bin"), "generate", "-q", "-s", ctx.GetString("module"), "-m", "NonExistent").
					Dir(ctx.GetString("project"))
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(1, result.ExitCode, "an unknown model should exit 1"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stderr, "has no attribute 'NonExistent'", "stderr should name the model"); err != nil {
					return err
				}
				return assert.Contains(result.Stderr, "-m/--model", "stderr should hint at the model flag")
			}),
		},
	}
}

// ScaffoldOverwriteScenario checks that scaffold keeps existing files unless
// --force is given.
func ScaffoldOverwriteScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "cydantic-scaffold-overwrite",
		Tags: []string{"cydantic", "scaffold"},
		Steps: []harness.Step{
			harness.NewStep("Scaffold the Person module", scaffoldPerson),
			harness.NewStep("Refuse to overwrite", func(ctx *harness.Context) error {
				cmd := ctx.Command(ctx.GetString("bin"), "scaffold", "-q", "-o", ctx.GetString("module"), "-m", "Order").
					Dir(ctx.GetString("project"))
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(1, result.ExitCode, "scaffold should not overwrite"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stderr, "--force", "stderr should hint at --force"); err != nil {
					return err
				}
				src, err := fs.ReadString(ctx.GetString("module"))
				if err != nil {
					return err
				}
				return assert.Contains(src, "var Person = PersonSchema{}", "the original module should be untouched")
			}),
			harness.NewStep("Overwrite with --force", func(ctx *harness.Context) error {
				cmd := ctx.Command(ctx.GetString("bin"), "scaffold", "-q", "--force", "-o", ctx.GetString("module"), "-m", "Order").
					Dir(ctx.GetString("project"))
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
				if result.Error != nil {
					return fmt.Errorf("`cydantic scaffold --force` failed: %w", result.Error)
				}
				src, err := fs.ReadString(ctx.GetString("module"))
				if err != nil {
					return err
				}
				return assert.Contains(src, "var Order = OrderSchema{}", "the module should be regenerated")
			}),
		},
	}
}

package main

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/grovetools/tend/pkg/harness"
)

// findCydanticBinary finds the cydantic binary under test.
// It relies on PATH including the directory `go build -o` wrote it to.
func findCydanticBinary() (string, error) {
	path, err := exec.LookPath("cydantic")
	if err != nil {
		return "", fmt.Errorf("could not find 'cydantic' binary in PATH. Build ./cmd/cydantic first")
	}
	return path, nil
}

// scaffoldPerson writes a Person schema module into a fresh project
// directory and records both paths on the context.
func scaffoldPerson(ctx *harness.Context) error {
	bin, err := findCydanticBinary()
	if err != nil {
		return err
	}
	projectDir := ctx.NewDir("schemas")
	module := filepath.Join(projectDir, "person.go")

	cmd := ctx.Command(bin, "scaffold", "-q", "-o", module, "-m", "Person",
		"--field", "name:string", "--field", "age?:int").Dir(projectDir)
	result := cmd.Run()
	ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
	if result.Error != nil {
		return fmt.Errorf("`cydantic scaffold` failed: %w", result.Error)
	}

	ctx.Set("bin", bin)
	ctx.Set("project", projectDir)
	ctx.Set("module", module)
	return nil
}

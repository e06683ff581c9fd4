package errors

import (
	"fmt"
	"os/exec"
	"strings"
)

// ModuleNotFound creates an error for a schema path that does not resolve to a file
func ModuleNotFound(path string) *CydanticError {
	return New(ErrCodeModuleNotFound, fmt.Sprintf("failed to load module from path: %s", path)).
		WithDetail("path", path)
}

// NoExecutor creates an error for a schema module nothing knows how to run
func NoExecutor(path, ext string) *CydanticError {
	return New(ErrCodeNoExecutor, fmt.Sprintf("no executor for module: %s", path)).
		WithDetail("path", path).
		WithDetail("extension", ext)
}

// ModuleLoadFailed wraps a failure raised while executing a schema module
func ModuleLoadFailed(path string, err error) *CydanticError {
	return Wrap(err, ErrCodeModuleLoadFailed, fmt.Sprintf("failed to execute module: %s", path)).
		WithDetail("path", path)
}

// ModelNotFound creates an error for a model name missing from a loaded module
func ModelNotFound(model, path string) *CydanticError {
	return New(ErrCodeModelNotFound, fmt.Sprintf("module '%s' has no attribute '%s'", path, model)).
		WithDetail("model", model).
		WithDetail("path", path)
}

// ModelNotExportable creates an error for a symbol that cannot produce a JSON Schema
func ModelNotExportable(model, goType string) *CydanticError {
	return New(ErrCodeModelNotExportable,
		fmt.Sprintf("'%s' (%s) is not a schema-exportable model", model, goType)).
		WithDetail("model", model).
		WithDetail("type", goType)
}

// SchemaExportFailed wraps a failure returned by a model's schema export
func SchemaExportFailed(model string, err error) *CydanticError {
	return Wrap(err, ErrCodeSchemaExport, fmt.Sprintf("failed to export schema for '%s'", model)).
		WithDetail("model", model)
}

// UnsupportedFormat creates an error for an unknown output format token
func UnsupportedFormat(format string, supported []string) *CydanticError {
	return New(ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported format '%s'", format)).
		WithDetail("format", format).
		WithDetail("supported", strings.Join(supported, ", "))
}

// InputInvalid wraps a failure to read or decode an input document
func InputInvalid(path string, err error) *CydanticError {
	return Wrap(err, ErrCodeInputInvalid, fmt.Sprintf("failed to read input document: %s", path)).
		WithDetail("input", path)
}

// ValidationFailed creates an error listing every violation found in an input document
func ValidationFailed(input string, violations []string) *CydanticError {
	return New(ErrCodeValidationFailed,
		fmt.Sprintf("%s does not conform to the model:\n%s", input, strings.Join(violations, "\n"))).
		WithDetail("input", input).
		WithDetail("violations", violations)
}

// ScaffoldInvalid creates an error for a model or field the scaffolder rejects
func ScaffoldInvalid(reason string, err error) *CydanticError {
	if err == nil {
		return New(ErrCodeScaffoldInvalid, reason)
	}
	return Wrap(err, ErrCodeScaffoldInvalid, reason)
}

// OutputExists creates an error for an output file that would be overwritten
func OutputExists(path string) *CydanticError {
	return New(ErrCodeOutputExists, fmt.Sprintf("%s already exists", path)).
		WithDetail("path", path)
}

// OutputWriteFailed wraps a failure to write a generated file
func OutputWriteFailed(path string, err error) *CydanticError {
	return Wrap(err, ErrCodeOutputWriteFailed, fmt.Sprintf("failed to write %s", path)).
		WithDetail("path", path)
}

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *CydanticError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// CommandNotFound creates an error for a missing external tool
func CommandNotFound(name string, err error) *CydanticError {
	return Wrap(err, ErrCodeCommandNotFound, fmt.Sprintf("command not found: %s", name)).
		WithDetail("command", name)
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *CydanticError {
	cydErr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		cydErr = cydErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return cydErr
}

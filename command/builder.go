package command

import (
	"context"
	stderrors "errors"
	"fmt"
	"go/token"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/grovetools/cydantic/errors"
)

const (
	// DefaultTimeout bounds a schema module build
	DefaultTimeout = 2 * time.Minute

	// MaxTimeout is the maximum allowed timeout
	MaxTimeout = 10 * time.Minute
)

// SafeBuilder builds validated toolchain invocations
type SafeBuilder struct {
	defaultTimeout time.Duration
	validators     map[string]func(string) error
	executor       Executor
}

// NewSafeBuilder creates a new SafeBuilder instance with a RealExecutor
func NewSafeBuilder() *SafeBuilder {
	return NewSafeBuilderWithExecutor(&RealExecutor{})
}

// NewSafeBuilderWithExecutor creates a new SafeBuilder with a custom Executor
func NewSafeBuilderWithExecutor(exec Executor) *SafeBuilder {
	return &SafeBuilder{
		defaultTimeout: DefaultTimeout,
		validators:     makeDefaultValidators(),
		executor:       exec,
	}
}

func makeDefaultValidators() map[string]func(string) error {
	return map[string]func(string) error{
		"goSource":   validateGoSource,
		"outputPath": validateOutputPath,
		"modelName":  validateModelName,
	}
}

// validateGoSource accepts a single .go file path without shell metacharacters
func validateGoSource(path string) error {
	if path == "" {
		return fmt.Errorf("source path cannot be empty")
	}
	if filepath.Ext(path) != ".go" {
		return fmt.Errorf("source path must name a .go file: %s", path)
	}
	if strings.ContainsAny(path, ";|&$`\n") {
		return fmt.Errorf("source path contains invalid characters")
	}
	return nil
}

// validateOutputPath requires an absolute build output location
func validateOutputPath(path string) error {
	if path == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("output path must be absolute: %s", path)
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("output path cannot contain '..'")
	}
	if strings.ContainsAny(path, ";|&$`\n") {
		return fmt.Errorf("output path contains invalid characters")
	}
	return nil
}

// validateModelName requires an exported Go identifier
func validateModelName(name string) error {
	if name == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if !token.IsIdentifier(name) {
		return fmt.Errorf("invalid model name: %s (must be a Go identifier)", name)
	}
	if !token.IsExported(name) {
		return fmt.Errorf("invalid model name: %s (must be exported)", name)
	}
	return nil
}

// Command represents a safe command configuration
type Command struct {
	ctx      context.Context
	cancel   context.CancelFunc
	name     string
	args     []string
	dir      string
	env      []string
	timeout  time.Duration
	executor Executor
}

// Build creates a new command bounded by the default timeout
func (sb *SafeBuilder) Build(ctx context.Context, name string, args ...string) (*Command, error) {
	if name == "" {
		return nil, fmt.Errorf("command name cannot be empty")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, sb.defaultTimeout)

	return &Command{
		ctx:      timeoutCtx,
		cancel:   cancel,
		name:     name,
		args:     args,
		timeout:  sb.defaultTimeout,
		executor: sb.executor,
	}, nil
}

// Validate validates specific arguments
func (sb *SafeBuilder) Validate(argType string, value string) error {
	validator, exists := sb.validators[argType]
	if !exists {
		return fmt.Errorf("no validator for argument type: %s", argType)
	}

	return validator(value)
}

// WithTimeout replaces the command deadline, capped at MaxTimeout
func (c *Command) WithTimeout(timeout time.Duration) *Command {
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}

	c.cancel()
	c.ctx, c.cancel = context.WithTimeout(context.Background(), timeout)
	c.timeout = timeout
	return c
}

// InDir sets the working directory
func (c *Command) InDir(dir string) *Command {
	c.dir = dir
	return c
}

// WithEnv appends KEY=VALUE pairs to the inherited environment
func (c *Command) WithEnv(env ...string) *Command {
	c.env = append(c.env, env...)
	return c
}

// String renders the command line for logs
func (c *Command) String() string {
	return strings.TrimSpace(c.name + " " + strings.Join(c.args, " "))
}

// Exec creates and returns an exec.Cmd
func (c *Command) Exec() *exec.Cmd {
	cmd := c.executor.CommandContext(c.ctx, c.name, c.args...) //nolint:gosec // SafeBuilder provides validation
	cmd.Dir = c.dir
	if len(c.env) > 0 {
		cmd.Env = append(cmd.Environ(), c.env...)
	}
	return cmd
}

// Run executes the command and returns its combined output. The command's
// context is released once it finishes.
func (c *Command) Run() ([]byte, error) {
	defer c.cancel()

	out, err := c.Exec().CombinedOutput()
	if err == nil {
		return out, nil
	}

	if stderrors.Is(err, exec.ErrNotFound) {
		return out, errors.CommandNotFound(c.name, err)
	}
	if stderrors.Is(c.ctx.Err(), context.DeadlineExceeded) {
		return out, errors.CommandFailed(c.String(), fmt.Errorf("timed out after %s", c.timeout))
	}
	return out, errors.CommandFailed(c.String(), err).
		WithDetail("output", strings.TrimSpace(string(out)))
}

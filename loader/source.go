package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/grovetools/cydantic/command"
	"github.com/grovetools/cydantic/errors"
	"github.com/grovetools/cydantic/logging"
)

// SourceExecutor compiles a single Go source file into a plugin and opens it.
// The build runs in the source directory so the file resolves imports through
// its own go.mod.
//
// A plugin only opens in a process built by the same Go release, so the
// build pins GOTOOLCHAIN to the host's version and the toolchain is checked
// before anything is compiled.
type SourceExecutor struct {
	builder     *command.SafeBuilder
	plugins     *PluginExecutor
	goBin       string
	hostVersion string
}

// NewSourceExecutor returns an executor for .go modules. A nil builder uses
// the real go toolchain.
func NewSourceExecutor(builder *command.SafeBuilder) *SourceExecutor {
	if builder == nil {
		builder = command.NewSafeBuilder()
	}
	goBin := os.Getenv("CYDANTIC_GO")
	if goBin == "" {
		goBin = "go"
	}
	return &SourceExecutor{
		builder:     builder,
		plugins:     NewPluginExecutor(),
		goBin:       goBin,
		hostVersion: runtime.Version(),
	}
}

// Exec builds spec.Path into a temporary plugin. The build output is removed
// when the returned module is closed.
func (e *SourceExecutor) Exec(ctx context.Context, spec Spec) (Module, error) {
	logger := logging.NewLogger("loader")

	if err := e.builder.Validate("goSource", spec.Path); err != nil {
		return nil, err
	}

	if err := e.checkToolchain(ctx, spec); err != nil {
		return nil, err
	}

	workDir, err := os.MkdirTemp("", "cydantic-build-")
	if err != nil {
		return nil, fmt.Errorf("failed to create build directory: %w", err)
	}
	cleanup := func() error { return os.RemoveAll(workDir) }

	base := strings.TrimSuffix(filepath.Base(spec.Path), filepath.Ext(spec.Path))
	out := filepath.Join(workDir, base+".so")
	if err := e.builder.Validate("outputPath", out); err != nil {
		_ = cleanup()
		return nil, err
	}

	cmd, err := e.builder.Build(ctx, e.goBin, "build", "-buildmode=plugin", "-o", out, filepath.Base(spec.Path))
	if err != nil {
		_ = cleanup()
		return nil, err
	}
	cmd.InDir(filepath.Dir(spec.Path)).WithEnv(e.env()...)

	start := time.Now()
	logger.WithField("command", cmd.String()).Debug("Building schema module")
	if _, err := cmd.Run(); err != nil {
		_ = cleanup()
		return nil, err
	}
	logger.WithField("duration", time.Since(start)).Debug("Schema module built")

	mod, err := e.plugins.Exec(ctx, Spec{Name: spec.Name, Path: out, Ext: ".so"})
	if err != nil {
		_ = cleanup()
		return nil, err
	}

	pm := mod.(*symbolModule)
	return &symbolModule{spec: spec, lookup: pm.lookup, close: cleanup}, nil
}

// env pins the toolchain for every go invocation. Development builds have
// no toolchain name to pin.
func (e *SourceExecutor) env() []string {
	env := []string{"CGO_ENABLED=1"}
	if strings.HasPrefix(e.hostVersion, "go") {
		env = append(env, "GOTOOLCHAIN="+e.hostVersion)
	}
	return env
}

// checkToolchain asks the go command which release it will build with and
// fails unless it matches the release cydantic was built with.
func (e *SourceExecutor) checkToolchain(ctx context.Context, spec Spec) error {
	cmd, err := e.builder.Build(ctx, e.goBin, "env", "GOVERSION")
	if err != nil {
		return err
	}
	cmd.InDir(filepath.Dir(spec.Path)).WithEnv(e.env()...)

	out, err := cmd.Run()
	if err != nil {
		return err
	}

	goVersion := strings.TrimSpace(string(out))
	if goVersion != e.hostVersion {
		return errors.ModuleLoadFailed(spec.Path,
			fmt.Errorf("go toolchain %s cannot build plugins for cydantic built with %s", goVersion, e.hostVersion)).
			WithDetail("hostVersion", e.hostVersion).
			WithDetail("toolchainVersion", goVersion)
	}
	return nil
}

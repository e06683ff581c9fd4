package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/grovetools/cydantic/command"
	"github.com/grovetools/cydantic/errors"
	"github.com/grovetools/cydantic/model"
	"github.com/grovetools/cydantic/scaffold"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name string `json:"name"`
}

func touch(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("stub"), 0o644))
	return path
}

func TestFindSpec(t *testing.T) {
	path := touch(t, "Schema.FAKE")

	spec, err := FindSpec(path)
	require.NoError(t, err)
	assert.Equal(t, ModuleName, spec.Name)
	assert.Equal(t, ".fake", spec.Ext)
	assert.True(t, filepath.IsAbs(spec.Path))

	_, err = FindSpec(filepath.Join(t.TempDir(), "missing.so"))
	assert.True(t, errors.Is(err, errors.ErrCodeModuleNotFound))

	_, err = FindSpec(t.TempDir())
	assert.True(t, errors.Is(err, errors.ErrCodeModuleNotFound), "directories are not modules")
}

func TestLoaderLoad(t *testing.T) {
	l := New()
	l.Register(".fake", StaticExecutor(map[string]any{"Model": person{}}))

	t.Run("dispatches on extension", func(t *testing.T) {
		path := touch(t, "schema.fake")
		mod, err := l.Load(context.Background(), path)
		require.NoError(t, err)
		defer mod.Close()

		assert.Equal(t, ModuleName, mod.Name())
		sym, err := mod.Lookup("Model")
		require.NoError(t, err)
		assert.Equal(t, person{}, sym)
	})

	t.Run("missing symbol", func(t *testing.T) {
		mod, err := l.Load(context.Background(), touch(t, "schema.fake"))
		require.NoError(t, err)

		_, err = mod.Lookup("NonExistent")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeModelNotFound))
		assert.Contains(t, err.Error(), "has no attribute 'NonExistent'")
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := l.Load(context.Background(), "non_existent_file.fake")
		require.Error(t, err)
		assert.True(t, errors.IsLoadError(err))
		assert.Contains(t, err.Error(), "failed to load module from path: non_existent_file.fake")
	})

	t.Run("unknown extension", func(t *testing.T) {
		_, err := l.Load(context.Background(), touch(t, "schema.txt"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeNoExecutor))
	})

	t.Run("executor failure", func(t *testing.T) {
		l := New()
		l.Register(".fake", ExecutorFunc(func(context.Context, Spec) (Module, error) {
			return nil, fmt.Errorf("init panicked")
		}))
		_, err := l.Load(context.Background(), touch(t, "schema.fake"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeModuleLoadFailed))
		assert.Contains(t, err.Error(), "init panicked")
	})
}

func TestDefaultExtensions(t *testing.T) {
	assert.Equal(t, []string{".go", ".so", ".wasm"}, NewDefault().Extensions())
}

func TestPluginExecutorRejectsNonPlugin(t *testing.T) {
	_, err := NewDefault().Load(context.Background(), touch(t, "schema.so"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeModuleLoadFailed))
}

// fakeGo stands in for the go toolchain by running script under sh. The
// script sees the go arguments as $1, $2, ...
func fakeGo(script string, calls *[][]string) *command.SafeBuilder {
	return command.NewSafeBuilderWithExecutor(command.ExecutorFunc(
		func(ctx context.Context, name string, args ...string) *exec.Cmd {
			*calls = append(*calls, append([]string{name}, args...))
			return exec.CommandContext(ctx, "sh", append([]string{"-c", script, name}, args...)...)
		}))
}

// goEnv answers `go env GOVERSION` with the pinned GOTOOLCHAIN, or with
// version when given, and runs rest for every other invocation.
func goEnv(version, rest string) string {
	answer := `"$GOTOOLCHAIN"`
	if version != "" {
		answer = version
	}
	return fmt.Sprintf(`if [ "$1" = env ]; then echo %s; exit 0; fi; %s`, answer, rest)
}

func TestSourceExecutor(t *testing.T) {
	src := touch(t, "schema.go")

	t.Run("build failure", func(t *testing.T) {
		var calls [][]string
		e := NewSourceExecutor(fakeGo(goEnv("", "echo 'undefined: Foo' >&2; exit 1"), &calls))
		e.goBin = "go"

		spec, err := FindSpec(src)
		require.NoError(t, err)
		_, err = e.Exec(context.Background(), spec)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeCommandFailed))

		require.Len(t, calls, 2)
		assert.Equal(t, []string{"go", "env", "GOVERSION"}, calls[0])
		assert.Equal(t, []string{"go", "build", "-buildmode=plugin", "-o"}, calls[1][:4])
		assert.Equal(t, "schema.so", filepath.Base(calls[1][4]))
		assert.Equal(t, "schema.go", calls[1][len(calls[1])-1])
	})

	t.Run("toolchain mismatch", func(t *testing.T) {
		tmp := t.TempDir()
		t.Setenv("TMPDIR", tmp)

		var calls [][]string
		e := NewSourceExecutor(fakeGo(goEnv("go1.21.6", "exit 0"), &calls))
		e.hostVersion = "go1.24.4"

		l := New()
		l.Register(".go", e)
		_, err := l.Load(context.Background(), src)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeModuleLoadFailed))
		assert.True(t, errors.IsLoadError(err))

		cydErr, ok := errors.As(err)
		require.True(t, ok)
		assert.Equal(t, "go1.24.4", cydErr.Details["hostVersion"])
		assert.Equal(t, "go1.21.6", cydErr.Details["toolchainVersion"])
		assert.Equal(t, 1, strings.Count(err.Error(), "failed to execute module"), "load errors are not wrapped twice")

		assert.Len(t, calls, 1, "nothing is built with a mismatched toolchain")
		entries, err := os.ReadDir(tmp)
		require.NoError(t, err)
		assert.Empty(t, entries, "no build directory is left behind")
	})

	t.Run("pins toolchain", func(t *testing.T) {
		e := NewSourceExecutor(nil)
		e.hostVersion = "go1.24.4"
		assert.Equal(t, []string{"CGO_ENABLED=1", "GOTOOLCHAIN=go1.24.4"}, e.env())

		e.hostVersion = "devel go1.25-abcdef"
		assert.Equal(t, []string{"CGO_ENABLED=1"}, e.env())
	})

	t.Run("rejects non-go source", func(t *testing.T) {
		var calls [][]string
		e := NewSourceExecutor(fakeGo("true", &calls))
		_, err := e.Exec(context.Background(), Spec{Name: ModuleName, Path: "/tmp/schema.txt", Ext: ".txt"})
		require.Error(t, err)
		assert.Empty(t, calls)
	})
}

func TestSourceExecutorBuildsPlugin(t *testing.T) {
	if testing.Short() {
		t.Skip("builds a Go plugin")
	}
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skipf("Go plugins are not supported on %s", runtime.GOOS)
	}
	if testing.CoverMode() != "" {
		t.Skip("a plugin must be built with the same flags as the test binary")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not on PATH")
	}
	cgo, err := exec.Command(goBin, "env", "CGO_ENABLED").Output()
	if err != nil || strings.TrimSpace(string(cgo)) != "1" {
		t.Skip("cgo is not available")
	}
	t.Setenv("CYDANTIC_GO", goBin)

	var src bytes.Buffer
	require.NoError(t, scaffold.Generate(&src, scaffold.Options{
		Model: "Person",
		Fields: []scaffold.Field{
			{Name: "name", Type: "string"},
			{Name: "age", Type: "int", Optional: true},
		},
	}))
	path := filepath.Join(t.TempDir(), "person.go")
	require.NoError(t, os.WriteFile(path, src.Bytes(), 0o644))

	mod, err := NewDefault().Load(context.Background(), path)
	require.NoError(t, err)
	defer mod.Close()

	sym, err := mod.Lookup("Person")
	require.NoError(t, err)
	m, err := model.Resolve("Person", sym)
	require.NoError(t, err)

	doc, err := m.JSONSchema(model.DefaultExportOptions())
	require.NoError(t, err)
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	var s map[string]any
	require.NoError(t, json.Unmarshal(data, &s))

	assert.Equal(t, "Person", s["title"])
	assert.Equal(t, []any{"name"}, s["required"])
	props := s["properties"].(map[string]any)
	assert.Equal(t, "string", props["name"].(map[string]any)["type"])
	assert.Equal(t, "integer", props["age"].(map[string]any)["type"])

	_, err = mod.Lookup("NonExistent")
	assert.True(t, errors.Is(err, errors.ErrCodeModelNotFound))
}

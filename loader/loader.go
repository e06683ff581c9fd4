// Package loader executes a user schema module and exposes its top-level symbols.
//
// Modules are dispatched on file extension: compiled Go plugins (.so), Go
// sources built into a plugin on the fly (.go) and WebAssembly guests (.wasm).
package loader

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/grovetools/cydantic/errors"
	"github.com/grovetools/cydantic/logging"
)

// ModuleName is the fixed name every loaded schema module is registered under.
const ModuleName = "__load_module__"

// Spec locates a schema module on disk.
type Spec struct {
	Name string
	Path string
	Ext  string
}

// Module is an executed schema module.
type Module interface {
	Name() string
	Path() string
	// Lookup returns the top-level symbol called name. A missing symbol is
	// reported as MODEL_NOT_FOUND.
	Lookup(name string) (any, error)
	// Close releases whatever executing the module allocated.
	Close() error
}

// Executor runs the module described by spec.
type Executor interface {
	Exec(ctx context.Context, spec Spec) (Module, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, spec Spec) (Module, error)

// Exec calls f.
func (f ExecutorFunc) Exec(ctx context.Context, spec Spec) (Module, error) {
	return f(ctx, spec)
}

// FindSpec resolves path to a module spec. A path that is missing or is a
// directory cannot be loaded.
func FindSpec(path string) (Spec, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Spec{}, errors.ModuleNotFound(path)
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return Spec{}, errors.ModuleNotFound(path)
	}
	return Spec{
		Name: ModuleName,
		Path: abs,
		Ext:  strings.ToLower(filepath.Ext(abs)),
	}, nil
}

// Loader maps file extensions to executors.
type Loader struct {
	mu        sync.RWMutex
	executors map[string]Executor
}

// New returns a Loader with no executors registered.
func New() *Loader {
	return &Loader{executors: make(map[string]Executor)}
}

// NewDefault returns a Loader that handles Go plugins, Go sources and
// WebAssembly modules.
func NewDefault() *Loader {
	l := New()
	l.Register(".so", NewPluginExecutor())
	l.Register(".go", NewSourceExecutor(nil))
	l.Register(".wasm", NewWasmExecutor())
	return l
}

// Register binds an executor to a file extension such as ".so".
func (l *Loader) Register(ext string, e Executor) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.executors[strings.ToLower(ext)] = e
}

// Extensions lists the registered extensions in sorted order.
func (l *Loader) Extensions() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	exts := make([]string, 0, len(l.executors))
	for ext := range l.executors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Load executes the schema module at path.
func (l *Loader) Load(ctx context.Context, path string) (Module, error) {
	logger := logging.NewLogger("loader")

	spec, err := FindSpec(path)
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	exec, ok := l.executors[spec.Ext]
	l.mu.RUnlock()
	if !ok {
		return nil, errors.NoExecutor(path, spec.Ext).
			WithDetail("supported", strings.Join(l.Extensions(), ", "))
	}

	logger.WithField("path", spec.Path).WithField("ext", spec.Ext).Debug("Executing schema module")

	mod, err := exec.Exec(ctx, spec)
	if err != nil {
		if errors.GetCode(err) == errors.ErrCodeModuleLoadFailed {
			return nil, err
		}
		return nil, errors.ModuleLoadFailed(path, err)
	}
	return mod, nil
}

package loader

import (
	"context"

	"github.com/grovetools/cydantic/errors"
)

// symbolModule backs a Module with a symbol lookup function.
type symbolModule struct {
	spec   Spec
	lookup func(name string) (any, bool)
	close  func() error
}

func (m *symbolModule) Name() string { return m.spec.Name }
func (m *symbolModule) Path() string { return m.spec.Path }

func (m *symbolModule) Lookup(name string) (any, error) {
	sym, ok := m.lookup(name)
	if !ok {
		return nil, errors.ModelNotFound(name, m.spec.Path)
	}
	return sym, nil
}

func (m *symbolModule) Close() error {
	if m.close == nil {
		return nil
	}
	return m.close()
}

// NewStaticModule exposes a fixed symbol table as a module. It backs
// in-process registrations and test executors.
func NewStaticModule(spec Spec, symbols map[string]any) Module {
	return &symbolModule{
		spec: spec,
		lookup: func(name string) (any, bool) {
			sym, ok := symbols[name]
			return sym, ok
		},
	}
}

// StaticExecutor returns an executor that serves symbols for every spec it is given.
func StaticExecutor(symbols map[string]any) Executor {
	return ExecutorFunc(func(_ context.Context, spec Spec) (Module, error) {
		return NewStaticModule(spec, symbols), nil
	})
}

package loader

import (
	"context"
	"fmt"
	"plugin"
)

// PluginExecutor opens Go plugins built with -buildmode=plugin.
// A plugin stays mapped for the life of the process; Close is a no-op.
type PluginExecutor struct {
	open func(path string) (*plugin.Plugin, error)
}

// NewPluginExecutor returns an executor for .so modules.
func NewPluginExecutor() *PluginExecutor {
	return &PluginExecutor{open: plugin.Open}
}

// Exec opens the plugin at spec.Path, which runs its package initializers.
func (e *PluginExecutor) Exec(ctx context.Context, spec Spec) (Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := e.open(spec.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plugin: %w", err)
	}
	return &symbolModule{
		spec: spec,
		lookup: func(name string) (any, bool) {
			sym, err := p.Lookup(name)
			if err != nil {
				return nil, false
			}
			return sym, true
		},
	}, nil
}

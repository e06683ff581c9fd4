package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/grovetools/cydantic/errors"
	"github.com/grovetools/cydantic/logging"
	"github.com/sirupsen/logrus"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Guest exports a WebAssembly schema module provides.
const (
	wasmAllocate   = "allocate"
	wasmModels     = "cydantic_models"
	wasmJSONSchema = "cydantic_json_schema"
	wasmInitialize = "_initialize"

	// hostModuleName is the import namespace of the functions the host offers.
	hostModuleName = "cydantic_host"
)

// WasmExecutor instantiates WebAssembly schema modules with wazero.
//
// A guest exports:
//
//	allocate(size i32) i32
//	cydantic_models() i64                 packed ptr<<32|len of a JSON array of names
//	cydantic_json_schema(ptr, len i32) i64 takes {"model","by_alias"}, returns {"schema"} or {"error"}
//
// and may import cydantic_host.log_message(packed i64) to write to the host log.
type WasmExecutor struct {
	stderr io.Writer
}

// NewWasmExecutor returns an executor for .wasm modules. Guest stderr is
// forwarded to the process stderr; guest stdout is discarded.
func NewWasmExecutor() *WasmExecutor {
	return &WasmExecutor{stderr: os.Stderr}
}

// Exec compiles and instantiates the guest, running its _initialize export.
func (e *WasmExecutor) Exec(ctx context.Context, spec Spec) (Module, error) {
	wasmBytes, err := os.ReadFile(spec.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read module: %w", err)
	}

	rt := wazero.NewRuntime(ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
	}
	if err := registerHostFunctions(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	cfg := wazero.NewModuleConfig().
		WithName(spec.Name).
		WithStartFunctions(wasmInitialize).
		WithStderr(e.stderr)
	mod, err := rt.InstantiateWithConfig(ctx, wasmBytes, cfg)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	wm := &wasmModule{spec: spec, ctx: ctx, runtime: rt, module: mod}
	models, err := wm.models()
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}
	wm.names = models
	return wm, nil
}

func registerHostFunctions(ctx context.Context, rt wazero.Runtime) error {
	logger := logging.NewLogger("wasm")

	_, err := rt.NewHostModuleBuilder(hostModuleName).
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, packed uint64) {
			ptr, length := unpack(packed)
			payload, ok := m.Memory().Read(ptr, length)
			if !ok {
				return
			}

			var msg struct {
				Level   string `json:"level"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(payload, &msg); err != nil {
				logger.WithField("payload", string(payload)).Info("Guest log (raw)")
				return
			}
			level, err := logrus.ParseLevel(msg.Level)
			if err != nil {
				level = logrus.InfoLevel
			}
			logger.Log(level, msg.Message)
		}).
		Export("log_message").
		Instantiate(ctx)
	return err
}

type wasmModule struct {
	spec    Spec
	ctx     context.Context
	runtime wazero.Runtime
	module  api.Module
	names   map[string]bool

	// guest calls share one linear memory
	mu sync.Mutex
}

func (m *wasmModule) Name() string { return m.spec.Name }
func (m *wasmModule) Path() string { return m.spec.Path }

func (m *wasmModule) Lookup(name string) (any, error) {
	if !m.names[name] {
		return nil, errors.ModelNotFound(name, m.spec.Path)
	}
	return &wasmModel{module: m, name: name}, nil
}

func (m *wasmModule) Close() error {
	return m.runtime.Close(m.ctx)
}

func (m *wasmModule) models() (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	packed, err := m.call(wasmModels, nil)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := m.unmarshalPacked(packed, &names); err != nil {
		return nil, fmt.Errorf("invalid %s response: %w", wasmModels, err)
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set, nil
}

// call invokes a guest export, copying input into guest memory first.
func (m *wasmModule) call(name string, input []byte) (uint64, error) {
	f := m.module.ExportedFunction(name)
	if f == nil {
		return 0, fmt.Errorf("export %q not found", name)
	}

	var (
		results []uint64
		err     error
	)
	if input == nil {
		results, err = f.Call(m.ctx)
	} else {
		allocate := m.module.ExportedFunction(wasmAllocate)
		if allocate == nil {
			return 0, fmt.Errorf("guest does not export '%s'", wasmAllocate)
		}
		res, allocErr := allocate.Call(m.ctx, uint64(len(input)))
		if allocErr != nil {
			return 0, fmt.Errorf("failed to allocate in guest: %w", allocErr)
		}
		if len(res) == 0 {
			return 0, fmt.Errorf("allocate returned no results")
		}
		ptr := uint32(res[0])
		if !m.module.Memory().Write(ptr, input) {
			return 0, fmt.Errorf("failed to write input to guest memory")
		}
		results, err = f.Call(m.ctx, uint64(ptr), uint64(len(input)))
	}
	if err != nil {
		return 0, fmt.Errorf("%s failed: %w", name, err)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("%s returned no results", name)
	}
	return results[0], nil
}

func (m *wasmModule) unmarshalPacked(packed uint64, v any) error {
	ptr, length := unpack(packed)
	if ptr == 0 || length == 0 {
		return fmt.Errorf("null response from guest")
	}
	data, ok := m.module.Memory().Read(ptr, length)
	if !ok {
		return fmt.Errorf("failed to read response from guest memory")
	}
	return json.Unmarshal(data, v)
}

func unpack(packed uint64) (uint32, uint32) {
	return uint32(packed >> 32), uint32(packed)
}

// wasmModel exports a schema by calling into the guest.
type wasmModel struct {
	module *wasmModule
	name   string
}

func (w *wasmModel) ModelJSONSchema(byAlias bool) (any, error) {
	req, err := json.Marshal(map[string]any{"model": w.name, "by_alias": byAlias})
	if err != nil {
		return nil, err
	}

	w.module.mu.Lock()
	defer w.module.mu.Unlock()

	packed, err := w.module.call(wasmJSONSchema, req)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Schema any    `json:"schema"`
		Error  string `json:"error"`
	}
	if err := w.module.unmarshalPacked(packed, &resp); err != nil {
		return nil, fmt.Errorf("invalid %s response: %w", wasmJSONSchema, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s", resp.Error)
	}
	return resp.Schema, nil
}

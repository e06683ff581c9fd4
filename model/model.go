// Package model resolves symbols looked up in a schema module into models
// that can export a JSON Schema.
package model

import (
	"fmt"
	"reflect"

	"github.com/grovetools/cydantic/errors"
)

// Exporter is implemented by symbols that build their own schema document.
// The returned value must be a plain JSON-compatible structure.
type Exporter interface {
	ModelJSONSchema(byAlias bool) (any, error)
}

// Model is a named, schema-exportable model.
type Model interface {
	Name() string
	JSONSchema(opts ExportOptions) (any, error)
}

// Decoder is implemented by models backed by a Go type. Decode builds a new
// instance of that type from a plain document and runs its validation rules.
type Decoder interface {
	Decode(doc any, opts ExportOptions) (any, error)
}

// ExportOptions controls schema export.
type ExportOptions struct {
	// ByAlias names properties after their json tags instead of their Go names.
	ByAlias bool
	// AllowAdditionalProperties leaves additionalProperties unset on objects.
	AllowAdditionalProperties bool
	// RequiredFromJSONSchemaTags only marks fields tagged `jsonschema:"required"` as required.
	RequiredFromJSONSchemaTags bool
	// DoNotReference inlines nested types instead of emitting $defs.
	DoNotReference bool
}

// DefaultExportOptions matches the generate command defaults.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{ByAlias: true}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Resolve turns a looked-up symbol into a Model.
func Resolve(name string, symbol any) (Model, error) {
	return resolve(name, symbol, true)
}

func resolve(name string, symbol any, allowFactory bool) (Model, error) {
	if symbol == nil {
		return nil, errors.ModelNotExportable(name, "nil")
	}
	if exp, ok := symbol.(Exporter); ok {
		return &exporterModel{name: name, exporter: exp}, nil
	}

	v := reflect.ValueOf(symbol)
	if v.Kind() == reflect.Func {
		if !allowFactory {
			return nil, errors.ModelNotExportable(name, v.Type().String())
		}
		produced, err := callFactory(name, v)
		if err != nil {
			return nil, err
		}
		return resolve(name, produced, false)
	}

	// Go plugins hand out variables as pointers; values behind interfaces
	// may also implement Exporter.
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, errors.ModelNotExportable(name, reflect.TypeOf(symbol).String())
		}
		v = v.Elem()
		if v.CanInterface() {
			if exp, ok := v.Interface().(Exporter); ok {
				return &exporterModel{name: name, exporter: exp}, nil
			}
		}
	}

	if v.Kind() != reflect.Struct {
		return nil, errors.ModelNotExportable(name, v.Type().String())
	}
	return &reflectedModel{name: name, typ: v.Type()}, nil
}

// callFactory invokes a `func() T` or `func() (T, error)` symbol.
func callFactory(name string, fn reflect.Value) (any, error) {
	t := fn.Type()
	if t.NumIn() != 0 || t.NumOut() == 0 || t.NumOut() > 2 || t.IsVariadic() {
		return nil, errors.ModelNotExportable(name, t.String())
	}
	if t.NumOut() == 2 && !t.Out(1).Implements(errorType) {
		return nil, errors.ModelNotExportable(name, t.String())
	}

	out := fn.Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, errors.SchemaExportFailed(name, out[1].Interface().(error))
	}
	return out[0].Interface(), nil
}

type exporterModel struct {
	name     string
	exporter Exporter
}

func (m *exporterModel) Name() string { return m.name }

func (m *exporterModel) JSONSchema(opts ExportOptions) (any, error) {
	doc, err := m.exporter.ModelJSONSchema(opts.ByAlias)
	if err != nil {
		return nil, errors.SchemaExportFailed(m.name, err)
	}
	if doc == nil {
		return nil, errors.SchemaExportFailed(m.name, fmt.Errorf("exporter returned no document"))
	}
	return doc, nil
}

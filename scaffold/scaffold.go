// Package scaffold writes Go schema modules that the generate command can load.
package scaffold

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"github.com/grovetools/cydantic/command"
	"github.com/grovetools/cydantic/errors"
)

// Field describes one struct field of a scaffolded model.
type Field struct {
	Name     string
	Type     string
	Alias    string
	Optional bool
}

// Options configures Generate.
type Options struct {
	Model  string
	Fields []Field
}

var fieldTypes = map[string]func() *jen.Statement{
	"string":   func() *jen.Statement { return jen.String() },
	"int":      func() *jen.Statement { return jen.Int() },
	"float":    func() *jen.Statement { return jen.Float64() },
	"bool":     func() *jen.Statement { return jen.Bool() },
	"time":     func() *jen.Statement { return jen.Qual("time", "Time") },
	"duration": func() *jen.Statement { return jen.Qual("time", "Duration") },
	"[]string": func() *jen.Statement { return jen.Index().String() },
}

// FieldTypes lists the accepted field type names.
func FieldTypes() []string {
	return []string{"string", "int", "float", "bool", "time", "duration", "[]string"}
}

// ParseField parses "name:type[:alias]". A trailing "?" on the name marks
// the field optional.
func ParseField(spec string) (Field, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Field{}, errors.ScaffoldInvalid(fmt.Sprintf("invalid field %q: expected name:type[:alias]", spec), nil)
	}

	f := Field{Name: parts[0], Type: parts[1]}
	if strings.HasSuffix(f.Name, "?") {
		f.Name = strings.TrimSuffix(f.Name, "?")
		f.Optional = true
	}
	if len(parts) == 3 {
		f.Alias = parts[2]
	}
	if f.Name == "" {
		return Field{}, errors.ScaffoldInvalid(fmt.Sprintf("invalid field %q: empty name", spec), nil)
	}
	if _, ok := fieldTypes[f.Type]; !ok {
		return Field{}, errors.ScaffoldInvalid(fmt.Sprintf("invalid field %q: unknown type %q (one of %s)",
			spec, f.Type, strings.Join(FieldTypes(), ", ")), nil)
	}
	return f, nil
}

// Generate renders a package main source file declaring <Model>Schema and
// an exported variable <Model> of that type.
func Generate(w io.Writer, opts Options) error {
	builder := command.NewSafeBuilder()
	if err := builder.Validate("modelName", opts.Model); err != nil {
		return errors.ScaffoldInvalid("invalid model", err).WithDetail("model", opts.Model)
	}

	var fields []jen.Code
	seen := make(map[string]bool)
	for _, f := range opts.Fields {
		goName := goFieldName(f.Name)
		if err := builder.Validate("modelName", goName); err != nil {
			return errors.ScaffoldInvalid(fmt.Sprintf("invalid field %q", f.Name), err)
		}
		if seen[goName] {
			return errors.ScaffoldInvalid(fmt.Sprintf("duplicate field %q", goName), nil)
		}
		seen[goName] = true

		typ, ok := fieldTypes[f.Type]
		if !ok {
			return errors.ScaffoldInvalid(fmt.Sprintf("invalid field %q: unknown type %q", f.Name, f.Type), nil)
		}

		alias := f.Alias
		if alias == "" {
			alias = snakeCase(f.Name)
		}
		jsonTag := alias
		if f.Optional {
			jsonTag += ",omitempty"
		}

		fields = append(fields, jen.Id(goName).Add(typ()).Tag(map[string]string{
			"json":     jsonTag,
			"cydantic": f.Name,
		}))
	}

	typeName := opts.Model + "Schema"

	file := jen.NewFile("main")
	file.HeaderComment("Code generated by cydantic scaffold. Edit freely.")
	file.Commentf("%s is the %s model.", typeName, opts.Model)
	file.Type().Id(typeName).Struct(fields...)
	file.Line()
	file.Commentf("%s is looked up by `cydantic generate -m %s`.", opts.Model, opts.Model)
	file.Var().Id(opts.Model).Op("=").Id(typeName).Values()
	file.Line()
	file.Func().Id("main").Params().Block()

	return file.Render(w)
}

// goFieldName turns "full_name" or "fullName" into "FullName".
func goFieldName(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if r == '_' || r == '-' || r == ' ' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// snakeCase turns "fullName" into "full_name".
func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '-' || r == ' ':
			b.WriteRune('_')
		case unicode.IsUpper(r):
			if i > 0 {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

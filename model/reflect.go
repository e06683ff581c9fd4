package model

import (
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
)

// fieldNameTag names properties when not exporting by alias. Untagged
// fields keep their Go name.
const fieldNameTag = "cydantic"

const defsPrefix = "#/$defs/"

// reflectedModel exports the schema of a plain Go struct type.
type reflectedModel struct {
	name string
	typ  reflect.Type
}

func (m *reflectedModel) Name() string { return m.name }

// Type returns the Go type backing the model.
func (m *reflectedModel) Type() reflect.Type { return m.typ }

// JSONSchema reflects the type through its json tags, so omitempty and
// json:"-" shape the schema the same way in both naming modes. Without
// ByAlias only the property names are rewritten afterwards.
func (m *reflectedModel) JSONSchema(opts ExportOptions) (any, error) {
	r := newReflector(opts)
	s := r.ReflectFromType(m.typ)
	if s.Title == "" {
		s.Title = m.name
	}
	if !opts.ByAlias {
		renameProperties(s, m.typ, s, make(map[*jsonschema.Schema]bool))
	}
	return s, nil
}

func newReflector(opts ExportOptions) *jsonschema.Reflector {
	return &jsonschema.Reflector{
		ExpandedStruct:             true,
		Anonymous:                  true,
		AllowAdditionalProperties:  opts.AllowAdditionalProperties,
		RequiredFromJSONSchemaTags: opts.RequiredFromJSONSchemaTags,
		DoNotReference:             opts.DoNotReference,
	}
}

// fieldName is the non-alias name of a struct field and the type its
// property schema describes.
type fieldName struct {
	name string
	typ  reflect.Type
}

// fieldNames maps the json name of every exported field of t to its
// cydantic tag, or Go name when untagged. Embedded structs without a json
// name and `inline` fields are flattened, as the reflector does.
func fieldNames(t reflect.Type) map[string]fieldName {
	names := make(map[string]fieldName)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		jsonTag := f.Tag.Get("json")
		jsonName := tagName(jsonTag)
		if jsonName == "-" {
			continue
		}
		if (f.Anonymous && jsonName == "") || strings.Contains(jsonTag+",", ",inline,") {
			if ft := indirect(f.Type); ft.Kind() == reflect.Struct {
				for k, v := range fieldNames(ft) {
					names[k] = v
				}
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if jsonName == "" {
			jsonName = f.Name
		}
		name := tagName(f.Tag.Get(fieldNameTag))
		if name == "" || name == "-" {
			name = f.Name
		}
		names[jsonName] = fieldName{name: name, typ: f.Type}
	}
	return names
}

// renameProperties rewrites the property names and required list of s,
// the schema reflected for t, following $defs references through root.
func renameProperties(s *jsonschema.Schema, t reflect.Type, root *jsonschema.Schema, seen map[*jsonschema.Schema]bool) {
	if s == nil {
		return
	}
	if strings.HasPrefix(s.Ref, defsPrefix) {
		s = root.Definitions[strings.TrimPrefix(s.Ref, defsPrefix)]
		if s == nil {
			return
		}
	}
	if seen[s] {
		return
	}
	seen[s] = true

	t = indirect(t)
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		renameProperties(s.Items, t.Elem(), root, seen)
	case reflect.Map:
		renameProperties(s.AdditionalProperties, t.Elem(), root, seen)
	case reflect.Struct:
		if s.Properties == nil {
			return
		}
		fields := fieldNames(t)
		props := jsonschema.NewProperties()
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			f, ok := fields[pair.Key]
			if !ok {
				props.Set(pair.Key, pair.Value)
				continue
			}
			renameProperties(pair.Value, f.typ, root, seen)
			props.Set(f.name, pair.Value)
		}
		s.Properties = props

		for i, req := range s.Required {
			if f, ok := fields[req]; ok {
				s.Required[i] = f.name
			}
		}
	}
}

func tagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	return name
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

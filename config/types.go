package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

//go:generate sh -c "cd .. && go run ./tools/schema-generator/"

// Default values applied when no layer sets them.
const (
	DefaultModel  = "Model"
	DefaultFormat = "json"
	DefaultType   = "jsonschema"
)

// Config is the merged cydantic.yml configuration.
type Config struct {
	Defaults DefaultsConfig `yaml:"defaults,omitempty" toml:"defaults,omitempty" jsonschema:"description=Default flag values for generate and validate"`
	Schema   SchemaConfig   `yaml:"schema,omitempty" toml:"schema,omitempty" jsonschema:"description=Options for schemas reflected from Go struct types"`

	// Extensions holds every other top-level section (for example logging),
	// decoded on demand with UnmarshalExtension.
	Extensions map[string]interface{} `yaml:",inline" toml:"-" jsonschema:"-"`
}

// DefaultsConfig supplies flag defaults.
type DefaultsConfig struct {
	Model  string `yaml:"model,omitempty" toml:"model,omitempty" jsonschema:"description=Name of the model looked up in the schema module"`
	Format string `yaml:"format,omitempty" toml:"format,omitempty" jsonschema:"enum=json,enum=yaml,description=Output format for generate"`
	Type   string `yaml:"type,omitempty" toml:"type,omitempty" jsonschema:"enum=jsonschema,description=Schema type for generate"`
}

// SchemaConfig tunes schema reflection. Unset values keep their defaults.
type SchemaConfig struct {
	ByAlias                    *bool `yaml:"by_alias,omitempty" toml:"by_alias,omitempty" jsonschema:"description=Name properties after json tags (default: true)"`
	AllowAdditionalProperties  *bool `yaml:"allow_additional_properties,omitempty" toml:"allow_additional_properties,omitempty" jsonschema:"description=Leave additionalProperties unset on reflected objects"`
	RequiredFromJSONSchemaTags *bool `yaml:"required_from_jsonschema_tags,omitempty" toml:"required_from_jsonschema_tags,omitempty" jsonschema:"description=Only mark fields tagged jsonschema:\"required\" as required"`
	DoNotReference             *bool `yaml:"do_not_reference,omitempty" toml:"do_not_reference,omitempty" jsonschema:"description=Inline nested types instead of emitting $defs"`
}

// knownSections are the top-level keys that are not extensions.
var knownSections = map[string]bool{
	"defaults": true,
	"schema":   true,
}

// SetDefaults fills in unset values.
func (c *Config) SetDefaults() {
	if c.Defaults.Model == "" {
		c.Defaults.Model = DefaultModel
	}
	if c.Defaults.Format == "" {
		c.Defaults.Format = DefaultFormat
	}
	if c.Defaults.Type == "" {
		c.Defaults.Type = DefaultType
	}
	if c.Schema.ByAlias == nil {
		c.Schema.ByAlias = boolPtr(true)
	}
	for _, field := range []**bool{
		&c.Schema.AllowAdditionalProperties,
		&c.Schema.RequiredFromJSONSchemaTags,
		&c.Schema.DoNotReference,
	} {
		if *field == nil {
			*field = boolPtr(false)
		}
	}
}

// Bool dereferences an optional flag, treating nil as false.
func Bool(b *bool) bool {
	return b != nil && *b
}

func boolPtr(b bool) *bool {
	return &b
}

// UnmarshalExtension decodes a top-level extension section into target,
// which must be a pointer. A missing section leaves target untouched.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}

// decodeDocument splits a parsed document into the typed sections and the
// remaining extensions.
func decodeDocument(doc map[string]interface{}) (*Config, error) {
	var cfg Config
	known := make(map[string]interface{}, len(knownSections))
	for key, value := range doc {
		if knownSections[key] {
			known[key] = value
			continue
		}
		if cfg.Extensions == nil {
			cfg.Extensions = make(map[string]interface{})
		}
		cfg.Extensions[key] = value
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &cfg,
		TagName: "yaml",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}
	if err := decoder.Decode(known); err != nil {
		return nil, err
	}
	return &cfg, nil
}

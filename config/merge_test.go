package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/cydantic/errors"
	"github.com/sirupsen/logrus"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// TestHierarchicalMerging tests the three-level configuration merge:
// global -> project -> override
func TestHierarchicalMerging(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	writeFile(t, filepath.Join(tmpDir, "xdg", "cydantic", "cydantic.yml"), `
defaults:
  model: GlobalModel
  format: yaml
schema:
  do_not_reference: true
logging:
  level: warn
  report_caller: true
`)

	projectDir := filepath.Join(tmpDir, "project")
	writeFile(t, filepath.Join(projectDir, "cydantic.yml"), `
defaults:
  model: ProjectModel
logging:
  level: info
`)

	writeFile(t, filepath.Join(projectDir, "cydantic.override.yml"), `
schema:
  by_alias: false
`)

	workDir := filepath.Join(projectDir, "models")
	if err := os.MkdirAll(workDir, 0755); err != nil {
		t.Fatal(err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	cfg, err := LoadFromWithLogger(workDir, logger)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Defaults.Model != "ProjectModel" {
		t.Errorf("Expected project model to win, got '%s'", cfg.Defaults.Model)
	}
	if cfg.Defaults.Format != "yaml" {
		t.Errorf("Expected global format to survive, got '%s'", cfg.Defaults.Format)
	}
	if Bool(cfg.Schema.ByAlias) {
		t.Error("Expected override to disable by_alias")
	}
	if !Bool(cfg.Schema.DoNotReference) {
		t.Error("Expected global do_not_reference to survive")
	}

	logging, ok := cfg.Extensions["logging"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected logging extension, got %T", cfg.Extensions["logging"])
	}
	if logging["level"] != "info" {
		t.Errorf("Expected project logging level, got %v", logging["level"])
	}
	if logging["report_caller"] != true {
		t.Errorf("Expected global report_caller to be merged in, got %v", logging["report_caller"])
	}
}

func TestLoadFromWithoutConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "empty"))

	cfg, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("A missing config must not be an error: %v", err)
	}
	if cfg.Defaults.Model != DefaultModel {
		t.Errorf("Expected default model, got '%s'", cfg.Defaults.Model)
	}
}

func TestBrokenProjectConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "empty"))
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "cydantic.yml"), "defaults:\n  format: csv\n")

	_, err := LoadFrom(dir)
	if !errors.Is(err, errors.ErrCodeConfigInvalid) {
		t.Errorf("expected CONFIG_INVALID, got %v", err)
	}
}

func TestBrokenGlobalConfigIsSkipped(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeFile(t, filepath.Join(xdg, "cydantic", "cydantic.yml"), "defaults: [\n")

	cfg, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("Broken global config should be skipped: %v", err)
	}
	if cfg.Defaults.Format != DefaultFormat {
		t.Errorf("Expected default format, got '%s'", cfg.Defaults.Format)
	}
}

func TestMergeConfigs(t *testing.T) {
	base := &Config{
		Defaults: DefaultsConfig{Model: "A", Format: "json"},
		Schema:   SchemaConfig{ByAlias: boolPtr(true)},
		Extensions: map[string]interface{}{
			"logging": map[string]interface{}{"level": "info"},
			"other":   "kept",
		},
	}
	override := &Config{
		Defaults: DefaultsConfig{Model: "B"},
		Schema:   SchemaConfig{ByAlias: boolPtr(false)},
		Extensions: map[string]interface{}{
			"logging": map[string]interface{}{"report_caller": true},
		},
	}

	result := mergeConfigs(base, override)

	if result.Defaults.Model != "B" || result.Defaults.Format != "json" {
		t.Errorf("Unexpected defaults: %+v", result.Defaults)
	}
	if Bool(result.Schema.ByAlias) {
		t.Error("Expected by_alias override")
	}
	logging := result.Extensions["logging"].(map[string]interface{})
	if logging["level"] != "info" || logging["report_caller"] != true {
		t.Errorf("Expected merged logging section, got %v", logging)
	}
	if result.Extensions["other"] != "kept" {
		t.Error("Expected untouched extension to survive")
	}
	if _, ok := base.Extensions["logging"].(map[string]interface{})["report_caller"]; ok {
		t.Error("merge must not mutate the base layer")
	}
}

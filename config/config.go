package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/grovetools/cydantic/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// configNames are searched in each directory, in order.
var configNames = []string{
	"cydantic.yml",
	"cydantic.yaml",
	".cydantic.yml",
	".cydantic.yaml",
	"cydantic.toml",
	".cydantic.toml",
}

// overrideNames are merged last when present next to the project file.
var overrideNames = []string{
	"cydantic.override.yml",
	"cydantic.override.yaml",
	".cydantic.override.yml",
	".cydantic.override.yaml",
}

// Load reads, validates and defaults a single configuration file.
func Load(path string) (*Config, error) {
	cfg, err := loadLayer(path)
	if err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	return cfg, nil
}

// LoadDefault loads the layered configuration for the working directory.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}

	return LoadFrom(cwd)
}

// LoadFrom loads configuration with hierarchical merging starting from the given directory
func LoadFrom(startDir string) (*Config, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	return LoadFromWithLogger(startDir, logger)
}

// LoadFromWithLogger merges, in order:
//  1. Global config ($XDG_CONFIG_HOME/cydantic/cydantic.yml)
//  2. Project config (first cydantic.* found walking up from startDir)
//  3. Local overrides next to the project config
//
// Every layer is optional. An unreadable global layer is skipped with a
// warning; a broken project or override layer is an error.
func LoadFromWithLogger(startDir string, logger *logrus.Logger) (*Config, error) {
	finalConfig := &Config{}

	if globalPath := getXDGConfigPath(); globalPath != "" {
		if _, err := os.Stat(globalPath); err == nil {
			logger.WithField("path", globalPath).Debug("Loading global configuration")
			globalConfig, err := loadLayer(globalPath)
			if err != nil {
				logger.WithError(err).Warn("Failed to load global configuration, continuing without it")
			} else {
				finalConfig = globalConfig
			}
		}
	}

	projectPath, err := FindConfigFile(startDir)
	if err == nil {
		logger.WithField("path", projectPath).Debug("Loading project configuration")
		projectConfig, err := loadLayer(projectPath)
		if err != nil {
			return nil, err
		}
		finalConfig = mergeConfigs(finalConfig, projectConfig)

		projectDir := filepath.Dir(projectPath)
		for _, name := range overrideNames {
			overridePath := filepath.Join(projectDir, name)
			if _, err := os.Stat(overridePath); err != nil {
				continue
			}
			logger.WithField("path", overridePath).Debug("Loading local override configuration")
			overrideConfig, err := loadLayer(overridePath)
			if err != nil {
				return nil, err
			}
			finalConfig = mergeConfigs(finalConfig, overrideConfig)
		}
	}

	finalConfig.SetDefaults()

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		configData, err := yaml.Marshal(finalConfig)
		if err == nil {
			logger.Debugf("Merged configuration:\n%s", string(configData))
		}
	}

	return finalConfig, nil
}

// LoadFromBytes parses, validates and defaults a YAML or TOML document.
// ext selects the syntax (".toml" or anything else for YAML).
func LoadFromBytes(data []byte, ext string) (*Config, error) {
	cfg, err := parseLayer(data, ext)
	if err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	return cfg, nil
}

func loadLayer(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	cfg, err := parseLayer(data, filepath.Ext(path))
	if err != nil {
		if ce, ok := errors.As(err); ok {
			return nil, ce.WithDetail("path", path)
		}
		return nil, err
	}
	return cfg, nil
}

// parseLayer expands environment variables, parses the document and
// validates it against the configuration schema.
func parseLayer(data []byte, ext string) (*Config, error) {
	expanded := []byte(expandEnvVars(string(data)))

	doc := map[string]interface{}{}
	if strings.EqualFold(ext, ".toml") {
		if err := toml.Unmarshal(expanded, &doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration")
		}
	} else {
		if err := yaml.Unmarshal(expanded, &doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
		}
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}

	validator, err := NewSchemaValidator()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to create validator")
	}
	if err := validator.Validate(doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "schema validation failed")
	}

	cfg, err := decodeDocument(doc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to decode configuration")
	}
	return cfg, nil
}

// FindConfigFile searches from startDir up to the filesystem root for a
// project configuration file.
func FindConfigFile(startDir string) (string, error) {
	dir := startDir
	for {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.ConfigNotFound(startDir).WithDetail("searchPath", startDir)
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

// getXDGConfigPath returns the global configuration path
func getXDGConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "cydantic", "cydantic.yml")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "cydantic", "cydantic.yml")
	}

	return ""
}

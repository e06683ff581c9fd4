package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/grovetools/cydantic/config"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	// source, when set, replaces the layered config lookup.
	source *config.Config

	// stderrIsTerminal is swapped in tests.
	stderrIsTerminal = func() bool {
		return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	}
)

// NewLogger creates and returns a pre-configured logger for a specific component.
// Loggers are cached per component.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	entry := build(component, loadConfig())
	loggers[component] = entry
	return entry
}

// UseConfig makes subsequent loggers read the logging section of cfg
// instead of the layered lookup. Cached loggers are dropped.
func UseConfig(cfg *config.Config) {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	source = cfg
	loggers = make(map[string]*logrus.Entry)
}

// Reset drops cached loggers and any config set with UseConfig.
func Reset() {
	UseConfig(nil)
}

func loadConfig() Config {
	var logCfg Config

	cfg := source
	if cfg == nil {
		loaded, err := config.LoadDefault()
		if err != nil {
			return logCfg
		}
		cfg = loaded
	}

	if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
		logrus.Warnf("Failed to parse 'logging' config: %v", err)
	}
	return logCfg
}

// build assembles a logger for component from logCfg and the environment.
func build(component string, logCfg Config) *logrus.Entry {
	logger := logrus.New()

	levelStr := "info"
	if os.Getenv("CYDANTIC_LOG_LEVEL") != "" {
		levelStr = os.Getenv("CYDANTIC_LOG_LEVEL")
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv("CYDANTIC_LOG_CALLER") == "true" || logCfg.ReportCaller {
		logger.SetReportCaller(true)
	}

	switch logCfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: logCfg.Format})
	}

	var writers []io.Writer

	if logCfg.File.Enabled && logCfg.File.Path != "" {
		logger.AddHook(newFileHook(logCfg.File))
	}

	shouldLogToStderr := false
	stderrMode := "auto"
	if logCfg.Format.StructuredToStderr != "" {
		stderrMode = logCfg.Format.StructuredToStderr
	}

	switch stderrMode {
	case "always":
		shouldLogToStderr = true
	case "never":
		shouldLogToStderr = false
	default:
		// auto: stay quiet on an interactive terminal unless debugging
		isDebug := os.Getenv("CYDANTIC_DEBUG") == "1" || logger.GetLevel() >= logrus.DebugLevel
		if isDebug || !stderrIsTerminal() {
			shouldLogToStderr = true
		}
	}

	if shouldLogToStderr {
		writers = append(writers, GetGlobalOutput())
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	return logger.WithField("component", component)
}

// fileHook writes every entry to a rotating log file with its own formatter,
// independent of the stderr sink.
type fileHook struct {
	mu        sync.Mutex
	out       io.Writer
	formatter logrus.Formatter
}

func newFileHook(cfg FileSinkConfig) *fileHook {
	var formatter logrus.Formatter = &TextFormatter{}
	if cfg.Format == "json" {
		formatter = &logrus.JSONFormatter{}
	}
	return &fileHook{
		out: &lumberjack.Logger{
			Filename:   expandPath(cfg.Path),
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		},
		formatter: formatter,
	}
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.out.Write(line)
	return err
}

// expandPath expands tilde in file paths
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

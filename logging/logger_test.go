package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/grovetools/cydantic/config"
	"github.com/sirupsen/logrus"
)

func withTerminal(t *testing.T, isTerminal bool) {
	t.Helper()
	orig := stderrIsTerminal
	stderrIsTerminal = func() bool { return isTerminal }
	t.Cleanup(func() { stderrIsTerminal = orig })
}

func withGlobalOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetGlobalOutput(&buf)
	t.Cleanup(func() { SetGlobalOutput(os.Stderr) })
	return &buf
}

func TestNewLogger(t *testing.T) {
	UseConfig(&config.Config{})
	defer Reset()

	logger := NewLogger("test-component")
	if logger == nil {
		t.Fatal("Expected logger to be created")
	}
	if logger.Data["component"] != "test-component" {
		t.Errorf("Expected component to be 'test-component', got %v", logger.Data["component"])
	}
	if NewLogger("test-component") != logger {
		t.Error("Expected logger to be cached per component")
	}
}

func TestUseConfigDropsCache(t *testing.T) {
	UseConfig(&config.Config{})
	first := NewLogger("cache")

	UseConfig(&config.Config{Extensions: map[string]interface{}{
		"logging": map[string]interface{}{"level": "debug"},
	}})
	defer Reset()

	second := NewLogger("cache")
	if first == second {
		t.Fatal("Expected a fresh logger after UseConfig")
	}
	if second.Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected debug level from config, got %v", second.Logger.GetLevel())
	}
}

func TestTextFormatter(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		config  FormatConfig
		data    logrus.Fields
		want    []string
		notWant []string
	}{
		{
			name:   "default",
			config: FormatConfig{},
			data:   logrus.Fields{"component": "loader", "path": "/tmp/m.go"},
			want:   []string{"2024-05-01 12:30:00", "[INFO]", "loader", "loaded module", "path=/tmp/m.go"},
		},
		{
			name:    "no timestamp",
			config:  FormatConfig{DisableTimestamp: true},
			data:    logrus.Fields{"component": "loader"},
			want:    []string{"[INFO]", "loaded module"},
			notWant: []string{"2024-05-01"},
		},
		{
			name:    "no component",
			config:  FormatConfig{DisableComponent: true},
			data:    logrus.Fields{"component": "loader"},
			want:    []string{"loaded module"},
			notWant: []string{"loader", "component="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &logrus.Entry{
				Logger:  logrus.New(),
				Time:    ts,
				Level:   logrus.InfoLevel,
				Message: "loaded module",
				Data:    tt.data,
			}
			out, err := (&TextFormatter{Config: tt.config}).Format(entry)
			if err != nil {
				t.Fatalf("Format failed: %v", err)
			}
			got := string(out)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Expected %q in %q", w, got)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("Did not expect %q in %q", nw, got)
				}
			}
		})
	}
}

func TestTextFormatterSortsFields(t *testing.T) {
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Level:   logrus.WarnLevel,
		Message: "m",
		Data:    logrus.Fields{"zeta": 1, "alpha": 2},
	}
	out, _ := (&TextFormatter{Config: FormatConfig{DisableTimestamp: true}}).Format(entry)
	got := string(out)
	if !strings.HasPrefix(got, "[WARN]") {
		t.Errorf("Expected warning to render as WARN, got %q", got)
	}
	if strings.Index(got, "alpha=2") > strings.Index(got, "zeta=1") {
		t.Errorf("Expected fields sorted by key, got %q", got)
	}
}

func TestLevelResolution(t *testing.T) {
	withTerminal(t, false)
	withGlobalOutput(t)

	tests := []struct {
		name string
		env  string
		cfg  string
		want logrus.Level
	}{
		{"default", "", "", logrus.InfoLevel},
		{"from config", "", "warn", logrus.WarnLevel},
		{"env wins", "debug", "warn", logrus.DebugLevel},
		{"invalid falls back", "loud", "", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CYDANTIC_LOG_LEVEL", tt.env)
			entry := build("level", Config{Level: tt.cfg})
			if got := entry.Logger.GetLevel(); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestReportCaller(t *testing.T) {
	withGlobalOutput(t)

	t.Setenv("CYDANTIC_LOG_CALLER", "true")
	if !build("caller", Config{}).Logger.ReportCaller {
		t.Error("Expected CYDANTIC_LOG_CALLER to enable caller reporting")
	}

	t.Setenv("CYDANTIC_LOG_CALLER", "")
	if build("caller", Config{}).Logger.ReportCaller {
		t.Error("Expected caller reporting off by default")
	}
	if !build("caller", Config{ReportCaller: true}).Logger.ReportCaller {
		t.Error("Expected report_caller config to enable caller reporting")
	}
}

func TestStderrModes(t *testing.T) {
	t.Setenv("CYDANTIC_LOG_LEVEL", "")
	t.Setenv("CYDANTIC_DEBUG", "")

	tests := []struct {
		name     string
		mode     string
		terminal bool
		debug    bool
		wantOut  bool
	}{
		{"auto piped", "", false, false, true},
		{"auto terminal", "", true, false, false},
		{"auto terminal debug", "auto", true, true, true},
		{"always", "always", true, false, true},
		{"never", "never", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withTerminal(t, tt.terminal)
			buf := withGlobalOutput(t)
			if tt.debug {
				t.Setenv("CYDANTIC_DEBUG", "1")
			}

			build("stderr", Config{Format: FormatConfig{StructuredToStderr: tt.mode}}).Info("hello")

			if got := strings.Contains(buf.String(), "hello"); got != tt.wantOut {
				t.Errorf("Expected output=%v, got %q", tt.wantOut, buf.String())
			}
		})
	}
}

func TestJSONPreset(t *testing.T) {
	withTerminal(t, false)
	buf := withGlobalOutput(t)

	build("json", Config{Format: FormatConfig{Preset: "json"}}).WithField("model", "Person").Info("exported")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if line["component"] != "json" || line["model"] != "Person" || line["msg"] != "exported" {
		t.Errorf("Unexpected JSON fields: %v", line)
	}
}

func TestFileSink(t *testing.T) {
	withTerminal(t, true)
	withGlobalOutput(t)

	path := filepath.Join(t.TempDir(), "logs", "cydantic.log")
	entry := build("file", Config{File: FileSinkConfig{Enabled: true, Path: path}})
	entry.Info("written to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected log file to be created: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("Expected message in log file, got %q", string(data))
	}
}

func TestFileSinkJSON(t *testing.T) {
	withTerminal(t, true)
	buf := withGlobalOutput(t)

	path := filepath.Join(t.TempDir(), "cydantic.log")
	build("file", Config{File: FileSinkConfig{Enabled: true, Path: path, Format: "json"}}).
		WithField("model", "Person").Warn("exported")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected log file to be created: %v", err)
	}
	var line map[string]interface{}
	if err := json.Unmarshal(data, &line); err != nil {
		t.Fatalf("Expected a JSON line in the log file, got %q: %v", string(data), err)
	}
	if line["model"] != "Person" || line["level"] != "warning" {
		t.Errorf("Unexpected JSON fields: %v", line)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected nothing on an interactive stderr, got %q", buf.String())
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandPath("~/logs/a.log"); got != filepath.Join(home, "logs", "a.log") {
		t.Errorf("Unexpected expansion: %s", got)
	}
	if got := expandPath("/var/log/a.log"); got != "/var/log/a.log" {
		t.Errorf("Absolute path must be unchanged, got %s", got)
	}
}

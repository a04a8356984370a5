package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if !cfg.Diagnostics.Color || !cfg.Diagnostics.Hints {
		t.Error("colors and hints should be on by default")
	}
	if cfg.Diagnostics.WarningsAsErrors {
		t.Error("warnings_as_errors should be off by default")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("default log level should be warn, got %q", cfg.Log.Level)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Diagnostics.WarningsAsErrors = true
	cfg.Log.Level = "debug"
	cfg.Eval.Trace = true
	cfg.Eval.Hierarchy = []string{"IOError < Exception", "FileError < IOError"}

	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !loaded.Diagnostics.WarningsAsErrors {
		t.Error("warnings_as_errors not round-tripped")
	}
	if loaded.Log.Level != "debug" {
		t.Errorf("log level not round-tripped, got %q", loaded.Log.Level)
	}
	if !loaded.Eval.Trace {
		t.Error("trace not round-tripped")
	}
	if len(loaded.Eval.Hierarchy) != 2 || loaded.Eval.Hierarchy[1] != "FileError < IOError" {
		t.Errorf("hierarchy not round-tripped: %v", loaded.Eval.Hierarchy)
	}
}

func TestSaveWritesComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := Default().Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	content := string(data)
	for _, want := range []string{"[diagnostics]", "[log]", "[eval]", "# 日志级别"} {
		if !strings.Contains(content, want) {
			t.Errorf("config file missing %q", want)
		}
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	if cfg == nil || cfg.Log.Level != "warn" {
		t.Error("missing file should yield the default config")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte("diagnostics = not toml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error for malformed config")
	}
}

func TestParseHierarchy(t *testing.T) {
	tests := []struct {
		entry  string
		child  string
		parent string
		ok     bool
	}{
		{"IOError < Exception", "IOError", "Exception", true},
		{"A<B", "A", "B", true},
		{"  A  <  B  ", "A", "B", true},
		{"Exception", "", "", false},
		{"< Exception", "", "", false},
		{"IOError <", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		child, parent, ok := ParseHierarchy(tt.entry)
		if child != tt.child || parent != tt.parent || ok != tt.ok {
			t.Errorf("ParseHierarchy(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.entry, child, parent, ok, tt.child, tt.parent, tt.ok)
		}
	}
}

func TestBuildLoggerLevels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		cfg := Default()
		cfg.Log.Level = tt.level
		log, err := cfg.BuildLogger()
		if err != nil {
			t.Fatalf("level %q: %v", tt.level, err)
		}
		if !log.Core().Enabled(tt.want) {
			t.Errorf("level %q: logger should enable %s", tt.level, tt.want)
		}
		if tt.want > zapcore.DebugLevel && log.Core().Enabled(tt.want-1) {
			t.Errorf("level %q: logger should not enable %s", tt.level, tt.want-1)
		}
	}
}

func TestBuildLoggerTraceForcesDebug(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "error"
	cfg.Eval.Trace = true

	log, err := cfg.BuildLogger()
	if err != nil {
		t.Fatal(err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("trace should force the debug level")
	}
}

func TestBuildLoggerRejectsUnknownLevel(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "verbose"
	if _, err := cfg.BuildLogger(); err == nil {
		t.Error("expected error for unknown log level")
	}
}

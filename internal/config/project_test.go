package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadProjectMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CC", "")
	config, err := LoadProject(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Build.CC != "cc" || !config.Build.Check || !config.Build.PrintNewline {
		t.Fatalf("unexpected defaults: %+v", config.Build)
	}
	if err := config.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestDefaultHonoursCC(t *testing.T) {
	t.Setenv("CC", "clang")
	if got := Default().Build.CC; got != "clang" {
		t.Fatalf("expected clang from $CC, got %q", got)
	}

	t.Setenv("CC", "python")
	if got := Default().Build.CC; got != "cc" {
		t.Fatalf("disallowed $CC should be ignored, got %q", got)
	}
}

func TestLoadProjectOverridesDefaults(t *testing.T) {
	path := writeManifest(t, `{
  "name": "demo",
  "version": "1.2.0",
  "language": ">= 0.3.0, < 1.0.0",
  "build": {"cc": "gcc", "cflags": ["-O0", "-g"], "keep_c": true, "legacy_operators": true, "timeout": "5s"}
}`)

	config, err := LoadProject(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Name != "demo" || config.Build.CC != "gcc" || !config.Build.KeepC || !config.Build.LegacyOperators {
		t.Fatalf("manifest not applied: %+v", config)
	}
	if strings.Join(config.Build.CFlags, " ") != "-O0 -g" {
		t.Fatalf("cflags wrong: %v", config.Build.CFlags)
	}
	if !config.Build.Check {
		t.Fatal("unset fields should keep their defaults")
	}
	if d, _ := config.Build.TimeoutDuration(); d != 5*time.Second {
		t.Fatalf("timeout wrong: %s", d)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*ProjectConfig)
		expected string
	}{
		{"missing name", func(c *ProjectConfig) { c.Name = "" }, "project name is required"},
		{"bad version", func(c *ProjectConfig) { c.Version = "one" }, "project version"},
		{"future language", func(c *ProjectConfig) { c.Language = ">= 9.0" }, "does not satisfy"},
		{"bad constraint", func(c *ProjectConfig) { c.Language = ">= banana" }, "language constraint"},
		{"bad compiler", func(c *ProjectConfig) { c.Build.CC = "bash" }, "not in allowed list"},
		{"bad timeout", func(c *ProjectConfig) { c.Build.Timeout = "soon" }, "build timeout"},
		{"negative timeout", func(c *ProjectConfig) { c.Build.Timeout = "-1s" }, "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			config.Build.CC = "cc"
			tt.mutate(config)
			err := config.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.expected) {
				t.Fatalf("expected error containing %q, got %v", tt.expected, err)
			}
		})
	}
}

func TestLoadProjectRejectsInvalid(t *testing.T) {
	if _, err := LoadProject(writeManifest(t, `{"name": "x", "version": "1.0.0", "language": ">= 9.0"}`)); err == nil {
		t.Fatal("expected language constraint failure")
	}
	if _, err := LoadProject(writeManifest(t, `{not json`)); err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Fatalf("expected parse failure, got %v", err)
	}
}

func TestInitWritesLoadableManifest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hello")
	path, err := Init(dir)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	config, err := LoadProject(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if config.Name != "hello" {
		t.Fatalf("expected name from directory, got %q", config.Name)
	}

	if _, err := Init(dir); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("second init should refuse, got %v", err)
	}
}

func TestFind(t *testing.T) {
	if got := Find(filepath.Join("src", "main.quark")); got != filepath.Join("src", FileName) {
		t.Fatalf("unexpected manifest path %q", got)
	}
}

package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// fakeRunner records the invocation and checks the intermediate file
// exists while the "compiler" runs
type fakeRunner struct {
	name   string
	args   []string
	env    []string
	source string
	output []byte
	err    error
	wait   bool
}

func (f *fakeRunner) Run(ctx context.Context, name string, args, env []string) ([]byte, error) {
	f.name, f.args, f.env = name, args, env
	if data, err := os.ReadFile(args[len(args)-3]); err == nil {
		f.source = string(data)
	}
	if f.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.output, f.err
}

func TestBuildRunsCompilerAndRemovesIntermediate(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "main")
	runner := &fakeRunner{}

	d := New("gcc")
	d.CFlags = []string{"-O2", "-Wall"}
	d.Runner = runner

	artifact, err := d.Build(context.Background(), "int main() {\n\treturn 0;\n}\n", output)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfile := filepath.Join(dir, "main.c")
	expectedArgs := []string{"-std=c99", "-O2", "-Wall", cfile, "-o", output}
	if runner.name != "gcc" || !reflect.DeepEqual(runner.args, expectedArgs) {
		t.Fatalf("invocation wrong. expected=gcc %v, got=%s %v", expectedArgs, runner.name, runner.args)
	}
	if !strings.Contains(runner.source, "int main()") {
		t.Fatalf("compiler did not see the source, got %q", runner.source)
	}
	if artifact.CFile != "" || artifact.Binary != output {
		t.Fatalf("unexpected artifact %+v", artifact)
	}
	if _, err := os.Stat(cfile); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("intermediate file should be removed, stat err=%v", err)
	}
	for _, kv := range runner.env {
		if strings.HasPrefix(kv, "CC=") || strings.HasPrefix(kv, "LD_PRELOAD=") {
			t.Fatalf("environment should be minimal, got %v", runner.env)
		}
	}
}

func TestBuildKeepC(t *testing.T) {
	dir := t.TempDir()
	d := New("cc")
	d.KeepC = true
	d.Runner = &fakeRunner{}

	artifact, err := d.Build(context.Background(), "int x = 1;\n", filepath.Join(dir, "prog.out"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact.CFile != filepath.Join(dir, "prog.c") {
		t.Fatalf("expected kept C file, got %q", artifact.CFile)
	}
	if _, err := os.Stat(artifact.CFile); err != nil {
		t.Fatalf("kept C file missing: %v", err)
	}
}

func TestBuildFailureCarriesOutput(t *testing.T) {
	dir := t.TempDir()
	d := New("clang")
	d.Runner = &fakeRunner{output: []byte("main.c:1: error: oops\n"), err: errors.New("exit status 1")}

	_, err := d.Build(context.Background(), "bad", filepath.Join(dir, "main"))
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CompileError, got %T %v", err, err)
	}
	if !strings.Contains(err.Error(), "clang failed: exit status 1") || !strings.Contains(err.Error(), "error: oops") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if _, statErr := os.Stat(filepath.Join(dir, "main.c")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("intermediate file should be removed after failure")
	}
}

func TestBuildTimeout(t *testing.T) {
	d := New("tcc")
	d.Timeout = 10 * time.Millisecond
	d.Runner = &fakeRunner{wait: true}

	_, err := d.Build(context.Background(), "", filepath.Join(t.TempDir(), "main"))
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("timeout should unwrap to DeadlineExceeded, got %v", err)
	}
}

func TestBuildRejects(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name     string
		cc       string
		cflags   []string
		output   string
		expected string
	}{
		{"shell as compiler", "/bin/sh", nil, filepath.Join(dir, "a"), "not in allowed list"},
		{"empty compiler", "", nil, filepath.Join(dir, "a"), "no C compiler"},
		{"injection in flag", "cc", []string{"-O2; rm -rf /"}, filepath.Join(dir, "a"), "injection"},
		{"output is c file", "cc", nil, filepath.Join(dir, "a.c"), "overwrite"},
		{"empty output", "cc", nil, "", "invalid output path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			d := New(tt.cc)
			d.CFlags = tt.cflags
			d.Runner = runner

			_, err := d.Build(context.Background(), "", tt.output)
			if err == nil || !strings.Contains(err.Error(), tt.expected) {
				t.Fatalf("expected error containing %q, got %v", tt.expected, err)
			}
			if runner.name != "" {
				t.Fatalf("compiler must not run, ran %s", runner.name)
			}
		})
	}
}

func TestValidateCompiler(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"cc", true},
		{"gcc", true},
		{"/usr/bin/clang", true},
		{"TCC.EXE", true},
		{"python", false},
		{"gcc; ls", false},
		{"", false},
	}

	for i, tt := range tests {
		err := ValidateCompiler(tt.name)
		if (err == nil) != tt.valid {
			t.Errorf("tests[%d] %q - valid wrong. expected=%t, got err=%v", i, tt.name, tt.valid, err)
		}
	}
}

func TestValidateSourcePath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"main.quark", ""},
		{"src/Main.QUARK", ""},
		{"main.c", "invalid file extension"},
		{"", "empty path"},
		{strings.Repeat("a/", 2500) + "x.quark", "path too long"},
		{"a\x00.quark", "null byte"},
	}

	for i, tt := range tests {
		err := ValidateSourcePath(tt.path)
		if tt.expected == "" {
			if err != nil {
				t.Errorf("tests[%d] - unexpected error: %v", i, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.expected) {
			t.Errorf("tests[%d] - expected error containing %q, got %v", i, tt.expected, err)
		}
	}
}

func TestIntermediatePath(t *testing.T) {
	tests := []struct{ output, expected string }{
		{"main", "main.c"},
		{"out/a.out", "out/a.c"},
		{"prog.exe", "prog.c"},
	}
	for i, tt := range tests {
		if got := IntermediatePath(tt.output); got != tt.expected {
			t.Errorf("tests[%d] - path wrong. expected=%q, got=%q", i, tt.expected, got)
		}
	}
}

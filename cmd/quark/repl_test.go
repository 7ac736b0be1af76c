package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/quark-lang/quark/internal/config"
)

func TestIncomplete(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"let x = 1", false},
		{"let x =", true},
		{"fnc main() int ->", true},
		{"fnc main() int ->\n  ret 0\nend", false},
		{"if x ->\n  print(x)\nelse", true},
		{"if x ->\n  print(x)\nelse\n  print(0)\nend", false},
		{"while x ->\n  for i in range(3) ->\n    print(i)\n  end", true},
		{"print(1,", true},
		{"let a = [1, 2", true},
		{`let s = "open`, true},
		{"let x = @", false},
		{":help", false},
		{"", false},
	}

	for i, tt := range tests {
		if got := incomplete(tt.input); got != tt.expected {
			t.Errorf("tests[%d] %q - incomplete wrong. expected=%t, got=%t", i, tt.input, tt.expected, got)
		}
	}
}

func TestSessionEval(t *testing.T) {
	s := newSession(config.Default())
	var out bytes.Buffer

	if s.eval(&out, "let x = 1 + 2") {
		t.Fatal("plain input should not quit")
	}
	if out.String() != "int x = 1 + 2;\n" {
		t.Fatalf("unexpected output %q", out.String())
	}

	out.Reset()
	s.eval(&out, "let y = z")
	if !strings.HasPrefix(out.String(), "Type error: undefined: z") {
		t.Fatalf("expected type error, got %q", out.String())
	}

	out.Reset()
	s.eval(&out, ":check")
	s.eval(&out, "let y = z")
	if !strings.Contains(out.String(), "check off") || !strings.Contains(out.String(), "int y = z;") {
		t.Fatalf("check toggle not applied:\n%s", out.String())
	}
}

func TestSessionToggles(t *testing.T) {
	s := newSession(config.Default())
	var out bytes.Buffer

	s.eval(&out, ":tokens")
	s.eval(&out, ":ast")
	out.Reset()
	s.eval(&out, "let x = 1")

	got := out.String()
	for _, want := range []string{"; Let", "; Number(1)", "; Eof", `; Let("x"`, "int x = 1;"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	out.Reset()
	s.eval(&out, ":bogus")
	if !strings.Contains(out.String(), "unknown command :bogus") {
		t.Fatalf("unexpected output %q", out.String())
	}

	for _, cmd := range []string{":quit", ":q", ":exit"} {
		if !s.eval(&out, cmd) {
			t.Errorf("%s should end the session", cmd)
		}
	}
}

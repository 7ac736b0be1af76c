package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/quark-lang/quark/internal/cli"
	"github.com/quark-lang/quark/internal/compiler"
	"github.com/quark-lang/quark/internal/config"
	"github.com/quark-lang/quark/internal/lexer"
)

const (
	historyFile = ".quark_history"
	promptMain  = "quark> "
	promptCont  = "  ...> "
)

const replHelp = `Enter quark statements; each complete input is printed as C.
Blocks (fnc, if, while, for) continue until their closing end.

  :help     show this help
  :quit     leave the session (also Ctrl+D)
  :tokens   toggle printing the token stream
  :ast      toggle printing the syntax tree
  :check    toggle the type checker
`

// session holds the REPL toggles. It is independent of the terminal so
// it can be driven directly.
type session struct {
	opts       compiler.Options
	showTokens bool
	showAST    bool
}

func newSession(cfg *config.ProjectConfig) *session {
	return &session{opts: compiler.OptionsFromConfig(cfg)}
}

// eval handles one complete input. It reports whether the session ends.
func (s *session) eval(w io.Writer, input string) (quit bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}

	if strings.HasPrefix(input, ":") {
		return s.command(w, input)
	}

	out, err := compiler.Compile(input, s.opts)
	if err != nil {
		fmt.Fprintln(w, err)
		return false
	}
	if s.showTokens {
		for _, tok := range out.Tokens {
			fmt.Fprintf(w, "; %s\n", tok)
		}
	}
	if s.showAST {
		program := out.Program
		if out.Checked != nil {
			program = out.Checked
		}
		for _, stmt := range program {
			fmt.Fprintf(w, "; %s\n", stmt)
		}
	}
	io.WriteString(w, out.Source())
	return false
}

func (s *session) command(w io.Writer, line string) bool {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ":help", ":h":
		io.WriteString(w, replHelp)
	case ":quit", ":q", ":exit":
		return true
	case ":tokens":
		s.showTokens = !s.showTokens
		fmt.Fprintf(w, "tokens %s\n", onOff(s.showTokens))
	case ":ast":
		s.showAST = !s.showAST
		fmt.Fprintf(w, "ast %s\n", onOff(s.showAST))
	case ":check":
		s.opts.Check = !s.opts.Check
		fmt.Fprintf(w, "check %s\n", onOff(s.opts.Check))
	default:
		fmt.Fprintf(w, "unknown command %s. Type :help for help.\n", fields[0])
	}
	return false
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// incomplete reports whether src is waiting for more lines: an open
// block, an open paren or bracket, a trailing arrow or operator, or an
// unterminated string.
func incomplete(src string) bool {
	if strings.HasPrefix(strings.TrimSpace(src), ":") {
		return false
	}
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return strings.Contains(err.Error(), "unterminated string")
	}

	depth, nesting := 0, 0
	var last lexer.Token
	for _, tok := range tokens {
		switch tok.Type {
		case lexer.TokenFnc, lexer.TokenIf, lexer.TokenWhile, lexer.TokenFor:
			depth++
		case lexer.TokenEnd:
			depth--
		case lexer.TokenLParen, lexer.TokenLBracket:
			nesting++
		case lexer.TokenRParen, lexer.TokenRBracket:
			nesting--
		}
		if tok.Type != lexer.TokenEOF {
			last = tok
		}
	}
	if depth > 0 || nesting > 0 {
		return true
	}
	switch last.Type {
	case lexer.TokenOperator, lexer.TokenArrow, lexer.TokenComma, lexer.TokenColon:
		return true
	}
	return false
}

func runREPL(e *env, args []string) int {
	var pf pipelineFlags
	fs := newFlagSet(e, "repl", &pf)
	if code, ok := parse(fs, &pf, args); !ok {
		return code
	}
	// a manifest in the working directory configures the session
	cfg, err := pf.load(filepath.Join(".", "main.quark"))
	if err != nil {
		return fail(e, err)
	}
	s := newSession(cfg)

	fmt.Fprintf(e.stdout, "Quark %s. Type :help for help.\n", cli.LanguageVersion)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetMultiLineMode(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		input, ok := readInput(ln)
		if !ok {
			fmt.Fprintln(e.stdout)
			break
		}
		if strings.TrimSpace(input) != "" {
			ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))
		}
		if s.eval(e.stdout, input) {
			break
		}
	}

	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return exitOK
}

// readInput accumulates lines until incomplete reports the input done.
// ok is false on EOF.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C drops the pending input
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !incomplete(b.String()) {
			return b.String(), true
		}
	}
}

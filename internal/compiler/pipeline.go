// Package compiler wires the quark stages together:
// lex -> parse -> check -> generate.
//
// Each stage returns its first failure unchanged and the pipeline stops
// there; no later stage runs on a failed input.
package compiler

import (
	"fmt"
	"os"
	"time"

	"github.com/quark-lang/quark/internal/ast"
	"github.com/quark-lang/quark/internal/cli"
	"github.com/quark-lang/quark/internal/codegen"
	"github.com/quark-lang/quark/internal/config"
	"github.com/quark-lang/quark/internal/lexer"
	"github.com/quark-lang/quark/internal/parser"
	"github.com/quark-lang/quark/internal/typechecker"
)

// Checker resolves missing let annotations or reports type failures.
// *typechecker.Checker implements it.
type Checker interface {
	Check(stmts []ast.Statement) ([]ast.Statement, error)
}

// Stage identifies a pipeline step
type Stage int

const (
	StageLex Stage = iota + 1
	StageParse
	StageCheck
	StageGenerate
)

func (s Stage) String() string {
	switch s {
	case 0:
		return "all"
	case StageLex:
		return "lex"
	case StageParse:
		return "parse"
	case StageCheck:
		return "check"
	case StageGenerate:
		return "generate"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Options configures a compilation
type Options struct {
	// Check runs the checker between parsing and generation
	Check bool
	// Checker overrides the default typechecker when Check is set
	Checker Checker

	LegacyOperators bool
	LetFallback     string
	PrintNewline    bool

	// StopAfter ends the pipeline early; the zero value runs every stage
	StopAfter Stage

	Logger *cli.Logger
}

// DefaultOptions returns the options used without a manifest
func DefaultOptions() Options {
	return Options{
		Check:        true,
		PrintNewline: true,
	}
}

// OptionsFromConfig derives options from a project manifest
func OptionsFromConfig(cfg *config.ProjectConfig) Options {
	opts := DefaultOptions()
	opts.Check = cfg.Build.Check
	opts.LegacyOperators = cfg.Build.LegacyOperators
	opts.PrintNewline = cfg.Build.PrintNewline
	return opts
}

// Output holds whatever the stages that ran produced
type Output struct {
	Tokens []lexer.Token
	// Program is the parsed AST
	Program []ast.Statement
	// Checked is the checker's annotated AST, nil when checking is off
	Checked []ast.Statement
	C       *codegen.Result
}

// Source returns the generated C text, or "" before generation
func (o *Output) Source() string {
	if o.C == nil {
		return ""
	}
	return o.C.Source()
}

// Compile runs the pipeline over src
func Compile(src string, opts Options) (*Output, error) {
	log := opts.Logger
	out := &Output{}

	start := time.Now()
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	out.Tokens = tokens
	log.Debug("lexed %d tokens in %s", len(tokens), time.Since(start))
	if opts.StopAfter == StageLex {
		return out, nil
	}

	var parseOpts []parser.Option
	if opts.LegacyOperators {
		parseOpts = append(parseOpts, parser.WithLegacyOperators())
	}
	start = time.Now()
	program, err := parser.Parse(tokens, parseOpts...)
	if err != nil {
		return nil, err
	}
	out.Program = program
	log.Debug("parsed %d top-level statements in %s", len(program), time.Since(start))
	if opts.StopAfter == StageParse {
		return out, nil
	}

	typed := program
	if opts.Check || opts.StopAfter == StageCheck {
		checker := opts.Checker
		if checker == nil {
			checker = typechecker.New()
		}
		start = time.Now()
		if typed, err = checker.Check(program); err != nil {
			return nil, err
		}
		out.Checked = typed
		log.Debug("checked in %s", time.Since(start))
	}
	if opts.StopAfter == StageCheck {
		return out, nil
	}

	genOpts := []codegen.Option{codegen.WithPrintNewline(opts.PrintNewline)}
	if opts.LetFallback != "" {
		genOpts = append(genOpts, codegen.WithLetFallback(opts.LetFallback))
	}
	start = time.Now()
	result, err := codegen.Generate(typed, genOpts...)
	if err != nil {
		return nil, err
	}
	out.C = result
	log.Debug("generated %d bytes of C in %s", len(result.Code), time.Since(start))
	return out, nil
}

// CompileFile reads path and compiles it
func CompileFile(path string, opts Options) (*Output, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	opts.Logger.Info("compiling %s", path)
	return Compile(string(src), opts)
}

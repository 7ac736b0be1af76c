package main

import (
	"fmt"
	"path/filepath"

	"github.com/quark-lang/quark/internal/cli"
	"github.com/quark-lang/quark/internal/compiler"
	"github.com/quark-lang/quark/internal/config"
	"github.com/quark-lang/quark/internal/driver"
	qerrors "github.com/quark-lang/quark/internal/errors"
)

// compileTo runs the pipeline for a single-file command up to stop
func compileTo(e *env, pf *pipelineFlags, path string, stop compiler.Stage) (*compiler.Output, error) {
	if err := driver.ValidateSourcePath(path); err != nil {
		return nil, err
	}
	cfg, err := pf.load(path)
	if err != nil {
		return nil, err
	}
	opts := pf.options(e, cfg)
	opts.StopAfter = stop
	return compiler.CompileFile(path, opts)
}

func runEmit(e *env, args []string) int {
	var pf pipelineFlags
	fs := newFlagSet(e, "emit", &pf)
	output := fs.String("o", "", "write C to this file instead of stdout")
	if code, ok := parse(fs, &pf, args); !ok {
		return code
	}
	path, ok := single(e, fs, "emit")
	if !ok {
		return exitUsage
	}

	out, err := compileTo(e, &pf, path, 0)
	if err != nil {
		return fail(e, err)
	}
	if err := writeC(e.stdout, *output, out.Source()); err != nil {
		return fail(e, err)
	}
	return exitOK
}

func runTokens(e *env, args []string) int {
	fs := newFlagSet(e, "tokens", nil)
	if code, ok := parse(fs, nil, args); !ok {
		return code
	}
	path, ok := single(e, fs, "tokens")
	if !ok {
		return exitUsage
	}

	var pf pipelineFlags
	out, err := compileTo(e, &pf, path, compiler.StageLex)
	if err != nil {
		return fail(e, err)
	}
	for _, tok := range out.Tokens {
		fmt.Fprintf(e.stdout, "%-6d %s\n", tok.Offset, tok)
	}
	return exitOK
}

func runAST(e *env, args []string) int {
	var pf pipelineFlags
	fs := newFlagSet(e, "ast", &pf)
	if code, ok := parse(fs, &pf, args); !ok {
		return code
	}
	path, ok := single(e, fs, "ast")
	if !ok {
		return exitUsage
	}

	stop := compiler.StageParse
	if pf.set["check"] && pf.check {
		stop = compiler.StageCheck
	}
	out, err := compileTo(e, &pf, path, stop)
	if err != nil {
		return fail(e, err)
	}
	program := out.Program
	if out.Checked != nil {
		program = out.Checked
	}
	for _, stmt := range program {
		fmt.Fprintln(e.stdout, stmt.String())
	}
	return exitOK
}

func runCheck(e *env, args []string) int {
	var pf pipelineFlags
	fs := newFlagSet(e, "check", &pf)
	if code, ok := parse(fs, &pf, args); !ok {
		return code
	}
	path, ok := single(e, fs, "check")
	if !ok {
		return exitUsage
	}

	_, err := compileTo(e, &pf, path, compiler.StageCheck)
	if err == nil {
		fmt.Fprintf(e.stdout, "%s: ok\n", path)
		return exitOK
	}

	// report every failure the checker collected, one per line
	if list, ok := err.(qerrors.List); ok {
		for _, item := range list {
			fmt.Fprintf(e.stderr, "%s: %v\n", path, item)
		}
		fmt.Fprintf(e.stderr, "%d errors\n", len(list))
		return exitError
	}
	fmt.Fprintf(e.stderr, "%s: %v\n", path, err)
	return exitError
}

func runInit(e *env, args []string) int {
	fs := newFlagSet(e, "init", nil)
	if code, ok := parse(fs, nil, args); !ok {
		return code
	}
	dir := "."
	switch fs.NArg() {
	case 0:
	case 1:
		dir = fs.Arg(0)
	default:
		fmt.Fprintln(e.stderr, "usage: quark init [dir]")
		return exitUsage
	}

	path, err := config.Init(dir)
	if err != nil {
		return fail(e, err)
	}
	fmt.Fprintf(e.stdout, "created %s\n", filepath.Clean(path))
	return exitOK
}

func runVersion(e *env, args []string) int {
	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" || arg == "-j" {
			jsonOutput = true
			break
		}
	}
	cli.PrintVersion(e.stdout, "Quark Tools", jsonOutput)
	return exitOK
}

// Package main provides the quark tool: build, inspect, watch and
// experiment with quark sources from one entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/quark-lang/quark/internal/cli"
	"github.com/quark-lang/quark/internal/compiler"
	"github.com/quark-lang/quark/internal/config"
)

const tool = "quark"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// env carries the process streams into every command
type env struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	info cli.CommandInfo
	run  func(e *env, args []string) int
}

var commands []command

func init() {
	commands = []command{
		{cli.CommandInfo{
			Name:        "build",
			Description: "Compile sources to native binaries",
			Usage:       "quark build [OPTIONS] <file.quark>...",
			Flags: []cli.FlagInfo{
				{Name: "jobs", Usage: "number of files compiled in parallel", Default: "number of CPUs"},
				{Name: "cc", Usage: "C compiler to invoke (cc, gcc, clang, tcc)"},
				{Name: "keep-c", Usage: "keep the generated C files"},
				{Name: "out-dir", Usage: "directory for binaries", Default: "next to each source"},
			},
			Examples: []string{"quark build main.quark", "quark build --jobs 4 --out-dir bin a.quark b.quark"},
		}, runBuild},
		{cli.CommandInfo{Name: "emit", Description: "Print the generated C", Usage: "quark emit [OPTIONS] <file.quark>"}, runEmit},
		{cli.CommandInfo{Name: "tokens", Description: "Dump the token stream", Usage: "quark tokens <file.quark>"}, runTokens},
		{cli.CommandInfo{Name: "ast", Description: "Dump the parsed syntax tree", Usage: "quark ast [OPTIONS] <file.quark>"}, runAST},
		{cli.CommandInfo{Name: "check", Description: "Type-check and report every failure", Usage: "quark check [OPTIONS] <file.quark>"}, runCheck},
		{cli.CommandInfo{Name: "watch", Description: "Re-emit C whenever the source changes", Usage: "quark watch [OPTIONS] <file.quark>"}, runWatch},
		{cli.CommandInfo{Name: "repl", Description: "Start interactive transpiler session", Usage: "quark repl"}, runREPL},
		{cli.CommandInfo{Name: "init", Description: "Write a default quark.json", Usage: "quark init [dir]"}, runInit},
		{cli.CommandInfo{Name: "version", Description: "Show version information", Usage: "quark version [--json]"}, runVersion},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(&env{ctx: ctx, stdout: os.Stdout, stderr: os.Stderr}, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(e *env, args []string) int {
	if len(args) < 1 {
		usage(e.stderr)
		return exitUsage
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "help", "-h", "--help":
		if len(rest) > 0 {
			if cmd, ok := lookup(rest[0]); ok {
				cli.PrintCommandUsage(e.stdout, tool, cmd.info)
				return exitOK
			}
		}
		usage(e.stdout)
		return exitOK
	case "-v", "--version":
		return runVersion(e, rest)
	}

	cmd, ok := lookup(sub)
	if !ok {
		fmt.Fprintf(e.stderr, "unknown subcommand: %s\n", sub)
		usage(e.stderr)
		return exitUsage
	}
	return cmd.run(e, rest)
}

func lookup(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.info.Name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func usage(w io.Writer) {
	infos := make([]cli.CommandInfo, 0, len(commands))
	for _, cmd := range commands {
		infos = append(infos, cmd.info)
	}
	cli.PrintUsage(w, tool, infos)
}

// ====== shared flags ======

// pipelineFlags are accepted by every command that compiles
type pipelineFlags struct {
	configPath      string
	check           bool
	legacyOperators bool
	verbose         bool
	debug           bool
	set             map[string]bool
}

func newFlagSet(e *env, name string, pf *pipelineFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(tool+" "+name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	if pf != nil {
		fs.StringVar(&pf.configPath, "config", "", "project manifest (default: quark.json next to the source)")
		fs.BoolVar(&pf.check, "check", true, "type-check before generating C")
		fs.BoolVar(&pf.legacyOperators, "legacy-operators", false, "parse binary operators flat and right-grouped")
		fs.BoolVar(&pf.verbose, "verbose", false, "verbose output")
		fs.BoolVar(&pf.debug, "debug", false, "debug output")
	}
	return fs
}

// parse parses args and records explicitly set flags. ok is false when the
// command should return code immediately.
func parse(fs *flag.FlagSet, pf *pipelineFlags, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK, false
		}
		return exitUsage, false
	}
	if pf != nil {
		pf.set = make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { pf.set[f.Name] = true })
	}
	return exitOK, true
}

func (pf *pipelineFlags) logger(e *env) *cli.Logger {
	if f, ok := e.stderr.(*os.File); ok {
		return cli.NewLoggerTo(e.stderr, pf.verbose, pf.debug, cli.ColorEnabled(f))
	}
	return cli.NewLoggerTo(e.stderr, pf.verbose, pf.debug, false)
}

// load resolves the manifest for path and applies explicit flags over it
func (pf *pipelineFlags) load(path string) (*config.ProjectConfig, error) {
	configPath := pf.configPath
	if configPath == "" {
		configPath = config.Find(path)
	}
	cfg, err := config.LoadProject(configPath)
	if err != nil {
		return nil, err
	}
	if pf.set["check"] {
		cfg.Build.Check = pf.check
	}
	if pf.set["legacy-operators"] {
		cfg.Build.LegacyOperators = pf.legacyOperators
	}
	return cfg, nil
}

func (pf *pipelineFlags) options(e *env, cfg *config.ProjectConfig) compiler.Options {
	opts := compiler.OptionsFromConfig(cfg)
	opts.Logger = pf.logger(e)
	return opts
}

// single checks that exactly one file argument is present
func single(e *env, fs *flag.FlagSet, name string) (string, bool) {
	if fs.NArg() != 1 {
		fmt.Fprintf(e.stderr, "usage: %s %s <file.quark>\n", tool, name)
		return "", false
	}
	return fs.Arg(0), true
}

func fail(e *env, err error) int {
	fmt.Fprintf(e.stderr, "Error: %v\n", err)
	return exitError
}

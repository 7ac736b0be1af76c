// Package main is the quark compiler: one .quark source in, one native
// binary out, by way of generated C and the system C compiler.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/quark-lang/quark/internal/cli"
	"github.com/quark-lang/quark/internal/compiler"
	"github.com/quark-lang/quark/internal/config"
	"github.com/quark-lang/quark/internal/driver"
)

const tool = "quarkc"

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	output          string
	cc              string
	configPath      string
	keepC           bool
	emitC           bool
	check           bool
	legacyOperators bool
	verbose         bool
	debug           bool
	version         bool
	help            bool
}

func newFlagSet(stderr io.Writer, f *flags) *flag.FlagSet {
	fs := flag.NewFlagSet(tool, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr, fs) }

	fs.StringVar(&f.output, "o", "", "output binary path (default: source name without extension)")
	fs.StringVar(&f.cc, "cc", "", "C compiler to invoke (cc, gcc, clang, tcc)")
	fs.StringVar(&f.configPath, "config", "", "project manifest (default: quark.json next to the source)")
	fs.BoolVar(&f.keepC, "keep-c", false, "keep the generated C file")
	fs.BoolVar(&f.emitC, "emit-c", false, "print the generated C and stop")
	fs.BoolVar(&f.check, "check", true, "type-check before generating C")
	fs.BoolVar(&f.legacyOperators, "legacy-operators", false, "parse binary operators flat and right-grouped")
	fs.BoolVar(&f.verbose, "verbose", false, "verbose output")
	fs.BoolVar(&f.debug, "debug", false, "debug output")
	fs.BoolVar(&f.version, "version", false, "show version information")
	fs.BoolVar(&f.help, "help", false, "show help information")
	return fs
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Quark Compiler")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintf(w, "    %s [OPTIONS] <FILE.quark>\n", tool)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintf(w, "    %s hello.quark\n", tool)
	fmt.Fprintf(w, "    %s -o bin/hello --cc clang hello.quark\n", tool)
	fmt.Fprintf(w, "    %s --emit-c hello.quark\n", tool)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var f flags
	fs := newFlagSet(stderr, &f)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}

	switch {
	case f.version:
		cli.PrintVersion(stdout, "Quark Compiler", false)
		return exitOK
	case f.help:
		usage(stdout, fs)
		return exitOK
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "Error: expected exactly one source file, got %d\n\n", fs.NArg())
		usage(stderr, fs)
		return exitUsage
	}
	path := fs.Arg(0)

	logger := cli.NewLoggerTo(stderr, f.verbose, f.debug, false)
	if file, ok := stderr.(*os.File); ok {
		logger = cli.NewLoggerTo(stderr, f.verbose, f.debug, cli.ColorEnabled(file))
	}

	if err := build(ctx, path, &f, explicitFlags(fs), stdout, logger); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

// explicitFlags reports which flags appeared on the command line; only
// those override the manifest
func explicitFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return set
}

func build(ctx context.Context, path string, f *flags, set map[string]bool, stdout io.Writer, logger *cli.Logger) error {
	if err := driver.ValidateSourcePath(path); err != nil {
		return err
	}

	configPath := f.configPath
	if configPath == "" {
		configPath = config.Find(path)
	}
	cfg, err := config.LoadProject(configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg, f, set)

	opts := compiler.OptionsFromConfig(cfg)
	opts.Logger = logger
	out, err := compiler.CompileFile(path, opts)
	if err != nil {
		return err
	}

	if f.emitC {
		_, err := io.WriteString(stdout, out.Source())
		return err
	}

	timeout, err := cfg.Build.TimeoutDuration()
	if err != nil {
		return err
	}
	d := driver.New(cfg.Build.CC)
	d.CFlags = cfg.Build.CFlags
	d.KeepC = cfg.Build.KeepC
	d.Timeout = timeout
	d.Logger = logger

	output := outputPath(path, f.output, cfg)
	artifact, err := d.Build(ctx, out.Source(), output)
	if err != nil {
		return err
	}
	logger.Info("built %s", artifact.Binary)
	if artifact.CFile != "" {
		logger.Info("kept %s", artifact.CFile)
	}
	return nil
}

func applyFlags(cfg *config.ProjectConfig, f *flags, set map[string]bool) {
	if set["cc"] {
		cfg.Build.CC = f.cc
	}
	if set["keep-c"] {
		cfg.Build.KeepC = f.keepC
	}
	if set["check"] {
		cfg.Build.Check = f.check
	}
	if set["legacy-operators"] {
		cfg.Build.LegacyOperators = f.legacyOperators
	}
}

// outputPath picks -o, then the manifest's output (relative to the
// source directory), then the source path without its extension
func outputPath(source, flagOutput string, cfg *config.ProjectConfig) string {
	switch {
	case flagOutput != "":
		return flagOutput
	case cfg.Build.Output != "":
		if filepath.IsAbs(cfg.Build.Output) {
			return cfg.Build.Output
		}
		return filepath.Join(filepath.Dir(source), cfg.Build.Output)
	}
	return strings.TrimSuffix(source, filepath.Ext(source))
}

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/quark-lang/quark/internal/cli"
	"github.com/quark-lang/quark/internal/compiler"
	"github.com/quark-lang/quark/internal/driver"
)

// builder compiles one source into a binary; swapped out in tests
type builder func(ctx context.Context, path string) (string, error)

func runBuild(e *env, args []string) int {
	var pf pipelineFlags
	fs := newFlagSet(e, "build", &pf)
	jobs := fs.Int("jobs", runtime.NumCPU(), "number of files compiled in parallel")
	cc := fs.String("cc", "", "C compiler to invoke (cc, gcc, clang, tcc)")
	keepC := fs.Bool("keep-c", false, "keep the generated C files")
	outDir := fs.String("out-dir", "", "directory for binaries (default: next to each source)")
	if code, ok := parse(fs, &pf, args); !ok {
		return code
	}
	if err := cli.ValidateArgs(fs.Args(), 1, "quark build [OPTIONS] <file.quark>..."); err != nil {
		fmt.Fprintln(e.stderr, err)
		return exitUsage
	}

	logger := pf.logger(e)
	build := func(ctx context.Context, path string) (string, error) {
		if err := driver.ValidateSourcePath(path); err != nil {
			return "", err
		}
		cfg, err := pf.load(path)
		if err != nil {
			return "", err
		}
		if pf.set["cc"] {
			cfg.Build.CC = *cc
		}
		if pf.set["keep-c"] {
			cfg.Build.KeepC = *keepC
		}

		opts := pf.options(e, cfg)
		out, err := compiler.CompileFile(path, opts)
		if err != nil {
			return "", err
		}

		timeout, err := cfg.Build.TimeoutDuration()
		if err != nil {
			return "", err
		}
		d := driver.New(cfg.Build.CC)
		d.CFlags = cfg.Build.CFlags
		d.KeepC = cfg.Build.KeepC
		d.Timeout = timeout
		d.Logger = logger

		artifact, err := d.Build(ctx, out.Source(), binaryPath(path, *outDir))
		if err != nil {
			return "", err
		}
		return artifact.Binary, nil
	}

	failed := buildAll(e.ctx, fs.Args(), *jobs, build, logger)
	if len(failed) > 0 {
		for _, f := range failed {
			fmt.Fprintf(e.stderr, "%s: %v\n", f.path, f.err)
		}
		return exitError
	}
	return exitOK
}

type buildFailure struct {
	path string
	err  error
}

// buildAll compiles every path with at most jobs in flight. A failing file
// does not cancel the others; failures come back in argument order.
func buildAll(ctx context.Context, paths []string, jobs int, build builder, logger *cli.Logger) []buildFailure {
	if jobs < 1 {
		jobs = 1
	}

	// goroutines never return an error, so only the parent ctx cancels
	var g errgroup.Group
	g.SetLimit(jobs)

	var mu sync.Mutex
	errs := make([]error, len(paths))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			binary, err := build(ctx, path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[i] = err
				return nil
			}
			logger.Info("built %s -> %s", path, binary)
			return nil
		})
	}
	_ = g.Wait()

	var failed []buildFailure
	for i, err := range errs {
		if err != nil {
			failed = append(failed, buildFailure{path: paths[i], err: err})
		}
	}
	return failed
}

// binaryPath strips the source extension, optionally relocating into dir
func binaryPath(source, dir string) string {
	base := strings.TrimSuffix(source, filepath.Ext(source))
	if dir == "" {
		return base
	}
	return filepath.Join(dir, filepath.Base(base))
}

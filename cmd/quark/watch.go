package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/quark-lang/quark/internal/compiler"
	"github.com/quark-lang/quark/internal/driver"
	"github.com/quark-lang/quark/internal/watch"
)

func runWatch(e *env, args []string) int {
	var pf pipelineFlags
	fs := newFlagSet(e, "watch", &pf)
	output := fs.String("o", "", "write C to this file instead of stdout")
	debounce := fs.Duration("debounce", watch.DefaultDebounce, "quiet period before recompiling")
	if code, ok := parse(fs, &pf, args); !ok {
		return code
	}
	path, ok := single(e, fs, "watch")
	if !ok {
		return exitUsage
	}
	if err := driver.ValidateSourcePath(path); err != nil {
		return fail(e, err)
	}

	logger := pf.logger(e)
	emit := func() error {
		cfg, err := pf.load(path)
		if err != nil {
			return err
		}
		out, err := compiler.CompileFile(path, pf.options(e, cfg))
		if err != nil {
			return err
		}
		return writeC(e.stdout, *output, out.Source())
	}

	w, err := watch.New(path)
	if err != nil {
		return fail(e, err)
	}
	defer w.Close()
	w.Debounce = *debounce
	w.Logger = logger

	// first build before any change arrives
	if err := emit(); err != nil {
		logger.Error("%v", err)
	}
	logger.Info("watching %s", w.Path())

	err = w.Run(e.ctx, func(ev watch.Event) error {
		logger.Info("%s changed (%s) at %s", path, ev.Op, ev.Time.Format(time.TimeOnly))
		return emit()
	})
	if err != nil {
		return fail(e, err)
	}
	return exitOK
}

func writeC(stdout io.Writer, output, source string) error {
	if output == "" {
		_, err := io.WriteString(stdout, source)
		return err
	}
	if err := os.WriteFile(output, []byte(source), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	return nil
}

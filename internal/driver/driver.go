// Package driver hands generated C to the system C compiler.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/quark-lang/quark/internal/cli"
)

// DefaultTimeout bounds a single C compiler run
const DefaultTimeout = 60 * time.Second

// Runner executes an external command. The default runner uses os/exec;
// tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, args, env []string) ([]byte, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run starts name and waits for it, returning combined output
func (ExecRunner) Run(ctx context.Context, name string, args, env []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = env
	return cmd.CombinedOutput()
}

// Driver compiles C source into a native binary
type Driver struct {
	CC      string
	CFlags  []string
	Timeout time.Duration
	// KeepC leaves the intermediate .c file next to the binary
	KeepC bool

	Runner Runner
	Logger *cli.Logger
}

// New creates a driver for the given compiler with default settings
func New(cc string) *Driver {
	return &Driver{CC: cc, Timeout: DefaultTimeout, Runner: ExecRunner{}}
}

// Artifact describes the outcome of a successful build
type Artifact struct {
	Binary string
	// CFile is the intermediate file, empty once it has been removed
	CFile string
	// Output is whatever the C compiler printed, usually warnings
	Output []byte
}

// CompileError reports a failed C compiler run together with its output
type CompileError struct {
	CC     string
	Output string
	Err    error
}

func (e *CompileError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", e.CC, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *CompileError) Unwrap() error { return e.Err }

// IntermediatePath returns the .c file used for output: the output path
// with its extension replaced.
func IntermediatePath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".c"
}

// Args builds the compiler argument list
func (d *Driver) Args(cfile, output string) []string {
	args := make([]string, 0, len(d.CFlags)+4)
	args = append(args, "-std=c99")
	args = append(args, d.CFlags...)
	return append(args, cfile, "-o", output)
}

// Build writes source to the intermediate file, runs the C compiler and
// removes the intermediate file again unless KeepC is set. The file is
// removed on failure too.
func (d *Driver) Build(ctx context.Context, source, output string) (*Artifact, error) {
	if err := ValidateCompiler(d.CC); err != nil {
		return nil, err
	}
	if err := validatePath(output); err != nil {
		return nil, fmt.Errorf("invalid output path: %w", err)
	}

	cfile := IntermediatePath(output)
	if cfile == output {
		return nil, fmt.Errorf("output %s would overwrite the intermediate C file", output)
	}
	args := d.Args(cfile, output)
	for i, arg := range args {
		if err := validateArgument(arg); err != nil {
			return nil, fmt.Errorf("invalid argument %d '%s': %w", i, arg, err)
		}
	}

	if err := os.WriteFile(cfile, []byte(source), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", cfile, err)
	}
	d.Logger.Debug("wrote %s (%d bytes)", cfile, len(source))

	artifact := &Artifact{Binary: output, CFile: cfile}
	defer func() {
		if d.KeepC {
			return
		}
		if err := os.Remove(cfile); err != nil && !errors.Is(err, os.ErrNotExist) {
			d.Logger.Warn("failed to remove %s: %v", cfile, err)
			return
		}
		artifact.CFile = ""
	}()

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	runner := d.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	d.Logger.Info("%s %s", d.CC, strings.Join(args, " "))
	out, err := runner.Run(ctx, d.CC, args, secureEnvironment())
	artifact.Output = out
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("timed out after %s: %w", timeout, ctx.Err())
		}
		return nil, &CompileError{CC: d.CC, Output: string(out), Err: err}
	}
	return artifact, nil
}

// secureEnvironment returns a minimal environment for the C compiler
func secureEnvironment() []string {
	env := []string{"PATH=" + os.Getenv("PATH")}
	for _, key := range []string{"HOME", "TMPDIR", "TEMP", "TMP", "SystemRoot"} {
		if v, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+v)
		}
	}
	return env
}

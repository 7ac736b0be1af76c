// Package config loads the quark.json project manifest.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	semver "github.com/Masterminds/semver/v3"

	"github.com/quark-lang/quark/internal/cli"
	"github.com/quark-lang/quark/internal/driver"
)

// FileName is the manifest looked up in a project directory
const FileName = "quark.json"

// ProjectConfig is the content of quark.json
type ProjectConfig struct {
	Name        string       `json:"name"`
	Version     string       `json:"version"`
	Description string       `json:"description,omitempty"`
	Language    string       `json:"language"`
	Build       BuildOptions `json:"build"`
}

// BuildOptions controls compilation
type BuildOptions struct {
	CC              string   `json:"cc"`
	CFlags          []string `json:"cflags"`
	Output          string   `json:"output,omitempty"`
	KeepC           bool     `json:"keep_c"`
	Check           bool     `json:"check"`
	LegacyOperators bool     `json:"legacy_operators"`
	PrintNewline    bool     `json:"print_newline"`
	Timeout         string   `json:"timeout"`
}

// Default returns the configuration used when no manifest exists. The C
// compiler defaults to $CC when that names an allowed compiler.
func Default() *ProjectConfig {
	cc := "cc"
	if env := os.Getenv("CC"); env != "" && driver.ValidateCompiler(env) == nil {
		cc = env
	}
	return &ProjectConfig{
		Name:     "quark-project",
		Version:  "0.1.0",
		Language: ">= " + cli.LanguageVersion,
		Build: BuildOptions{
			CC:           cc,
			CFlags:       []string{"-O2"},
			Check:        true,
			PrintNewline: true,
			Timeout:      driver.DefaultTimeout.String(),
		},
	}
}

// LoadProject reads the manifest at path. A missing file yields the
// defaults; fields absent from the file keep their default values.
func LoadProject(path string) (*ProjectConfig, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return config, nil
}

// Find returns the manifest path for a source file: quark.json in the
// same directory.
func Find(sourcePath string) string {
	return filepath.Join(filepath.Dir(sourcePath), FileName)
}

// Save writes the manifest, creating its directory if needed
func (c *ProjectConfig) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Init writes a default manifest into dir. It refuses to overwrite.
func Init(dir string) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("configuration file already exists: %s", path)
	}

	config := Default()
	if abs, err := filepath.Abs(dir); err == nil {
		config.Name = filepath.Base(abs)
	}
	config.Description = "A quark project"
	return path, config.Save(path)
}

// Validate checks versions, the compiler and the timeout
func (c *ProjectConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("project name is required")
	}
	if _, err := semver.NewVersion(c.Version); err != nil {
		return fmt.Errorf("project version %q: %w", c.Version, err)
	}

	if c.Language != "" {
		constraint, err := semver.NewConstraint(c.Language)
		if err != nil {
			return fmt.Errorf("language constraint %q: %w", c.Language, err)
		}
		current := semver.MustParse(cli.LanguageVersion)
		if ok, reasons := constraint.Validate(current); !ok {
			return fmt.Errorf("language %s does not satisfy %q: %v", cli.LanguageVersion, c.Language, reasons)
		}
	}

	if err := driver.ValidateCompiler(c.Build.CC); err != nil {
		return err
	}
	if _, err := c.Build.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration parses Timeout. Empty means the driver default.
func (b BuildOptions) TimeoutDuration() (time.Duration, error) {
	if b.Timeout == "" {
		return driver.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(b.Timeout)
	if err != nil {
		return 0, fmt.Errorf("build timeout %q: %w", b.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("build timeout must be positive, got %s", d)
	}
	return d, nil
}

package driver

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SourceExtension is the file extension of quark sources
const SourceExtension = ".quark"

// AllowedCompilers lists the C compilers the driver will run, by base name
var AllowedCompilers = []string{"cc", "gcc", "clang", "tcc"}

const maxPathLength = 4096

// ValidateCompiler checks that name refers to an allowed C compiler. A
// path is accepted when its base name is allowed, e.g. /usr/bin/gcc.
func ValidateCompiler(name string) error {
	if name == "" {
		return fmt.Errorf("no C compiler configured")
	}
	if strings.ContainsAny(name, "\x00 ") {
		return fmt.Errorf("invalid C compiler name %q", name)
	}

	base := filepath.Base(filepath.Clean(name))
	// Remove extension for Windows compatibility.
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}

	for _, allowed := range AllowedCompilers {
		if strings.EqualFold(base, allowed) {
			return nil
		}
	}
	return fmt.Errorf("C compiler %q not in allowed list %v", base, AllowedCompilers)
}

// ValidateSourcePath checks a source file path before it is read
func ValidateSourcePath(path string) error {
	if err := validatePath(path); err != nil {
		return err
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != SourceExtension {
		return fmt.Errorf("invalid file extension '%s', expected %s", ext, SourceExtension)
	}
	return nil
}

// validateArgument rejects compiler arguments that could not have come
// from a well-formed build, such as shell metacharacters in a flag.
func validateArgument(arg string) error {
	if len(arg) > maxPathLength {
		return fmt.Errorf("argument too long")
	}
	if strings.Contains(arg, "\x00") {
		return fmt.Errorf("null byte in argument")
	}

	injectionPatterns := []string{
		";", "&", "|", "`", // Command separators and substitution
		"$(", "${", // Variable/command substitution
		">", "<", // Redirection
		"\n", "\r",
	}
	for _, pattern := range injectionPatterns {
		if strings.Contains(arg, pattern) {
			return fmt.Errorf("potential command injection pattern: %q", pattern)
		}
	}
	return nil
}

func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	if len(path) > maxPathLength {
		return fmt.Errorf("path too long: %d characters (max: %d)", len(path), maxPathLength)
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("null byte in path")
	}
	return nil
}

// Package validation provides input checks applied before sysutil spawns child
// processes or touches the filesystem: command allowlisting, argument and path
// inspection, and input sanitization.
package validation

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/milkywaygod2/sysutil/internal/errors"
)

// ValidateArgument rejects arguments containing shell metacharacters. Arguments
// are always passed as argv entries, never through a shell, so anything that
// only makes sense to a shell is treated as an injection attempt.
func ValidateArgument(arg string) error {
	dangerous := []string{";", "&", "|", "$", "`", "<", ">", "\n"}
	for _, char := range dangerous {
		if strings.Contains(arg, char) {
			return errors.NewValidationError(errors.ErrCodeInvalidArgument,
				fmt.Sprintf("argument contains dangerous character %q", char))
		}
	}

	if strings.Contains(arg, "\x00") {
		return errors.NewValidationError(errors.ErrCodeInvalidArgument,
			"argument contains null byte")
	}

	return nil
}

// ValidateCommand validates a command name against an allowlist. An empty
// allowlist permits any command name that passes the argument checks.
func ValidateCommand(command string, allowed map[string]bool) error {
	if command == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidArgument, "command cannot be empty")
	}

	if len(allowed) > 0 && !allowed[filepath.Base(command)] {
		return errors.NewValidationError(errors.ErrCodeInvalidArgument,
			fmt.Sprintf("command %q is not allowed", command))
	}

	return ValidateArgument(command)
}

// ValidatePath validates a file path to prevent path traversal outside the
// caller's intended tree.
func ValidatePath(path string) error {
	if path == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidPath, "path cannot be empty")
	}

	if strings.Contains(path, "\x00") {
		return errors.NewValidationError(errors.ErrCodeInvalidPath, "path contains null byte")
	}

	clean := filepath.Clean(path)
	if strings.Contains(clean, "..") {
		return errors.NewValidationError(errors.ErrCodePathTraversal,
			"path traversal detected: "+path)
	}

	return nil
}

// ValidatePathWithin asserts that path resolves underneath base. Used by the
// archive extractors to block zip-slip entries.
func ValidatePathWithin(base, path string) error {
	resolved := filepath.Join(base, path)
	rel, err := filepath.Rel(base, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errors.NewValidationError(errors.ErrCodePathTraversal,
			fmt.Sprintf("entry %q escapes %q", path, base))
	}

	return nil
}

// ValidateURL checks that a URL parses and uses an http(s) scheme.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeValidationFailed,
			"invalid URL: "+raw)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.NewValidationError(errors.ErrCodeValidationFailed,
			fmt.Sprintf("unsupported URL scheme %q: only http and https are allowed", u.Scheme))
	}

	return nil
}

// SanitizeInput removes null bytes and control characters except common
// whitespace from user input.
func SanitizeInput(input string) string {
	var sanitized strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' || r == '\r' {
			if r != 0x7f {
				sanitized.WriteRune(r)
			}
		}
	}

	return sanitized.String()
}

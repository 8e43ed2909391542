// Package envvars wraps environment-variable access for the current process
// plus best-effort persistent scope (setx / shell rc files).
package envvars

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/milkywaygod2/sysutil/internal/errors"
	"github.com/milkywaygod2/sysutil/internal/shellexec"
)

// Position selects where AddToPath inserts a directory.
type Position string

const (
	PositionStart Position = "start"
	PositionEnd   Position = "end"
)

// Get returns the value of an environment variable, or fallback when unset.
func Get(name, fallback string) string {
	if value, ok := os.LookupEnv(name); ok {
		return value
	}
	return fallback
}

// Set sets an environment variable for the current process.
func Set(name, value string) error {
	if err := os.Setenv(name, value); err != nil {
		return errors.NewEnvError(errors.ErrCodeInvalidArgument, "failed to set "+name, err)
	}
	return nil
}

// Unset removes an environment variable from the current process.
func Unset(name string) error {
	if err := os.Unsetenv(name); err != nil {
		return errors.NewEnvError(errors.ErrCodeInvalidArgument, "failed to unset "+name, err)
	}
	return nil
}

// Exists reports whether an environment variable is set.
func Exists(name string) bool {
	_, ok := os.LookupEnv(name)
	return ok
}

// All returns every environment variable as a map.
func All() map[string]string {
	env := make(map[string]string)
	for _, entry := range os.Environ() {
		if key, value, ok := strings.Cut(entry, "="); ok {
			env[key] = value
		}
	}
	return env
}

// Expand replaces ${var} or $var references with their values.
func Expand(text string) string {
	return os.ExpandEnv(text)
}

// PathList returns PATH split into its directories, empty entries dropped.
func PathList() []string {
	var dirs []string
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// AddToPath inserts a directory into the process PATH. Adding a directory that
// is already present is a no-op.
func AddToPath(dir string, pos Position) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return errors.NewEnvError(errors.ErrCodeInvalidPath, "cannot resolve directory", err).WithPath(dir)
	}

	dirs := PathList()
	if slices.Contains(dirs, abs) {
		return nil
	}

	if pos == PositionStart {
		dirs = append([]string{abs}, dirs...)
	} else {
		dirs = append(dirs, abs)
	}

	return Set("PATH", strings.Join(dirs, string(os.PathListSeparator)))
}

// RemoveFromPath removes a directory from the process PATH. Removing a
// directory that is absent is a no-op.
func RemoveFromPath(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return errors.NewEnvError(errors.ErrCodeInvalidPath, "cannot resolve directory", err).WithPath(dir)
	}

	dirs := PathList()
	kept := slices.DeleteFunc(dirs, func(d string) bool { return d == abs })

	return Set("PATH", strings.Join(kept, string(os.PathListSeparator)))
}

// SetPermanent sets a variable for the current process and persists it: via
// setx on Windows, via an export line appended to the user's shell rc
// elsewhere. The persisted value takes effect in future sessions only.
func SetPermanent(ctx context.Context, name, value string) error {
	if err := Set(name, value); err != nil {
		return err
	}

	if runtime.GOOS == "windows" {
		result, err := shellexec.Run(ctx, fmt.Sprintf(`setx %s "%s"`, name, value), shellexec.Options{Shell: true})
		if err != nil {
			return err
		}
		if !result.Success() {
			return errors.NewEnvError(errors.ErrCodeCommandFailed,
				"setx exited non-zero", nil).WithContext("stderr", result.Stderr)
		}
		return nil
	}

	return appendToShellRC(fmt.Sprintf("\nexport %s=%q\n", name, value))
}

// UnsetPermanent removes a variable from the current process and, on Windows,
// from the persistent user environment.
func UnsetPermanent(ctx context.Context, name string) error {
	if err := Unset(name); err != nil {
		return err
	}

	if runtime.GOOS == "windows" {
		_, err := shellexec.Run(ctx,
			fmt.Sprintf(`reg delete HKCU\Environment /v %s /f`, name),
			shellexec.Options{Shell: true})
		return err
	}

	return nil
}

// SystemEnv returns the machine-wide environment on Windows, read from the
// session-manager registry key through reg query. On other platforms the map
// is empty.
func SystemEnv(ctx context.Context) (map[string]string, error) {
	env := make(map[string]string)
	if runtime.GOOS != "windows" {
		return env, nil
	}

	result, err := shellexec.Run(ctx,
		`reg query "HKLM\SYSTEM\CurrentControlSet\Control\Session Manager\Environment"`,
		shellexec.Options{Shell: true})
	if err != nil {
		return nil, err
	}

	for _, line := range strings.Split(result.Stdout, "\n") {
		if !strings.Contains(line, "REG_") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) >= 3 {
			env[parts[0]] = strings.Join(parts[2:], " ")
		}
	}

	return env, nil
}

func appendToShellRC(line string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return errors.NewEnvError(errors.ErrCodeInvalidPath, "cannot locate home directory", err)
	}

	rc := filepath.Join(home, ".bashrc")
	f, err := os.OpenFile(rc, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.NewEnvError(errors.ErrCodeInvalidPath, "cannot open shell rc", err).WithPath(rc)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return errors.NewEnvError(errors.ErrCodeInvalidPath, "cannot write shell rc", err).WithPath(rc)
	}

	return nil
}

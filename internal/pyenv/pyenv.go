// Package pyenv manages Python virtual environments: creation, package
// installation through the environment's pip, and interpreter resolution
// across the Windows and POSIX venv layouts.
package pyenv

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/milkywaygod2/sysutil/internal/errors"
	"github.com/milkywaygod2/sysutil/internal/logging"
	"github.com/milkywaygod2/sysutil/internal/shellexec"
)

// Manager creates and operates virtual environments using a base Python
// interpreter.
type Manager struct {
	// Python is the base interpreter used to create environments.
	// Defaults to "python" on Windows and "python3" elsewhere.
	Python string
	Logger logging.Logger
}

// NewManager returns a Manager with the platform-default interpreter.
func NewManager(logger logging.Logger) *Manager {
	python := "python3"
	if runtime.GOOS == "windows" {
		python = "python"
	}
	if logger == nil {
		logger = logging.NewLogger(nil)
	}
	return &Manager{Python: python, Logger: logger}
}

// CreateOptions control virtual environment creation.
type CreateOptions struct {
	SystemSitePackages bool
	WithoutPip         bool
	// Clear recreates the environment when the directory already holds one.
	Clear bool
}

// Create makes a virtual environment at path. An existing environment is
// an error unless opts.Clear is set.
func (m *Manager) Create(ctx context.Context, path string, opts CreateOptions) error {
	if IsVenv(path) && !opts.Clear {
		return errors.NewVenvError(errors.ErrCodeVenvExists,
			"virtual environment already exists", nil).WithPath(path)
	}

	argv := []string{m.Python, "-m", "venv"}
	if opts.SystemSitePackages {
		argv = append(argv, "--system-site-packages")
	}
	if opts.WithoutPip {
		argv = append(argv, "--without-pip")
	}
	if opts.Clear {
		argv = append(argv, "--clear")
	}
	argv = append(argv, path)

	m.Logger.Info(ctx, "creating virtual environment", "path", path, "python", m.Python)
	result, err := shellexec.RunArgs(ctx, argv, shellexec.Options{})
	if err != nil {
		return err
	}
	if !result.Success() {
		return errors.NewVenvError(errors.ErrCodeCommandFailed,
			"venv creation failed", nil).
			WithPath(path).
			WithContext("stderr", result.Stderr)
	}
	return nil
}

// Remove deletes a virtual environment directory. Paths that do not look
// like a venv are refused.
func (m *Manager) Remove(ctx context.Context, path string) error {
	if !IsVenv(path) {
		return errors.NewVenvError(errors.ErrCodeNotAVenv,
			"refusing to remove: not a virtual environment", nil).WithPath(path)
	}
	m.Logger.Info(ctx, "removing virtual environment", "path", path)
	if err := os.RemoveAll(path); err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath,
			"failed to remove virtual environment", err).WithPath(path)
	}
	return nil
}

// IsVenv reports whether path holds a virtual environment, judged by
// pyvenv.cfg or the interpreter in the platform's binary directory.
func IsVenv(path string) bool {
	if _, err := os.Stat(filepath.Join(path, "pyvenv.cfg")); err == nil {
		return true
	}
	if _, err := os.Stat(PythonPath(path)); err == nil {
		return true
	}
	return false
}

// binDir returns the environment's executable directory per platform
// layout.
func binDir(venv string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(venv, "Scripts")
	}
	return filepath.Join(venv, "bin")
}

// PythonPath returns the environment's interpreter path.
func PythonPath(venv string) string {
	name := "python"
	if runtime.GOOS == "windows" {
		name = "python.exe"
	}
	return filepath.Join(binDir(venv), name)
}

// PipPath returns the environment's pip path.
func PipPath(venv string) string {
	name := "pip"
	if runtime.GOOS == "windows" {
		name = "pip.exe"
	}
	return filepath.Join(binDir(venv), name)
}

func (m *Manager) requireVenv(venv string) error {
	if !IsVenv(venv) {
		return errors.NewVenvError(errors.ErrCodeVenvNotFound,
			"virtual environment not found", nil).WithPath(venv)
	}
	return nil
}

// pip runs the environment's pip via `python -m pip`, which survives pip
// upgrading itself on Windows.
func (m *Manager) pip(ctx context.Context, venv string, args ...string) (shellexec.Result, error) {
	if err := m.requireVenv(venv); err != nil {
		return shellexec.Result{ExitCode: -1}, err
	}
	argv := append([]string{PythonPath(venv), "-m", "pip"}, args...)
	return shellexec.RunArgs(ctx, argv, shellexec.Options{})
}

// InstallOptions select what Install puts into the environment. Exactly
// one of Package or Requirements should be set.
type InstallOptions struct {
	Package      string
	Version      string // exact pin for Package, e.g. "2.31.0"
	Requirements string // path to a requirements file
	Upgrade      bool
}

// Install installs a package or a requirements file into the environment.
func (m *Manager) Install(ctx context.Context, venv string, opts InstallOptions) error {
	args := []string{"install"}
	var what string
	switch {
	case opts.Requirements != "":
		if _, err := os.Stat(opts.Requirements); err != nil {
			return errors.ErrFileNotFound(opts.Requirements)
		}
		args = append(args, "-r", opts.Requirements)
		what = opts.Requirements
	case opts.Package != "":
		spec := opts.Package
		if opts.Version != "" {
			spec += "==" + opts.Version
		}
		if opts.Upgrade {
			args = append(args, "--upgrade")
		}
		args = append(args, spec)
		what = spec
	default:
		return errors.NewValidationError(errors.ErrCodeInvalidArgument,
			"nothing to install: set Package or Requirements")
	}

	m.Logger.Info(ctx, "installing into virtual environment", "venv", venv, "target", what)
	result, err := m.pip(ctx, venv, args...)
	if err != nil {
		return err
	}
	if !result.Success() {
		return errors.NewVenvError(errors.ErrCodePipMissing,
			"pip install failed for "+what, nil).
			WithPath(venv).
			WithContext("stderr", result.Stderr)
	}
	return nil
}

// Uninstall removes a package from the environment.
func (m *Manager) Uninstall(ctx context.Context, venv, pkg string) error {
	result, err := m.pip(ctx, venv, "uninstall", "-y", pkg)
	if err != nil {
		return err
	}
	if !result.Success() {
		return errors.NewVenvError(errors.ErrCodeCommandFailed,
			"pip uninstall failed for "+pkg, nil).
			WithPath(venv).
			WithContext("stderr", result.Stderr)
	}
	return nil
}

// Package identifies one installed distribution.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Packages lists the distributions installed in the environment.
func (m *Manager) Packages(ctx context.Context, venv string) ([]Package, error) {
	result, err := m.pip(ctx, venv, "list", "--format=json")
	if err != nil {
		return nil, err
	}
	if !result.Success() {
		return nil, errors.NewVenvError(errors.ErrCodePipMissing,
			"pip list failed", nil).WithPath(venv).
			WithContext("stderr", result.Stderr)
	}

	var packages []Package
	if err := json.Unmarshal([]byte(result.Stdout), &packages); err != nil {
		return nil, errors.NewVenvError(errors.ErrCodeValidationFailed,
			"failed to parse pip list output", err).WithPath(venv)
	}
	return packages, nil
}

// UpgradePip upgrades the environment's pip itself.
func (m *Manager) UpgradePip(ctx context.Context, venv string) error {
	result, err := m.pip(ctx, venv, "install", "--upgrade", "pip")
	if err != nil {
		return err
	}
	if !result.Success() {
		return errors.NewVenvError(errors.ErrCodePipMissing,
			"pip self-upgrade failed", nil).WithPath(venv).
			WithContext("stderr", result.Stderr)
	}
	return nil
}

// PackageInfo returns the `pip show` fields for an installed package, or
// nil when the package is absent.
func (m *Manager) PackageInfo(ctx context.Context, venv, pkg string) (map[string]string, error) {
	result, err := m.pip(ctx, venv, "show", pkg)
	if err != nil {
		return nil, err
	}
	if !result.Success() {
		return nil, nil
	}
	return parseShowOutput(result.Stdout), nil
}

// parseShowOutput parses the "Key: value" lines pip show emits.
func parseShowOutput(output string) map[string]string {
	info := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		info[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return info
}

// Freeze writes `pip freeze` output to w.
func (m *Manager) Freeze(ctx context.Context, venv string, w io.Writer) error {
	result, err := m.pip(ctx, venv, "freeze")
	if err != nil {
		return err
	}
	if !result.Success() {
		return errors.NewVenvError(errors.ErrCodePipMissing,
			"pip freeze failed", nil).WithPath(venv).
			WithContext("stderr", result.Stderr)
	}
	_, err = io.WriteString(w, result.Stdout)
	return err
}

// FreezeToFile writes `pip freeze` output to a requirements file.
func (m *Manager) FreezeToFile(ctx context.Context, venv, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath,
			"failed to create requirements file", err).WithPath(path)
	}
	defer f.Close()
	return m.Freeze(ctx, venv, f)
}

// RunIn executes argv inside the environment: a leading "python" (or
// "python3") is replaced by the venv interpreter, anything else is looked
// up in the venv's binary directory first.
func (m *Manager) RunIn(ctx context.Context, venv string, argv []string, opts shellexec.Options) (shellexec.Result, error) {
	if err := m.requireVenv(venv); err != nil {
		return shellexec.Result{ExitCode: -1}, err
	}
	if len(argv) == 0 {
		return shellexec.Result{ExitCode: -1},
			errors.NewValidationError(errors.ErrCodeInvalidArgument, "empty command")
	}

	resolved := append([]string(nil), argv...)
	switch argv[0] {
	case "python", "python3", "python.exe":
		resolved[0] = PythonPath(venv)
	default:
		candidate := filepath.Join(binDir(venv), argv[0])
		if runtime.GOOS == "windows" && filepath.Ext(candidate) == "" {
			candidate += ".exe"
		}
		if _, err := os.Stat(candidate); err == nil {
			resolved[0] = candidate
		}
	}

	return shellexec.RunArgs(ctx, resolved, opts)
}

// Info describes a virtual environment.
type Info struct {
	Path       string
	PythonPath string
	PipPath    string
	Config     map[string]string // pyvenv.cfg key/values
}

// Info reads the environment's pyvenv.cfg and resolved paths.
func (m *Manager) Info(venv string) (*Info, error) {
	if err := m.requireVenv(venv); err != nil {
		return nil, err
	}

	info := &Info{
		Path:       venv,
		PythonPath: PythonPath(venv),
		PipPath:    PipPath(venv),
		Config:     make(map[string]string),
	}

	data, err := os.ReadFile(filepath.Join(venv, "pyvenv.cfg"))
	if err == nil {
		scanner := bufio.NewScanner(strings.NewReader(string(data)))
		for scanner.Scan() {
			key, value, ok := strings.Cut(scanner.Text(), "=")
			if !ok {
				continue
			}
			info.Config[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}
	return info, nil
}

// EnsureVenvName guards against venv directory names that would collide
// with pip arguments.
func EnsureVenvName(name string) error {
	if name == "" || strings.HasPrefix(name, "-") {
		return errors.NewValidationError(errors.ErrCodeInvalidArgument,
			fmt.Sprintf("invalid environment name %q", name))
	}
	return nil
}

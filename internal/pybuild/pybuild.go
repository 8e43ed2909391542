// Package pybuild packages Python scripts into standalone executables with
// PyInstaller. The packager always runs through a concrete interpreter via
// `-m PyInstaller`, so a build targets exactly the environment whose
// packages it should bundle.
package pybuild

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/milkywaygod2/sysutil/internal/errors"
	"github.com/milkywaygod2/sysutil/internal/logging"
	"github.com/milkywaygod2/sysutil/internal/pyenv"
	"github.com/milkywaygod2/sysutil/internal/shellexec"
)

// Builder drives PyInstaller through a Python interpreter.
type Builder struct {
	// Python is the interpreter whose environment hosts the packager.
	Python string
	Logger *logging.SysLogger
}

// NewBuilder returns a Builder bound to the given interpreter. An empty
// interpreter falls back to the platform default.
func NewBuilder(python string, logger *logging.SysLogger) *Builder {
	if python == "" {
		python = "python3"
		if runtime.GOOS == "windows" {
			python = "python"
		}
	}
	if logger == nil {
		logger = logging.NewLogger(nil)
	}
	return &Builder{Python: python, Logger: logger}
}

// EnsureInstalled probes for PyInstaller in the interpreter's environment
// and installs it via pip when missing.
func (b *Builder) EnsureInstalled(ctx context.Context) error {
	probe, err := shellexec.RunArgs(ctx,
		[]string{b.Python, "-m", "PyInstaller", "--version"}, shellexec.Options{})
	if err == nil && probe.Success() {
		b.Logger.Debug(ctx, "packager present", "version", strings.TrimSpace(probe.Stdout))
		return nil
	}

	b.Logger.Info(ctx, "installing packager", "python", b.Python)
	install, err := shellexec.RunArgs(ctx,
		[]string{b.Python, "-m", "pip", "install", "pyinstaller"}, shellexec.Options{})
	if err != nil {
		return err
	}
	if !install.Success() {
		return errors.NewBuildError(errors.ErrCodePackagerMissing,
			"failed to install pyinstaller", nil).
			WithContext("stderr", install.Stderr)
	}
	return nil
}

// Version returns the installed PyInstaller version, or an error when the
// packager is absent.
func (b *Builder) Version(ctx context.Context) (string, error) {
	result, err := shellexec.RunArgs(ctx,
		[]string{b.Python, "-m", "PyInstaller", "--version"}, shellexec.Options{})
	if err != nil {
		return "", err
	}
	if !result.Success() {
		return "", errors.NewBuildError(errors.ErrCodePackagerMissing,
			"pyinstaller is not installed", nil).
			WithContext("stderr", result.Stderr)
	}
	return strings.TrimSpace(result.Stdout), nil
}

// BuildOptions shape a PyInstaller invocation.
type BuildOptions struct {
	// OneFile bundles everything into a single executable.
	OneFile bool
	// Console keeps the console window on Windows; false builds windowed.
	Console bool
	// Icon is an .ico/.icns path for the executable.
	Icon string
	// AddData lists (src, dest) pairs bundled into the executable, joined
	// with the platform's PyInstaller path separator.
	AddData [][2]string
	// HiddenImports names modules the static analysis misses.
	HiddenImports []string
	// Clean wipes PyInstaller's cache before building.
	Clean bool
	// WorkDir overrides the build/ scratch directory.
	WorkDir string
	// DistDir overrides the dist/ output directory.
	DistDir string
	// Name overrides the executable name derived from the script.
	Name string
}

// dataSep is the --add-data source/dest separator PyInstaller expects.
func dataSep() string {
	if runtime.GOOS == "windows" {
		return ";"
	}
	return ":"
}

func (opts BuildOptions) args(script string) []string {
	args := []string{"--noconfirm"}
	if opts.OneFile {
		args = append(args, "--onefile")
	}
	if !opts.Console {
		args = append(args, "--windowed")
	}
	if opts.Icon != "" {
		args = append(args, "--icon", opts.Icon)
	}
	for _, pair := range opts.AddData {
		args = append(args, "--add-data", pair[0]+dataSep()+pair[1])
	}
	for _, mod := range opts.HiddenImports {
		args = append(args, "--hidden-import", mod)
	}
	if opts.Clean {
		args = append(args, "--clean")
	}
	if opts.WorkDir != "" {
		args = append(args, "--workpath", opts.WorkDir)
	}
	if opts.DistDir != "" {
		args = append(args, "--distpath", opts.DistDir)
	}
	if opts.Name != "" {
		args = append(args, "--name", opts.Name)
	}
	return append(args, script)
}

// executableName derives the output name PyInstaller will use.
func (opts BuildOptions) executableName(script string) string {
	name := opts.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(script), filepath.Ext(script))
	}
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return name
}

// ExecutablePath returns where a successful build places the executable.
func (opts BuildOptions) ExecutablePath(script string) string {
	dist := opts.DistDir
	if dist == "" {
		dist = "dist"
	}
	name := opts.executableName(script)
	if opts.OneFile {
		return filepath.Join(dist, name)
	}
	stem := strings.TrimSuffix(name, ".exe")
	return filepath.Join(dist, stem, name)
}

// Build packages a script and returns the path of the built executable.
func (b *Builder) Build(ctx context.Context, script string, opts BuildOptions) (string, error) {
	if _, err := os.Stat(script); err != nil {
		return "", errors.ErrFileNotFound(script)
	}

	argv := append([]string{b.Python, "-m", "PyInstaller"}, opts.args(script)...)
	b.Logger.Info(ctx, "building executable", "script", script, "onefile", opts.OneFile)

	result, err := shellexec.RunArgs(ctx, argv, shellexec.Options{})
	if err != nil {
		return "", err
	}
	if !result.Success() {
		return "", errors.NewBuildError(errors.ErrCodeBuildFailed,
			fmt.Sprintf("pyinstaller exited with code %d", result.ExitCode), nil).
			WithPath(script).
			WithContext("stderr", tail(result.Stderr, 2000))
	}
	return opts.ExecutablePath(script), nil
}

// tail keeps the last n bytes of s, where build logs carry the error.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// MakeSpec generates a .spec file for a script without building, and
// returns the spec path.
func (b *Builder) MakeSpec(ctx context.Context, script string, opts BuildOptions) (string, error) {
	if _, err := os.Stat(script); err != nil {
		return "", errors.ErrFileNotFound(script)
	}

	argv := append([]string{b.Python, "-m", "PyInstaller.utils.cliutils.makespec"},
		opts.args(script)...)
	result, err := shellexec.RunArgs(ctx, argv, shellexec.Options{})
	if err != nil {
		return "", err
	}
	if !result.Success() {
		return "", errors.NewBuildError(errors.ErrCodeBuildFailed,
			"pyi-makespec failed", nil).WithPath(script).
			WithContext("stderr", result.Stderr)
	}

	stem := strings.TrimSuffix(opts.executableName(script), ".exe")
	return stem + ".spec", nil
}

// CleanArtifacts removes the build/, dist/, and .spec leftovers of a
// previous build of script.
func (b *Builder) CleanArtifacts(script string, opts BuildOptions) error {
	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "build"
	}
	distDir := opts.DistDir
	if distDir == "" {
		distDir = "dist"
	}
	stem := strings.TrimSuffix(opts.executableName(script), ".exe")

	for _, path := range []string{workDir, distDir, stem + ".spec"} {
		if err := os.RemoveAll(path); err != nil {
			return errors.NewIOError(errors.ErrCodeInvalidPath,
				"failed to remove build artifact", err).WithPath(path)
		}
	}
	return nil
}

var importPattern = regexp.MustCompile(`^\s*(?:import\s+([\w.]+)|from\s+([\w.]+)\s+import\b)`)

// AnalyzeImports statically scans a script's import statements and returns
// the top-level module names, deduplicated in first-seen order.
func AnalyzeImports(script string) ([]string, error) {
	f, err := os.Open(script)
	if err != nil {
		return nil, errors.ErrFileNotFound(script)
	}
	defer f.Close()

	seen := make(map[string]bool)
	var modules []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := importPattern.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		module := m[1]
		if module == "" {
			module = m[2]
		}
		top := strings.SplitN(module, ".", 2)[0]
		if !seen[top] {
			seen[top] = true
			modules = append(modules, top)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeValidationFailed,
			"failed to scan script", err).WithPath(script)
	}
	return modules, nil
}

// BuildFromRequirements runs the full packaging pipeline in a fresh
// virtual environment: create the env, install the requirements file,
// install the packager, build. Steps run in order and the first failure
// stops the pipeline with the failing step named. It returns the expected
// executable path.
func (b *Builder) BuildFromRequirements(ctx context.Context, script, requirementsFile, venvDir string, opts BuildOptions) (string, error) {
	if _, err := os.Stat(script); err != nil {
		return "", errors.ErrFileNotFound(script)
	}
	if _, err := os.Stat(requirementsFile); err != nil {
		return "", errors.ErrFileNotFound(requirementsFile)
	}
	if venvDir == "" {
		venvDir = filepath.Join(filepath.Dir(script), ".buildenv")
	}

	manager := &pyenv.Manager{Python: b.Python, Logger: b.Logger}

	step := b.Logger.StartStep("create venv")
	if err := manager.Create(ctx, venvDir, pyenv.CreateOptions{Clear: true}); err != nil {
		step.EndWithError(ctx, err)
		return "", fail("create venv", err)
	}
	step.End(ctx)

	step = b.Logger.StartStep("install requirements")
	err := manager.Install(ctx, venvDir, pyenv.InstallOptions{Requirements: requirementsFile})
	if err != nil {
		step.EndWithError(ctx, err)
		return "", fail("install requirements", err)
	}
	step.End(ctx)

	step = b.Logger.StartStep("install packager")
	envBuilder := &Builder{Python: pyenv.PythonPath(venvDir), Logger: b.Logger}
	if err := envBuilder.EnsureInstalled(ctx); err != nil {
		step.EndWithError(ctx, err)
		return "", fail("install packager", err)
	}
	step.End(ctx)

	step = b.Logger.StartStep("build")
	executable, err := envBuilder.Build(ctx, script, opts)
	if err != nil {
		step.EndWithError(ctx, err)
		return "", fail("build", err)
	}
	step.End(ctx)

	return executable, nil
}

// fail tags a pipeline error with the step that produced it.
func fail(step string, err error) error {
	var se *errors.SysError
	if stderrors.As(err, &se) {
		return se.WithContext("failed_step", step)
	}
	return errors.NewBuildError(errors.ErrCodeBuildFailed, step+" failed", err).
		WithContext("failed_step", step)
}

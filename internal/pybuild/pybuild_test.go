package pybuild

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milkywaygod2/sysutil/internal/errors"
)

func TestBuildOptionsArgs(t *testing.T) {
	opts := BuildOptions{
		OneFile:       true,
		Console:       true,
		Icon:          "app.ico",
		HiddenImports: []string{"pkg_a", "pkg_b"},
		Clean:         true,
		DistDir:       "out",
		Name:          "myapp",
	}

	args := opts.args("main.py")

	assert.Contains(t, args, "--onefile")
	assert.NotContains(t, args, "--windowed")
	assert.Contains(t, args, "--icon")
	assert.Contains(t, args, "app.ico")
	assert.Contains(t, args, "--hidden-import")
	assert.Contains(t, args, "pkg_a")
	assert.Contains(t, args, "--clean")
	assert.Contains(t, args, "--distpath")
	assert.Contains(t, args, "--name")
	assert.Equal(t, "main.py", args[len(args)-1])
}

func TestBuildOptionsWindowedByDefault(t *testing.T) {
	args := BuildOptions{}.args("main.py")
	assert.Contains(t, args, "--windowed")
}

func TestBuildOptionsAddData(t *testing.T) {
	opts := BuildOptions{Console: true, AddData: [][2]string{{"assets", "assets"}}}
	args := opts.args("main.py")

	sep := ":"
	if runtime.GOOS == "windows" {
		sep = ";"
	}
	assert.Contains(t, args, "assets"+sep+"assets")
}

func TestExecutablePath(t *testing.T) {
	ext := ""
	if runtime.GOOS == "windows" {
		ext = ".exe"
	}

	tests := []struct {
		name string
		opts BuildOptions
		want string
	}{
		{
			"onefile default dist",
			BuildOptions{OneFile: true},
			filepath.Join("dist", "main"+ext),
		},
		{
			"onedir layout",
			BuildOptions{},
			filepath.Join("dist", "main", "main"+ext),
		},
		{
			"custom name and dist",
			BuildOptions{OneFile: true, DistDir: "out", Name: "tool"},
			filepath.Join("out", "tool"+ext),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.ExecutablePath("main.py"))
		})
	}
}

func TestAnalyzeImports(t *testing.T) {
	script := filepath.Join(t.TempDir(), "app.py")
	source := `#!/usr/bin/env python
import os
import os.path
from collections import OrderedDict
from requests.adapters import HTTPAdapter
import numpy as np
# import commented_out
x = "import not_code"
`
	require.NoError(t, os.WriteFile(script, []byte(source), 0644))

	modules, err := AnalyzeImports(script)
	require.NoError(t, err)
	assert.Equal(t, []string{"os", "collections", "requests", "numpy"}, modules)
}

func TestAnalyzeImportsMissingFile(t *testing.T) {
	_, err := AnalyzeImports(filepath.Join(t.TempDir(), "absent.py"))
	assert.Error(t, err)
}

func TestBuildMissingScript(t *testing.T) {
	b := NewBuilder("", nil)
	_, err := b.Build(context.Background(), filepath.Join(t.TempDir(), "absent.py"), BuildOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIO))
}

func TestCleanArtifacts(t *testing.T) {
	dir := t.TempDir()
	workDir := filepath.Join(dir, "build")
	distDir := filepath.Join(dir, "dist")
	spec := "app.spec"

	require.NoError(t, os.MkdirAll(filepath.Join(workDir, "app"), 0755))
	require.NoError(t, os.MkdirAll(distDir, 0755))
	require.NoError(t, os.WriteFile(spec, []byte("# spec"), 0644))
	t.Cleanup(func() { os.Remove(spec) })

	b := NewBuilder("", nil)
	opts := BuildOptions{WorkDir: workDir, DistDir: distDir, Name: "app"}
	require.NoError(t, b.CleanArtifacts("app.py", opts))

	assert.NoDirExists(t, workDir)
	assert.NoDirExists(t, distDir)
	assert.NoFileExists(t, spec)
}

func TestBuildFromRequirementsMissingInputs(t *testing.T) {
	b := NewBuilder("", nil)
	ctx := context.Background()
	dir := t.TempDir()

	script := filepath.Join(dir, "app.py")
	reqs := filepath.Join(dir, "requirements.txt")

	_, err := b.BuildFromRequirements(ctx, script, reqs, "", BuildOptions{})
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(script, []byte("print('hi')\n"), 0644))
	_, err = b.BuildFromRequirements(ctx, script, reqs, "", BuildOptions{})
	assert.Error(t, err)
}

func TestFailNamesStep(t *testing.T) {
	wrapped := fail("install requirements",
		errors.NewVenvError(errors.ErrCodePipMissing, "pip install failed", nil))

	var se *errors.SysError
	require.ErrorAs(t, wrapped, &se)
	assert.Equal(t, "install requirements", se.Context["failed_step"])

	// Plain errors get wrapped as build failures.
	wrapped = fail("build", os.ErrPermission)
	require.ErrorAs(t, wrapped, &se)
	assert.Equal(t, errors.ErrCodeBuildFailed, se.Code)
	assert.Equal(t, "build", se.Context["failed_step"])
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail("short", 100))
	assert.Equal(t, "cde", tail("abcde", 3))
}

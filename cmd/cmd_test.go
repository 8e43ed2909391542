package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milkywaygod2/sysutil/internal/batch"
	"github.com/milkywaygod2/sysutil/internal/registry"
	"github.com/milkywaygod2/sysutil/internal/shellexec"
)

func TestSplitKey(t *testing.T) {
	tests := []struct {
		key      string
		wantRoot registry.Root
		wantPath string
		wantErr  bool
	}{
		{`HKCU\Software\MyApp`, registry.RootCurrentUser, `Software\MyApp`, false},
		{`hklm\SOFTWARE`, registry.RootLocalMachine, `SOFTWARE`, false},
		{`HKCU`, registry.RootCurrentUser, ``, false},
		{`BOGUS\Key`, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			root, path, err := splitKey(tt.key)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRoot, root)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestSplitDataPair(t *testing.T) {
	src, dest, ok := splitDataPair("assets:assets")
	require.True(t, ok)
	assert.Equal(t, "assets", src)
	assert.Equal(t, "assets", dest)

	// Windows drive letters split at the last colon.
	src, dest, ok = splitDataPair(`C:\data\assets:assets`)
	require.True(t, ok)
	assert.Equal(t, `C:\data\assets`, src)
	assert.Equal(t, "assets", dest)

	_, _, ok = splitDataPair("nopair")
	assert.False(t, ok)
	_, _, ok = splitDataPair(":dangling")
	assert.False(t, ok)
}

func TestVenvPath(t *testing.T) {
	assert.Equal(t, filepath.Join(".venvs", "myenv"), venvPath(".venvs", "myenv"))

	explicit := filepath.Join("some", "where", "env")
	assert.Equal(t, explicit, venvPath(".venvs", explicit))
}

func TestReportResult(t *testing.T) {
	assert.NoError(t, reportResult(batch.Result{Processed: 3}))

	err := reportResult(batch.Result{
		Processed: 1,
		Errors:    []batch.FileError{{Path: "x", Err: errors.New("boom")}},
	})
	assert.Error(t, err)
}

func TestFlagValidation(t *testing.T) {
	assert.NoError(t, validateFileExists(""))
	assert.Error(t, validateFileExists(filepath.Join(t.TempDir(), "absent.txt")))

	err := buildCmd.Flags().Set("requirements", filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestConfigSetGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  host: localhost\n"), 0644))

	require.NoError(t, configSetCmd.RunE(configSetCmd, []string{path, "database.port", "5432"}))
	require.NoError(t, configGetCmd.RunE(configGetCmd, []string{path, "database.port"}))

	err := configGetCmd.RunE(configGetCmd, []string{path, "database.absent"})
	assert.Error(t, err)
}

func TestTextSlugCommand(t *testing.T) {
	assert.NoError(t, textSlugCmd.RunE(textSlugCmd, []string{"Release", "Notes"}))
}

func TestProcessRow(t *testing.T) {
	row := processRow(shellexec.ProcessInfo{PID: "1234", User: "root", Name: "init"})
	assert.Equal(t, "    1234  root                 init", row)
}

func TestRootCommandWiring(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "env", "fetch", "venv", "build",
		"batch", "csv", "archive", "reg", "ps", "kill", "doctor", "version",
		"text", "config"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

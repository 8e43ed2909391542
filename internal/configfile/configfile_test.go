package configfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")
	cfg := Map{"server": Map{"host": "localhost", "port": "8080"}}

	require.NoError(t, Write(path, cfg))
	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost", GetString(got, "server.host", ""))
}

func TestReadWriteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yml")
	cfg := Map{"logging": Map{"level": "debug", "format": "json"}}

	require.NoError(t, Write(path, cfg))
	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", GetString(got, "logging.level", ""))
}

func TestReadWriteTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.toml")
	cfg := Map{"build": Map{"onefile": "true"}}

	require.NoError(t, Write(path, cfg))
	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "true", GetString(got, "build.onefile", ""))
}

func TestReadUnsupportedFormat(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "app.ini"))
	assert.Error(t, err)
}

func TestReadInvalidContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err := Read(path)
	assert.Error(t, err)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")

	written, err := WriteDefault(path, Map{"key": "value"})
	require.NoError(t, err)
	assert.True(t, written)

	// Existing file is left alone.
	written, err = WriteDefault(path, Map{"key": "other"})
	require.NoError(t, err)
	assert.False(t, written)

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "value", GetString(got, "key", ""))
}

func TestGetAndSet(t *testing.T) {
	cfg := Map{"a": Map{"b": "deep"}}

	v, ok := Get(cfg, "a.b")
	assert.True(t, ok)
	assert.Equal(t, "deep", v)

	_, ok = Get(cfg, "a.missing")
	assert.False(t, ok)
	_, ok = Get(cfg, "a.b.too.far")
	assert.False(t, ok)

	require.NoError(t, Set(cfg, "a.c.d", 42))
	v, ok = Get(cfg, "a.c.d")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	// A scalar in the middle of the path is an error.
	assert.Error(t, Set(cfg, "a.b.under", 1))
}

func TestMerge(t *testing.T) {
	base := Map{
		"server":  Map{"host": "localhost", "port": 8080},
		"logging": Map{"level": "info"},
	}
	override := Map{
		"server": Map{"port": 9090},
		"extra":  true,
	}

	merged := Merge(base, override)

	v, _ := Get(merged, "server.host")
	assert.Equal(t, "localhost", v)
	v, _ = Get(merged, "server.port")
	assert.Equal(t, 9090, v)
	v, _ = Get(merged, "logging.level")
	assert.Equal(t, "info", v)
	v, _ = Get(merged, "extra")
	assert.Equal(t, true, v)

	// Inputs are untouched.
	v, _ = Get(base, "server.port")
	assert.Equal(t, 8080, v)
}

func TestApplyEnv(t *testing.T) {
	cfg := Map{"server": Map{"port": "8080", "host": "localhost"}}

	t.Setenv("MYAPP_SERVER_PORT", "9090")
	t.Setenv("MYAPP_SERVER_UNKNOWN", "ignored")

	applied := ApplyEnv(cfg, "myapp")
	assert.Equal(t, 1, applied)

	assert.Equal(t, "9090", GetString(cfg, "server.port", ""))
	_, ok := Get(cfg, "server.unknown")
	assert.False(t, ok)
}

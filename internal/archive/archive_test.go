package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("beta"), 0644))
	return dir
}

func TestZipRoundTrip(t *testing.T) {
	src := makeTree(t)
	archivePath := filepath.Join(t.TempDir(), "tree.zip")
	dest := t.TempDir()

	require.NoError(t, Create(archivePath, src))
	require.NoError(t, Extract(archivePath, dest))

	data, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	data, err = os.ReadFile(filepath.Join(dest, "sub", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "beta", string(data))
}

func TestTarGzRoundTrip(t *testing.T) {
	src := makeTree(t)
	archivePath := filepath.Join(t.TempDir(), "tree.tar.gz")
	dest := t.TempDir()

	require.NoError(t, Create(archivePath, src))
	require.NoError(t, Extract(archivePath, dest))

	data, err := os.ReadFile(filepath.Join(dest, "sub", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "beta", string(data))
}

func TestCreateSingleFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "only.txt")
	require.NoError(t, os.WriteFile(file, []byte("solo"), 0644))

	archivePath := filepath.Join(dir, "one.zip")
	require.NoError(t, Create(archivePath, file))

	entries, err := List(archivePath)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "only.txt", entries[0].Name)
	assert.Equal(t, int64(4), entries[0].Size)
}

func TestList(t *testing.T) {
	src := makeTree(t)
	archivePath := filepath.Join(t.TempDir(), "tree.zip")
	require.NoError(t, Create(archivePath, src))

	entries, err := List(archivePath)
	require.NoError(t, err)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	assert.ElementsMatch(t, []string{"a.txt", "sub/b.txt"}, names)
}

func TestGetInfo(t *testing.T) {
	src := makeTree(t)
	archivePath := filepath.Join(t.TempDir(), "tree.tgz")
	require.NoError(t, Create(archivePath, src))

	info, err := GetInfo(archivePath)
	require.NoError(t, err)
	assert.Equal(t, "tar.gz", info.Format)
	assert.Equal(t, 2, info.Entries)
	assert.Equal(t, int64(len("alpha")+len("beta")), info.UncompressedSize)
	assert.Greater(t, info.CompressedSize, int64(0))
}

func TestExtractEntry(t *testing.T) {
	src := makeTree(t)
	archivePath := filepath.Join(t.TempDir(), "tree.zip")
	dest := t.TempDir()
	require.NoError(t, Create(archivePath, src))

	require.NoError(t, ExtractEntry(archivePath, "sub/b.txt", dest))
	assert.FileExists(t, filepath.Join(dest, "sub", "b.txt"))
	assert.NoFileExists(t, filepath.Join(dest, "a.txt"))

	assert.Error(t, ExtractEntry(archivePath, "missing.txt", dest))
}

func TestExtractRejectsEscapingPaths(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "evil.zip")
	f, err := os.Create(archivePath)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	w, err := zw.Create("../escape.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	dest := t.TempDir()
	err = Extract(archivePath, dest)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(dest), "escape.txt"))
}

func TestUnsupportedFormat(t *testing.T) {
	err := Create(filepath.Join(t.TempDir(), "x.rar"), t.TempDir())
	assert.Error(t, err)
}

package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCreateAndRemoveDir(t *testing.T) {
	base := t.TempDir()
	nested := filepath.Join(base, "a", "b", "c")

	require.NoError(t, CreateDir(nested))
	assert.True(t, DirExists(nested))

	// Non-recursive removal refuses a populated directory.
	writeFile(t, filepath.Join(base, "a", "file.txt"), "x")
	assert.Error(t, RemoveDir(filepath.Join(base, "a"), false))

	require.NoError(t, RemoveDir(filepath.Join(base, "a"), true))
	assert.False(t, DirExists(filepath.Join(base, "a")))
}

func TestCopyFile(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src.txt")
	dst := filepath.Join(base, "dst.txt")
	writeFile(t, src, "content to copy")

	t.Run("copy succeeds iff destination matches afterwards", func(t *testing.T) {
		require.NoError(t, CopyFile(src, dst, true))

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "content to copy", string(data))
	})

	t.Run("preserves modification time", func(t *testing.T) {
		old := time.Now().Add(-48 * time.Hour)
		require.NoError(t, os.Chtimes(src, old, old))
		require.NoError(t, CopyFile(src, dst, true))

		mt, err := ModTime(dst)
		require.NoError(t, err)
		assert.WithinDuration(t, old, mt, 2*time.Second)
	})

	t.Run("preserves mode on overwrite", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("unix permission bits")
		}
		require.NoError(t, os.Chmod(src, 0750))
		require.NoError(t, os.Chmod(dst, 0600))
		require.NoError(t, CopyFile(src, dst, true))

		info, err := os.Stat(dst)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0750), info.Mode().Perm())
	})

	t.Run("no overwrite refused", func(t *testing.T) {
		err := CopyFile(src, dst, false)
		assert.Error(t, err)
	})

	t.Run("missing source", func(t *testing.T) {
		err := CopyFile(filepath.Join(base, "nope.txt"), dst, true)
		assert.Error(t, err)
	})
}

func TestCopyDir(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "tree")
	writeFile(t, filepath.Join(src, "top.txt"), "top")
	writeFile(t, filepath.Join(src, "sub", "inner.txt"), "inner")

	dst := filepath.Join(base, "copy")
	require.NoError(t, CopyDir(src, dst, false))

	data, err := os.ReadFile(filepath.Join(dst, "sub", "inner.txt"))
	require.NoError(t, err)
	assert.Equal(t, "inner", string(data))

	// Overwrite replaces the destination wholesale.
	writeFile(t, filepath.Join(dst, "stale.txt"), "stale")
	require.NoError(t, CopyDir(src, dst, true))
	assert.False(t, FileExists(filepath.Join(dst, "stale.txt")))

	// Refused without overwrite.
	assert.Error(t, CopyDir(src, dst, false))
}

func TestMove(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src.txt")
	dst := filepath.Join(base, "moved.txt")
	writeFile(t, src, "move me")

	require.NoError(t, Move(src, dst))
	assert.False(t, FileExists(src))
	assert.True(t, FileExists(dst))
}

func TestSizeAndDirSize(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "a.txt"), "12345")
	writeFile(t, filepath.Join(base, "sub", "b.txt"), "123")

	size, err := Size(filepath.Join(base, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	total, err := DirSize(base)
	require.NoError(t, err)
	assert.Equal(t, int64(8), total)

	_, err = Size(filepath.Join(base, "missing"))
	assert.Error(t, err)
}

func TestHash(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "hashme.txt")
	writeFile(t, path, "hello")

	tests := []struct {
		algorithm string
		expected  string
	}{
		{"md5", "5d41402abc4b2a76b9719d911017c592"},
		{"sha1", "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"},
		{"sha256", "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
	}
	for _, tt := range tests {
		t.Run(tt.algorithm, func(t *testing.T) {
			digest, err := Hash(path, tt.algorithm)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, digest)
		})
	}

	_, err := Hash(path, "crc32")
	assert.Error(t, err)
}

func TestListFiles(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "one.txt"), "1")
	writeFile(t, filepath.Join(base, "two.log"), "2")
	writeFile(t, filepath.Join(base, "sub", "three.txt"), "3")

	flat, err := ListFiles(base, "*.txt", false)
	require.NoError(t, err)
	assert.Len(t, flat, 1)

	deep, err := ListFiles(base, "*.txt", true)
	require.NoError(t, err)
	assert.Len(t, deep, 2)
}

func TestFindFiles(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "report_jan.csv"), "")
	writeFile(t, filepath.Join(base, "report_feb.csv"), "")
	writeFile(t, filepath.Join(base, "sub", "report_mar.csv"), "")
	writeFile(t, filepath.Join(base, "notes.txt"), "")

	byExt, err := FindFiles(base, "", "csv", true)
	require.NoError(t, err)
	assert.Len(t, byExt, 3)

	byName, err := FindFiles(base, "jan", "", true)
	require.NoError(t, err)
	assert.Len(t, byName, 1)

	flat, err := FindFiles(base, "report", "csv", false)
	require.NoError(t, err)
	assert.Len(t, flat, 2)
}

func TestReadOnlyWritable(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "perm.txt")
	writeFile(t, path, "x")

	require.NoError(t, MakeReadOnly(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0444), info.Mode().Perm())

	require.NoError(t, MakeWritable(path))
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestTempFileAndDir(t *testing.T) {
	base := t.TempDir()

	file, err := TempFile(base, "sysutil-", ".tmp")
	require.NoError(t, err)
	assert.True(t, FileExists(file))
	assert.Contains(t, filepath.Base(file), "sysutil-")
	assert.Equal(t, ".tmp", filepath.Ext(file))

	dir, err := TempDir(base, "work-")
	require.NoError(t, err)
	assert.True(t, DirExists(dir))
}

func TestWalk(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "a.txt"), "")
	writeFile(t, filepath.Join(base, "sub", "b.txt"), "")

	var seen []string
	require.NoError(t, Walk(base, func(path string) error {
		seen = append(seen, filepath.Base(path))
		return nil
	}))
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, seen)
}

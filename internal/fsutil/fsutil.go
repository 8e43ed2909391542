// Package fsutil wraps common filesystem manipulation: directory lifecycle,
// copy/move with metadata preservation, hashing, globbing, and temp files.
package fsutil

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/milkywaygod2/sysutil/internal/errors"
)

// CreateDir creates a directory and all necessary parents.
func CreateDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath, "failed to create directory", err).WithPath(path)
	}
	return nil
}

// RemoveDir deletes a directory. With recursive set the whole tree goes;
// otherwise the directory must be empty.
func RemoveDir(path string, recursive bool) error {
	var err error
	if recursive {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath, "failed to remove directory", err).WithPath(path)
	}
	return nil
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// CopyFile copies src to dst preserving mode and modification time. When
// overwrite is false and dst exists the copy is refused.
func CopyFile(src, dst string, overwrite bool) error {
	if !overwrite && FileExists(dst) {
		return errors.NewIOError(errors.ErrCodeFileExists, "destination exists", nil).WithPath(dst)
	}

	info, err := os.Stat(src)
	if err != nil {
		return errors.ErrFileNotFound(src)
	}
	if !info.Mode().IsRegular() {
		return errors.NewIOError(errors.ErrCodeInvalidPath, "source is not a regular file", nil).WithPath(src)
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath, "failed to open source", err).WithPath(src)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath, "failed to create destination", err).WithPath(dst)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.NewIOError(errors.ErrCodeInvalidPath, "copy failed", err).WithPath(dst)
	}
	if err := out.Close(); err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath, "close failed", err).WithPath(dst)
	}

	// Preserve mode and timestamps like shutil.copy2. OpenFile's perm only
	// applies when it creates the file, so overwrite needs an explicit chmod.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath, "chmod failed", err).WithPath(dst)
	}
	return os.Chtimes(dst, time.Now(), info.ModTime())
}

// CopyDir copies a directory tree. When overwrite is set an existing
// destination is replaced wholesale; otherwise the copy is refused.
func CopyDir(src, dst string, overwrite bool) error {
	if DirExists(dst) || FileExists(dst) {
		if !overwrite {
			return errors.NewIOError(errors.ErrCodeFileExists, "destination exists", nil).WithPath(dst)
		}
		if err := os.RemoveAll(dst); err != nil {
			return errors.NewIOError(errors.ErrCodeInvalidPath, "failed to replace destination", err).WithPath(dst)
		}
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm())
		}

		return CopyFile(path, target, true)
	})
}

// Move moves a file or directory, falling back to copy-and-delete when a
// plain rename crosses filesystems.
func Move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	info, err := os.Stat(src)
	if err != nil {
		return errors.ErrFileNotFound(src)
	}

	if info.IsDir() {
		if err := CopyDir(src, dst, true); err != nil {
			return err
		}
	} else {
		if err := CopyFile(src, dst, true); err != nil {
			return err
		}
	}

	if err := os.RemoveAll(src); err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath, "failed to remove source after copy", err).WithPath(src)
	}
	return nil
}

// Size returns a file's size in bytes.
func Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.ErrFileNotFound(path)
	}
	return info.Size(), nil
}

// ModTime returns a file's last modification time.
func ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, errors.ErrFileNotFound(path)
	}
	return info.ModTime(), nil
}

// Hash streams a file through the named digest (md5, sha1, sha256) and
// returns the hex digest.
func Hash(path, algorithm string) (string, error) {
	var h hash.Hash
	switch algorithm {
	case "md5":
		h = md5.New()
	case "sha1":
		h = sha1.New()
	case "sha256":
		h = sha256.New()
	default:
		return "", errors.NewValidationError(errors.ErrCodeInvalidArgument,
			fmt.Sprintf("unsupported hash algorithm %q", algorithm))
	}

	f, err := os.Open(path)
	if err != nil {
		return "", errors.ErrFileNotFound(path)
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", errors.NewIOError(errors.ErrCodeInvalidPath, "hashing failed", err).WithPath(path)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// ListFiles lists files in a directory matching a glob pattern, optionally
// descending into subdirectories.
func ListFiles(dir, pattern string, recursive bool) ([]string, error) {
	if !recursive {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidArgument, "bad glob pattern: "+pattern)
		}
		return matches, nil
	}

	var matches []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ok, matchErr := filepath.Match(pattern, d.Name())
		if matchErr != nil {
			return matchErr
		}
		if ok {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeInvalidPath, "walk failed", err).WithPath(dir)
	}

	return matches, nil
}

// FindFiles finds files by name substring and/or extension (without dot).
func FindFiles(dir, nameContains, extension string, recursive bool) ([]string, error) {
	match := func(name string) bool {
		if nameContains != "" && !strings.Contains(name, nameContains) {
			return false
		}
		if extension != "" && !strings.HasSuffix(name, "."+extension) {
			return false
		}
		return true
	}

	var results []string

	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, errors.NewIOError(errors.ErrCodeInvalidPath, "failed to read directory", err).WithPath(dir)
		}
		for _, entry := range entries {
			if !entry.IsDir() && match(entry.Name()) {
				results = append(results, filepath.Join(dir, entry.Name()))
			}
		}
		return results, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if match(d.Name()) {
			results = append(results, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeInvalidPath, "walk failed", err).WithPath(dir)
	}

	return results, nil
}

// Chmod sets file permissions.
func Chmod(path string, mode os.FileMode) error {
	if err := os.Chmod(path, mode); err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath, "chmod failed", err).WithPath(path)
	}
	return nil
}

// MakeReadOnly removes write permission from a file.
func MakeReadOnly(path string) error {
	return Chmod(path, 0444)
}

// MakeWritable restores owner read/write permission on a file.
func MakeWritable(path string) error {
	return Chmod(path, 0644)
}

// DirSize returns the total size of all regular files under a directory.
func DirSize(path string) (int64, error) {
	var total int64
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, errors.NewIOError(errors.ErrCodeInvalidPath, "walk failed", err).WithPath(path)
	}
	return total, nil
}

// TempFile creates an empty temporary file and returns its path. An empty dir
// uses the system default temp directory.
func TempFile(dir, prefix, suffix string) (string, error) {
	f, err := os.CreateTemp(dir, prefix+"*"+suffix)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeInvalidPath, "failed to create temp file", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return "", errors.NewIOError(errors.ErrCodeInvalidPath, "failed to close temp file", err).WithPath(path)
	}
	return path, nil
}

// TempDir creates a temporary directory and returns its path.
func TempDir(dir, prefix string) (string, error) {
	path, err := os.MkdirTemp(dir, prefix)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeInvalidPath, "failed to create temp directory", err)
	}
	return path, nil
}

// Walk calls fn for every regular file under dir.
func Walk(dir string, fn func(path string) error) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			return fn(path)
		}
		return nil
	})
}

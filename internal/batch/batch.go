// Package batch applies an operation across every matching file in a
// directory: rename, move, convert, compress, organize. Operations collect
// per-file errors instead of stopping at the first one.
package batch

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/milkywaygod2/sysutil/internal/errors"
	"github.com/milkywaygod2/sysutil/internal/fsutil"
)

// RenameOptions shape the new file names produced by Rename.
type RenameOptions struct {
	Prefix    string
	Suffix    string // inserted before the extension
	Numbered  bool   // append a zero-padded sequence number
	StartFrom int    // first sequence number, default 1
}

// FileError records a failure for one file during a batch operation.
type FileError struct {
	Path string
	Err  error
}

func (fe FileError) Error() string {
	return fe.Path + ": " + fe.Err.Error()
}

// Result reports what a batch operation touched.
type Result struct {
	Processed int
	Errors    []FileError
}

// OK reports whether every file succeeded.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// listMatching returns the files in dir matching the glob pattern, sorted
// by name so numbered renames are deterministic.
func listMatching(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidArgument,
			"invalid glob pattern: "+pattern)
	}

	var files []string
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && !info.IsDir() {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Rename renames every file in dir matching pattern according to opts.
func Rename(dir, pattern string, opts RenameOptions) (Result, error) {
	files, err := listMatching(dir, pattern)
	if err != nil {
		return Result{}, err
	}

	number := opts.StartFrom
	if number <= 0 {
		number = 1
	}

	var result Result
	for _, path := range files {
		ext := filepath.Ext(path)
		stem := strings.TrimSuffix(filepath.Base(path), ext)

		name := opts.Prefix + stem + opts.Suffix
		if opts.Numbered {
			name = fmt.Sprintf("%s_%03d", name, number)
			number++
		}

		target := filepath.Join(dir, name+ext)
		if target == path {
			continue
		}
		if err := os.Rename(path, target); err != nil {
			result.Errors = append(result.Errors, FileError{Path: path, Err: err})
			continue
		}
		result.Processed++
	}
	return result, nil
}

// ConvertExtension renames every *.from file in dir to *.to. Extensions
// are given without the leading dot.
func ConvertExtension(dir, from, to string) (Result, error) {
	files, err := listMatching(dir, "*."+from)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, path := range files {
		target := strings.TrimSuffix(path, filepath.Ext(path)) + "." + to
		if err := os.Rename(path, target); err != nil {
			result.Errors = append(result.Errors, FileError{Path: path, Err: err})
			continue
		}
		result.Processed++
	}
	return result, nil
}

// MoveByExtension moves every *.ext file from dir into destDir.
func MoveByExtension(dir, destDir, ext string) (Result, error) {
	return transferByExtension(dir, destDir, ext, fsutil.Move)
}

// CopyByExtension copies every *.ext file from dir into destDir.
func CopyByExtension(dir, destDir, ext string) (Result, error) {
	return transferByExtension(dir, destDir, ext, func(src, dst string) error {
		return fsutil.CopyFile(src, dst, true)
	})
}

func transferByExtension(dir, destDir, ext string, op func(src, dst string) error) (Result, error) {
	files, err := listMatching(dir, "*."+ext)
	if err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return Result{}, errors.NewIOError(errors.ErrCodeInvalidPath,
			"failed to create destination directory", err).WithPath(destDir)
	}

	var result Result
	for _, path := range files {
		if err := op(path, filepath.Join(destDir, filepath.Base(path))); err != nil {
			result.Errors = append(result.Errors, FileError{Path: path, Err: err})
			continue
		}
		result.Processed++
	}
	return result, nil
}

// DeleteByExtension removes every *.ext file in dir.
func DeleteByExtension(dir, ext string) (Result, error) {
	files, err := listMatching(dir, "*."+ext)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, path := range files {
		if err := os.Remove(path); err != nil {
			result.Errors = append(result.Errors, FileError{Path: path, Err: err})
			continue
		}
		result.Processed++
	}
	return result, nil
}

// Process calls fn for every file in dir matching pattern, collecting
// per-file failures and continuing past them.
func Process(dir, pattern string, fn func(path string) error) (Result, error) {
	files, err := listMatching(dir, pattern)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, path := range files {
		if err := fn(path); err != nil {
			result.Errors = append(result.Errors, FileError{Path: path, Err: err})
			continue
		}
		result.Processed++
	}
	return result, nil
}

// Organize moves every file in dir into a subdirectory named after its
// extension ("pdf/", "jpg/"); files without an extension go to "misc/".
func Organize(dir string) (Result, error) {
	files, err := listMatching(dir, "*")
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, path := range files {
		folder := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if folder == "" {
			folder = "misc"
		}

		destDir := filepath.Join(dir, folder)
		if err := os.MkdirAll(destDir, 0755); err != nil {
			result.Errors = append(result.Errors, FileError{Path: path, Err: err})
			continue
		}
		if err := fsutil.Move(path, filepath.Join(destDir, filepath.Base(path))); err != nil {
			result.Errors = append(result.Errors, FileError{Path: path, Err: err})
			continue
		}
		result.Processed++
	}
	return result, nil
}

// FindDuplicates groups files in dir by content hash and returns the
// groups with more than one member, keyed by digest.
func FindDuplicates(dir string, recursive bool) (map[string][]string, error) {
	var files []string
	var err error
	if recursive {
		err = fsutil.Walk(dir, func(path string) error {
			files = append(files, path)
			return nil
		})
	} else {
		files, err = listMatching(dir, "*")
	}
	if err != nil {
		return nil, err
	}

	byDigest := make(map[string][]string)
	for _, path := range files {
		digest, err := fsutil.Hash(path, "sha256")
		if err != nil {
			continue
		}
		byDigest[digest] = append(byDigest[digest], path)
	}

	duplicates := make(map[string][]string)
	for digest, group := range byDigest {
		if len(group) > 1 {
			sort.Strings(group)
			duplicates[digest] = group
		}
	}
	return duplicates, nil
}

// Compress gzips every file in dir matching pattern, writing path.gz next
// to each original. Originals are removed when removeOriginal is set.
func Compress(dir, pattern string, removeOriginal bool) (Result, error) {
	files, err := listMatching(dir, pattern)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, path := range files {
		if strings.HasSuffix(path, ".gz") {
			continue
		}
		if err := gzipFile(path); err != nil {
			result.Errors = append(result.Errors, FileError{Path: path, Err: err})
			continue
		}
		if removeOriginal {
			if err := os.Remove(path); err != nil {
				result.Errors = append(result.Errors, FileError{Path: path, Err: err})
				continue
			}
		}
		result.Processed++
	}
	return result, nil
}

func gzipFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer dst.Close()

	gz := gzip.NewWriter(dst)
	gz.Name = filepath.Base(path)
	if _, err := io.Copy(gz, src); err != nil {
		return err
	}
	return gz.Close()
}

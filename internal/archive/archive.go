// Package archive creates and extracts zip and tar.gz archives. Extraction
// rejects entries whose paths escape the destination directory.
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/milkywaygod2/sysutil/internal/errors"
	"github.com/milkywaygod2/sysutil/internal/validation"
)

// Entry describes one member of an archive.
type Entry struct {
	Name  string
	Size  int64
	IsDir bool
}

// Info summarizes an archive.
type Info struct {
	Path             string
	Format           string // "zip" or "tar.gz"
	Entries          int
	UncompressedSize int64
	CompressedSize   int64
}

// detectFormat picks the archive format from the file extension.
func detectFormat(path string) (string, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return "zip", nil
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return "tar.gz", nil
	case strings.HasSuffix(lower, ".tar"):
		return "tar", nil
	}
	return "", errors.NewValidationError(errors.ErrCodeInvalidArgument,
		"unsupported archive format: "+filepath.Ext(path))
}

// Create archives a file or directory tree. The format follows the archive
// path's extension (.zip, .tar.gz, .tgz, .tar).
func Create(archivePath, source string) error {
	format, err := detectFormat(archivePath)
	if err != nil {
		return err
	}
	if format == "zip" {
		return createZip(archivePath, source)
	}
	return createTar(archivePath, source, format == "tar.gz")
}

// Extract unpacks every entry of an archive into destDir.
func Extract(archivePath, destDir string) error {
	format, err := detectFormat(archivePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath,
			"failed to create destination directory", err).WithPath(destDir)
	}
	if format == "zip" {
		return extractZip(archivePath, destDir, "")
	}
	return extractTar(archivePath, destDir, "", format == "tar.gz")
}

// ExtractEntry unpacks a single named entry into destDir.
func ExtractEntry(archivePath, entryName, destDir string) error {
	format, err := detectFormat(archivePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath,
			"failed to create destination directory", err).WithPath(destDir)
	}
	if format == "zip" {
		return extractZip(archivePath, destDir, entryName)
	}
	return extractTar(archivePath, destDir, entryName, format == "tar.gz")
}

// List returns the entries of an archive without extracting.
func List(archivePath string) ([]Entry, error) {
	format, err := detectFormat(archivePath)
	if err != nil {
		return nil, err
	}
	if format == "zip" {
		return listZip(archivePath)
	}
	return listTar(archivePath, format == "tar.gz")
}

// GetInfo summarizes an archive's contents and sizes.
func GetInfo(archivePath string) (*Info, error) {
	format, err := detectFormat(archivePath)
	if err != nil {
		return nil, err
	}

	entries, err := List(archivePath)
	if err != nil {
		return nil, err
	}

	info := &Info{Path: archivePath, Format: format, Entries: len(entries)}
	for _, e := range entries {
		info.UncompressedSize += e.Size
	}
	if stat, err := os.Stat(archivePath); err == nil {
		info.CompressedSize = stat.Size()
	}
	return info, nil
}

// walkSource yields each file under source with its archive-relative name.
// A plain file is archived under its own base name.
func walkSource(source string, fn func(path, name string, info fs.FileInfo) error) error {
	stat, err := os.Stat(source)
	if err != nil {
		return errors.ErrFileNotFound(source)
	}
	if !stat.IsDir() {
		return fn(source, filepath.Base(source), stat)
	}

	return filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		return fn(path, filepath.ToSlash(rel), info)
	})
}

func createZip(archivePath, source string) error {
	f, err := os.Create(archivePath)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath,
			"failed to create archive", err).WithPath(archivePath)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	err = walkSource(source, func(path, name string, info fs.FileInfo) error {
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = name
		header.Method = zip.Deflate

		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(w, src)
		return err
	})
	if err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath,
			"failed to build zip archive", err).WithPath(archivePath)
	}
	return zw.Close()
}

func createTar(archivePath, source string, gzipped bool) error {
	f, err := os.Create(archivePath)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath,
			"failed to create archive", err).WithPath(archivePath)
	}
	defer f.Close()

	var w io.Writer = f
	var gz *gzip.Writer
	if gzipped {
		gz = gzip.NewWriter(f)
		defer gz.Close()
		w = gz
	}
	tw := tar.NewWriter(w)
	defer tw.Close()

	err = walkSource(source, func(path, name string, info fs.FileInfo) error {
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = name

		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(tw, src)
		return err
	})
	if err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath,
			"failed to build tar archive", err).WithPath(archivePath)
	}
	if err := tw.Close(); err != nil {
		return err
	}
	if gz != nil {
		return gz.Close()
	}
	return nil
}

func extractZip(archivePath, destDir, only string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeFileNotFound,
			"failed to open zip archive", err).WithPath(archivePath)
	}
	defer zr.Close()

	found := only == ""
	for _, entry := range zr.File {
		if only != "" && entry.Name != only {
			continue
		}
		found = true
		if err := validation.ValidatePathWithin(destDir, entry.Name); err != nil {
			return err
		}

		target := filepath.Join(destDir, filepath.FromSlash(entry.Name))
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}

		rc, err := entry.Open()
		if err != nil {
			return err
		}
		err = writeFile(target, rc, entry.Mode())
		rc.Close()
		if err != nil {
			return err
		}
	}
	if !found {
		return errors.ErrFileNotFound(only)
	}
	return nil
}

func extractTar(archivePath, destDir, only string, gzipped bool) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeFileNotFound,
			"failed to open tar archive", err).WithPath(archivePath)
	}
	defer f.Close()

	var r io.Reader = f
	if gzipped {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return errors.NewIOError(errors.ErrCodeValidationFailed,
				"failed to read gzip stream", err).WithPath(archivePath)
		}
		defer gz.Close()
		r = gz
	}

	tr := tar.NewReader(r)
	found := only == ""
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.NewIOError(errors.ErrCodeValidationFailed,
				"failed to read tar stream", err).WithPath(archivePath)
		}
		if only != "" && header.Name != only {
			continue
		}
		found = true
		if err := validation.ValidatePathWithin(destDir, header.Name); err != nil {
			return err
		}

		target := filepath.Join(destDir, filepath.FromSlash(header.Name))
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := writeFile(target, tr, fs.FileMode(header.Mode)); err != nil {
				return err
			}
		}
	}
	if !found {
		return errors.ErrFileNotFound(only)
	}
	return nil
}

func writeFile(target string, src io.Reader, mode fs.FileMode) error {
	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	defer dst.Close()
	_, err = io.Copy(dst, src)
	return err
}

func listZip(archivePath string) ([]Entry, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
			"failed to open zip archive", err).WithPath(archivePath)
	}
	defer zr.Close()

	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		entries = append(entries, Entry{
			Name:  f.Name,
			Size:  int64(f.UncompressedSize64),
			IsDir: f.FileInfo().IsDir(),
		})
	}
	return entries, nil
}

func listTar(archivePath string, gzipped bool) ([]Entry, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
			"failed to open tar archive", err).WithPath(archivePath)
	}
	defer f.Close()

	var r io.Reader = f
	if gzipped {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.NewIOError(errors.ErrCodeValidationFailed,
				"failed to read gzip stream", err).WithPath(archivePath)
		}
		defer gz.Close()
		r = gz
	}

	var entries []Entry
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewIOError(errors.ErrCodeValidationFailed,
				"failed to read tar stream", err).WithPath(archivePath)
		}
		entries = append(entries, Entry{
			Name:  header.Name,
			Size:  header.Size,
			IsDir: header.Typeflag == tar.TypeDir,
		})
	}
	return entries, nil
}

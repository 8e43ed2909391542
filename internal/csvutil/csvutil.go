// Package csvutil reads, writes, and reshapes CSV files. Rows are plain
// string slices; dict operations key cells by the header row the way a
// spreadsheet user thinks about columns.
package csvutil

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"slices"

	"github.com/milkywaygod2/sysutil/internal/errors"
)

// Read returns every row of a CSV file, header included.
func Read(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotFound, "failed to open CSV file", err).WithPath(path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeValidationFailed, "failed to parse CSV", err).WithPath(path)
	}
	return rows, nil
}

// ReadDicts returns the data rows of a CSV file as maps keyed by the
// header row. Short rows leave the trailing columns absent.
func ReadDicts(path string) ([]map[string]string, error) {
	rows, err := Read(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	dicts := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		dict := make(map[string]string, len(header))
		for i, key := range header {
			if i < len(row) {
				dict[key] = row[i]
			}
		}
		dicts = append(dicts, dict)
	}
	return dicts, nil
}

// Write writes rows to a CSV file, replacing any existing content.
func Write(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath, "failed to create CSV file", err).WithPath(path)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.WriteAll(rows); err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath, "failed to write CSV", err).WithPath(path)
	}
	return nil
}

// WriteDicts writes maps as CSV rows under the given header. A nil header
// derives the column order from the sorted keys of the first map.
func WriteDicts(path string, dicts []map[string]string, header []string) error {
	if header == nil && len(dicts) > 0 {
		for key := range dicts[0] {
			header = append(header, key)
		}
		slices.Sort(header)
	}

	rows := make([][]string, 0, len(dicts)+1)
	rows = append(rows, header)
	for _, dict := range dicts {
		row := make([]string, len(header))
		for i, key := range header {
			row[i] = dict[key]
		}
		rows = append(rows, row)
	}
	return Write(path, rows)
}

// Append appends rows to an existing CSV file, creating it if absent.
func Append(path string, rows [][]string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath, "failed to open CSV file for append", err).WithPath(path)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.WriteAll(rows); err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidPath, "failed to append CSV rows", err).WithPath(path)
	}
	return nil
}

// Filter copies the header plus every data row the predicate accepts from
// src to dst and returns the number of rows kept.
func Filter(src, dst string, keep func(row []string) bool) (int, error) {
	rows, err := Read(src)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, Write(dst, nil)
	}

	kept := [][]string{rows[0]}
	for _, row := range rows[1:] {
		if keep(row) {
			kept = append(kept, row)
		}
	}
	if err := Write(dst, kept); err != nil {
		return 0, err
	}
	return len(kept) - 1, nil
}

// Merge concatenates CSV files into dst, writing the header of the first
// file once and skipping the header row of every subsequent file.
func Merge(dst string, sources ...string) error {
	if len(sources) == 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidArgument, "no source files to merge")
	}

	var merged [][]string
	for i, src := range sources {
		rows, err := Read(src)
		if err != nil {
			return err
		}
		if i > 0 && len(rows) > 0 {
			rows = rows[1:]
		}
		merged = append(merged, rows...)
	}
	return Write(dst, merged)
}

// Column returns the values of a named column, header excluded.
func Column(path, name string) ([]string, error) {
	rows, err := Read(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.NewValidationError(errors.ErrCodeValidationFailed, "CSV file has no header row").WithPath(path)
	}

	index := slices.Index(rows[0], name)
	if index < 0 {
		return nil, errors.NewValidationError(errors.ErrCodeValidationFailed, "column not found: "+name).WithPath(path)
	}

	var values []string
	for _, row := range rows[1:] {
		if index < len(row) {
			values = append(values, row[index])
		}
	}
	return values, nil
}

// ToJSON converts a CSV file to a JSON array of header-keyed objects.
func ToJSON(path string, out io.Writer) error {
	dicts, err := ReadDicts(path)
	if err != nil {
		return err
	}
	if dicts == nil {
		dicts = []map[string]string{}
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(dicts); err != nil {
		return errors.NewIOError(errors.ErrCodeValidationFailed, "failed to encode JSON", err).WithPath(path)
	}
	return nil
}

// Stats summarizes the shape of a CSV file.
type Stats struct {
	Rows       int // data rows, header excluded
	Columns    int // header width
	EmptyCells int
}

// Statistics reports row and column counts plus the number of empty cells
// across the data rows.
func Statistics(path string) (Stats, error) {
	rows, err := Read(path)
	if err != nil {
		return Stats{}, err
	}
	if len(rows) == 0 {
		return Stats{}, nil
	}

	stats := Stats{
		Rows:    len(rows) - 1,
		Columns: len(rows[0]),
	}
	for _, row := range rows[1:] {
		for i := 0; i < stats.Columns; i++ {
			if i >= len(row) || row[i] == "" {
				stats.EmptyCells++
			}
		}
	}
	return stats, nil
}

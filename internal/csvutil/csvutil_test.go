package csvutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadAndReadDicts(t *testing.T) {
	path := writeCSV(t, "people.csv", "name,age\nalice,30\nbob,25\n")

	rows, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name", "age"}, {"alice", "30"}, {"bob", "25"}}, rows)

	dicts, err := ReadDicts(path)
	require.NoError(t, err)
	require.Len(t, dicts, 2)
	assert.Equal(t, "alice", dicts[0]["name"])
	assert.Equal(t, "25", dicts[1]["age"])
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	rows := [][]string{{"a", "b"}, {"1", "2"}, {"3", "with,comma"}}
	require.NoError(t, Write(path, rows))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestWriteDicts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dicts.csv")
	dicts := []map[string]string{
		{"name": "alice", "age": "30"},
		{"name": "bob", "age": "25"},
	}

	t.Run("explicit header order", func(t *testing.T) {
		require.NoError(t, WriteDicts(path, dicts, []string{"name", "age"}))
		rows, err := Read(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "age"}, rows[0])
		assert.Equal(t, []string{"alice", "30"}, rows[1])
	})

	t.Run("derived header is sorted", func(t *testing.T) {
		require.NoError(t, WriteDicts(path, dicts, nil))
		rows, err := Read(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"age", "name"}, rows[0])
	})
}

func TestAppend(t *testing.T) {
	path := writeCSV(t, "log.csv", "ts,event\n1,start\n")
	require.NoError(t, Append(path, [][]string{{"2", "stop"}}))

	rows, err := Read(path)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, []string{"2", "stop"}, rows[2])
}

func TestFilter(t *testing.T) {
	src := writeCSV(t, "src.csv", "name,age\nalice,30\nbob,25\ncarol,35\n")
	dst := filepath.Join(t.TempDir(), "dst.csv")

	kept, err := Filter(src, dst, func(row []string) bool { return row[1] >= "30" })
	require.NoError(t, err)
	assert.Equal(t, 2, kept)

	rows, err := Read(dst)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age"}, rows[0])
	assert.Len(t, rows, 3)
}

func TestMerge(t *testing.T) {
	a := writeCSV(t, "a.csv", "name,age\nalice,30\n")
	b := writeCSV(t, "b.csv", "name,age\nbob,25\n")
	dst := filepath.Join(t.TempDir(), "merged.csv")

	require.NoError(t, Merge(dst, a, b))
	rows, err := Read(dst)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name", "age"}, {"alice", "30"}, {"bob", "25"}}, rows)
}

func TestMergeNoSources(t *testing.T) {
	assert.Error(t, Merge(filepath.Join(t.TempDir(), "out.csv")))
}

func TestColumn(t *testing.T) {
	path := writeCSV(t, "people.csv", "name,age\nalice,30\nbob,25\n")

	names, err := Column(path, "name")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, names)

	_, err = Column(path, "height")
	assert.Error(t, err)
}

func TestToJSON(t *testing.T) {
	path := writeCSV(t, "people.csv", "name,age\nalice,30\n")

	var out bytes.Buffer
	require.NoError(t, ToJSON(path, &out))

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "alice", decoded[0]["name"])
}

func TestStatistics(t *testing.T) {
	path := writeCSV(t, "sparse.csv", "a,b,c\n1,,3\n,,\n")

	stats, err := Statistics(path)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Rows)
	assert.Equal(t, 3, stats.Columns)
	assert.Equal(t, 4, stats.EmptyCells)
}

package envvars

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWithFallback(t *testing.T) {
	t.Setenv("SYSUTIL_TEST_VAR", "present")

	assert.Equal(t, "present", Get("SYSUTIL_TEST_VAR", "fallback"))
	assert.Equal(t, "fallback", Get("SYSUTIL_TEST_MISSING", "fallback"))
}

func TestGetEmptyValueIsNotMissing(t *testing.T) {
	t.Setenv("SYSUTIL_TEST_EMPTY", "")

	assert.Equal(t, "", Get("SYSUTIL_TEST_EMPTY", "fallback"))
	assert.True(t, Exists("SYSUTIL_TEST_EMPTY"))
}

func TestSetUnset(t *testing.T) {
	t.Setenv("SYSUTIL_TEST_SET", "initial")

	require.NoError(t, Set("SYSUTIL_TEST_SET", "updated"))
	assert.Equal(t, "updated", os.Getenv("SYSUTIL_TEST_SET"))

	require.NoError(t, Unset("SYSUTIL_TEST_SET"))
	assert.False(t, Exists("SYSUTIL_TEST_SET"))
}

func TestAll(t *testing.T) {
	t.Setenv("SYSUTIL_TEST_ALL", "value")

	env := All()
	assert.Equal(t, "value", env["SYSUTIL_TEST_ALL"])
	assert.NotEmpty(t, env["PATH"])
}

func TestExpand(t *testing.T) {
	t.Setenv("SYSUTIL_TEST_EXPAND", "expanded")

	assert.Equal(t, "value is expanded", Expand("value is ${SYSUTIL_TEST_EXPAND}"))
}

func TestPathList(t *testing.T) {
	sep := string(os.PathListSeparator)
	t.Setenv("PATH", "/usr/bin"+sep+sep+"/bin")

	assert.Equal(t, []string{"/usr/bin", "/bin"}, PathList())
}

func TestAddToPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PATH", "/usr/bin")

	t.Run("append", func(t *testing.T) {
		require.NoError(t, AddToPath(dir, PositionEnd))
		dirs := PathList()
		assert.Equal(t, dir, dirs[len(dirs)-1])
	})

	t.Run("idempotent", func(t *testing.T) {
		before := PathList()
		require.NoError(t, AddToPath(dir, PositionEnd))
		assert.Equal(t, before, PathList())
	})

	t.Run("prepend", func(t *testing.T) {
		other := t.TempDir()
		require.NoError(t, AddToPath(other, PositionStart))
		assert.Equal(t, other, PathList()[0])
	})
}

func TestRemoveFromPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PATH", "/usr/bin")

	require.NoError(t, AddToPath(dir, PositionEnd))
	require.NoError(t, RemoveFromPath(dir))
	assert.NotContains(t, PathList(), dir)

	// Removing an absent directory is a no-op.
	require.NoError(t, RemoveFromPath(dir))
}

func TestPathEditRoundTrip(t *testing.T) {
	t.Setenv("PATH", "/usr/bin"+string(os.PathListSeparator)+"/bin")

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	base := t.TempDir()
	properties.Property("add then remove restores PATH", prop.ForAll(
		func(name string) bool {
			dir := filepath.Join(base, name)
			before := strings.Join(PathList(), ":")
			if AddToPath(dir, PositionEnd) != nil {
				return false
			}
			if RemoveFromPath(dir) != nil {
				return false
			}
			return strings.Join(PathList(), ":") == before
		},
		gen.RegexMatch(`[a-z][a-z0-9]{1,12}`),
	))

	properties.TestingRun(t)
}

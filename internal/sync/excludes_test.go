package sync

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestMergeExcludeListsUnion(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.txt")
	additions := filepath.Join(dir, "additions.txt")
	writeFile(t, base, "/vendor\n/node_modules\n")
	writeFile(t, additions, "/node_modules\n/local\n")

	merged, cleanup, err := MergeExcludeLists(base, additions)
	require.NoError(t, err)
	defer cleanup()

	assert.NotEqual(t, base, merged)

	body, err := os.ReadFile(merged)
	require.NoError(t, err)
	lines := strings.Fields(string(body))
	assert.Equal(t, []string{"/vendor", "/node_modules", "/local"}, lines)
}

func TestMergeExcludeListsCleanupRemovesTempFile(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.txt")
	additions := filepath.Join(dir, "additions.txt")
	writeFile(t, base, "/vendor\n")
	writeFile(t, additions, "/local\n")

	merged, cleanup, err := MergeExcludeLists(base, additions)
	require.NoError(t, err)

	cleanup()
	_, err = os.Stat(merged)
	assert.True(t, os.IsNotExist(err))
}

func TestMergeExcludeListsMissingAdditions(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.txt")
	writeFile(t, base, "/vendor\n")

	merged, cleanup, err := MergeExcludeLists(base, filepath.Join(dir, "nope.txt"))
	require.NoError(t, err)
	defer cleanup()

	// No temp file: the base list is used unmodified.
	assert.Equal(t, base, merged)
}

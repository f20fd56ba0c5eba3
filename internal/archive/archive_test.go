package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/deployproc/deployproc/internal/blob/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotSkipsGitDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("ref: refs/heads/master\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docroot"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docroot", "index.php"), []byte("<?php\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "artifact.yml"), []byte("identifier: x\n"), 0644))

	content, err := Snapshot(dir)
	require.NoError(t, err)

	names := map[string]bool{}
	gz, err := gzip.NewReader(bytes.NewReader(content))
	require.NoError(t, err)
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names[hdr.Name] = true
	}

	assert.True(t, names["docroot/index.php"])
	assert.True(t, names["artifact.yml"])
	for name := range names {
		assert.NotContains(t, name, ".git/")
	}
}

func TestResolve(t *testing.T) {
	storage, err := Resolve("file:///tmp/archives")
	require.NoError(t, err)
	assert.NotNil(t, storage)

	_, err = Resolve("ftp://example.com/archives")
	assert.Error(t, err)
}

func TestFileStorageRoundTrip(t *testing.T) {
	storage := file.New(t.TempDir())

	exists, err := storage.Exists("a.tar.gz")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, storage.Write("a.tar.gz", []byte("payload")))

	exists, err = storage.Exists("a.tar.gz")
	require.NoError(t, err)
	assert.True(t, exists)

	body, err := storage.Read("a.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), body)
}

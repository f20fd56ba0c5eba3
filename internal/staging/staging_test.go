package staging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepare(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deploy")

	repo, err := Prepare(path)
	require.NoError(t, err)

	cfg, err := repo.Config()
	require.NoError(t, err)
	core := cfg.Raw.Section("core")
	assert.Equal(t, "", core.Option("excludesfile"))
	assert.Equal(t, "true", core.Option("fileMode"))
}

func TestPrepareIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deploy")

	_, err := Prepare(path)
	require.NoError(t, err)

	// Leftovers from a previous run must not survive.
	err = os.WriteFile(filepath.Join(path, "stale.txt"), []byte("old"), 0644)
	require.NoError(t, err)

	_, err = Prepare(path)
	require.NoError(t, err)

	entries, err := os.ReadDir(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".git", entries[0].Name())
}

func TestCheckoutNewAndCommitAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deploy")
	repo, err := Prepare(path)
	require.NoError(t, err)

	err = CheckoutNew(repo, "master-build")
	require.NoError(t, err)

	err = os.WriteFile(filepath.Join(path, "index.php"), []byte("<?php\n"), 0644)
	require.NoError(t, err)

	hash, err := CommitAll(repo, "first artifact", "Test", "test@example.com")
	require.NoError(t, err)

	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, plumbing.NewBranchReferenceName("master-build"), head.Name())
	assert.Equal(t, hash, head.Hash())

	commit, err := repo.CommitObject(hash)
	require.NoError(t, err)
	tree, err := commit.Tree()
	require.NoError(t, err)
	_, err = tree.File("index.php")
	assert.NoError(t, err)
}

func TestCommitAllStagesDeletions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deploy")
	repo, err := Prepare(path)
	require.NoError(t, err)
	require.NoError(t, CheckoutNew(repo, "master-build"))

	require.NoError(t, os.WriteFile(filepath.Join(path, "keep.txt"), []byte("keep"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(path, "drop.txt"), []byte("drop"), 0644))
	_, err = CommitAll(repo, "both files", "Test", "test@example.com")
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(path, "drop.txt")))
	hash, err := CommitAll(repo, "one file", "Test", "test@example.com")
	require.NoError(t, err)

	commit, err := repo.CommitObject(hash)
	require.NoError(t, err)
	tree, err := commit.Tree()
	require.NoError(t, err)

	_, err = tree.File("keep.txt")
	assert.NoError(t, err)
	_, err = tree.File("drop.txt")
	assert.Error(t, err, "deleted file must not be in the commit tree")
}

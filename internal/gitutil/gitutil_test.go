package gitutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func testSignature() *object.Signature {
	return &object.Signature{
		Name:  "Test",
		Email: "test@example.com",
		When:  time.Now(),
	}
}

// initRepo creates a repository in a temp dir with one commit per message,
// each touching notes.txt.
func initRepo(t *testing.T, messages ...string) (string, *git.Repository) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	w, err := repo.Worktree()
	require.NoError(t, err)

	for i, msg := range messages {
		err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(msg), 0644)
		require.NoError(t, err)
		_, err = w.Add("notes.txt")
		require.NoError(t, err)
		_, err = w.Commit(msg, &git.CommitOptions{Author: testSignature()})
		require.NoError(t, err, "commit %d", i)
	}

	return dir, repo
}

// initBareRepo creates an empty bare repository suitable as a push target.
func initBareRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	_, err := git.PlainInit(dir, true)
	require.NoError(t, err)

	return dir
}

package gitutil

import (
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stagingWithRemote initializes an empty repository with a single remote
// pointing at url.
func stagingWithRemote(t *testing.T, url string) (*git.Repository, string) {
	t.Helper()

	repo, err := git.PlainInit(t.TempDir(), false)
	require.NoError(t, err)

	name := RemoteName(url)
	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: name,
		URLs: []string{url},
	})
	require.NoError(t, err)

	return repo, name
}

func TestProbeRemoteBranch(t *testing.T) {
	upstream, _ := initRepo(t, "upstream commit")
	repo, remoteName := stagingWithRemote(t, upstream)

	result, err := ProbeRemoteBranch(repo, remoteName, "master")
	require.NoError(t, err)
	assert.Equal(t, BranchExists, result)

	result, err = ProbeRemoteBranch(repo, remoteName, "does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, NoRemoteBranch, result)
}

func TestProbeRemoteBranchEmptyRemote(t *testing.T) {
	bare := initBareRepo(t)
	repo, remoteName := stagingWithRemote(t, bare)

	result, err := ProbeRemoteBranch(repo, remoteName, "master")
	require.NoError(t, err)
	assert.Equal(t, NoRemoteBranch, result)
}

func TestProbeRemoteBranchUnexpectedError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.git")
	repo, remoteName := stagingWithRemote(t, missing)

	_, err := ProbeRemoteBranch(repo, remoteName, "master")
	assert.Error(t, err)
}

func TestAdoptUpstream(t *testing.T) {
	upstreamDir, upstream := initRepo(t, "upstream commit")
	upstreamHead, err := upstream.Head()
	require.NoError(t, err)

	repo, remoteName := stagingWithRemote(t, upstreamDir)

	err = AdoptUpstream(repo, remoteName, "master", 1)
	require.NoError(t, err)

	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, plumbing.NewBranchReferenceName("master"), head.Name())
	assert.Equal(t, upstreamHead.Hash(), head.Hash())

	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Filesystem.Stat("notes.txt")
	assert.NoError(t, err, "fetched tree should be materialized")
}

func TestPushRefSpec(t *testing.T) {
	_, repo := initRepo(t, "artifact commit")
	bare := initBareRepo(t)

	name := RemoteName(bare)
	_, err := repo.CreateRemote(&config.RemoteConfig{
		Name: name,
		URLs: []string{bare},
	})
	require.NoError(t, err)

	err = PushRefSpec(repo, name, config.RefSpec("refs/heads/master:refs/heads/master"))
	require.NoError(t, err)

	remote, err := git.PlainOpen(bare)
	require.NoError(t, err)
	localHead, err := repo.Head()
	require.NoError(t, err)
	remoteHead, err := remote.Reference(plumbing.NewBranchReferenceName("master"), true)
	require.NoError(t, err)
	assert.Equal(t, localHead.Hash(), remoteHead.Hash())

	// Pushing the same state again is not an error.
	err = PushRefSpec(repo, name, config.RefSpec("refs/heads/master:refs/heads/master"))
	assert.NoError(t, err)
}

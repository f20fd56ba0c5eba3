package gitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteNameDeterministic(t *testing.T) {
	name := RemoteName("https://example.com/repo.git")

	assert.Equal(t, name, RemoteName("https://example.com/repo.git"))
	assert.NotEqual(t, name, RemoteName("https://example.com/other.git"))
	assert.NotEqual(t, "origin", name)
}

func TestRegisterRemotes(t *testing.T) {
	_, repo := initRepo(t, "init")

	urls := []string{
		"https://example.com/one.git",
		"https://example.com/two.git",
	}
	specs, err := RegisterRemotes(repo, urls)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	remotes, err := repo.Remotes()
	require.NoError(t, err)
	assert.Len(t, remotes, 2)

	for _, spec := range specs {
		remote, err := repo.Remote(spec.Name)
		require.NoError(t, err)
		assert.Equal(t, []string{spec.URL}, remote.Config().URLs)
	}
}

func TestRegisterRemotesDeduplicates(t *testing.T) {
	_, repo := initRepo(t, "init")

	urls := []string{
		"https://example.com/one.git",
		"https://example.com/one.git",
	}
	specs, err := RegisterRemotes(repo, urls)
	require.NoError(t, err)
	assert.Len(t, specs, 1)
}

func TestRegisterRemotesEmpty(t *testing.T) {
	_, repo := initRepo(t, "init")

	_, err := RegisterRemotes(repo, nil)
	assert.Error(t, err)
}

// Package gitutil wraps the go-git operations the deploy pipeline performs
// against the source repository, the staging repository and their remotes.
package gitutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
)

// RemoteSpec pairs a remote URL with the local name it is registered under.
type RemoteSpec struct {
	URL  string
	Name string
}

// RemoteName derives the local remote name for a URL. The name is a pure
// function of the URL, so the same URL maps to the same remote across runs
// and arbitrary URLs never collide with reserved names like "origin".
func RemoteName(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "r" + hex.EncodeToString(sum[:])[:16]
}

// RegisterRemotes adds one remote per URL to repo. Duplicate URLs are
// registered once. The URL list must be non-empty; a pipeline with zero
// remotes can build nothing to push.
func RegisterRemotes(repo *git.Repository, urls []string) ([]RemoteSpec, error) {
	if len(urls) == 0 {
		return nil, errors.New("remote URL list is empty")
	}

	var specs []RemoteSpec
	seen := map[string]bool{}
	for _, url := range urls {
		name := RemoteName(url)
		if seen[name] {
			continue
		}
		seen[name] = true

		_, err := repo.CreateRemote(&config.RemoteConfig{
			Name: name,
			URLs: []string{url},
		})
		if err != nil {
			return nil, fmt.Errorf("could not add remote %s (%s): %v", name, url, err)
		}

		specs = append(specs, RemoteSpec{URL: url, Name: name})
	}

	return specs, nil
}

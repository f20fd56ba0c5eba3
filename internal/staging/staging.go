// Package staging manages the artifact staging directory: a disposable git
// repository rebuilt from scratch on every deploy run, with no shared
// history with the source repository.
package staging

import (
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Prepare deletes and recreates path, initializes a fresh repository in it
// and pins the local config so nothing from the operator's environment
// leaks in: global ignore rules are disabled and file mode changes are
// tracked.
func Prepare(path string) (*git.Repository, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("could not remove %s: %v", path, err)
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("could not create %s: %v", path, err)
	}

	repo, err := git.PlainInit(path, false)
	if err != nil {
		return nil, fmt.Errorf("could not init repository in %s: %v", path, err)
	}

	cfg, err := repo.Config()
	if err != nil {
		return nil, fmt.Errorf("could not read repository config: %v", err)
	}
	cfg.Raw.Section("core").SetOption("excludesfile", "")
	cfg.Raw.Section("core").SetOption("fileMode", "true")
	if err := repo.SetConfig(cfg); err != nil {
		return nil, fmt.Errorf("could not write repository config: %v", err)
	}

	return repo, nil
}

// CheckoutNew points HEAD at a new, unborn branch. Equivalent to
// `git checkout -b` in an empty repository.
func CheckoutNew(repo *git.Repository, branch string) error {
	ref := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(branch))
	if err := repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("could not set HEAD to %s: %v", branch, err)
	}

	return nil
}

// CommitAll stages every change in the worktree, including deletions, and
// commits. The resulting tree is exactly the on-disk state of the staging
// directory, not an incremental diff against prior history.
func CommitAll(repo *git.Repository, message string, committerName string, committerEmail string) (plumbing.Hash, error) {
	w, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("could not get worktree: %v", err)
	}

	if err := w.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("could not stage changes: %v", err)
	}

	hash, err := w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  committerName,
			Email: committerEmail,
			When:  time.Now(),
		},
		AllowEmptyCommits: true,
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("could not commit: %v", err)
	}

	return hash, nil
}

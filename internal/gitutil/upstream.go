package gitutil

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// ProbeResult is the outcome of a remote branch existence probe.
type ProbeResult int

const (
	BranchExists ProbeResult = iota
	NoRemoteBranch
)

// ProbeRemoteBranch lists the heads of a registered remote and reports
// whether branch exists there. An empty remote repository legitimately has
// no branches and is not an error; any other listing failure is unexpected
// and surfaced to the caller.
func ProbeRemoteBranch(repo *git.Repository, remoteName string, branch string) (ProbeResult, error) {
	remote, err := repo.Remote(remoteName)
	if err != nil {
		return NoRemoteBranch, fmt.Errorf("could not get remote %s: %v", remoteName, err)
	}

	refs, err := remote.List(&git.ListOptions{})
	if err != nil {
		if errors.Is(err, transport.ErrEmptyRemoteRepository) {
			return NoRemoteBranch, nil
		}
		return NoRemoteBranch, fmt.Errorf("could not list heads of remote %s: %v", remoteName, err)
	}

	want := plumbing.NewBranchReferenceName(branch)
	for _, ref := range refs {
		if ref.Name() == want {
			return BranchExists, nil
		}
	}

	return NoRemoteBranch, nil
}

// AdoptUpstream fetches branch from a registered remote at the given depth
// and makes the fetched head the tip of the local branch of the same name,
// materializing its tree in the worktree. The next artifact commit then
// extends the remote history instead of starting a fresh one. Depth 0 means
// a full fetch.
func AdoptUpstream(repo *git.Repository, remoteName string, branch string, depth int) error {
	refspec := config.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", branch, remoteName, branch))
	err := repo.Fetch(&git.FetchOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{refspec},
		Depth:      depth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("could not fetch %s from remote %s: %v", branch, remoteName, err)
	}

	ref, err := repo.Reference(plumbing.NewRemoteReferenceName(remoteName, branch), true)
	if err != nil {
		return fmt.Errorf("could not resolve fetched head: %v", err)
	}

	w, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("could not get worktree: %v", err)
	}

	err = w.Checkout(&git.CheckoutOptions{
		Hash:   ref.Hash(),
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: true,
		Force:  true,
	})
	if err != nil {
		return fmt.Errorf("could not check out fetched head: %v", err)
	}

	return nil
}

// PushRefSpec pushes a single refspec to a registered remote. An up-to-date
// remote is not an error.
func PushRefSpec(repo *git.Repository, remoteName string, refspec config.RefSpec) error {
	err := repo.Push(&git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{refspec},
		Force:      true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("could not push %s to remote %s: %v", refspec, remoteName, err)
	}

	return nil
}

package gitutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// OpenSource opens the source repository at path.
func OpenSource(path string) (*git.Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("could not open source repository at %s: %v", path, err)
	}

	return repo, nil
}

// IsDirty reports whether the repository worktree has uncommitted changes.
func IsDirty(repo *git.Repository) (bool, error) {
	w, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("could not get worktree: %v", err)
	}

	status, err := w.Status()
	if err != nil {
		return false, fmt.Errorf("could not get worktree status: %v", err)
	}

	return !status.IsClean(), nil
}

// CurrentBranch returns the short name of the branch HEAD points to.
func CurrentBranch(repo *git.Repository) (string, error) {
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("could not resolve HEAD: %v", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is not on a branch: %s", head.Name())
	}

	return head.Name().Short(), nil
}

// HeadHash returns the hash of the commit HEAD points to.
func HeadHash(repo *git.Repository) (string, error) {
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("could not resolve HEAD: %v", err)
	}

	return head.Hash().String(), nil
}

// LastCommitSummary returns the first line of the HEAD commit message. It is
// the default artifact commit message when none is given.
func LastCommitSummary(repo *git.Repository) (string, error) {
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("could not resolve HEAD: %v", err)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return "", fmt.Errorf("could not read HEAD commit: %v", err)
	}

	summary, _, _ := strings.Cut(commit.Message, "\n")
	return strings.TrimSpace(summary), nil
}

// TagHead creates an annotated tag at the repository HEAD.
func TagHead(repo *git.Repository, name string, message string, taggerName string, taggerEmail string) error {
	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("could not resolve HEAD: %v", err)
	}

	_, err = repo.CreateTag(name, head.Hash(), &git.CreateTagOptions{
		Tagger: &object.Signature{
			Name:  taggerName,
			Email: taggerEmail,
			When:  time.Now(),
		},
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("could not create tag %s: %v", name, err)
	}

	return nil
}

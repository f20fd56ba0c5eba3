// Copyright (c) 2026 The Deployproc Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package deployproc builds a sanitized, dependency-resolved snapshot of a
// source repository in a disposable staging repository and pushes it to one
// or more remotes as a branch or an annotated tag.
package deployproc

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/deployproc/deployproc/internal/archive"
	"github.com/deployproc/deployproc/internal/composer"
	"github.com/deployproc/deployproc/internal/gitutil"
	"github.com/deployproc/deployproc/internal/manifest"
	"github.com/deployproc/deployproc/internal/patch"
	"github.com/deployproc/deployproc/internal/sanitize"
	"github.com/deployproc/deployproc/internal/staging"
	syncpkg "github.com/deployproc/deployproc/internal/sync"
	"github.com/deployproc/deployproc/pkg/data"
	"github.com/go-git/go-billy/v5/osfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"go.uber.org/zap"
)

// runContext holds the values resolved once at the start of a deploy run.
// They never change after resolution.
type runContext struct {
	tagPath bool

	// identifier is the ref that ends up on the remotes: the branch name
	// on the branch path, the tag name on the tag path.
	identifier string

	// workBranch is the branch the staging repository works on. On the
	// tag path it is a disposable name that is never pushed.
	workBranch string

	commitMessage string
	sourceBranch  string
	sourceCommit  string
}

// Deploy runs the artifact pipeline with the given configuration snapshot.
// Aborting at any stage returns a wrapped sentinel error from this package;
// nil means the artifact reached every remote (or would have, under
// dry-run).
func Deploy(ctx context.Context, pd *data.PipelineData) error {
	log := pd.Log

	// Nothing is mutated before the remote configuration is known to be
	// usable.
	if len(pd.RemoteURLs) == 0 {
		return fmt.Errorf("%w: set git.remotes before deploying", ErrMissingRemotes)
	}

	source, err := gitutil.OpenSource(pd.SourceDir)
	if err != nil {
		return err
	}

	if err := checkDirty(source, pd); err != nil {
		return err
	}

	rc, err := resolveRun(source, pd)
	if err != nil {
		return err
	}
	log.Infof("deploying %s", rc.identifier)

	repo, err := staging.Prepare(pd.DeployDir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPrepare, err)
	}

	remotes, err := gitutil.RegisterRemotes(repo, pd.RemoteURLs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMissingRemotes, err)
	}

	if err := staging.CheckoutNew(repo, rc.workBranch); err != nil {
		return fmt.Errorf("%w: %v", ErrPrepare, err)
	}

	if !rc.tagPath {
		if err := mergeUpstream(repo, remotes[0], rc.workBranch, log); err != nil {
			return err
		}
	}

	if err := build(ctx, pd, rc); err != nil {
		return err
	}

	if err := pd.Hooks.PostBuild(ctx); err != nil {
		return fmt.Errorf("post-build hook failed: %v", err)
	}

	hash, err := staging.CommitAll(repo, rc.commitMessage, pd.CommitterName, pd.CommitterEmail)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCommit, err)
	}
	log.Infof("committed artifact %s", hash)

	if rc.tagPath {
		if err := gitutil.TagHead(repo, rc.identifier, rc.commitMessage, pd.CommitterName, pd.CommitterEmail); err != nil {
			return fmt.Errorf("%w: %v", ErrTag, err)
		}
		if pd.TagSource {
			if err := gitutil.TagHead(source, rc.identifier, rc.commitMessage, pd.CommitterName, pd.CommitterEmail); err != nil {
				return fmt.Errorf("%w: source repository: %v", ErrTag, err)
			}
		}
	}

	if err := push(repo, remotes, rc, pd); err != nil {
		return err
	}

	uploadArchive(pd, rc)

	log.Infof("deployment artifact %s is ready", rc.identifier)
	return nil
}

// checkDirty gates the pipeline on the source worktree state. Uncommitted
// changes abort the run unless the operator opted out, in which case the
// run continues with a warning. Not being able to run the check at all is
// treated the same way.
func checkDirty(source *gogit.Repository, pd *data.PipelineData) error {
	dirty, err := gitutil.IsDirty(source)
	if err != nil {
		if pd.Opts.IgnoreDirty {
			pd.Log.Warnf("could not check source repository state: %v", err)
			return nil
		}
		return fmt.Errorf("%w: %v", ErrDirtyRepository, err)
	}

	if dirty {
		if pd.Opts.IgnoreDirty {
			pd.Log.Warnf("source repository has uncommitted changes; continuing because ignore-dirty is set")
			return nil
		}
		return fmt.Errorf("%w: commit or stash your changes, or pass ignore-dirty", ErrDirtyRepository)
	}

	return nil
}

// resolveRun fixes the branch-or-tag decision, the names and the commit
// message for the whole run.
func resolveRun(source *gogit.Repository, pd *data.PipelineData) (*runContext, error) {
	rc := &runContext{}

	branch, err := gitutil.CurrentBranch(source)
	if err != nil {
		return nil, err
	}
	rc.sourceBranch = branch

	commit, err := gitutil.HeadHash(source)
	if err != nil {
		return nil, err
	}
	rc.sourceCommit = commit

	rc.commitMessage = pd.Opts.CommitMessage
	if rc.commitMessage == "" {
		rc.commitMessage, err = gitutil.LastCommitSummary(source)
		if err != nil {
			return nil, err
		}
	}

	defaultBranch := branch + "-build"

	switch {
	case pd.Opts.TagName != "":
		rc.tagPath = true
		rc.identifier = pd.Opts.TagName
		rc.workBranch = defaultBranch + "-temp"
	case pd.Opts.TagRequested:
		return nil, fmt.Errorf("%w: a tag deploy needs a tag name", ErrInvalidTagName)
	default:
		rc.identifier = pd.Opts.BranchName
		if rc.identifier == "" {
			rc.identifier = defaultBranch
		}
		rc.workBranch = rc.identifier
	}

	return rc, nil
}

// mergeUpstream probes the first remote for the deploy branch and, when it
// exists, makes its head the base of the staging branch so the new artifact
// commit extends the published history. A missing remote branch is the
// normal first-deploy case and skips the merge.
func mergeUpstream(repo *gogit.Repository, remote gitutil.RemoteSpec, branch string, log *zap.SugaredLogger) error {
	result, err := gitutil.ProbeRemoteBranch(repo, remote.Name, branch)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedProbe, err)
	}

	if result == gitutil.NoRemoteBranch {
		log.Infof("remote %s has no branch %s yet, starting fresh history", remote.URL, branch)
		return nil
	}

	log.Infof("merging existing %s from %s", branch, remote.URL)
	if err := gitutil.AdoptUpstream(repo, remote.Name, branch, 1); err != nil {
		return fmt.Errorf("%w: %v", ErrMergeConflict, err)
	}

	return nil
}

// build runs the pre-commit stages in their fixed order: external build
// hooks, content sync, dependency install, optional patches, manifest,
// sanitize. Dependency install must follow the sync because it operates on
// the synced tree.
func build(ctx context.Context, pd *data.PipelineData, rc *runContext) error {
	if err := pd.Hooks.BuildFrontend(ctx); err != nil {
		return fmt.Errorf("frontend build hook failed: %v", err)
	}
	if err := pd.Hooks.InitHashSalt(ctx); err != nil {
		return fmt.Errorf("hash salt hook failed: %v", err)
	}

	id := ""
	if rc.tagPath {
		id = rc.identifier
	}
	if err := pd.Hooks.InitDeploymentIdentifier(ctx, id); err != nil {
		return fmt.Errorf("deployment identifier hook failed: %v", err)
	}

	if pd.SimpleSAMLPhp {
		if err := pd.Hooks.BuildSimpleSAMLConfig(ctx); err != nil {
			return fmt.Errorf("simplesamlphp config hook failed: %v", err)
		}
	}

	err := syncpkg.Sync(syncpkg.Options{
		Source:               pd.SourceDir,
		Dest:                 pd.DeployDir,
		Docroot:              pd.Docroot,
		Multisites:           pd.Multisites,
		ExcludeFile:          pd.ExcludeFile,
		ExcludeAdditionsFile: pd.ExcludeAdditionsFile,
		GitignoreFile:        pd.GitignoreFile,
		Log:                  pd.Log,
	})
	if err != nil {
		return err
	}

	installed, err := composer.Install(ctx, pd)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDependencyInstall, err)
	}

	if pd.PatchesDir != "" {
		if err := patch.ApplyDir(pd.PatchesDir, osfs.New(pd.DeployDir), pd.Log); err != nil {
			return err
		}
	}

	m := &manifest.Manifest{
		Identifier:            rc.identifier,
		SourceBranch:          rc.sourceBranch,
		SourceCommit:          rc.sourceCommit,
		BuildTime:             time.Now().UTC(),
		DependenciesInstalled: installed,
	}
	if err := manifest.Write(filepath.Join(pd.DeployDir, manifest.Filename), m); err != nil {
		return err
	}

	return sanitize.Sanitize(sanitize.Options{
		Dest:    pd.DeployDir,
		Docroot: pd.Docroot,
		Log:     pd.Log,
	})
}

// push sends the run's identifier to every registered remote. All remotes
// are attempted before a failure is reported, so one broken remote does not
// hide the state of the others. Dry-run reports the plan and performs no
// network mutation.
func push(repo *gogit.Repository, remotes []gitutil.RemoteSpec, rc *runContext, pd *data.PipelineData) error {
	ref := "refs/heads/" + rc.identifier
	if rc.tagPath {
		ref = "refs/tags/" + rc.identifier
	}
	refspec := config.RefSpec(ref + ":" + ref)

	if pd.Opts.DryRun {
		for _, remote := range remotes {
			pd.Log.Warnf("dry run: would push %s to %s", ref, remote.URL)
		}
		return nil
	}

	var failed []string
	for _, remote := range remotes {
		pd.Log.Infof("pushing %s to %s", ref, remote.URL)
		if err := gitutil.PushRefSpec(repo, remote.Name, refspec); err != nil {
			pd.Log.Errorf("push to %s failed: %v", remote.URL, err)
			failed = append(failed, remote.URL)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%w: %s", ErrPush, strings.Join(failed, ", "))
	}

	return nil
}

// uploadArchive snapshots the artifact into the configured blob store. The
// push is the deliverable; a failed upload is reported but does not fail
// the run. Dry-run reports the plan and leaves the store untouched.
func uploadArchive(pd *data.PipelineData, rc *runContext) {
	if pd.BlobStorage == nil {
		return
	}

	key := strings.ReplaceAll(rc.identifier, "/", "-") + ".tar.gz"
	if pd.Opts.DryRun {
		pd.Log.Warnf("dry run: would upload artifact archive %s", key)
		return
	}

	content, err := archive.Snapshot(pd.DeployDir)
	if err != nil {
		pd.Log.Warnf("could not snapshot artifact: %v", err)
		return
	}

	if err := pd.BlobStorage.Write(key, content); err != nil {
		pd.Log.Warnf("could not upload artifact archive %s: %v", key, err)
		return
	}

	pd.Log.Infof("uploaded artifact archive %s", key)
}

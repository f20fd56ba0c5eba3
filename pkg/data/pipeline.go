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

package data

import (
	"context"

	"github.com/deployproc/deployproc/internal/blob"
	"go.uber.org/zap"
)

// DeployOptions are the per-invocation flags of a deploy run. They are
// resolved once by the caller and never change during the run.
type DeployOptions struct {
	// BranchName is the artifact branch to build and push. Empty means
	// "derive from the current source branch" on the branch path.
	BranchName string

	// TagName selects the tag path when non-empty.
	TagName string

	// TagRequested is set when the operator asked for a tag without
	// supplying a name. An empty TagName with TagRequested set is an
	// error; the pipeline never invents tag names.
	TagRequested bool

	// CommitMessage for the artifact commit and any tag annotation.
	// Empty means "reuse the last source commit summary".
	CommitMessage string

	IgnoreDirty        bool
	DryRun             bool
	IgnorePlatformReqs bool
}

// Hooks are the build steps the pipeline triggers but does not own. The
// surrounding CLI layer decides what each one actually runs; tests plug in
// NopHooks.
type Hooks interface {
	BuildFrontend(ctx context.Context) error
	InitHashSalt(ctx context.Context) error
	InitDeploymentIdentifier(ctx context.Context, id string) error
	BuildSimpleSAMLConfig(ctx context.Context) error
	PostBuild(ctx context.Context) error
}

// NopHooks implements Hooks with no-ops.
type NopHooks struct{}

func (NopHooks) BuildFrontend(context.Context) error                    { return nil }
func (NopHooks) InitHashSalt(context.Context) error                     { return nil }
func (NopHooks) InitDeploymentIdentifier(context.Context, string) error { return nil }
func (NopHooks) BuildSimpleSAMLConfig(context.Context) error            { return nil }
func (NopHooks) PostBuild(context.Context) error                        { return nil }

// CommandRunner executes an external command in dir. The default
// implementation shells out; tests substitute their own.
type CommandRunner func(ctx context.Context, dir string, name string, args ...string) error

// PipelineData is the read-only configuration snapshot a deploy run is
// constructed with. The caller fills it from its configuration source once;
// the pipeline never reads configuration ad hoc.
type PipelineData struct {
	Opts DeployOptions

	// SourceDir is the root of the source repository.
	SourceDir string

	// Docroot is the web root, relative to SourceDir.
	Docroot string

	// DeployDir is the staging directory. Deleted and recreated on every
	// run.
	DeployDir string

	// ExcludeFile is the base exclude list for the content sync.
	// ExcludeAdditionsFile, when present, is unioned into it.
	ExcludeFile          string
	ExcludeAdditionsFile string

	// GitignoreFile is copied into the artifact as .gitignore, replacing
	// whatever the sync brought over.
	GitignoreFile string

	// RemoteURLs is the ordered list of push targets. Must be non-empty.
	RemoteURLs []string

	// TagSource also tags the source repository on the tag path.
	TagSource bool

	// BuildDependencies regenerates production dependencies in the
	// artifact. Disabling it shifts that burden to the exclude list.
	BuildDependencies bool

	// ComposerBin is the dependency manager executable.
	ComposerBin string

	// Multisites are site directory names under <Docroot>/sites whose
	// permissions are widened for the duration of the sync.
	Multisites []string

	// SimpleSAMLPhp gates the SimpleSAMLphp config build hook.
	SimpleSAMLPhp bool

	// PatchesDir, when non-empty, holds unified diffs applied to the
	// artifact before sanitization.
	PatchesDir string

	CommitterName  string
	CommitterEmail string

	Hooks     Hooks
	CmdRunner CommandRunner

	// BlobStorage, when non-nil, receives a tar.gz snapshot of the
	// artifact after the push.
	BlobStorage blob.Storage

	Log *zap.SugaredLogger
}

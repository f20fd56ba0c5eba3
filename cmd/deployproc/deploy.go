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

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/deployproc/deployproc/internal/archive"
	"github.com/deployproc/deployproc/pkg/data"
	"github.com/deployproc/deployproc/pkg/deployproc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var (
	deployBranch             string
	deployTag                string
	deployCommitMsg          string
	deployIgnoreDirty        bool
	deployDryRun             bool
	deployIgnorePlatformReqs bool
)

var deploy = &cobra.Command{
	Use:   "deploy",
	Short: "Build a deployment artifact and push it to the configured remotes",
	RunE:  runDeploy,
}

func init() {
	deploy.Flags().StringVar(&deployBranch, "branch", "", "Name of the artifact branch to create")
	deploy.Flags().StringVar(&deployTag, "tag", "", "Name of the tag to create")
	deploy.Flags().StringVar(&deployCommitMsg, "commit-msg", "", "Commit message for the artifact commit")
	deploy.Flags().BoolVar(&deployIgnoreDirty, "ignore-dirty", false, "Deploy even if the source repository has uncommitted changes")
	deploy.Flags().BoolVar(&deployDryRun, "dry-run", false, "Build the artifact but do not push it")
	deploy.Flags().BoolVar(&deployIgnorePlatformReqs, "ignore-platform-reqs", false, "Ignore platform requirements during dependency install")

	root.AddCommand(deploy)
}

func runDeploy(cmd *cobra.Command, _ []string) error {
	log := newLogger()
	defer func() { _ = log.Sync() }()

	opts := data.DeployOptions{
		BranchName:         deployBranch,
		TagName:            deployTag,
		CommitMessage:      deployCommitMsg,
		IgnoreDirty:        deployIgnoreDirty,
		DryRun:             deployDryRun,
		IgnorePlatformReqs: deployIgnorePlatformReqs,
	}
	resolveInteractive(&opts)

	pd := snapshotConfig(opts, log)

	if uri := viper.GetString("deploy.archive"); uri != "" {
		storage, err := archive.Resolve(uri)
		if err != nil {
			log.Warnf("archive upload disabled: %v", err)
		} else {
			pd.BlobStorage = storage
		}
	}

	return deployproc.Deploy(cmd.Context(), pd)
}

// resolveInteractive asks the single tag-or-branch question when neither
// flag was given, the run is not a dry run and stdin is a terminal. The
// answer fixes the entire downstream path.
func resolveInteractive(opts *data.DeployOptions) {
	if opts.TagName != "" || opts.BranchName != "" || opts.DryRun {
		return
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return
	}

	if promptYesNo("Would you like to create a tag?") {
		opts.TagRequested = true
		opts.TagName = promptString("Tag name (e.g. 1.2.0)")
		return
	}

	// Empty means "derive from the current source branch".
	opts.BranchName = promptString("Artifact branch name (leave empty for <branch>-build)")
}

func promptYesNo(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	answer := readLine()
	return answer == "y" || answer == "Y" || strings.EqualFold(answer, "yes")
}

func promptString(question string) string {
	fmt.Printf("%s: ", question)
	return readLine()
}

func readLine() string {
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

// snapshotConfig reads every configuration key the pipeline consumes into
// an immutable snapshot. The pipeline never touches viper after this.
func snapshotConfig(opts data.DeployOptions, log *zap.SugaredLogger) *data.PipelineData {
	return &data.PipelineData{
		Opts:                 opts,
		SourceDir:            viper.GetString("repo.root"),
		Docroot:              viper.GetString("docroot"),
		DeployDir:            viper.GetString("deploy.dir"),
		ExcludeFile:          viper.GetString("deploy.exclude_file"),
		ExcludeAdditionsFile: viper.GetString("deploy.exclude_additions_file"),
		GitignoreFile:        viper.GetString("deploy.gitignore_file"),
		RemoteURLs:           viper.GetStringSlice("git.remotes"),
		TagSource:            viper.GetBool("deploy.tag_source"),
		BuildDependencies:    viper.GetBool("deploy.build-dependencies"),
		ComposerBin:          viper.GetString("composer.bin"),
		Multisites:           viper.GetStringSlice("multisites"),
		SimpleSAMLPhp:        viper.GetBool("simplesamlphp"),
		PatchesDir:           viper.GetString("deploy.patches_dir"),
		CommitterName:        viper.GetString("git.author_name"),
		CommitterEmail:       viper.GetString("git.author_email"),
		Hooks:                newExecHooks(viper.GetString("repo.root"), log),
		CmdRunner:            execRunner(log),
		Log:                  log,
	}
}

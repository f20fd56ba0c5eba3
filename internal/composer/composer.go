// Package composer regenerates production dependencies inside the staging
// directory.
package composer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/deployproc/deployproc/pkg/data"
)

// Install rebuilds the vendor tree in the staging directory from the source
// repository's manifest and lock file. The first return value reports
// whether an install was attempted at all: when dependency building is
// disabled by configuration the install is skipped with a warning, which
// shifts responsibility for the vendor tree to the exclude list.
func Install(ctx context.Context, pd *data.PipelineData) (bool, error) {
	if !pd.BuildDependencies {
		pd.Log.Warnf("dependency building is disabled; the exclude list must cover the vendor tree")
		return false, nil
	}

	if err := os.RemoveAll(filepath.Join(pd.DeployDir, "vendor")); err != nil {
		return true, fmt.Errorf("could not remove stale vendor tree: %v", err)
	}

	if err := data.CopyFile(filepath.Join(pd.SourceDir, "composer.json"), filepath.Join(pd.DeployDir, "composer.json")); err != nil {
		return true, fmt.Errorf("could not copy composer.json: %v", err)
	}

	lock := filepath.Join(pd.SourceDir, "composer.lock")
	if _, err := os.Stat(lock); err == nil {
		if err := data.CopyFile(lock, filepath.Join(pd.DeployDir, "composer.lock")); err != nil {
			return true, fmt.Errorf("could not copy composer.lock: %v", err)
		}
	}

	args := []string{"install", "--no-dev", "--no-interaction", "--optimize-autoloader"}
	if pd.Opts.IgnorePlatformReqs {
		args = append(args, "--ignore-platform-reqs")
	}

	pd.Log.Infof("installing production dependencies in %s", pd.DeployDir)
	if err := pd.CmdRunner(ctx, pd.DeployDir, pd.ComposerBin, args...); err != nil {
		return true, fmt.Errorf("dependency installer exited with error: %v", err)
	}

	return true, nil
}

package composer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/deployproc/deployproc/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedCommand struct {
	dir  string
	name string
	args []string
}

func testData(t *testing.T, runner data.CommandRunner) *data.PipelineData {
	t.Helper()

	source := t.TempDir()
	deploy := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(source, "composer.json"), []byte("{}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(source, "composer.lock"), []byte("{}\n"), 0644))

	return &data.PipelineData{
		SourceDir:         source,
		DeployDir:         deploy,
		BuildDependencies: true,
		ComposerBin:       "composer",
		CmdRunner:         runner,
		Log:               zap.NewNop().Sugar(),
	}
}

func TestInstall(t *testing.T) {
	var got recordedCommand
	pd := testData(t, func(_ context.Context, dir string, name string, args ...string) error {
		got = recordedCommand{dir: dir, name: name, args: args}
		return nil
	})
	pd.Opts.IgnorePlatformReqs = true

	// A stale vendor tree must not survive into the new artifact.
	require.NoError(t, os.MkdirAll(filepath.Join(pd.DeployDir, "vendor", "old"), 0755))

	installed, err := Install(context.Background(), pd)
	require.NoError(t, err)
	assert.True(t, installed)

	assert.Equal(t, pd.DeployDir, got.dir)
	assert.Equal(t, "composer", got.name)
	assert.Contains(t, got.args, "install")
	assert.Contains(t, got.args, "--no-dev")
	assert.Contains(t, got.args, "--optimize-autoloader")
	assert.Contains(t, got.args, "--ignore-platform-reqs")

	assert.FileExists(t, filepath.Join(pd.DeployDir, "composer.json"))
	assert.FileExists(t, filepath.Join(pd.DeployDir, "composer.lock"))
	assert.NoDirExists(t, filepath.Join(pd.DeployDir, "vendor", "old"))
}

func TestInstallWithoutPlatformBypass(t *testing.T) {
	var got recordedCommand
	pd := testData(t, func(_ context.Context, dir string, name string, args ...string) error {
		got = recordedCommand{dir: dir, name: name, args: args}
		return nil
	})

	_, err := Install(context.Background(), pd)
	require.NoError(t, err)
	assert.NotContains(t, got.args, "--ignore-platform-reqs")
}

func TestInstallDisabledIsNotAnError(t *testing.T) {
	called := false
	pd := testData(t, func(_ context.Context, _ string, _ string, _ ...string) error {
		called = true
		return nil
	})
	pd.BuildDependencies = false

	installed, err := Install(context.Background(), pd)
	require.NoError(t, err)
	assert.False(t, installed)
	assert.False(t, called)
}

func TestInstallerFailureIsFatal(t *testing.T) {
	pd := testData(t, func(_ context.Context, _ string, _ string, _ ...string) error {
		return errors.New("exit status 2")
	})

	installed, err := Install(context.Background(), pd)
	assert.True(t, installed)
	assert.Error(t, err)
}

package main

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/deployproc/deployproc/pkg/data"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// execRunner returns the default command runner: run the command in dir
// with output passed through to the operator.
func execRunner(log *zap.SugaredLogger) data.CommandRunner {
	return func(ctx context.Context, dir string, name string, args ...string) error {
		log.Debugf("running %s %s in %s", name, strings.Join(args, " "), dir)

		c := exec.CommandContext(ctx, name, args...)
		c.Dir = dir
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	}
}

// execHooks implements the pipeline's external build steps by running
// operator-configured shell commands from the commands.* configuration
// keys. A hook whose command is not configured is a no-op.
type execHooks struct {
	dir    string
	runner data.CommandRunner
	log    *zap.SugaredLogger
}

func newExecHooks(dir string, log *zap.SugaredLogger) *execHooks {
	return &execHooks{
		dir:    dir,
		runner: execRunner(log),
		log:    log,
	}
}

func (h *execHooks) run(ctx context.Context, key string, extraArg string) error {
	cmdStr := viper.GetString(key)
	if cmdStr == "" {
		h.log.Debugf("no command configured for %s, skipping", key)
		return nil
	}
	if extraArg != "" {
		cmdStr = cmdStr + " " + extraArg
	}

	return h.runner(ctx, h.dir, "sh", "-c", cmdStr)
}

func (h *execHooks) BuildFrontend(ctx context.Context) error {
	return h.run(ctx, "commands.build_frontend", "")
}

func (h *execHooks) InitHashSalt(ctx context.Context) error {
	return h.run(ctx, "commands.hash_salt_init", "")
}

func (h *execHooks) InitDeploymentIdentifier(ctx context.Context, id string) error {
	return h.run(ctx, "commands.deployment_identifier_init", id)
}

func (h *execHooks) BuildSimpleSAMLConfig(ctx context.Context) error {
	return h.run(ctx, "commands.simplesamlphp_config", "")
}

func (h *execHooks) PostBuild(ctx context.Context) error {
	return h.run(ctx, "commands.post_build", "")
}

package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile string
	verbose bool
)

var root = &cobra.Command{
	Use:          "deployproc",
	Short:        "Build and push deployment artifacts from a source repository",
	SilenceUsage: true,
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("deployproc")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("DEPLOYPROC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("repo.root", ".")
	viper.SetDefault("docroot", "docroot")
	viper.SetDefault("deploy.dir", "deploy")
	viper.SetDefault("deploy.tag_source", true)
	viper.SetDefault("deploy.build-dependencies", true)
	viper.SetDefault("composer.bin", "composer")
	viper.SetDefault("git.author_name", "deployproc")
	viper.SetDefault("git.author_email", "deployproc@localhost")

	// A missing config file is fine, flags and env can carry a run.
	_ = viper.ReadInConfig()
}

func newLogger() *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}

	return logger.Sugar()
}

func main() {
	cobra.OnInitialize(initConfig)

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

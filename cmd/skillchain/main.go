package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const (
	programName = "skillchain"
)

var (
	globalFlags = struct {
		debug      bool
		envFile    string
		configFile string
	}{}
)

func commonRun(_ *cobra.Command, _ []string) error {
	if len(globalFlags.envFile) > 0 {
		// A missing env file is expected outside of local development
		if err := godotenv.Load(globalFlags.envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("loading %s: %w", globalFlags.envFile, err)
		}
	}

	if globalFlags.debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	log := logrus.StandardLogger().WithField("type", "cmd/"+programName)
	_, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		log.Debugf(format, args...)
	}))
	return err
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               programName,
		Short:             "SkillChain skill registry node and client",
		SilenceUsage:      true,
		PersistentPreRunE: commonRun,
	}

	rootCmd.PersistentFlags().BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&globalFlags.envFile, "env-file", ".env", "environment file loaded before running")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.configFile, "config", "c", "config.yaml", "node configuration file path")

	rootCmd.AddCommand(
		serveCommand(),
		keygenCommand(),
		addressCommand(),
		submitCommand(),
		airdropCommand(),
		queryCommand(),
	)

	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimSpace(err.Error()))
		os.Exit(1)
	}
}

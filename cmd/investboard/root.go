package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Aidin1998/investboard/internal/config"
	"github.com/Aidin1998/investboard/pkg/logger"
)

// app holds what every subcommand needs once flags are parsed
type app struct {
	configFiles []string
	logLevel    string

	logger *zap.Logger
	cfg    *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "investboard",
		Short:         "Risk-aware investment advisory backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringSliceVarP(&a.configFiles, "config", "c", []string{"config.yaml"}, "configuration files, later files override earlier ones")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(a.serveCmd())
	root.AddCommand(a.migrateCmd())
	root.AddCommand(a.seedCmd())

	return root
}

// setup loads configuration with a bootstrap logger, then builds the
// logger the configuration asks for.
func (a *app) setup() error {
	bootLevel := a.logLevel
	if bootLevel == "" {
		bootLevel = os.Getenv(config.EnvPrefix + "_LOG_LEVEL")
	}
	boot, err := logger.NewLogger(bootLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	cfg, err := config.Load(boot, a.configFiles...)
	if err != nil {
		boot.Error("Failed to load configuration", zap.Error(err))
		return err
	}

	level := cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	lg, err := logger.NewLogger(level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	a.cfg = cfg
	a.logger = lg.With(zap.String("environment", cfg.Environment))
	return nil
}

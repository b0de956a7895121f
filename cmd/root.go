package main

import (
	"silo_scanner/internal/config"
	"silo_scanner/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "silo-scanner",
		Short:        "Sequential grain-silo sensor scanner",
		Long:         "Walks the silo catalog one silo at a time, re-checks disconnected silos in retry cycles and resumes after restarts.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "configs", "config file or directory holding config.yml")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(opts),
		newScanCmd(opts),
		newResetCmd(opts),
	)
	return cmd
}

// loadConfig reads configuration into a fresh viper instance. overrides are applied
// before the config is decoded, so they win over file and environment values.
func loadConfig(opts *rootOptions, overrides map[string]any) (*config.Config, *logger.Logger, error) {
	v := viper.New()
	for k, val := range overrides {
		v.Set(k, val)
	}
	cfg, err := config.Load(v, opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, logger.GetWithFormat(cfg.Log.Level, cfg.Log.Format), nil
}
